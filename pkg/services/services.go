package services

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/andyirvine/journal-app/database"
	"github.com/andyirvine/journal-app/internal/authstore"
	"github.com/andyirvine/journal-app/internal/entrystore"
	"github.com/andyirvine/journal-app/internal/sessionstore"
	"github.com/andyirvine/journal-app/internal/tokenstore"
	"github.com/andyirvine/journal-app/pkg/insight"
	"github.com/andyirvine/journal-app/pkg/sessiontoken"
)

type Services struct {
	db     *sql.DB
	logger *slog.Logger
	dbType DBType

	Auth      authstore.Store
	Session   sessionstore.Store
	Token     tokenstore.TokenStore
	Entries   entrystore.Store
	Insights  *insight.Service
	URLTokens *sessiontoken.Service
}

type DBType string

const (
	DBTypeSQLite DBType = "sqlite"
)

// Config carries the knobs the service layer needs beyond a database handle.
// The signing secret is mandatory and shared by the JWT and URL-token
// services; everything else has a sensible default.
type Config struct {
	// SigningSecret signs JWTs and URL session tokens. Required.
	SigningSecret string

	// JWTDuration is the lifetime of issued JWTs. Defaults to 15 minutes.
	JWTDuration time.Duration

	// SessionTokenLength is the byte length of server session IDs before hex
	// encoding. Defaults to 32.
	SessionTokenLength int

	// SessionDuration is the lifetime of server sessions. Defaults to 24 hours.
	SessionDuration time.Duration

	// URLTokenTTL is the lifetime of signed URL tokens. Zero keeps the
	// sessiontoken package default of 30 days.
	URLTokenTTL time.Duration

	// SessionInMemory holds sessions in process memory instead of the database.
	SessionInMemory bool

	// Completer is the optional text-completion backend powering insights.
	// Nil disables the insight endpoints.
	Completer insight.Completer
}

// New initializes the Services struct with the appropriate subcomponents
// based on the provided configuration.
//
// The dbType parameter determines the type of database backend used for
// storage. An empty signing secret is a configuration error; there is no
// insecure fallback.
//
// Example:
//
//	svc, err := New(db, DBTypeSQLite, logger, Config{SigningSecret: secret})
func New(db *sql.DB, dbType DBType, logger *slog.Logger, cfg Config) (*Services, error) {
	if cfg.SigningSecret == "" {
		return nil, errors.New("services: signing secret is required")
	}
	if cfg.JWTDuration <= 0 {
		cfg.JWTDuration = time.Minute * 15
	}
	if cfg.SessionTokenLength <= 0 {
		cfg.SessionTokenLength = 32
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = time.Hour * 24
	}

	svc := &Services{
		db:     db,
		logger: logger,
		dbType: dbType,
	}

	var urlTokenOpts []sessiontoken.Option
	if cfg.URLTokenTTL > 0 {
		urlTokenOpts = append(urlTokenOpts, sessiontoken.WithTTL(cfg.URLTokenTTL))
	}
	urlTokens, err := sessiontoken.New(cfg.SigningSecret, urlTokenOpts...)
	if err != nil {
		return nil, err
	}
	svc.URLTokens = urlTokens

	switch dbType {
	case DBTypeSQLite:
		svc.Auth = authstore.NewWithSqliteStore(db, logger)
		svc.Entries = entrystore.NewWithSqliteStore(db, logger)
		if cfg.SessionInMemory {
			svc.Session = sessionstore.NewInMemory(logger, cfg.SessionTokenLength, cfg.SessionDuration)
		} else {
			svc.Session = sessionstore.NewWithSqliteStore(db, logger, cfg.SessionTokenLength, cfg.SessionDuration)
		}
		svc.Token = tokenstore.NewSqlLite(logger, cfg.SigningSecret, cfg.JWTDuration, db)
	default:
		return nil, errors.New("unknown database type")
	}

	svc.Insights = insight.NewService(cfg.Completer, svc.Entries, logger)

	return svc, nil
}

func (s *Services) RunMigrations() error {
	switch s.dbType {
	case DBTypeSQLite:
		return database.RunSqliteMigrations(s.db)
	default:
		return errors.New("unknown database type")
	}
}
