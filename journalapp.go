// Package journalapp wires the journaling backend together: stores, the
// access enforcer, and the built-in HTTP API. Callers provide a database,
// a router, and a signing secret, then mount the returned routes.
package journalapp

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/andyirvine/journal-app/pkg/builtins"
	"github.com/andyirvine/journal-app/pkg/enforcer"
	"github.com/andyirvine/journal-app/pkg/insight"
	"github.com/andyirvine/journal-app/pkg/services"
)

type App struct {
	logger   *slog.Logger
	Services *services.Services
	Enforcer *enforcer.Enforcer
	Builtins *builtins.Builtin

	// Hold information to initialize services after configuration
	db               *sql.DB
	dbType           services.DBType
	router           enforcer.Router
	secret           string
	sessionsInMemory bool
	sessionDuration  time.Duration
	completer        insight.Completer
	enforcerConfig   *enforcer.Config
}

type Option func(*App)

func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithSqliteDB(db *sql.DB) Option {
	return func(a *App) {
		a.db = db
		a.dbType = services.DBTypeSQLite
	}
}

func WithRouter(r enforcer.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

func WithInMemorySessionStore() Option {
	return func(a *App) {
		a.sessionsInMemory = true
	}
}

// WithSecret sets the secret that signs JWTs and URL session tokens. It must
// come from configuration; New fails without it.
func WithSecret(secret string) Option {
	return func(a *App) {
		a.secret = secret
	}
}

func WithSessionDuration(d time.Duration) Option {
	return func(a *App) {
		a.sessionDuration = d
	}
}

// WithCompleter plugs in the text-completion backend that powers insights.
// Without one, the insight and chat endpoints answer 503.
func WithCompleter(c insight.Completer) Option {
	return func(a *App) {
		a.completer = c
	}
}

// WithEnforcerConfig overrides the cookie and redirect defaults.
func WithEnforcerConfig(cfg *enforcer.Config) Option {
	return func(a *App) {
		a.enforcerConfig = cfg
	}
}

// New builds the application from its options, connects to the database, and
// runs migrations. The routes are registered on the provided router and the
// server is ready to serve once this returns.
func New(opts ...Option) (*App, error) {
	app := &App{
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(app)
	}

	app.logger.Info("starting journal app")

	if app.db == nil {
		return nil, fmt.Errorf("a database is required, use WithSqliteDB")
	}
	if app.router == nil {
		return nil, fmt.Errorf("a router is required, use WithRouter")
	}
	if app.secret == "" {
		return nil, fmt.Errorf("a signing secret is required, use WithSecret")
	}

	svc, err := services.New(app.db, app.dbType, app.logger, services.Config{
		SigningSecret:   app.secret,
		SessionDuration: app.sessionDuration,
		SessionInMemory: app.sessionsInMemory,
		Completer:       app.completer,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load services: %w", err)
	}
	app.Services = svc
	app.logger.Debug("services loaded")

	app.Enforcer = enforcer.NewEnforcer(app.logger, app.router,
		svc.Auth, svc.Session, svc.Token, svc.URLTokens, app.enforcerConfig)
	app.logger.Debug("enforcer loaded")

	if err := app.db.Ping(); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if err := svc.RunMigrations(); err != nil {
		return nil, fmt.Errorf("unable to run migrations: %w", err)
	}
	app.logger.Debug("migrations complete")

	app.Builtins = builtins.New(app.logger, app.Enforcer, builtins.HandlerDeps{
		Auth:      svc.Auth,
		Session:   svc.Session,
		Token:     svc.Token,
		Entries:   svc.Entries,
		Insights:  svc.Insights,
		URLTokens: svc.URLTokens,
	})
	app.Builtins.LoadAllPolicies()
	if err := app.Builtins.LoadAllRoutes(); err != nil {
		return nil, fmt.Errorf("unable to register routes: %w", err)
	}
	app.logger.Info("journal app routes registered")

	return app, nil
}
