package authstore

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/andyirvine/journal-app/internal/db"
	"github.com/andyirvine/journal-app/internal/db/sqliteDB"
	"github.com/andyirvine/journal-app/internal/logutil"
	"github.com/andyirvine/journal-app/pkg/models"
	"github.com/andyirvine/journal-app/pkg/models/passwd"
)

type sqliteAuthStore struct {
	db      *sql.DB
	queries sqliteDB.Queries
	log     *slog.Logger
}

func (s *sqliteAuthStore) Ping() error {
	return s.db.Ping()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *sqliteAuthStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "CheckEmailExists")()
	i, err := s.queries.CheckEmailExists(ctx, normalizeEmail(email))
	return i != 0, err
}

func (s *sqliteAuthStore) CreateUser(ctx context.Context, args models.CreateUserParams) (*models.User, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "CreateUser")()
	errMsg := "failed to create user"

	args.Email = normalizeEmail(args.Email)
	if args.Email == "" {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewValidationError("email not set"),
		)
	}
	if args.Password == nil && args.OauthProvider == nil {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewValidationError("either a password or an oauth identity is required"),
		)
	}
	if args.Password != nil && len(*args.Password) < passwd.MinPasswordLen {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewValidationError("password too short"),
		)
	}

	params, err := sqliteDB.CreateUserParamsFromModel(args, time.Now())
	if err != nil {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewTransformationError(err.Error()),
		)
	}

	sqlUser, err := s.queries.CreateUser(ctx, params)
	if err != nil {
		_, err := db.WrapErrorIfDuplicateConstraint(err)
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err))
	}
	user := sqlUser.ToUserModel()
	return &user, nil
}

func (s *sqliteAuthStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "GetUserByEmail")()
	errMsg := "failed to get user by email"

	sqlUser, err := s.queries.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}
	user := sqlUser.ToUserModel()
	return &user, nil
}

func (s *sqliteAuthStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "GetUserByID", "ID", id)()
	errMsg := "failed to get user by id"

	if id <= 0 {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewValidationError("id not set"),
		)
	}

	sqlUser, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}
	user := sqlUser.ToUserModel()
	return &user, nil
}

func (s *sqliteAuthStore) GetUserByOAuth(ctx context.Context, args models.UserOAuthParams) (*models.User, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "GetUserByOAuth")()
	errMsg := "failed to get user by oauth"

	if args.OauthID == "" || args.OauthProvider == "" {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewValidationError("id or provider not set"),
		)
	}

	params := sqliteDB.GetUserByOAuthParamsFromModel(args)

	sqlUser, err := s.queries.GetUserByOAuth(ctx, params)
	if err != nil {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}

	user := sqlUser.ToUserModel()
	return &user, nil
}

func (s *sqliteAuthStore) LinkOAuthAccount(ctx context.Context, id int64, args models.UserOAuthParams) error {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "LinkOAuthAccount", "ID", id)()
	errMsg := "failed to link oauth account"

	if args.OauthID == "" || args.OauthProvider == "" {
		return logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewValidationError("id or provider not set"),
		)
	}

	err := s.queries.LinkOAuthAccount(ctx, sqliteDB.LinkOAuthAccountParams{
		OauthProvider: &args.OauthProvider,
		OauthID:       &args.OauthID,
		UpdatedAt:     time.Now().Unix(),
		ID:            id,
	})
	if err != nil {
		_, err := db.WrapErrorIfDuplicateConstraint(err)
		return logutil.LogAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}
	return nil
}

func (s *sqliteAuthStore) UpdateUserPassword(ctx context.Context, id int64, password string) error {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "UpdateUserPassword", "ID", id)()
	errMsg := "failed to update user password"

	if len(password) < passwd.MinPasswordLen {
		return logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewValidationError("password too short"),
		)
	}

	hashed, err := passwd.HashPassword(password)
	if err != nil {
		return logutil.LogAndWrapErr(s.log, errMsg,
			models.NewTransformationError(err.Error()),
		)
	}

	err = s.queries.UpdateUserPassword(ctx, sqliteDB.UpdateUserPasswordParams{
		PasswordHash: &hashed,
		UpdatedAt:    time.Now().Unix(),
		ID:           id,
	})
	if err != nil {
		return logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}
	return nil
}

func (s *sqliteAuthStore) SoftDeleteUser(ctx context.Context, id int64) error {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "SoftDeleteUser", "ID", id)()

	if err := s.queries.SoftDeleteUser(ctx, time.Now().Unix(), id); err != nil {
		return logutil.DebugAndWrapErr(s.log, "failed to soft delete user",
			models.NewDatabaseError(err),
		)
	}
	return nil
}

func (s *sqliteAuthStore) RestoreUser(ctx context.Context, id int64) error {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "RestoreUser", "ID", id)()

	if err := s.queries.RestoreUser(ctx, time.Now().Unix(), id); err != nil {
		return logutil.DebugAndWrapErr(s.log, "failed to restore user",
			models.NewDatabaseError(err),
		)
	}
	return nil
}
