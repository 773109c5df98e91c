package authstore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/andyirvine/journal-app/internal/db/sqliteDB"
	"github.com/andyirvine/journal-app/pkg/models"
)

func NewWithSqliteStore(db *sql.DB, logger *slog.Logger) *sqliteAuthStore {
	return &sqliteAuthStore{
		db:      db,
		queries: *sqliteDB.New(db),
		log:     logger,
	}
}

// Store defines a unified interface for interacting with the user account datastore.
// It abstracts storage-specific implementations behind consistent operations used
// by services.
//
// All methods must return meaningful error types as defined in the models package,
// including ValidationError, TransformationError, and DatabaseError.
//
// The returned models must be portable and backend-agnostic (i.e., not tied to any backend schema).
type Store interface {

	// CheckEmailExists returns true if a user with the specified email exists in the datastore.
	CheckEmailExists(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a new user into the datastore using the provided parameters.
	// The email is normalized to lowercase before storage. Returns a pointer to the
	// created user, or a DatabaseError if insertion fails. A duplicate email
	// surfaces as a db.DuplicateKeyError inside the DatabaseError chain.
	CreateUser(ctx context.Context, args models.CreateUserParams) (*models.User, error)

	// GetUserByEmail retrieves a user by email. Lookup is case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by their numeric ID.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByOAuth looks up a user by their OAuth provider and ID.
	GetUserByOAuth(ctx context.Context, args models.UserOAuthParams) (*models.User, error)

	// LinkOAuthAccount attaches an OAuth identity to an existing user.
	LinkOAuthAccount(ctx context.Context, id int64, args models.UserOAuthParams) error

	// UpdateUserPassword hashes and stores the new password for the specified user.
	UpdateUserPassword(ctx context.Context, id int64, password string) error

	// SoftDeleteUser marks a user as inactive (IsActive = false) without deleting data.
	SoftDeleteUser(ctx context.Context, id int64) error

	// RestoreUser reactivates a soft-deleted user (IsActive = true).
	RestoreUser(ctx context.Context, id int64) error
}
