package sessionstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/andyirvine/journal-app/internal/db/sqliteDB"
	"github.com/andyirvine/journal-app/pkg/models"
)

func NewWithSqliteStore(db *sql.DB, logger *slog.Logger, tokenLength int, tokenDuration time.Duration) *sqliteSessionStore {
	s := &sqliteSessionStore{
		baseSessionStore: NewBase(logger, tokenLength, tokenDuration),
		db:               db,
		queries:          *sqliteDB.New(db),
		log:              logger,
	}
	s.startCleanupWorker(s, time.Minute*5)
	return s
}

func NewInMemory(logger *slog.Logger, tokenLength int, tokenDuration time.Duration) *inMemorySessionStore {
	s := &inMemorySessionStore{
		baseSessionStore: NewBase(logger, tokenLength, tokenDuration),
		sessions:         make(map[string]*models.Session),
		mutex:            new(sync.Mutex),
		log:              logger,
	}
	s.startCleanupWorker(s, time.Second*10)
	return s
}

// Store defines the interface for a server-held session store. A session's
// UserID of 0 marks a guest session.
type Store interface {
	// Create generates a new session, stores it, and returns it.
	Create(ctx context.Context, userID int64, ipAddress, userAgent *string) (*models.Session, error)

	// Get retrieves a session by its ID.
	// Expired or unknown sessions return a SessionExpiredError.
	Get(ctx context.Context, sessionID string) (*models.Session, error)

	// Delete removes a session by its ID.
	Delete(ctx context.Context, sessionID string) error

	// Renew updates the expiry of an existing session without changing its data.
	// This is commonly used to extend the session lifetime on activity.
	Renew(ctx context.Context, sessionID string) (*models.Session, error)

	// DeleteUser deletes all sessions associated with a specific user ID.
	// Useful when a user changes password, logs out from all devices, or is deleted.
	DeleteUser(ctx context.Context, userID int64) error

	// CleanupExpired removes all expired sessions from the store.
	// Run periodically by the cleanup worker.
	CleanupExpired(ctx context.Context) error

	//base methods, for various functions required by the store
	ExpireCookie(c *http.Cookie, w http.ResponseWriter)
}

var ErrSessionExpired = &SessionExpiredError{}

// errors
type SessionExpiredError struct {
	ID string
}

func newSessionExpiredError(id string) *SessionExpiredError {
	return &SessionExpiredError{ID: id}
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session with ID '%s' has expired", e.ID)
}

func (e *SessionExpiredError) Is(target error) bool {
	_, ok := target.(*SessionExpiredError)
	return ok
}
