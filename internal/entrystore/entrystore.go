package entrystore

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/andyirvine/journal-app/internal/db/sqliteDB"
	"github.com/andyirvine/journal-app/pkg/models"
)

func NewWithSqliteStore(db *sql.DB, logger *slog.Logger) *sqliteEntryStore {
	return &sqliteEntryStore{
		db:      db,
		queries: *sqliteDB.New(db),
		log:     logger,
	}
}

// Store is the journal entry datastore. One entry per user per calendar day;
// writes to an existing (user, date) pair either replace the entry or are
// skipped, depending on the method used.
type Store interface {

	// UpsertEntry writes the entry for (UserID, Date), replacing any existing
	// entry for that day. Returns the stored entry.
	UpsertEntry(ctx context.Context, args models.UpsertEntryParams) (*models.Entry, error)

	// InsertEntryIfAbsent writes the entry only when no entry exists for
	// (UserID, Date). Reports whether a row was written.
	InsertEntryIfAbsent(ctx context.Context, args models.UpsertEntryParams) (bool, error)

	// GetEntry fetches the entry for the given user and calendar day.
	// Returns a DatabaseError wrapping sql.ErrNoRows when absent.
	GetEntry(ctx context.Context, userID int64, date time.Time) (*models.Entry, error)

	// ListEntries returns all of the user's entries ordered by date ascending.
	ListEntries(ctx context.Context, userID int64) ([]*models.Entry, error)

	// ListEntriesInRange returns the user's entries with from <= date <= to,
	// ordered by date ascending.
	ListEntriesInRange(ctx context.Context, userID int64, from, to time.Time) ([]*models.Entry, error)

	// ListEntryDates returns the calendar days the user has entries for,
	// ascending.
	ListEntryDates(ctx context.Context, userID int64) ([]time.Time, error)

	// DeleteEntry removes the entry for the given user and day, if present.
	DeleteEntry(ctx context.Context, userID int64, date time.Time) error

	// CreateInsight stores a generated insight attached to an entry date.
	CreateInsight(ctx context.Context, userID int64, date time.Time, typ models.InsightType, content string) (*models.Insight, error)

	// ListInsights returns stored insights for an entry date, oldest first.
	ListInsights(ctx context.Context, userID int64, date time.Time) ([]*models.Insight, error)
}
