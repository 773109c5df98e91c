package entrystore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/andyirvine/journal-app/internal/db"
	"github.com/andyirvine/journal-app/internal/db/sqliteDB"
	"github.com/andyirvine/journal-app/internal/logutil"
	"github.com/andyirvine/journal-app/pkg/models"
)

type sqliteEntryStore struct {
	db      *sql.DB
	queries sqliteDB.Queries
	log     *slog.Logger
}

func (s *sqliteEntryStore) Ping() error {
	return s.db.Ping()
}

func (s *sqliteEntryStore) UpsertEntry(ctx context.Context, args models.UpsertEntryParams) (*models.Entry, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "UpsertEntry", "userID", args.UserID)()
	errMsg := "failed to upsert entry"

	if args.UserID <= 0 {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewValidationError("user id not set"),
		)
	}
	if args.Date.IsZero() {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewValidationError("date not set"),
		)
	}

	params := sqliteDB.UpsertEntryParamsFromModel(args, time.Now())
	sqlEntry, err := s.queries.UpsertEntry(ctx, params)
	if err != nil {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}

	entry, err := sqlEntry.ToEntryModel()
	if err != nil {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewTransformationError(err.Error()),
		)
	}
	return &entry, nil
}

func (s *sqliteEntryStore) InsertEntryIfAbsent(ctx context.Context, args models.UpsertEntryParams) (bool, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "InsertEntryIfAbsent", "userID", args.UserID)()
	errMsg := "failed to insert entry"

	if args.UserID <= 0 {
		return false, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewValidationError("user id not set"),
		)
	}
	if args.Date.IsZero() {
		return false, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewValidationError("date not set"),
		)
	}

	params := sqliteDB.UpsertEntryParamsFromModel(args, time.Now())
	inserted, err := s.queries.InsertEntryIfAbsent(ctx, params)
	if err != nil {
		_, err := db.WrapErrorIfDuplicateConstraint(err)
		return false, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}
	return inserted, nil
}

func (s *sqliteEntryStore) GetEntry(ctx context.Context, userID int64, date time.Time) (*models.Entry, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "GetEntry", "userID", userID)()
	errMsg := "failed to get entry"

	sqlEntry, err := s.queries.GetEntry(ctx, sqliteDB.GetEntryParams{
		UserID:    userID,
		EntryDate: sqliteDB.FormatDate(date),
	})
	if err != nil {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}

	entry, err := sqlEntry.ToEntryModel()
	if err != nil {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewTransformationError(err.Error()),
		)
	}
	return &entry, nil
}

func (s *sqliteEntryStore) ListEntries(ctx context.Context, userID int64) ([]*models.Entry, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "ListEntries", "userID", userID)()
	errMsg := "failed to list entries"

	sqlEntries, err := s.queries.ListEntries(ctx, userID)
	if err != nil {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}
	return s.toEntryModels(sqlEntries)
}

func (s *sqliteEntryStore) ListEntriesInRange(ctx context.Context, userID int64, from, to time.Time) ([]*models.Entry, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "ListEntriesInRange", "userID", userID)()
	errMsg := "failed to list entries in range"

	sqlEntries, err := s.queries.ListEntriesInRange(ctx, sqliteDB.ListEntriesInRangeParams{
		UserID: userID,
		From:   sqliteDB.FormatDate(from),
		To:     sqliteDB.FormatDate(to),
	})
	if err != nil {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}
	return s.toEntryModels(sqlEntries)
}

func (s *sqliteEntryStore) toEntryModels(sqlEntries []sqliteDB.JournalEntry) ([]*models.Entry, error) {
	var entries []*models.Entry
	var errs []error

	for _, sqlEntry := range sqlEntries {
		entry, err := sqlEntry.ToEntryModel()
		if err != nil {
			errs = append(errs, models.NewTransformationError(err.Error()))
			continue
		}
		entries = append(entries, &entry)
	}

	if len(errs) > 0 {
		// Return partial results with joined transformation errors
		return entries, errors.Join(errs...)
	}
	return entries, nil
}

func (s *sqliteEntryStore) ListEntryDates(ctx context.Context, userID int64) ([]time.Time, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "ListEntryDates", "userID", userID)()
	errMsg := "failed to list entry dates"

	raw, err := s.queries.ListEntryDates(ctx, userID)
	if err != nil {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}

	var dates []time.Time
	var errs []error
	for _, d := range raw {
		t, err := sqliteDB.ParseStoredDate(d)
		if err != nil {
			errs = append(errs, models.NewTransformationError(err.Error()))
			continue
		}
		dates = append(dates, t)
	}
	if len(errs) > 0 {
		return dates, errors.Join(errs...)
	}
	return dates, nil
}

func (s *sqliteEntryStore) DeleteEntry(ctx context.Context, userID int64, date time.Time) error {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "DeleteEntry", "userID", userID)()

	err := s.queries.DeleteEntry(ctx, sqliteDB.GetEntryParams{
		UserID:    userID,
		EntryDate: sqliteDB.FormatDate(date),
	})
	if err != nil {
		return logutil.DebugAndWrapErr(s.log, "failed to delete entry",
			models.NewDatabaseError(err),
		)
	}
	return nil
}

func (s *sqliteEntryStore) CreateInsight(ctx context.Context, userID int64, date time.Time, typ models.InsightType, content string) (*models.Insight, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "CreateInsight", "userID", userID)()
	errMsg := "failed to create insight"

	if typ != models.InsightNarrative && typ != models.InsightContextual {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewValidationError("unknown insight type: "+string(typ)),
		)
	}

	sqlInsight, err := s.queries.CreateInsight(ctx, sqliteDB.CreateInsightParams{
		UserID:      userID,
		EntryDate:   sqliteDB.FormatDate(date),
		InsightType: string(typ),
		Content:     content,
		CreatedAt:   time.Now().Unix(),
	})
	if err != nil {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}

	insight, err := sqlInsight.ToInsightModel()
	if err != nil {
		return nil, logutil.LogAndWrapErr(s.log, errMsg,
			models.NewTransformationError(err.Error()),
		)
	}
	return &insight, nil
}

func (s *sqliteEntryStore) ListInsights(ctx context.Context, userID int64, date time.Time) ([]*models.Insight, error) {
	defer logutil.NewTimingLogger(s.log, time.Now(), "executed sql query", "method", "ListInsights", "userID", userID)()
	errMsg := "failed to list insights"

	sqlInsights, err := s.queries.ListInsightsByEntry(ctx, sqliteDB.ListInsightsByEntryParams{
		UserID:    userID,
		EntryDate: sqliteDB.FormatDate(date),
	})
	if err != nil {
		return nil, logutil.DebugAndWrapErr(s.log, errMsg,
			models.NewDatabaseError(err),
		)
	}

	var insights []*models.Insight
	var errs []error
	for _, sqlInsight := range sqlInsights {
		insight, err := sqlInsight.ToInsightModel()
		if err != nil {
			errs = append(errs, models.NewTransformationError(err.Error()))
			continue
		}
		insights = append(insights, &insight)
	}
	if len(errs) > 0 {
		return insights, errors.Join(errs...)
	}
	return insights, nil
}
