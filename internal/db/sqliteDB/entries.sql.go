package sqliteDB

import (
	"context"
)

const upsertEntry = `
INSERT INTO journal_entries (user_id, entry_date, content, word_count, sentiment_score, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, entry_date) DO UPDATE SET
    content = excluded.content,
    word_count = excluded.word_count,
    sentiment_score = excluded.sentiment_score,
    updated_at = excluded.updated_at
RETURNING id, user_id, entry_date, content, word_count, sentiment_score, created_at, updated_at
`

type UpsertEntryParams struct {
	UserID         int64
	EntryDate      string
	Content        string
	WordCount      int64
	SentimentScore *float64
	CreatedAt      int64
	UpdatedAt      int64
}

func (q *Queries) UpsertEntry(ctx context.Context, arg UpsertEntryParams) (JournalEntry, error) {
	row := q.db.QueryRowContext(ctx, upsertEntry,
		arg.UserID,
		arg.EntryDate,
		arg.Content,
		arg.WordCount,
		arg.SentimentScore,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var e JournalEntry
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.EntryDate,
		&e.Content,
		&e.WordCount,
		&e.SentimentScore,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

const insertEntryIfAbsent = `
INSERT INTO journal_entries (user_id, entry_date, content, word_count, sentiment_score, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, entry_date) DO NOTHING
`

// InsertEntryIfAbsent inserts the entry unless one already exists for the
// (user, date) key. It reports whether a row was written.
func (q *Queries) InsertEntryIfAbsent(ctx context.Context, arg UpsertEntryParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, insertEntryIfAbsent,
		arg.UserID,
		arg.EntryDate,
		arg.Content,
		arg.WordCount,
		arg.SentimentScore,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

const getEntry = `
SELECT id, user_id, entry_date, content, word_count, sentiment_score, created_at, updated_at
FROM journal_entries WHERE user_id = ? AND entry_date = ?
`

type GetEntryParams struct {
	UserID    int64
	EntryDate string
}

func (q *Queries) GetEntry(ctx context.Context, arg GetEntryParams) (JournalEntry, error) {
	row := q.db.QueryRowContext(ctx, getEntry, arg.UserID, arg.EntryDate)
	var e JournalEntry
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.EntryDate,
		&e.Content,
		&e.WordCount,
		&e.SentimentScore,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

const listEntries = `
SELECT id, user_id, entry_date, content, word_count, sentiment_score, created_at, updated_at
FROM journal_entries WHERE user_id = ?
ORDER BY entry_date ASC
`

func (q *Queries) ListEntries(ctx context.Context, userID int64) ([]JournalEntry, error) {
	rows, err := q.db.QueryContext(ctx, listEntries, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.EntryDate,
			&e.Content,
			&e.WordCount,
			&e.SentimentScore,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listEntriesInRange = `
SELECT id, user_id, entry_date, content, word_count, sentiment_score, created_at, updated_at
FROM journal_entries WHERE user_id = ? AND entry_date >= ? AND entry_date <= ?
ORDER BY entry_date ASC
`

type ListEntriesInRangeParams struct {
	UserID int64
	From   string
	To     string
}

func (q *Queries) ListEntriesInRange(ctx context.Context, arg ListEntriesInRangeParams) ([]JournalEntry, error) {
	rows, err := q.db.QueryContext(ctx, listEntriesInRange, arg.UserID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.EntryDate,
			&e.Content,
			&e.WordCount,
			&e.SentimentScore,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listEntryDates = `
SELECT entry_date FROM journal_entries WHERE user_id = ?
ORDER BY entry_date ASC
`

func (q *Queries) ListEntryDates(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listEntryDates, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

const deleteEntry = `
DELETE FROM journal_entries WHERE user_id = ? AND entry_date = ?
`

func (q *Queries) DeleteEntry(ctx context.Context, arg GetEntryParams) error {
	_, err := q.db.ExecContext(ctx, deleteEntry, arg.UserID, arg.EntryDate)
	return err
}
