package sqliteDB

import (
	"context"
)

const createInsight = `
INSERT INTO ai_insights (user_id, entry_date, insight_type, content, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, user_id, entry_date, insight_type, content, created_at
`

type CreateInsightParams struct {
	UserID      int64
	EntryDate   string
	InsightType string
	Content     string
	CreatedAt   int64
}

func (q *Queries) CreateInsight(ctx context.Context, arg CreateInsightParams) (AiInsight, error) {
	row := q.db.QueryRowContext(ctx, createInsight,
		arg.UserID,
		arg.EntryDate,
		arg.InsightType,
		arg.Content,
		arg.CreatedAt,
	)
	var i AiInsight
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.EntryDate,
		&i.InsightType,
		&i.Content,
		&i.CreatedAt,
	)
	return i, err
}

const listInsightsByEntry = `
SELECT id, user_id, entry_date, insight_type, content, created_at
FROM ai_insights WHERE user_id = ? AND entry_date = ?
ORDER BY created_at ASC
`

type ListInsightsByEntryParams struct {
	UserID    int64
	EntryDate string
}

func (q *Queries) ListInsightsByEntry(ctx context.Context, arg ListInsightsByEntryParams) ([]AiInsight, error) {
	rows, err := q.db.QueryContext(ctx, listInsightsByEntry, arg.UserID, arg.EntryDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AiInsight
	for rows.Next() {
		var i AiInsight
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.EntryDate,
			&i.InsightType,
			&i.Content,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
