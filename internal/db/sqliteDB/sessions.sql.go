package sqliteDB

import (
	"context"
)

const createSession = `
INSERT INTO sessions (id, user_id, created_at, expires_at, ip_address, user_agent)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateSessionParams struct {
	ID        string
	UserID    int64
	CreatedAt int64
	ExpiresAt int64
	IpAddress *string
	UserAgent *string
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) error {
	_, err := q.db.ExecContext(ctx, createSession,
		arg.ID,
		arg.UserID,
		arg.CreatedAt,
		arg.ExpiresAt,
		arg.IpAddress,
		arg.UserAgent,
	)
	return err
}

const getSession = `
SELECT id, user_id, created_at, expires_at, ip_address, user_agent
FROM sessions WHERE id = ?
`

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, id)
	var s Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.CreatedAt,
		&s.ExpiresAt,
		&s.IpAddress,
		&s.UserAgent,
	)
	return s, err
}

const renewSession = `
UPDATE sessions SET expires_at = ? WHERE id = ?
RETURNING id, user_id, created_at, expires_at, ip_address, user_agent
`

type RenewSessionParams struct {
	ExpiresAt int64
	ID        string
}

func (q *Queries) RenewSession(ctx context.Context, arg RenewSessionParams) (Session, error) {
	row := q.db.QueryRowContext(ctx, renewSession, arg.ExpiresAt, arg.ID)
	var s Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.CreatedAt,
		&s.ExpiresAt,
		&s.IpAddress,
		&s.UserAgent,
	)
	return s, err
}

const deleteSession = `
DELETE FROM sessions WHERE id = ?
`

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, id)
	return err
}

const deleteSessionsByUserID = `
DELETE FROM sessions WHERE user_id = ?
`

func (q *Queries) DeleteSessionsByUserID(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, deleteSessionsByUserID, userID)
	return err
}

const deleteExpiredSessions = `
DELETE FROM sessions WHERE expires_at < ?
`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
