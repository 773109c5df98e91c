package sqliteDB

import (
	"context"
)

const revokeToken = `
INSERT INTO revoked_tokens (id, user_id, revoked_at, original_expires_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING
`

type RevokeTokenParams struct {
	ID                string
	UserID            int64
	RevokedAt         int64
	OriginalExpiresAt int64
}

func (q *Queries) RevokeToken(ctx context.Context, arg RevokeTokenParams) error {
	_, err := q.db.ExecContext(ctx, revokeToken,
		arg.ID,
		arg.UserID,
		arg.RevokedAt,
		arg.OriginalExpiresAt,
	)
	return err
}

const isTokenRevoked = `
SELECT COUNT(1) FROM revoked_tokens WHERE id = ?
`

func (q *Queries) IsTokenRevoked(ctx context.Context, id string) (int64, error) {
	row := q.db.QueryRowContext(ctx, isTokenRevoked, id)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteExpiredRevocations = `
DELETE FROM revoked_tokens WHERE original_expires_at < ?
`

// DeleteExpiredRevocations drops revocation records whose tokens have expired
// on their own. They no longer need to be denied explicitly.
func (q *Queries) DeleteExpiredRevocations(ctx context.Context, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredRevocations, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
