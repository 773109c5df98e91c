package sqliteDB

import (
	"context"
)

const checkEmailExists = `
SELECT COUNT(1) FROM users WHERE email = ?
`

func (q *Queries) CheckEmailExists(ctx context.Context, email string) (int64, error) {
	row := q.db.QueryRowContext(ctx, checkEmailExists, email)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createUser = `
INSERT INTO users (email, password_hash, name, oauth_provider, oauth_id, created_at, updated_at, is_active)
VALUES (?, ?, ?, ?, ?, ?, ?, TRUE)
RETURNING id, email, password_hash, name, oauth_provider, oauth_id, created_at, updated_at, is_active
`

type CreateUserParams struct {
	Email         string
	PasswordHash  *string
	Name          string
	OauthProvider *string
	OauthID       *string
	CreatedAt     int64
	UpdatedAt     int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Email,
		arg.PasswordHash,
		arg.Name,
		arg.OauthProvider,
		arg.OauthID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.OauthProvider,
		&u.OauthID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.IsActive,
	)
	return u, err
}

const getUserByEmail = `
SELECT id, email, password_hash, name, oauth_provider, oauth_id, created_at, updated_at, is_active
FROM users WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.OauthProvider,
		&u.OauthID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.IsActive,
	)
	return u, err
}

const getUserByID = `
SELECT id, email, password_hash, name, oauth_provider, oauth_id, created_at, updated_at, is_active
FROM users WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.OauthProvider,
		&u.OauthID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.IsActive,
	)
	return u, err
}

const getUserByOAuth = `
SELECT id, email, password_hash, name, oauth_provider, oauth_id, created_at, updated_at, is_active
FROM users WHERE oauth_provider = ? AND oauth_id = ?
`

type GetUserByOAuthParams struct {
	OauthProvider *string
	OauthID       *string
}

func (q *Queries) GetUserByOAuth(ctx context.Context, arg GetUserByOAuthParams) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByOAuth, arg.OauthProvider, arg.OauthID)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.OauthProvider,
		&u.OauthID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.IsActive,
	)
	return u, err
}

const linkOAuthAccount = `
UPDATE users SET oauth_provider = ?, oauth_id = ?, updated_at = ?
WHERE id = ?
`

type LinkOAuthAccountParams struct {
	OauthProvider *string
	OauthID       *string
	UpdatedAt     int64
	ID            int64
}

func (q *Queries) LinkOAuthAccount(ctx context.Context, arg LinkOAuthAccountParams) error {
	_, err := q.db.ExecContext(ctx, linkOAuthAccount,
		arg.OauthProvider,
		arg.OauthID,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const updateUserPassword = `
UPDATE users SET password_hash = ?, updated_at = ?
WHERE id = ?
`

type UpdateUserPasswordParams struct {
	PasswordHash *string
	UpdatedAt    int64
	ID           int64
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword,
		arg.PasswordHash,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const softDeleteUser = `
UPDATE users SET is_active = FALSE, updated_at = ? WHERE id = ?
`

func (q *Queries) SoftDeleteUser(ctx context.Context, updatedAt, id int64) error {
	_, err := q.db.ExecContext(ctx, softDeleteUser, updatedAt, id)
	return err
}

const restoreUser = `
UPDATE users SET is_active = TRUE, updated_at = ? WHERE id = ?
`

func (q *Queries) RestoreUser(ctx context.Context, updatedAt, id int64) error {
	_, err := q.db.ExecContext(ctx, restoreUser, updatedAt, id)
	return err
}
