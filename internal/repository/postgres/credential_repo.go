package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
)

// CredentialRepo implements CredentialRepository using PostgreSQL.
// Session tokens live in a child table keyed by token value, so prune and
// renew are single row-locked statements rather than read-modify-write on
// the credential aggregate.
type CredentialRepo struct{ db *DB }

// NewCredentialRepo constructs a credential repository.
func NewCredentialRepo(db *DB) *CredentialRepo { return &CredentialRepo{db: db} }

// Create inserts a new credential row.
func (r *CredentialRepo) Create(ctx context.Context, c *model.Credential) error {
	const q = `
INSERT INTO credentials (id, username, password_hash, salt, iterations)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, c.ID, c.Username, c.PasswordHash, c.Salt, c.Iterations)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a credential by ID.
func (r *CredentialRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Credential, error) {
	const q = `
SELECT id, username, password_hash, salt, iterations, created_at
FROM credentials WHERE id=$1`
	return r.scanCredential(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUsername selects a credential by username.
func (r *CredentialRepo) GetByUsername(ctx context.Context, username string) (*model.Credential, error) {
	const q = `
SELECT id, username, password_hash, salt, iterations, created_at
FROM credentials WHERE username=$1`
	return r.scanCredential(r.db.Pool.QueryRow(ctx, q, username))
}

func (r *CredentialRepo) scanCredential(row interface{ Scan(...any) error }) (*model.Credential, error) {
	var c model.Credential
	if err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.Salt, &c.Iterations, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Exists reports whether a credential with the username exists.
func (r *CredentialRepo) Exists(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM credentials WHERE username=$1)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Delete removes a credential; session tokens go with it via FK cascade.
func (r *CredentialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM credentials WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AddToken inserts a freshly issued session token.
func (r *CredentialRepo) AddToken(ctx context.Context, t model.SessionToken) error {
	const q = `
INSERT INTO session_tokens (token, user_id, expires_at)
VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, t.Token, t.UserID, t.ExpiresAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetToken selects a session token by value.
func (r *CredentialRepo) GetToken(ctx context.Context, token string) (*model.SessionToken, error) {
	const q = `SELECT token, user_id, expires_at FROM session_tokens WHERE token=$1`
	var t model.SessionToken
	if err := r.db.Pool.QueryRow(ctx, q, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// PruneExpired removes the owner's tokens whose expiry is at or before now.
func (r *CredentialRepo) PruneExpired(ctx context.Context, userID uuid.UUID, now time.Time) error {
	const q = `DELETE FROM session_tokens WHERE user_id=$1 AND expires_at <= $2`
	_, err := r.db.Pool.Exec(ctx, q, userID, now)
	return err
}

// RenewToken moves a token's expiry to until and returns the stored value.
func (r *CredentialRepo) RenewToken(ctx context.Context, token string, until time.Time) (time.Time, error) {
	const q = `UPDATE session_tokens SET expires_at=$2 WHERE token=$1 RETURNING expires_at`
	var stored time.Time
	if err := r.db.Pool.QueryRow(ctx, q, token, until).Scan(&stored); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, errs.ErrNotFound
		}
		return time.Time{}, err
	}
	return stored, nil
}

// DeleteToken removes a single session token.
func (r *CredentialRepo) DeleteToken(ctx context.Context, token string) error {
	const q = `DELETE FROM session_tokens WHERE token=$1`
	tag, err := r.db.Pool.Exec(ctx, q, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
