// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/model"
)

// CredentialRepository persists account credentials and their session tokens.
// Token reads and writes are serialized per owner at the store level so that
// concurrent renew/prune of the same credential cannot lose updates.
type CredentialRepository interface {
	// Create inserts a new credential.
	Create(ctx context.Context, c *model.Credential) error
	// GetByID loads a credential by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Credential, error)
	// GetByUsername loads a credential by username (case-sensitive exact match).
	GetByUsername(ctx context.Context, username string) (*model.Credential, error)
	// Exists reports whether a credential with the username exists.
	Exists(ctx context.Context, username string) (bool, error)
	// Delete removes a credential and, by cascade, its session tokens.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken stores a freshly issued session token.
	AddToken(ctx context.Context, t model.SessionToken) error
	// GetToken loads a session token by its value.
	GetToken(ctx context.Context, token string) (*model.SessionToken, error)
	// PruneExpired removes the owner's tokens whose expiry is at or before now.
	PruneExpired(ctx context.Context, userID uuid.UUID, now time.Time) error
	// RenewToken moves a token's expiry to until and returns the stored value.
	RenewToken(ctx context.Context, token string, until time.Time) (time.Time, error)
	// DeleteToken removes a single session token (logout).
	DeleteToken(ctx context.Context, token string) error
}
