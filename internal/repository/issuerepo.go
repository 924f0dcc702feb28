package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/model"
)

// IssueRepository provides CRUD access for issues.
type IssueRepository interface {
	// Create inserts a new issue.
	Create(ctx context.Context, i *model.Issue) error
	// GetByID loads an issue by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error)
	// Exists reports whether an issue with the ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// Save updates description and active flag of an existing issue.
	Save(ctx context.Context, i *model.Issue) error
	// Delete removes an issue.
	Delete(ctx context.Context, id uuid.UUID) error
	// GetByDescription returns issues with the exact description.
	GetByDescription(ctx context.Context, description string) ([]model.Issue, error)
}
