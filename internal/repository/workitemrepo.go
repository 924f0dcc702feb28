package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/model"
)

// WorkItemRepository provides CRUD access for work items.
type WorkItemRepository interface {
	// Create inserts a new work item.
	Create(ctx context.Context, w *model.WorkItem) error
	// GetByID loads a work item by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.WorkItem, error)
	// Exists reports whether a work item with the ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// Save updates mutable fields (status, completion date, user, issue).
	Save(ctx context.Context, w *model.WorkItem) error
	// Delete removes a work item.
	Delete(ctx context.Context, id uuid.UUID) error
	// GetByStatus returns work items in the given status.
	GetByStatus(ctx context.Context, status model.Status) ([]model.WorkItem, error)
	// GetByTeamID returns work items assigned to users of a team.
	GetByTeamID(ctx context.Context, teamID uuid.UUID) ([]model.WorkItem, error)
	// GetByUserID returns work items assigned to a user.
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.WorkItem, error)
	// CountByUserID returns the number of work items assigned to a user.
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
	// GetByDescriptionContains returns work items whose description contains text.
	GetByDescriptionContains(ctx context.Context, text string) ([]model.WorkItem, error)
	// GetWithIssue returns work items that have an issue attached.
	GetWithIssue(ctx context.Context) ([]model.WorkItem, error)
	// GetCompletedBetween returns work items completed in [from, to].
	GetCompletedBetween(ctx context.Context, from, to time.Time) ([]model.WorkItem, error)
	// GetCreatedBetween returns work items created in [from, to].
	GetCreatedBetween(ctx context.Context, from, to time.Time) ([]model.WorkItem, error)
	// ResetStatusForUser moves all of a user's items back to UNSTARTED.
	ResetStatusForUser(ctx context.Context, userID uuid.UUID) error
}
