package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/model"
)

// TeamRepository provides CRUD access for teams.
type TeamRepository interface {
	// Create inserts a new team.
	Create(ctx context.Context, t *model.Team) error
	// GetByID loads a team by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	// GetByName loads a team by its unique name.
	GetByName(ctx context.Context, name string) (*model.Team, error)
	// Save updates name and active flag of an existing team.
	Save(ctx context.Context, t *model.Team) error
	// GetAll returns all teams.
	GetAll(ctx context.Context) ([]model.Team, error)
	// CountMembers returns the number of users currently in the team.
	CountMembers(ctx context.Context, teamID uuid.UUID) (int, error)
}
