package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/model"
)

// UserRepository provides CRUD access for case-management users.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUserNumber loads a user by its unique external number.
	GetByUserNumber(ctx context.Context, userNumber int64) (*model.User, error)
	// Save updates mutable fields (names, username, team, active) of a user.
	Save(ctx context.Context, u *model.User) error
	// GetAllByTeamID returns all users in a team.
	GetAllByTeamID(ctx context.Context, teamID uuid.UUID) ([]model.User, error)
	// Search returns users matching any combination of name fields.
	Search(ctx context.Context, firstName, lastName, username string) ([]model.User, error)
	// GetByCreationDate returns users created in [from, to].
	GetByCreationDate(ctx context.Context, from, to time.Time) ([]model.User, error)
}
