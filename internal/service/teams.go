package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
	"github.com/thskolan/casetrack/internal/repository"
)

// MaxTeamSize is the member limit enforced when adding users to a team.
const MaxTeamSize = 10

// TeamService manages teams and their membership.
type TeamService interface {
	Create(ctx context.Context, name string) (*model.Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	GetByName(ctx context.Context, name string) (*model.Team, error)
	GetAll(ctx context.Context) ([]model.Team, error)
	// UpdateName renames an active team.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*model.Team, error)
	Activate(ctx context.Context, id uuid.UUID) error
	Inactivate(ctx context.Context, id uuid.UUID) error
	// AddUserToTeam assigns a user to a team, subject to MaxTeamSize.
	AddUserToTeam(ctx context.Context, userID, teamID uuid.UUID) error
	// RemoveUserFromTeam detaches a user from the team it belongs to.
	RemoveUserFromTeam(ctx context.Context, userID, teamID uuid.UUID) error
}

type TeamServiceImpl struct {
	teams repository.TeamRepository
	users repository.UserRepository
}

// NewTeamService constructs TeamService.
func NewTeamService(teams repository.TeamRepository, users repository.UserRepository) *TeamServiceImpl {
	return &TeamServiceImpl{teams: teams, users: users}
}

// Create inserts a new active team with the given name.
func (s *TeamServiceImpl) Create(ctx context.Context, name string) (*model.Team, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty team name", errs.ErrInvalidArgument)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	t := &model.Team{ID: id, Name: name, Active: true}
	if err := s.teams.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TeamServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return s.teams.GetByID(ctx, id)
}

func (s *TeamServiceImpl) GetByName(ctx context.Context, name string) (*model.Team, error) {
	return s.teams.GetByName(ctx, name)
}

func (s *TeamServiceImpl) GetAll(ctx context.Context) ([]model.Team, error) {
	return s.teams.GetAll(ctx)
}

// UpdateName renames a team; inactive teams reject updates.
func (s *TeamServiceImpl) UpdateName(ctx context.Context, id uuid.UUID, name string) (*model.Team, error) {
	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, fmt.Errorf("%w: team is inactive", errs.ErrNotAllowed)
	}
	t.Name = name
	if err := s.teams.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TeamServiceImpl) Activate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *TeamServiceImpl) Inactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *TeamServiceImpl) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return err
	}
	t.Active = active
	return s.teams.Save(ctx, t)
}

// AddUserToTeam assigns a user to a team. Both sides must be active and the
// team must have room.
func (s *TeamServiceImpl) AddUserToTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	t, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if !t.Active {
		return fmt.Errorf("%w: team is inactive", errs.ErrNotAllowed)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.Active {
		return fmt.Errorf("%w: user is inactive", errs.ErrNotAllowed)
	}
	n, err := s.teams.CountMembers(ctx, teamID)
	if err != nil {
		return err
	}
	if n >= MaxTeamSize {
		return fmt.Errorf("%w: team already has %d members", errs.ErrMaxQuantity, n)
	}
	u.TeamID = &t.ID
	return s.users.Save(ctx, u)
}

// RemoveUserFromTeam detaches the user if it belongs to the given team.
func (s *TeamServiceImpl) RemoveUserFromTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.TeamID == nil || *u.TeamID != teamID {
		return fmt.Errorf("%w: user is not in the team", errs.ErrNotFound)
	}
	u.TeamID = nil
	return s.users.Save(ctx, u)
}
