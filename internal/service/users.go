package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
	"github.com/thskolan/casetrack/internal/repository"
)

// MinUsernameLength is the shortest username accepted for new users.
const MinUsernameLength = 10

// UserService manages case-management users.
type UserService interface {
	Create(ctx context.Context, userNumber int64, username, firstName, lastName string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUserNumber(ctx context.Context, userNumber int64) (*model.User, error)
	UpdateFirstName(ctx context.Context, id uuid.UUID, firstName string) (*model.User, error)
	UpdateLastName(ctx context.Context, id uuid.UUID, lastName string) (*model.User, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*model.User, error)
	Activate(ctx context.Context, id uuid.UUID) error
	// Inactivate deactivates the user and resets its work items to unstarted.
	Inactivate(ctx context.Context, id uuid.UUID) error
	GetAllByTeamID(ctx context.Context, teamID uuid.UUID) ([]model.User, error)
	Search(ctx context.Context, firstName, lastName, username string) ([]model.User, error)
	GetByCreationDate(ctx context.Context, from, to time.Time) ([]model.User, error)
}

type UserServiceImpl struct {
	users repository.UserRepository
	items repository.WorkItemRepository
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository, items repository.WorkItemRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users, items: items}
}

// Create inserts a new active user. Usernames shorter than
// MinUsernameLength are rejected.
func (s *UserServiceImpl) Create(ctx context.Context, userNumber int64, username, firstName, lastName string) (*model.User, error) {
	if len(username) < MinUsernameLength {
		return nil, fmt.Errorf("%w: username must be at least %d characters", errs.ErrInvalidArgument, MinUsernameLength)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:         id,
		UserNumber: userNumber,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Active:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserServiceImpl) GetByUserNumber(ctx context.Context, userNumber int64) (*model.User, error) {
	return s.users.GetByUserNumber(ctx, userNumber)
}

// UpdateFirstName changes the first name of an active user.
func (s *UserServiceImpl) UpdateFirstName(ctx context.Context, id uuid.UUID, firstName string) (*model.User, error) {
	return s.update(ctx, id, func(u *model.User) error {
		u.FirstName = firstName
		return nil
	})
}

// UpdateLastName changes the last name of an active user.
func (s *UserServiceImpl) UpdateLastName(ctx context.Context, id uuid.UUID, lastName string) (*model.User, error) {
	return s.update(ctx, id, func(u *model.User) error {
		u.LastName = lastName
		return nil
	})
}

// UpdateUsername changes the username of an active user; length rules apply
// the same way as on Create.
func (s *UserServiceImpl) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*model.User, error) {
	return s.update(ctx, id, func(u *model.User) error {
		if len(username) < MinUsernameLength {
			return fmt.Errorf("%w: username must be at least %d characters", errs.ErrInvalidArgument, MinUsernameLength)
		}
		u.Username = username
		return nil
	})
}

func (s *UserServiceImpl) update(ctx context.Context, id uuid.UUID, mutate func(*model.User) error) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, fmt.Errorf("%w: user is inactive", errs.ErrNotAllowed)
	}
	if err := mutate(u); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserServiceImpl) Activate(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Active = true
	return s.users.Save(ctx, u)
}

// Inactivate deactivates the user and moves all of its work items back to
// unstarted.
func (s *UserServiceImpl) Inactivate(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Active = false
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}
	return s.items.ResetStatusForUser(ctx, u.ID)
}

func (s *UserServiceImpl) GetAllByTeamID(ctx context.Context, teamID uuid.UUID) ([]model.User, error) {
	return s.users.GetAllByTeamID(ctx, teamID)
}

func (s *UserServiceImpl) Search(ctx context.Context, firstName, lastName, username string) ([]model.User, error) {
	return s.users.Search(ctx, firstName, lastName, username)
}

func (s *UserServiceImpl) GetByCreationDate(ctx context.Context, from, to time.Time) ([]model.User, error) {
	return s.users.GetByCreationDate(ctx, from, to)
}
