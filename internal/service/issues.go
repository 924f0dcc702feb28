package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
	"github.com/thskolan/casetrack/internal/repository"
)

// IssueService manages issues reported against done work items.
type IssueService interface {
	Create(ctx context.Context, description string) (*model.Issue, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error)
	GetByDescription(ctx context.Context, description string) ([]model.Issue, error)
	// UpdateDescription rewords an active issue.
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*model.Issue, error)
	Activate(ctx context.Context, id uuid.UUID) error
	Inactivate(ctx context.Context, id uuid.UUID) error
}

type IssueServiceImpl struct {
	issues repository.IssueRepository
}

// NewIssueService constructs IssueService.
func NewIssueService(issues repository.IssueRepository) *IssueServiceImpl {
	return &IssueServiceImpl{issues: issues}
}

// Create inserts a new active issue.
func (s *IssueServiceImpl) Create(ctx context.Context, description string) (*model.Issue, error) {
	if description == "" {
		return nil, fmt.Errorf("%w: empty description", errs.ErrInvalidArgument)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	i := &model.Issue{ID: id, Description: description, Active: true}
	if err := s.issues.Create(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *IssueServiceImpl) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.issues.Exists(ctx, id)
}

func (s *IssueServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error) {
	return s.issues.GetByID(ctx, id)
}

func (s *IssueServiceImpl) GetByDescription(ctx context.Context, description string) ([]model.Issue, error) {
	return s.issues.GetByDescription(ctx, description)
}

// UpdateDescription rewords an issue; inactive issues reject updates.
func (s *IssueServiceImpl) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*model.Issue, error) {
	i, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !i.Active {
		return nil, fmt.Errorf("%w: issue is inactive", errs.ErrNotAllowed)
	}
	i.Description = description
	if err := s.issues.Save(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *IssueServiceImpl) Activate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *IssueServiceImpl) Inactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *IssueServiceImpl) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	i, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return err
	}
	i.Active = active
	return s.issues.Save(ctx, i)
}
