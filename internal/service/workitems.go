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

// MaxItemsPerUser is the work item limit per assignee.
const MaxItemsPerUser = 5

// WorkItemService manages work items, their assignment and attached issues.
type WorkItemService interface {
	Create(ctx context.Context, description string) (*model.WorkItem, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.WorkItem, error)
	RemoveByID(ctx context.Context, id uuid.UUID) error
	// SetStatus updates an item's status; moving to done stamps the
	// completion date, leaving done clears it.
	SetStatus(ctx context.Context, id uuid.UUID, status model.Status) (*model.WorkItem, error)
	// SetUser assigns the item to the user with the given number, subject to
	// MaxItemsPerUser.
	SetUser(ctx context.Context, userNumber int64, workItemID uuid.UUID) (*model.WorkItem, error)
	// AddIssueToWorkItem attaches an issue to a done item and reopens it.
	AddIssueToWorkItem(ctx context.Context, issueID, workItemID uuid.UUID) (*model.WorkItem, error)
	// RemoveIssueFromWorkItem detaches the issue and deletes it.
	RemoveIssueFromWorkItem(ctx context.Context, workItemID uuid.UUID) (*model.WorkItem, error)
	GetByStatus(ctx context.Context, status model.Status) ([]model.WorkItem, error)
	GetByTeamID(ctx context.Context, teamID uuid.UUID) ([]model.WorkItem, error)
	GetByUserNumber(ctx context.Context, userNumber int64) ([]model.WorkItem, error)
	GetByDescriptionContains(ctx context.Context, text string) ([]model.WorkItem, error)
	GetAllWithIssue(ctx context.Context) ([]model.WorkItem, error)
	GetCompletedBetween(ctx context.Context, from, to time.Time) ([]model.WorkItem, error)
	GetCreatedBetween(ctx context.Context, from, to time.Time) ([]model.WorkItem, error)
}

type WorkItemServiceImpl struct {
	items  repository.WorkItemRepository
	users  repository.UserRepository
	issues repository.IssueRepository
	now    func() time.Time
}

// NewWorkItemService constructs WorkItemService.
func NewWorkItemService(items repository.WorkItemRepository, users repository.UserRepository, issues repository.IssueRepository) *WorkItemServiceImpl {
	return &WorkItemServiceImpl{items: items, users: users, issues: issues, now: time.Now}
}

// Create inserts a new unstarted, unassigned work item.
func (s *WorkItemServiceImpl) Create(ctx context.Context, description string) (*model.WorkItem, error) {
	if description == "" {
		return nil, fmt.Errorf("%w: empty description", errs.ErrInvalidArgument)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	w := &model.WorkItem{ID: id, Description: description, Status: model.StatusUnstarted}
	if err := s.items.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WorkItemServiceImpl) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.items.Exists(ctx, id)
}

func (s *WorkItemServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *WorkItemServiceImpl) RemoveByID(ctx context.Context, id uuid.UUID) error {
	return s.items.Delete(ctx, id)
}

// SetStatus moves an item to the given status. Done stamps the completion
// date; any other status clears it.
func (s *WorkItemServiceImpl) SetStatus(ctx context.Context, id uuid.UUID, status model.Status) (*model.WorkItem, error) {
	w, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Status = status
	if status == model.StatusDone {
		done := s.now()
		w.CompletionDate = &done
	} else {
		w.CompletionDate = nil
	}
	if err := s.items.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// SetUser assigns the item to the user with the given number. Inactive users
// cannot take items, and nobody holds more than MaxItemsPerUser.
func (s *WorkItemServiceImpl) SetUser(ctx context.Context, userNumber int64, workItemID uuid.UUID) (*model.WorkItem, error) {
	u, err := s.users.GetByUserNumber(ctx, userNumber)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, fmt.Errorf("%w: user is inactive", errs.ErrNotAllowed)
	}
	n, err := s.items.CountByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if n >= MaxItemsPerUser {
		return nil, fmt.Errorf("%w: user already has %d work items", errs.ErrMaxQuantity, n)
	}
	w, err := s.items.GetByID(ctx, workItemID)
	if err != nil {
		return nil, err
	}
	w.UserID = &u.ID
	if err := s.items.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// AddIssueToWorkItem attaches an issue to a done work item and moves the item
// back to unstarted.
func (s *WorkItemServiceImpl) AddIssueToWorkItem(ctx context.Context, issueID, workItemID uuid.UUID) (*model.WorkItem, error) {
	i, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	w, err := s.items.GetByID(ctx, workItemID)
	if err != nil {
		return nil, err
	}
	if w.Status != model.StatusDone {
		return nil, fmt.Errorf("%w: issues attach only to done work items", errs.ErrNotAllowed)
	}
	if w.IssueID != nil {
		return nil, fmt.Errorf("%w: remove the existing issue to make place for a new one", errs.ErrNotAllowed)
	}
	w.IssueID = &i.ID
	w.Status = model.StatusUnstarted
	w.CompletionDate = nil
	if err := s.items.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// RemoveIssueFromWorkItem detaches the item's issue and deletes the issue.
func (s *WorkItemServiceImpl) RemoveIssueFromWorkItem(ctx context.Context, workItemID uuid.UUID) (*model.WorkItem, error) {
	w, err := s.items.GetByID(ctx, workItemID)
	if err != nil {
		return nil, err
	}
	if w.IssueID == nil {
		return nil, fmt.Errorf("%w: work item has no issue", errs.ErrNotFound)
	}
	issueID := *w.IssueID
	w.IssueID = nil
	if err := s.items.Save(ctx, w); err != nil {
		return nil, err
	}
	if err := s.issues.Delete(ctx, issueID); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WorkItemServiceImpl) GetByStatus(ctx context.Context, status model.Status) ([]model.WorkItem, error) {
	return s.items.GetByStatus(ctx, status)
}

func (s *WorkItemServiceImpl) GetByTeamID(ctx context.Context, teamID uuid.UUID) ([]model.WorkItem, error) {
	return s.items.GetByTeamID(ctx, teamID)
}

// GetByUserNumber returns the items assigned to the user with the number.
func (s *WorkItemServiceImpl) GetByUserNumber(ctx context.Context, userNumber int64) ([]model.WorkItem, error) {
	u, err := s.users.GetByUserNumber(ctx, userNumber)
	if err != nil {
		return nil, err
	}
	return s.items.GetByUserID(ctx, u.ID)
}

func (s *WorkItemServiceImpl) GetByDescriptionContains(ctx context.Context, text string) ([]model.WorkItem, error) {
	return s.items.GetByDescriptionContains(ctx, text)
}

func (s *WorkItemServiceImpl) GetAllWithIssue(ctx context.Context) ([]model.WorkItem, error) {
	return s.items.GetWithIssue(ctx)
}

func (s *WorkItemServiceImpl) GetCompletedBetween(ctx context.Context, from, to time.Time) ([]model.WorkItem, error) {
	return s.items.GetCompletedBetween(ctx, from, to)
}

func (s *WorkItemServiceImpl) GetCreatedBetween(ctx context.Context, from, to time.Time) ([]model.WorkItem, error) {
	return s.items.GetCreatedBetween(ctx, from, to)
}
