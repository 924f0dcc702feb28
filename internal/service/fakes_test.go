package service

// In-memory repositories shared by the case-management service tests.

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
	"github.com/thskolan/casetrack/internal/repository"
)

type fakeTeamRepo struct {
	byID  map[uuid.UUID]*model.Team
	users *fakeUserRepo

	saveErr error
}

var _ repository.TeamRepository = (*fakeTeamRepo)(nil)

func newFakeTeamRepo(users *fakeUserRepo) *fakeTeamRepo {
	return &fakeTeamRepo{byID: map[uuid.UUID]*model.Team{}, users: users}
}

func (f *fakeTeamRepo) Create(_ context.Context, t *model.Team) error {
	for _, existing := range f.byID {
		if existing.Name == t.Name {
			return errs.ErrAlreadyExists
		}
	}
	cpy := *t
	f.byID[t.ID] = &cpy
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Team, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *t
	return &cpy, nil
}

func (f *fakeTeamRepo) GetByName(_ context.Context, name string) (*model.Team, error) {
	for _, t := range f.byID {
		if t.Name == name {
			cpy := *t
			return &cpy, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeTeamRepo) Save(_ context.Context, t *model.Team) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[t.ID]; !ok {
		return errs.ErrNotFound
	}
	cpy := *t
	f.byID[t.ID] = &cpy
	return nil
}

func (f *fakeTeamRepo) GetAll(_ context.Context) ([]model.Team, error) {
	out := make([]model.Team, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTeamRepo) CountMembers(_ context.Context, teamID uuid.UUID) (int, error) {
	n := 0
	for _, u := range f.users.byID {
		if u.TeamID != nil && *u.TeamID == teamID {
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	byID map[uuid.UUID]*model.User

	saveErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.byID {
		if existing.Username == u.Username || existing.UserNumber == u.UserNumber {
			return errs.ErrAlreadyExists
		}
	}
	cpy := *u
	f.byID[u.ID] = &cpy
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *u
	return &cpy, nil
}

func (f *fakeUserRepo) GetByUserNumber(_ context.Context, userNumber int64) (*model.User, error) {
	for _, u := range f.byID {
		if u.UserNumber == userNumber {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserRepo) Save(_ context.Context, u *model.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return errs.ErrNotFound
	}
	cpy := *u
	f.byID[u.ID] = &cpy
	return nil
}

func (f *fakeUserRepo) GetAllByTeamID(_ context.Context, teamID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range f.byID {
		if u.TeamID != nil && *u.TeamID == teamID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserNumber < out[j].UserNumber })
	return out, nil
}

func (f *fakeUserRepo) Search(_ context.Context, firstName, lastName, username string) ([]model.User, error) {
	var out []model.User
	for _, u := range f.byID {
		if strings.Contains(u.FirstName, firstName) &&
			strings.Contains(u.LastName, lastName) &&
			strings.Contains(u.Username, username) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByCreationDate(_ context.Context, from, to time.Time) ([]model.User, error) {
	var out []model.User
	for _, u := range f.byID {
		if !u.CreatedAt.Before(from) && !u.CreatedAt.After(to) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeWorkItemRepo struct {
	byID  map[uuid.UUID]*model.WorkItem
	users *fakeUserRepo

	resetCalls int
}

var _ repository.WorkItemRepository = (*fakeWorkItemRepo)(nil)

func newFakeWorkItemRepo(users *fakeUserRepo) *fakeWorkItemRepo {
	return &fakeWorkItemRepo{byID: map[uuid.UUID]*model.WorkItem{}, users: users}
}

func (f *fakeWorkItemRepo) Create(_ context.Context, w *model.WorkItem) error {
	cpy := *w
	f.byID[w.ID] = &cpy
	return nil
}

func (f *fakeWorkItemRepo) GetByID(_ context.Context, id uuid.UUID) (*model.WorkItem, error) {
	w, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *w
	return &cpy, nil
}

func (f *fakeWorkItemRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeWorkItemRepo) Save(_ context.Context, w *model.WorkItem) error {
	if _, ok := f.byID[w.ID]; !ok {
		return errs.ErrNotFound
	}
	cpy := *w
	f.byID[w.ID] = &cpy
	return nil
}

func (f *fakeWorkItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeWorkItemRepo) GetByStatus(_ context.Context, status model.Status) ([]model.WorkItem, error) {
	var out []model.WorkItem
	for _, w := range f.byID {
		if w.Status == status {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkItemRepo) GetByTeamID(_ context.Context, teamID uuid.UUID) ([]model.WorkItem, error) {
	var out []model.WorkItem
	for _, w := range f.byID {
		if w.UserID == nil {
			continue
		}
		u, ok := f.users.byID[*w.UserID]
		if ok && u.TeamID != nil && *u.TeamID == teamID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkItemRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]model.WorkItem, error) {
	var out []model.WorkItem
	for _, w := range f.byID {
		if w.UserID != nil && *w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkItemRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, w := range f.byID {
		if w.UserID != nil && *w.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeWorkItemRepo) GetByDescriptionContains(_ context.Context, text string) ([]model.WorkItem, error) {
	var out []model.WorkItem
	for _, w := range f.byID {
		if strings.Contains(w.Description, text) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkItemRepo) GetWithIssue(_ context.Context) ([]model.WorkItem, error) {
	var out []model.WorkItem
	for _, w := range f.byID {
		if w.IssueID != nil {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkItemRepo) GetCompletedBetween(_ context.Context, from, to time.Time) ([]model.WorkItem, error) {
	var out []model.WorkItem
	for _, w := range f.byID {
		if w.CompletionDate != nil && !w.CompletionDate.Before(from) && !w.CompletionDate.After(to) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkItemRepo) GetCreatedBetween(_ context.Context, from, to time.Time) ([]model.WorkItem, error) {
	var out []model.WorkItem
	for _, w := range f.byID {
		if !w.CreatedAt.Before(from) && !w.CreatedAt.After(to) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWorkItemRepo) ResetStatusForUser(_ context.Context, userID uuid.UUID) error {
	f.resetCalls++
	for _, w := range f.byID {
		if w.UserID != nil && *w.UserID == userID {
			w.Status = model.StatusUnstarted
			w.CompletionDate = nil
		}
	}
	return nil
}

type fakeIssueRepo struct {
	byID map[uuid.UUID]*model.Issue
}

var _ repository.IssueRepository = (*fakeIssueRepo)(nil)

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{byID: map[uuid.UUID]*model.Issue{}}
}

func (f *fakeIssueRepo) Create(_ context.Context, i *model.Issue) error {
	cpy := *i
	f.byID[i.ID] = &cpy
	return nil
}

func (f *fakeIssueRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Issue, error) {
	i, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *i
	return &cpy, nil
}

func (f *fakeIssueRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeIssueRepo) Save(_ context.Context, i *model.Issue) error {
	if _, ok := f.byID[i.ID]; !ok {
		return errs.ErrNotFound
	}
	cpy := *i
	f.byID[i.ID] = &cpy
	return nil
}

func (f *fakeIssueRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeIssueRepo) GetByDescription(_ context.Context, description string) ([]model.Issue, error) {
	var out []model.Issue
	for _, i := range f.byID {
		if i.Description == description {
			out = append(out, *i)
		}
	}
	return out, nil
}
