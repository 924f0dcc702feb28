package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
)

func newWorkItemFixture() (*WorkItemServiceImpl, *fakeWorkItemRepo, *fakeUserRepo, *fakeIssueRepo) {
	users := newFakeUserRepo()
	items := newFakeWorkItemRepo(users)
	issues := newFakeIssueRepo()
	return NewWorkItemService(items, users, issues), items, users, issues
}

func TestWorkItem_CreateAndRemove(t *testing.T) {
	t.Parallel()
	s, _, _, _ := newWorkItemFixture()

	if _, err := s.Create(context.Background(), ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument on empty description, got %v", err)
	}

	w, err := s.Create(context.Background(), "write report")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.Status != model.StatusUnstarted || w.UserID != nil || w.CompletionDate != nil {
		t.Fatalf("bad new item: %+v", w)
	}

	ok, err := s.Exists(context.Background(), w.ID)
	if err != nil || !ok {
		t.Fatalf("Exists: %v %v", ok, err)
	}

	if err := s.RemoveByID(context.Background(), w.ID); err != nil {
		t.Fatalf("RemoveByID: %v", err)
	}
	if err := s.RemoveByID(context.Background(), w.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound on second remove, got %v", err)
	}
}

func TestWorkItem_SetStatus_StampsCompletion(t *testing.T) {
	t.Parallel()
	s, _, _, _ := newWorkItemFixture()
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	w, err := s.Create(context.Background(), "write report")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.SetStatus(context.Background(), w.ID, model.StatusStarted)
	if err != nil || got.Status != model.StatusStarted || got.CompletionDate != nil {
		t.Fatalf("SetStatus started: %+v, %v", got, err)
	}

	got, err = s.SetStatus(context.Background(), w.ID, model.StatusDone)
	if err != nil {
		t.Fatalf("SetStatus done: %v", err)
	}
	if got.CompletionDate == nil || !got.CompletionDate.Equal(now) {
		t.Fatalf("completion date not stamped: %+v", got)
	}

	got, err = s.SetStatus(context.Background(), w.ID, model.StatusUnstarted)
	if err != nil || got.CompletionDate != nil {
		t.Fatalf("completion date must clear when leaving done: %+v, %v", got, err)
	}
}

func TestWorkItem_SetUser_Limits(t *testing.T) {
	t.Parallel()
	s, items, users, _ := newWorkItemFixture()

	u := seedUser(t, users, 42, "the-assignee")

	if _, err := s.SetUser(context.Background(), 999, uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown user number, got %v", err)
	}

	w, err := s.Create(context.Background(), "task zero")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.SetUser(context.Background(), 42, w.ID)
	if err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if got.UserID == nil || *got.UserID != u.ID {
		t.Fatalf("item not assigned: %+v", got)
	}

	for i := 1; i < MaxItemsPerUser; i++ {
		wi, err := s.Create(context.Background(), "more work")
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if _, err := s.SetUser(context.Background(), 42, wi.ID); err != nil {
			t.Fatalf("SetUser %d: %v", i, err)
		}
	}

	overflow, err := s.Create(context.Background(), "one too many")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.SetUser(context.Background(), 42, overflow.ID); !errors.Is(err, errs.ErrMaxQuantity) {
		t.Fatalf("want ErrMaxQuantity, got %v", err)
	}

	u.Active = false
	_ = users.Save(context.Background(), u)
	if _, err := s.SetUser(context.Background(), 42, overflow.ID); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("want ErrNotAllowed for inactive user, got %v", err)
	}

	assigned, err := s.GetByUserNumber(context.Background(), 42)
	if err != nil || len(assigned) != MaxItemsPerUser {
		t.Fatalf("GetByUserNumber: %d items, %v", len(assigned), err)
	}
	n, _ := items.CountByUserID(context.Background(), u.ID)
	if n != MaxItemsPerUser {
		t.Fatalf("count = %d", n)
	}
}

func TestWorkItem_AddIssue_OnlyDone(t *testing.T) {
	t.Parallel()
	s, _, _, issues := newWorkItemFixture()
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	issue := &model.Issue{ID: uuid.Must(uuid.NewV4()), Description: "crash on save", Active: true}
	_ = issues.Create(context.Background(), issue)

	w, err := s.Create(context.Background(), "save feature")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := s.AddIssueToWorkItem(context.Background(), issue.ID, w.ID); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("want ErrNotAllowed for non-done item, got %v", err)
	}
	if _, err := s.AddIssueToWorkItem(context.Background(), uuid.Must(uuid.NewV4()), w.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown issue, got %v", err)
	}

	if _, err := s.SetStatus(context.Background(), w.ID, model.StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := s.AddIssueToWorkItem(context.Background(), issue.ID, w.ID)
	if err != nil {
		t.Fatalf("AddIssueToWorkItem: %v", err)
	}
	if got.IssueID == nil || *got.IssueID != issue.ID {
		t.Fatalf("issue not attached: %+v", got)
	}
	if got.Status != model.StatusUnstarted || got.CompletionDate != nil {
		t.Fatalf("item must reopen on issue attach: %+v", got)
	}

	withIssue, err := s.GetAllWithIssue(context.Background())
	if err != nil || len(withIssue) != 1 {
		t.Fatalf("GetAllWithIssue: %+v, %v", withIssue, err)
	}
}

func TestWorkItem_AddIssue_SecondIssueRejected(t *testing.T) {
	t.Parallel()
	s, _, _, issues := newWorkItemFixture()
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	first := &model.Issue{ID: uuid.Must(uuid.NewV4()), Description: "crash on save", Active: true}
	second := &model.Issue{ID: uuid.Must(uuid.NewV4()), Description: "crash on load", Active: true}
	_ = issues.Create(context.Background(), first)
	_ = issues.Create(context.Background(), second)

	w, err := s.Create(context.Background(), "save feature")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.SetStatus(context.Background(), w.ID, model.StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if _, err := s.AddIssueToWorkItem(context.Background(), first.ID, w.ID); err != nil {
		t.Fatalf("AddIssueToWorkItem: %v", err)
	}

	// Attaching reopened the item; finish it again so only the occupied
	// issue slot stands in the way.
	if _, err := s.SetStatus(context.Background(), w.ID, model.StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if _, err := s.AddIssueToWorkItem(context.Background(), second.ID, w.ID); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("want ErrNotAllowed when an issue is already attached, got %v", err)
	}
	got, _ := s.GetByID(context.Background(), w.ID)
	if got.IssueID == nil || *got.IssueID != first.ID {
		t.Fatalf("existing issue must stay attached: %+v", got)
	}
}

func TestWorkItem_RemoveIssue_DeletesIssue(t *testing.T) {
	t.Parallel()
	s, _, _, issues := newWorkItemFixture()

	issue := &model.Issue{ID: uuid.Must(uuid.NewV4()), Description: "crash on save", Active: true}
	_ = issues.Create(context.Background(), issue)

	w, err := s.Create(context.Background(), "save feature")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.RemoveIssueFromWorkItem(context.Background(), w.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound without issue, got %v", err)
	}

	if _, err := s.SetStatus(context.Background(), w.ID, model.StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if _, err := s.AddIssueToWorkItem(context.Background(), issue.ID, w.ID); err != nil {
		t.Fatalf("AddIssueToWorkItem: %v", err)
	}

	got, err := s.RemoveIssueFromWorkItem(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("RemoveIssueFromWorkItem: %v", err)
	}
	if got.IssueID != nil {
		t.Fatalf("issue still attached: %+v", got)
	}
	if ok, _ := issues.Exists(context.Background(), issue.ID); ok {
		t.Fatalf("issue must be deleted with detachment")
	}
}

func TestWorkItem_Queries(t *testing.T) {
	t.Parallel()
	s, _, users, _ := newWorkItemFixture()
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	teamID := uuid.Must(uuid.NewV4())
	u := seedUser(t, users, 42, "the-assignee")
	u.TeamID = &teamID
	_ = users.Save(context.Background(), u)

	a, _ := s.Create(context.Background(), "fix the login page")
	if _, err := s.Create(context.Background(), "update docs"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.SetUser(context.Background(), 42, a.ID); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if _, err := s.SetStatus(context.Background(), a.ID, model.StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	done, err := s.GetByStatus(context.Background(), model.StatusDone)
	if err != nil || len(done) != 1 || done[0].ID != a.ID {
		t.Fatalf("GetByStatus: %+v, %v", done, err)
	}

	byTeam, err := s.GetByTeamID(context.Background(), teamID)
	if err != nil || len(byTeam) != 1 || byTeam[0].ID != a.ID {
		t.Fatalf("GetByTeamID: %+v, %v", byTeam, err)
	}

	byDesc, err := s.GetByDescriptionContains(context.Background(), "login")
	if err != nil || len(byDesc) != 1 || byDesc[0].ID != a.ID {
		t.Fatalf("GetByDescriptionContains: %+v, %v", byDesc, err)
	}

	completed, err := s.GetCompletedBetween(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil || len(completed) != 1 {
		t.Fatalf("GetCompletedBetween: %+v, %v", completed, err)
	}
}
