package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
)

// WorkItemRepo implements WorkItemRepository using PostgreSQL.
type WorkItemRepo struct{ db *DB }

// NewWorkItemRepo constructs a work item repository.
func NewWorkItemRepo(db *DB) *WorkItemRepo { return &WorkItemRepo{db: db} }

const workItemColumns = `id, description, status, completion_date, user_id, issue_id, created_at`

// Create inserts a new work item row.
func (r *WorkItemRepo) Create(ctx context.Context, w *model.WorkItem) error {
	const q = `
INSERT INTO work_items (id, description, status, completion_date, user_id, issue_id)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, w.ID, w.Description, w.Status, w.CompletionDate, w.UserID, w.IssueID)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a work item by ID.
func (r *WorkItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkItem, error) {
	const q = `SELECT ` + workItemColumns + ` FROM work_items WHERE id=$1`
	var w model.WorkItem
	err := r.db.Pool.QueryRow(ctx, q, id).
		Scan(&w.ID, &w.Description, &w.Status, &w.CompletionDate, &w.UserID, &w.IssueID, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// Exists reports whether a work item with the ID exists.
func (r *WorkItemRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM work_items WHERE id=$1)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Save updates mutable fields of an existing work item.
func (r *WorkItemRepo) Save(ctx context.Context, w *model.WorkItem) error {
	const q = `
UPDATE work_items
SET description=$2, status=$3, completion_date=$4, user_id=$5, issue_id=$6
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, w.ID, w.Description, w.Status, w.CompletionDate, w.UserID, w.IssueID)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a work item.
func (r *WorkItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM work_items WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// GetByStatus returns work items in the given status.
func (r *WorkItemRepo) GetByStatus(ctx context.Context, status model.Status) ([]model.WorkItem, error) {
	const q = `SELECT ` + workItemColumns + ` FROM work_items WHERE status=$1 ORDER BY created_at`
	return r.queryWorkItems(ctx, q, status)
}

// GetByTeamID returns work items assigned to users of a team.
func (r *WorkItemRepo) GetByTeamID(ctx context.Context, teamID uuid.UUID) ([]model.WorkItem, error) {
	const q = `
SELECT w.id, w.description, w.status, w.completion_date, w.user_id, w.issue_id, w.created_at
FROM work_items w
JOIN users u ON u.id = w.user_id
WHERE u.team_id = $1
ORDER BY w.created_at`
	return r.queryWorkItems(ctx, q, teamID)
}

// GetByUserID returns work items assigned to a user.
func (r *WorkItemRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.WorkItem, error) {
	const q = `SELECT ` + workItemColumns + ` FROM work_items WHERE user_id=$1 ORDER BY created_at`
	return r.queryWorkItems(ctx, q, userID)
}

// CountByUserID returns the number of work items assigned to a user.
func (r *WorkItemRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM work_items WHERE user_id=$1`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetByDescriptionContains returns work items whose description contains text.
func (r *WorkItemRepo) GetByDescriptionContains(ctx context.Context, text string) ([]model.WorkItem, error) {
	const q = `SELECT ` + workItemColumns + ` FROM work_items WHERE description ILIKE '%' || $1 || '%' ORDER BY created_at`
	return r.queryWorkItems(ctx, q, text)
}

// GetWithIssue returns work items that have an issue attached.
func (r *WorkItemRepo) GetWithIssue(ctx context.Context) ([]model.WorkItem, error) {
	const q = `SELECT ` + workItemColumns + ` FROM work_items WHERE issue_id IS NOT NULL ORDER BY created_at`
	return r.queryWorkItems(ctx, q)
}

// GetCompletedBetween returns work items completed in [from, to].
func (r *WorkItemRepo) GetCompletedBetween(ctx context.Context, from, to time.Time) ([]model.WorkItem, error) {
	const q = `SELECT ` + workItemColumns + ` FROM work_items WHERE completion_date >= $1 AND completion_date <= $2 ORDER BY completion_date`
	return r.queryWorkItems(ctx, q, from, to)
}

// GetCreatedBetween returns work items created in [from, to].
func (r *WorkItemRepo) GetCreatedBetween(ctx context.Context, from, to time.Time) ([]model.WorkItem, error) {
	const q = `SELECT ` + workItemColumns + ` FROM work_items WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at`
	return r.queryWorkItems(ctx, q, from, to)
}

// ResetStatusForUser moves all of a user's items back to UNSTARTED.
func (r *WorkItemRepo) ResetStatusForUser(ctx context.Context, userID uuid.UUID) error {
	const q = `UPDATE work_items SET status=$2, completion_date=NULL WHERE user_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, userID, model.StatusUnstarted)
	return err
}

func (r *WorkItemRepo) queryWorkItems(ctx context.Context, q string, args ...any) ([]model.WorkItem, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.WorkItem
	for rows.Next() {
		var w model.WorkItem
		err := rows.Scan(&w.ID, &w.Description, &w.Status, &w.CompletionDate, &w.UserID, &w.IssueID, &w.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}
