package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
)

// IssueRepo implements IssueRepository using PostgreSQL.
type IssueRepo struct{ db *DB }

// NewIssueRepo constructs an issue repository.
func NewIssueRepo(db *DB) *IssueRepo { return &IssueRepo{db: db} }

// Create inserts a new issue row.
func (r *IssueRepo) Create(ctx context.Context, i *model.Issue) error {
	const q = `INSERT INTO issues (id, description, active) VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, i.ID, i.Description, i.Active)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects an issue by ID.
func (r *IssueRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error) {
	const q = `SELECT id, description, active, created_at FROM issues WHERE id=$1`
	var i model.Issue
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&i.ID, &i.Description, &i.Active, &i.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// Exists reports whether an issue with the ID exists.
func (r *IssueRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM issues WHERE id=$1)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Save updates description and active flag of an existing issue.
func (r *IssueRepo) Save(ctx context.Context, i *model.Issue) error {
	const q = `UPDATE issues SET description=$2, active=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, i.ID, i.Description, i.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes an issue.
func (r *IssueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM issues WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// GetByDescription returns issues with the exact description.
func (r *IssueRepo) GetByDescription(ctx context.Context, description string) ([]model.Issue, error) {
	const q = `SELECT id, description, active, created_at FROM issues WHERE description=$1 ORDER BY created_at`
	rows, err := r.db.Pool.Query(ctx, q, description)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []model.Issue
	for rows.Next() {
		var i model.Issue
		if err := rows.Scan(&i.ID, &i.Description, &i.Active, &i.CreatedAt); err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}
