package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/model"
)

// TeamRepo implements TeamRepository using PostgreSQL.
type TeamRepo struct{ db *DB }

// NewTeamRepo constructs a team repository.
func NewTeamRepo(db *DB) *TeamRepo { return &TeamRepo{db: db} }

// Create inserts a new team row.
func (r *TeamRepo) Create(ctx context.Context, t *model.Team) error {
	const q = `INSERT INTO teams (id, name, active) VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, t.Name, t.Active)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a team by ID.
func (r *TeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	const q = `SELECT id, name, active, created_at FROM teams WHERE id=$1`
	return r.scanTeam(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByName selects a team by its unique name.
func (r *TeamRepo) GetByName(ctx context.Context, name string) (*model.Team, error) {
	const q = `SELECT id, name, active, created_at FROM teams WHERE name=$1`
	return r.scanTeam(r.db.Pool.QueryRow(ctx, q, name))
}

func (r *TeamRepo) scanTeam(row interface{ Scan(...any) error }) (*model.Team, error) {
	var t model.Team
	if err := row.Scan(&t.ID, &t.Name, &t.Active, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Save updates name and active flag of an existing team.
func (r *TeamRepo) Save(ctx context.Context, t *model.Team) error {
	const q = `UPDATE teams SET name=$2, active=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, t.ID, t.Name, t.Active)
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

// GetAll returns all teams ordered by name.
func (r *TeamRepo) GetAll(ctx context.Context) ([]model.Team, error) {
	const q = `SELECT id, name, active, created_at FROM teams ORDER BY name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Active, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// CountMembers returns the number of users currently in the team.
func (r *TeamRepo) CountMembers(ctx context.Context, teamID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM users WHERE team_id=$1`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, teamID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
