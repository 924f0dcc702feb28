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

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, user_number, username, first_name, last_name, team_id, active, created_at`

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, user_number, username, first_name, last_name, team_id, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.UserNumber, u.Username, u.FirstName, u.LastName, u.TeamID, u.Active)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUserNumber selects a user by its unique external number.
func (r *UserRepo) GetByUserNumber(ctx context.Context, userNumber int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE user_number=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, userNumber))
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.UserNumber, &u.Username, &u.FirstName, &u.LastName, &u.TeamID, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Save updates mutable fields of an existing user.
func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	const q = `
UPDATE users
SET username=$2, first_name=$3, last_name=$4, team_id=$5, active=$6
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.FirstName, u.LastName, u.TeamID, u.Active)
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

// GetAllByTeamID returns all users in a team.
func (r *UserRepo) GetAllByTeamID(ctx context.Context, teamID uuid.UUID) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE team_id=$1 ORDER BY user_number`
	return r.queryUsers(ctx, q, teamID)
}

// Search returns users matching any combination of name fields. Empty
// criteria match everything for that field.
func (r *UserRepo) Search(ctx context.Context, firstName, lastName, username string) ([]model.User, error) {
	const q = `
SELECT ` + userColumns + ` FROM users
WHERE first_name ILIKE '%' || $1 || '%'
  AND last_name ILIKE '%' || $2 || '%'
  AND username ILIKE '%' || $3 || '%'
ORDER BY user_number`
	return r.queryUsers(ctx, q, firstName, lastName, username)
}

// GetByCreationDate returns users created in [from, to].
func (r *UserRepo) GetByCreationDate(ctx context.Context, from, to time.Time) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at`
	return r.queryUsers(ctx, q, from, to)
}

func (r *UserRepo) queryUsers(ctx context.Context, q string, args ...any) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.UserNumber, &u.Username, &u.FirstName, &u.LastName, &u.TeamID, &u.Active, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
