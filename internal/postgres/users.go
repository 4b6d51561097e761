package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/retakehq/retake/internal/user"
)

// Compile-time check that UserRepository implements user.Repository.
var _ user.Repository = (*UserRepository)(nil)

// UserRepository persists users in the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a Postgres-backed user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, date_created, email, password_hash, first_name, last_name, last_login, last_login_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID,
		u.DateCreated,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		nullableTime(u.LastLogin),
		u.LastLoginIP,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, password_hash = $3, first_name = $4, last_name = $5, last_login = $6, last_login_ip = $7
		WHERE id = $1`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		nullableTime(u.LastLogin),
		u.LastLoginIP,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res, user.ErrUserNotFound)
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByEmail retrieves a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

// findOne loads a single user matching the filter clause.
func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*user.User, error) {
	u := &user.User{}
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, date_created, email, password_hash, first_name, last_name, last_login, last_login_ip
		FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.DateCreated,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&lastLogin,
		&u.LastLoginIP,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.LastLogin = lastLogin.Time
	return u, nil
}
