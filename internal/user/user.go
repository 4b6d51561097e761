// Package user provides the account record and its persistence interface.
// Users are plain data records; password hashing lives in free functions.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user cannot be found.
var ErrUserNotFound = errors.New("user not found")

// User is an account record.
type User struct {
	// ID is the unique identifier for this user.
	ID string
	// DateCreated is when the account was created.
	DateCreated time.Time
	// Email is the login identifier, unique per account.
	Email string
	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string
	// FirstName is optional profile data.
	FirstName string
	// LastName is optional profile data.
	LastName string
	// LastLogin is when the user last authenticated.
	LastLogin time.Time
	// LastLoginIP is the address the user last authenticated from.
	LastLoginIP string
}

// New creates a User with a generated ID.
func New(email, passwordHash string) *User {
	return &User{
		ID:           uuid.NewString(),
		DateCreated:  time.Now().UTC(),
		Email:        email,
		PasswordHash: passwordHash,
	}
}

// Repository defines the interface for user persistence.
type Repository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *User) error

	// Update persists changes to an existing user.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *User) error

	// FindByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail retrieves a user by email.
	// Returns ErrUserNotFound if the user does not exist.
	FindByEmail(ctx context.Context, email string) (*User, error)
}
