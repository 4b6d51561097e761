package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retakehq/retake/internal/user"
)

// Static errors for authentication failures.
var (
	// ErrEmailExists is returned when signing up with a taken email.
	ErrEmailExists = errors.New("auth: email already exists")
	// ErrIncorrectPassword is returned when login credentials do not match.
	ErrIncorrectPassword = errors.New("auth: incorrect password")
)

// Service handles signup and login, issuing a session on success.
type Service struct {
	users    user.Repository
	sessions SessionStore
	logger   *slog.Logger
}

// NewService creates a new auth Service.
func NewService(users user.Repository, sessions SessionStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// Signup registers a new account and opens a session for it.
// Returns ErrEmailExists when the email is already registered.
func (s *Service) Signup(ctx context.Context, email, password, ip string) (*user.User, string, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailExists
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}

	hash, err := user.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := user.New(email, hash)
	u.LastLogin = time.Now().UTC()
	u.LastLoginIP = ip
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("open session: %w", err)
	}

	s.logger.Info("user signed up",
		slog.String("user_id", u.ID),
	)

	return u, token, nil
}

// Login verifies credentials and opens a session.
// Returns user.ErrUserNotFound or ErrIncorrectPassword on failure.
func (s *Service) Login(ctx context.Context, email, password, ip string) (*user.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if !user.VerifyPassword(u.PasswordHash, password) {
		return nil, "", ErrIncorrectPassword
	}

	u.LastLogin = time.Now().UTC()
	u.LastLoginIP = ip
	if err := s.users.Update(ctx, u); err != nil {
		return nil, "", fmt.Errorf("update last login: %w", err)
	}

	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("open session: %w", err)
	}

	return u, token, nil
}

// Logout invalidates a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}
