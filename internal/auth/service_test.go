package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retakehq/retake/internal/user"
)

func newService() (*Service, *MemorySessions) {
	sessions := NewMemorySessions()
	return NewService(user.NewMemoryRepository(), sessions, nil), sessions
}

func TestSignup(t *testing.T) {
	svc, sessions := newService()
	ctx := context.Background()

	u, token, err := svc.Signup(ctx, "a@example.com", "hunter22", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "hunter22", u.PasswordHash)
	assert.Equal(t, "10.0.0.1", u.LastLoginIP)

	// The returned token resolves to the new user.
	userID, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "a@example.com", "hunter22", "")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "a@example.com", "different", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, sessions := newService()
	ctx := context.Background()

	signedUp, _, err := svc.Signup(ctx, "a@example.com", "hunter22", "")
	require.NoError(t, err)

	u, token, err := svc.Login(ctx, "a@example.com", "hunter22", "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, signedUp.ID, u.ID)
	assert.Equal(t, "10.0.0.2", u.LastLoginIP)

	userID, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "a@example.com", "hunter22", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "not it", "")
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newService()

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever", "")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestLogout(t *testing.T) {
	svc, sessions := newService()
	ctx := context.Background()

	_, token, err := svc.Signup(ctx, "a@example.com", "hunter22", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessions_UnknownToken(t *testing.T) {
	sessions := NewMemorySessions()

	_, err := sessions.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Destroying an unknown token is a no-op.
	assert.NoError(t, sessions.Destroy(context.Background(), "nope"))
}
