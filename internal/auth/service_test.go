package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earnstack/backend/internal/ledger"
	"github.com/earnstack/backend/internal/models"
)

type stubUsers struct {
	users map[string]*models.User
}

func (s stubUsers) GetUser(_ context.Context, email string) (*models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return u, nil
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewService(stubUsers{users: map[string]*models.User{
		"buyer@x.com": {Email: "buyer@x.com", Role: models.RoleBuyer},
	}})

	token, err := svc.IssueToken(context.Background(), "buyer@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, role, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "buyer@x.com", email)
	// The role comes from the stored record, never from the caller.
	assert.Equal(t, models.RoleBuyer, role)
}

func TestIssueToken_UnregisteredEmail(t *testing.T) {
	svc := NewService(stubUsers{})

	token, err := svc.IssueToken(context.Background(), "new@x.com")
	require.NoError(t, err)

	email, role, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", email)
	assert.Empty(t, role, "unregistered identities carry no role")
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewService(stubUsers{})
	_, _, err := svc.ValidateToken(context.Background(), "not.a.token")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first_secret")
	issuer := NewService(stubUsers{})
	token, err := issuer.IssueToken(context.Background(), "w@x.com")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second_secret")
	verifier := NewService(stubUsers{})
	_, _, err = verifier.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}
