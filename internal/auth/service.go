package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/earnstack/backend/internal/models"
)

// ErrBadCredentials is returned when a supplied password does not match the
// stored hash.
var ErrBadCredentials = errors.New("invalid credentials")

// tokenTTL matches the 7-day lifetime existing clients assume.
const tokenTTL = 7 * 24 * time.Hour

// UserSource resolves the registered user for an identity payload. Roles in
// issued tokens always come from the stored record, never from the client.
type UserSource interface {
	GetUser(ctx context.Context, email string) (*models.User, error)
}

type Service interface {
	IssueToken(ctx context.Context, email string) (string, error)
	ValidateToken(ctx context.Context, token string) (email, role string, err error)
}

type service struct {
	users  UserSource
	secret []byte
}

func NewService(users UserSource) Service {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "earnstack_dev_secret"
	}
	return &service{users: users, secret: []byte(secret)}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IssueToken signs a bearer token for the email. Unregistered identities
// get an empty role; they can re-issue after registering.
func (s *service) IssueToken(ctx context.Context, email string) (string, error) {
	role := ""
	if u, err := s.users.GetUser(ctx, email); err == nil && u != nil {
		role = u.Role
	}
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *service) ValidateToken(_ context.Context, token string) (string, string, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return "", "", errors.New("invalid token")
	}
	return c.Subject, c.Role, nil
}
