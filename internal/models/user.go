package models

import "time"

// User roles.
const (
	RoleBuyer  = "buyer"
	RoleWorker = "worker"
	RoleAdmin  = "admin"
)

// Starting coin grants applied on first registration.
const (
	StartingCoinsBuyer   = 50
	StartingCoinsDefault = 10
)

// ValidRole reports whether role is one of the platform roles.
func ValidRole(role string) bool {
	return role == RoleBuyer || role == RoleWorker || role == RoleAdmin
}

type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Coin         int       `json:"coin"`
	AvatarURL    string    `json:"image,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
