package models

import (
	"time"
)

// Role identifies which side of the marketplace a principal belongs to.
type Role string

const (
	RoleIndustry Role = "industry"
	RoleStartup  Role = "startup"
)

// Valid returns true if the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleIndustry || r == RoleStartup
}

// Principal represents an authenticated account. The role lives on the stored
// profile record, never inside the session token, so a request can carry a
// verified principal id before the role is known.
type Principal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignupRequest represents an account creation request.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token     string     `json:"token"`
	Principal *Principal `json:"principal"`
}
