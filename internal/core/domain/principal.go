package domain

import (
	"errors"
	"time"
)

const (
	RoleCitizen   = "citizen"
	RoleAuthority = "authority"
)

var ErrValidation = errors.New("invalid input")
var ErrDuplicateEmail = errors.New("email already registered")
var ErrPrincipalNotFound = errors.New("principal not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrStoreUnavailable = errors.New("store unavailable")

// Principal models an authenticated actor: a reporting citizen or a
// resolving authority. Both roles live in one collection with a unique
// index on email, so no two principals of either role can share one.
type Principal struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Department   string    `json:"department,omitempty"`
	Points       int64     `json:"points"`
	CreatedAt    time.Time `json:"created_at"`
}
