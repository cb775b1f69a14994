package ports

import (
	"context"

	"github.com/civicsync/civicsync-api/internal/core/domain"
)

// RegisterInput carries registration data from the transport layer.
// Department is required for the authority role and ignored otherwise.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
}

// AuthService implements registration and login. Login returns a signed
// token binding the principal id and role with an expiry.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Principal, error)
	Login(ctx context.Context, email, password string) (string, *domain.Principal, error)
}
