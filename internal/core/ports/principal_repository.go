package ports

import (
	"context"

	"github.com/civicsync/civicsync-api/internal/core/domain"
)

// PrincipalRepository defines persistence for citizens and authorities.
// Identity fields are write-once; only the points counter is mutable.
type PrincipalRepository interface {
	// Create inserts a new principal. A duplicate email (either role)
	// fails with domain.ErrDuplicateEmail.
	Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error)
	// FindByEmail looks up a principal by normalized email across both roles.
	FindByEmail(ctx context.Context, email string) (*domain.Principal, error)
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
	// FindByIDs resolves a batch of ids in one query; unknown ids are
	// simply absent from the result map.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Principal, error)
	// AwardPoints atomically increments the points counter.
	AwardPoints(ctx context.Context, id string, amount int64) error
}
