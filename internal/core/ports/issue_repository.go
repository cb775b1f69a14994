package ports

import (
	"context"
	"time"

	"github.com/civicsync/civicsync-api/internal/core/domain"
)

// IssueRepository defines persistence for issues. The two lifecycle
// mutations are conditional single-document updates: the precondition
// travels inside the storage filter so that, of N concurrent calls on
// the same issue, exactly one can match.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) (*domain.Issue, error)
	FindByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context) ([]*domain.Issue, error)

	// AssignIfPending sets assignedTo and moves the issue to in-progress
	// only if it is currently pending. When no document matches the
	// condition it fails with domain.ErrIssueNotFound; the caller
	// re-reads to classify the miss.
	AssignIfPending(ctx context.Context, issueID, authorityID string) (*domain.Issue, error)

	// ResolveIfAssigned moves the issue to resolved and stamps
	// resolvedAt only if it is in-progress and assigned to authorityID.
	ResolveIfAssigned(ctx context.Context, issueID, authorityID string, resolvedAt time.Time) (*domain.Issue, error)

	// IncrementVotes atomically bumps the up- or downvote counter and
	// returns the updated issue.
	IncrementVotes(ctx context.Context, issueID string, upvote bool) (*domain.Issue, error)
}
