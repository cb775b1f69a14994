package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// VoteGuard records which principal voted on which issue.
// Key format: vote:<issue_id>:<principal_id>. Keys do not expire: a
// vote is a one-time action per principal per issue.
type VoteGuard struct {
	client *redis.Client
}

// NewVoteGuard creates a VoteGuard wrapping the given Redis client.
func NewVoteGuard(client *redis.Client) *VoteGuard {
	return &VoteGuard{client: client}
}

// HasVoted reports whether this principal already voted on the issue.
func (g *VoteGuard) HasVoted(ctx context.Context, issueID, voterID string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(issueID, voterID)).Result()
	if err != nil {
		return false, fmt.Errorf("vote guard check: %w", err)
	}
	return n > 0, nil
}

// Mark records the vote.
func (g *VoteGuard) Mark(ctx context.Context, issueID, voterID string) error {
	return g.client.Set(ctx, g.key(issueID, voterID), "1", 0).Err()
}

func (g *VoteGuard) key(issueID, voterID string) string {
	return fmt.Sprintf("vote:%s:%s", issueID, voterID)
}
