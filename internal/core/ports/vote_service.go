package ports

import "context"

// PointsAward is a pending increment to a principal's points counter,
// processed asynchronously by the points dispatcher.
type PointsAward struct {
	PrincipalID string
	Amount      int64
	Reason      string
}

// VoteService covers the vote/points ledger: vote counters on issues
// and the points counter on principals.
type VoteService interface {
	Upvote(ctx context.Context, issueID, voterID string) (*IssueDetail, error)
	Downvote(ctx context.Context, issueID, voterID string) (*IssueDetail, error)
	// AwardPoints validates and enqueues a points increment. Amount
	// must be non-negative.
	AwardPoints(ctx context.Context, principalID string, amount int64) error
}
