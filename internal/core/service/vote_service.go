package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/civicsync/civicsync-api/internal/api/metrics"
	"github.com/civicsync/civicsync-api/internal/core/domain"
	"github.com/civicsync/civicsync-api/internal/core/ports"
)

// VoteGuard abstracts the per-voter dedup store (Redis).
type VoteGuard interface {
	HasVoted(ctx context.Context, issueID, voterID string) (bool, error)
	Mark(ctx context.Context, issueID, voterID string) error
}

// VoteService implements the vote/points ledger. The guard closes the
// double-voting gap best-effort: if the guard itself fails, the vote is
// allowed rather than blocking the write path.
type VoteService struct {
	issues     ports.IssueRepository
	principals ports.PrincipalRepository
	guard      VoteGuard
	points     PointsQueue
	log        zerolog.Logger
}

func NewVoteService(issues ports.IssueRepository, principals ports.PrincipalRepository, guard VoteGuard, points PointsQueue, log zerolog.Logger) *VoteService {
	return &VoteService{issues: issues, principals: principals, guard: guard, points: points, log: log}
}

func (s *VoteService) Upvote(ctx context.Context, issueID, voterID string) (*ports.IssueDetail, error) {
	return s.vote(ctx, issueID, voterID, true)
}

func (s *VoteService) Downvote(ctx context.Context, issueID, voterID string) (*ports.IssueDetail, error) {
	return s.vote(ctx, issueID, voterID, false)
}

func (s *VoteService) vote(ctx context.Context, issueID, voterID string, upvote bool) (*ports.IssueDetail, error) {
	voted, err := s.guard.HasVoted(ctx, issueID, voterID)
	if err != nil {
		s.log.Warn().Err(err).Str("issue_id", issueID).Msg("vote guard check failed, allowing vote")
	} else if voted {
		metrics.VotesRejectedTotal.Inc()
		return nil, domain.ErrAlreadyVoted
	}

	issue, err := s.issues.IncrementVotes(ctx, issueID, upvote)
	if err != nil {
		return nil, err
	}

	if markErr := s.guard.Mark(ctx, issueID, voterID); markErr != nil {
		s.log.Warn().Err(markErr).Str("issue_id", issueID).Msg("failed to mark vote")
	}

	direction := "up"
	if !upvote {
		direction = "down"
	}
	metrics.VotesCastTotal.WithLabelValues(direction).Inc()

	resolved, err := s.principals.FindByIDs(ctx, []string{issue.RaisedBy, issue.AssignedTo})
	if err != nil {
		return nil, err
	}
	detail := buildDetail(issue, resolved[issue.RaisedBy], resolved[issue.AssignedTo])
	return &detail, nil
}

// AwardPoints validates the amount, checks the principal exists, and
// hands the increment to the dispatcher.
func (s *VoteService) AwardPoints(ctx context.Context, principalID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative", domain.ErrValidation)
	}
	if _, err := s.principals.FindByID(ctx, principalID); err != nil {
		return err
	}
	s.points.Enqueue(ports.PointsAward{PrincipalID: principalID, Amount: amount, Reason: "manual award"})
	return nil
}
