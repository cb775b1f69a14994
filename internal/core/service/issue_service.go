package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicsync/civicsync-api/internal/api/metrics"
	"github.com/civicsync/civicsync-api/internal/core/domain"
	"github.com/civicsync/civicsync-api/internal/core/ports"
)

// Points granted when an issue reaches resolved.
const (
	pointsResolveAuthority = 10
	pointsRaiseResolved    = 5
)

// PointsQueue abstracts the asynchronous points dispatcher.
type PointsQueue interface {
	Enqueue(award ports.PointsAward)
}

// IssueService implements the issue lifecycle. Transitions rely on the
// repository's conditional updates; when a conditional update misses,
// the service re-reads the issue once to classify the failure.
type IssueService struct {
	issues     ports.IssueRepository
	principals ports.PrincipalRepository
	points     PointsQueue
	log        zerolog.Logger
}

func NewIssueService(issues ports.IssueRepository, principals ports.PrincipalRepository, points PointsQueue, log zerolog.Logger) *IssueService {
	return &IssueService{issues: issues, principals: principals, points: points, log: log}
}

func (s *IssueService) Raise(ctx context.Context, in ports.RaiseIssueInput) (*ports.IssueDetail, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}

	// The token already proved the caller's identity; this re-check
	// catches principals that vanished after the token was issued.
	reporter, err := s.principals.FindByID(ctx, in.RaisedBy)
	if err != nil {
		return nil, err
	}

	issue, err := s.issues.Create(ctx, &domain.Issue{
		Title:       title,
		Description: description,
		Location:    strings.TrimSpace(in.Location),
		RaisedBy:    reporter.ID,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create issue")
		return nil, err
	}

	metrics.IssuesRaisedTotal.Inc()
	s.log.Info().Str("issue_id", issue.ID).Str("raised_by", reporter.ID).Msg("issue raised")

	return s.toDetail(ctx, issue)
}

func (s *IssueService) Assign(ctx context.Context, issueID, authorityID string) (*ports.IssueDetail, error) {
	issue, err := s.issues.AssignIfPending(ctx, issueID, authorityID)
	if err != nil {
		return nil, s.classifyMiss(ctx, issueID, authorityID, err, false)
	}

	metrics.IssueTransitionsTotal.WithLabelValues(string(domain.StatusInProgress)).Inc()
	s.log.Info().Str("issue_id", issue.ID).Str("assigned_to", authorityID).Msg("issue assigned")

	return s.toDetail(ctx, issue)
}

func (s *IssueService) Resolve(ctx context.Context, issueID, authorityID string) (*ports.IssueDetail, error) {
	issue, err := s.issues.ResolveIfAssigned(ctx, issueID, authorityID, time.Now().UTC())
	if err != nil {
		return nil, s.classifyMiss(ctx, issueID, authorityID, err, true)
	}

	metrics.IssueTransitionsTotal.WithLabelValues(string(domain.StatusResolved)).Inc()
	s.log.Info().Str("issue_id", issue.ID).Str("resolved_by", authorityID).Msg("issue resolved")

	s.points.Enqueue(ports.PointsAward{PrincipalID: authorityID, Amount: pointsResolveAuthority, Reason: "issue resolved"})
	s.points.Enqueue(ports.PointsAward{PrincipalID: issue.RaisedBy, Amount: pointsRaiseResolved, Reason: "reported issue resolved"})

	return s.toDetail(ctx, issue)
}

func (s *IssueService) Get(ctx context.Context, issueID string) (*ports.IssueDetail, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	return s.toDetail(ctx, issue)
}

func (s *IssueService) List(ctx context.Context) ([]ports.IssueDetail, error) {
	issues, err := s.issues.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, 2*len(issues))
	for _, issue := range issues {
		ids = append(ids, issue.RaisedBy)
		if issue.AssignedTo != "" {
			ids = append(ids, issue.AssignedTo)
		}
	}
	resolved, err := s.principals.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]ports.IssueDetail, 0, len(issues))
	for _, issue := range issues {
		details = append(details, buildDetail(issue, resolved[issue.RaisedBy], resolved[issue.AssignedTo]))
	}
	return details, nil
}

// classifyMiss turns a conditional-update miss into the precise domain
// error. The re-read is advisory; correctness rests on the conditional
// filter, this only improves the reported cause.
func (s *IssueService) classifyMiss(ctx context.Context, issueID, authorityID string, err error, resolving bool) error {
	if !errors.Is(err, domain.ErrIssueNotFound) {
		return err
	}
	current, ferr := s.issues.FindByID(ctx, issueID)
	if ferr != nil {
		return ferr
	}
	if resolving && current.Status == domain.StatusInProgress && current.AssignedTo != authorityID {
		return fmt.Errorf("%w: only the assigned authority may resolve this issue", domain.ErrForbidden)
	}
	return fmt.Errorf("%w: issue is %s", domain.ErrInvalidTransition, current.Status)
}

func (s *IssueService) toDetail(ctx context.Context, issue *domain.Issue) (*ports.IssueDetail, error) {
	ids := []string{issue.RaisedBy}
	if issue.AssignedTo != "" {
		ids = append(ids, issue.AssignedTo)
	}
	resolved, err := s.principals.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	detail := buildDetail(issue, resolved[issue.RaisedBy], resolved[issue.AssignedTo])
	return &detail, nil
}

func buildDetail(issue *domain.Issue, raisedBy, assignedTo *domain.Principal) ports.IssueDetail {
	d := ports.IssueDetail{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Location:    issue.Location,
		Status:      string(issue.Status),
		CreatedAt:   issue.CreatedAt,
		Upvotes:     issue.Upvotes,
		Downvotes:   issue.Downvotes,
	}
	if !issue.ResolvedAt.IsZero() {
		t := issue.ResolvedAt
		d.ResolvedAt = &t
	}
	d.RaisedBy = toSummary(raisedBy)
	d.AssignedTo = toSummary(assignedTo)
	return d
}

// toSummary projects a principal to its public-safe form. The password
// hash never crosses this boundary.
func toSummary(p *domain.Principal) *ports.PrincipalSummary {
	if p == nil {
		return nil
	}
	return &ports.PrincipalSummary{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		Role:       p.Role,
		Department: p.Department,
	}
}
