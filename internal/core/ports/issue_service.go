package ports

import (
	"context"
	"time"
)

// RaiseIssueInput carries the data needed to report a new issue.
// RaisedBy is the caller's principal id resolved from the verified
// token, never from the request body.
type RaiseIssueInput struct {
	Title       string
	Description string
	Location    string
	RaisedBy    string
}

// PrincipalSummary is the public-safe projection of a principal used
// when rendering issue references. It never carries a password hash.
type PrincipalSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// IssueDetail is the full issue view with principal references resolved.
type IssueDetail struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    string            `json:"location,omitempty"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
	Upvotes     int64             `json:"upvotes"`
	Downvotes   int64             `json:"downvotes"`
	RaisedBy    *PrincipalSummary `json:"raised_by,omitempty"`
	AssignedTo  *PrincipalSummary `json:"assigned_to,omitempty"`
}

// IssueService defines the issue lifecycle use cases. The caller ids
// passed to Assign and Resolve come from the authorization layer.
type IssueService interface {
	Raise(ctx context.Context, input RaiseIssueInput) (*IssueDetail, error)
	Assign(ctx context.Context, issueID, authorityID string) (*IssueDetail, error)
	Resolve(ctx context.Context, issueID, authorityID string) (*IssueDetail, error)
	Get(ctx context.Context, issueID string) (*IssueDetail, error)
	List(ctx context.Context) ([]IssueDetail, error)
}
