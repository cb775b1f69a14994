package domain

import (
	"errors"
	"time"
)

// IssueStatus represents the lifecycle state of a reported issue.
type IssueStatus string

const (
	StatusPending    IssueStatus = "pending"
	StatusInProgress IssueStatus = "in-progress"
	StatusResolved   IssueStatus = "resolved"
)

// validTransitions defines the allowed state machine transitions.
// resolved is terminal.
var validTransitions = map[IssueStatus][]IssueStatus{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusResolved},
}

var ErrIssueNotFound = errors.New("issue not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrForbidden = errors.New("access forbidden")
var ErrAlreadyVoted = errors.New("already voted on this issue")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Issue is the core aggregate root: a civic problem reported by a
// citizen and worked by at most one authority. Principal references are
// held by id only; callers resolve them fresh when rendering.
type Issue struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location,omitempty"`
	RaisedBy    string      `json:"raised_by"`
	AssignedTo  string      `json:"assigned_to,omitempty"`
	Status      IssueStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ResolvedAt  time.Time   `json:"resolved_at,omitempty"`
	Upvotes     int64       `json:"upvotes"`
	Downvotes   int64       `json:"downvotes"`
}
