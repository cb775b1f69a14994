package handler

import "github.com/civicsync/civicsync-api/internal/core/ports"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type raiseIssueRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location"`
}

type awardPointsRequest struct {
	PrincipalID string `json:"principal_id" validate:"required"`
	Amount      int64  `json:"amount"       validate:"gte=0"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

// issueResponse wraps a single resolved issue. Principal references are
// public-safe summaries; password hashes never appear in any schema.
type issueResponse struct {
	Issue ports.IssueDetail `json:"issue"`
}

type listIssuesResponse struct {
	Data  []ports.IssueDetail `json:"data"`
	Total int                 `json:"total"`
}
