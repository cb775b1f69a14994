package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/civicsync/civicsync-api/internal/core/domain"
	"github.com/civicsync/civicsync-api/internal/core/ports"
)

type stubIssueService struct {
	raiseFn   func(ctx context.Context, in ports.RaiseIssueInput) (*ports.IssueDetail, error)
	assignFn  func(ctx context.Context, issueID, authorityID string) (*ports.IssueDetail, error)
	resolveFn func(ctx context.Context, issueID, authorityID string) (*ports.IssueDetail, error)
	getFn     func(ctx context.Context, issueID string) (*ports.IssueDetail, error)
	listFn    func(ctx context.Context) ([]ports.IssueDetail, error)
}

func (s *stubIssueService) Raise(ctx context.Context, in ports.RaiseIssueInput) (*ports.IssueDetail, error) {
	return s.raiseFn(ctx, in)
}

func (s *stubIssueService) Assign(ctx context.Context, issueID, authorityID string) (*ports.IssueDetail, error) {
	return s.assignFn(ctx, issueID, authorityID)
}

func (s *stubIssueService) Resolve(ctx context.Context, issueID, authorityID string) (*ports.IssueDetail, error) {
	return s.resolveFn(ctx, issueID, authorityID)
}

func (s *stubIssueService) Get(ctx context.Context, issueID string) (*ports.IssueDetail, error) {
	return s.getFn(ctx, issueID)
}

func (s *stubIssueService) List(ctx context.Context) ([]ports.IssueDetail, error) {
	return s.listFn(ctx)
}

func setClaims(c echo.Context, principalID, role string) {
	c.Set("principal_id", principalID)
	c.Set("role", role)
}

func TestIssueHandler_Raise(t *testing.T) {
	svc := &stubIssueService{
		raiseFn: func(_ context.Context, in ports.RaiseIssueInput) (*ports.IssueDetail, error) {
			if in.RaisedBy != "p001" {
				t.Errorf("expected reporter from claims, got %q", in.RaisedBy)
			}
			return &ports.IssueDetail{ID: "i001", Title: in.Title, Status: string(domain.StatusPending)}, nil
		},
	}
	h := NewIssueHandler(svc)

	body := `{"title":"Pothole","description":"Deep pothole","location":"Main St"}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/issues", body)
	setClaims(c, "p001", domain.RoleCitizen)

	if err := h.Raise(c); err != nil {
		t.Fatalf("Raise returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp issueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Issue.ID != "i001" || resp.Issue.Status != string(domain.StatusPending) {
		t.Fatalf("unexpected issue: %+v", resp.Issue)
	}
}

func TestIssueHandler_Raise_MissingClaims(t *testing.T) {
	h := NewIssueHandler(&stubIssueService{})

	body := `{"title":"Pothole","description":"Deep pothole"}`
	c, _ := newTestContext(t, http.MethodPost, "/v1/issues", body)

	err := h.Raise(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestIssueHandler_Raise_InvalidPayload(t *testing.T) {
	h := NewIssueHandler(&stubIssueService{})

	c, _ := newTestContext(t, http.MethodPost, "/v1/issues", `{"title":"Pothole"}`)
	setClaims(c, "p001", domain.RoleCitizen)

	err := h.Raise(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing description, got %v", err)
	}
}

func TestIssueHandler_List(t *testing.T) {
	svc := &stubIssueService{
		listFn: func(_ context.Context) ([]ports.IssueDetail, error) {
			return []ports.IssueDetail{{ID: "i001"}, {ID: "i002"}}, nil
		},
	}
	h := NewIssueHandler(svc)

	c, rec := newTestContext(t, http.MethodGet, "/v1/issues", "")
	setClaims(c, "p001", domain.RoleCitizen)

	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	var resp listIssuesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Data) != 2 {
		t.Fatalf("unexpected list: total=%d len=%d", resp.Total, len(resp.Data))
	}
}

func TestIssueHandler_Get_NotFound(t *testing.T) {
	svc := &stubIssueService{
		getFn: func(_ context.Context, _ string) (*ports.IssueDetail, error) {
			return nil, domain.ErrIssueNotFound
		},
	}
	h := NewIssueHandler(svc)

	c, _ := newTestContext(t, http.MethodGet, "/v1/issues/missing", "")
	setClaims(c, "p001", domain.RoleCitizen)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Get(c); !errors.Is(err, domain.ErrIssueNotFound) {
		t.Fatalf("expected ErrIssueNotFound, got %v", err)
	}
}

func TestIssueHandler_Assign(t *testing.T) {
	svc := &stubIssueService{
		assignFn: func(_ context.Context, issueID, authorityID string) (*ports.IssueDetail, error) {
			if issueID != "i001" || authorityID != "p002" {
				t.Errorf("unexpected args: %s %s", issueID, authorityID)
			}
			return &ports.IssueDetail{ID: issueID, Status: string(domain.StatusInProgress)}, nil
		},
	}
	h := NewIssueHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/v1/issues/i001/assign", "")
	setClaims(c, "p002", domain.RoleAuthority)
	c.SetParamNames("id")
	c.SetParamValues("i001")

	if err := h.Assign(c); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIssueHandler_Resolve_Forbidden(t *testing.T) {
	svc := &stubIssueService{
		resolveFn: func(_ context.Context, _, _ string) (*ports.IssueDetail, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewIssueHandler(svc)

	c, _ := newTestContext(t, http.MethodPost, "/v1/issues/i001/resolve", "")
	setClaims(c, "p003", domain.RoleAuthority)
	c.SetParamNames("id")
	c.SetParamValues("i001")

	if err := h.Resolve(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
