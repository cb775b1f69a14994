package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicsync/civicsync-api/internal/core/ports"
)

// IssueHandler handles the issue lifecycle endpoints.
type IssueHandler struct {
	service ports.IssueService
}

func NewIssueHandler(service ports.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

// Raise handles POST /v1/issues — a citizen reports a new issue.
//
// @Summary      Raise a new issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      raiseIssueRequest  true  "Issue details"
// @Success      201   {object}  issueResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/issues [post]
func (h *IssueHandler) Raise(c echo.Context) error {
	var req raiseIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	principalID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Raise(c.Request().Context(), ports.RaiseIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		RaisedBy:    principalID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, issueResponse{Issue: *detail})
}

// List handles GET /v1/issues — all issues with resolved principal summaries.
//
// @Summary      List issues
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listIssuesResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/issues [get]
func (h *IssueHandler) List(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	details, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listIssuesResponse{Data: details, Total: len(details)})
}

// Get handles GET /v1/issues/:id.
//
// @Summary      Get an issue by id
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  issueResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/issues/{id} [get]
func (h *IssueHandler) Get(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	detail, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, issueResponse{Issue: *detail})
}

// Assign handles POST /v1/issues/:id/assign — the calling authority
// claims a pending issue.
//
// @Summary      Assign a pending issue to the calling authority
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  issueResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/issues/{id}/assign [post]
func (h *IssueHandler) Assign(c echo.Context) error {
	principalID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Assign(c.Request().Context(), c.Param("id"), principalID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, issueResponse{Issue: *detail})
}

// Resolve handles POST /v1/issues/:id/resolve — only the assigned
// authority may resolve.
//
// @Summary      Resolve an in-progress issue
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  issueResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/issues/{id}/resolve [post]
func (h *IssueHandler) Resolve(c echo.Context) error {
	principalID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Resolve(c.Request().Context(), c.Param("id"), principalID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, issueResponse{Issue: *detail})
}
