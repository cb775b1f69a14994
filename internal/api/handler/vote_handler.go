package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicsync/civicsync-api/internal/core/ports"
)

// VoteHandler handles vote and points endpoints.
type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Upvote handles POST /v1/issues/:id/upvote.
//
// @Summary      Upvote an issue
// @Tags         votes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  issueResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/issues/{id}/upvote [post]
func (h *VoteHandler) Upvote(c echo.Context) error {
	principalID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Upvote(c.Request().Context(), c.Param("id"), principalID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, issueResponse{Issue: *detail})
}

// Downvote handles POST /v1/issues/:id/downvote.
//
// @Summary      Downvote an issue
// @Tags         votes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  issueResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/issues/{id}/downvote [post]
func (h *VoteHandler) Downvote(c echo.Context) error {
	principalID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Downvote(c.Request().Context(), c.Param("id"), principalID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, issueResponse{Issue: *detail})
}

// AwardPoints handles POST /v1/points/award — validates synchronously,
// applies asynchronously, returns 202.
//
// @Summary      Award points to a principal
// @Tags         votes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      awardPointsRequest  true  "Award details"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/points/award [post]
func (h *VoteHandler) AwardPoints(c echo.Context) error {
	var req awardPointsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	if err := h.service.AwardPoints(c.Request().Context(), req.PrincipalID, req.Amount); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "award accepted"})
}
