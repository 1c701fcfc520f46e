package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusnav/campus-navigator/internal/queue"
	"github.com/campusnav/campus-navigator/internal/repository"
	queue_publisher "github.com/campusnav/campus-navigator/internal/service"
)

// ApprovalHandler serves the admin moderation endpoints. Both routes sit
// behind RequireRole(ADMIN); a non-admin never reaches these methods.
type ApprovalHandler struct {
	Places *repository.PlaceRepo
}

func NewApprovalHandler(places *repository.PlaceRepo) *ApprovalHandler {
	if places == nil {
		panic("nil repository passed to NewApprovalHandler")
	}
	return &ApprovalHandler{Places: places}
}

type decideReq struct {
	Action string `json:"action"` // approve | reject
}

// ListPending handles GET /v1/admin/approvals. Pending places are returned
// newest-first with the submitting user's contact details and the approval
// record attached.
func (h *ApprovalHandler) ListPending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Places.ListPending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list pending approvals"})
	}
	out := make([]placeResp, 0, len(details))
	for _, d := range details {
		out = append(out, toPlaceResp(d, true))
	}
	return c.JSON(http.StatusOK, echo.Map{"places": out})
}

// Decide handles POST /v1/admin/approvals/:placeId. The action is validated
// before any write; the place and approval rows then transition together in
// one transaction. A place that does not exist, or was already decided, is
// reported as not found.
func (h *ApprovalHandler) Decide(c echo.Context) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	placeID := c.Param("placeId")
	if placeID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
	}
	var req decideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var status string
	switch req.Action {
	case "approve":
		status = repository.StatusApproved
	case "reject":
		status = repository.StatusRejected
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": `invalid action, use "approve" or "reject"`})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Places.Decide(ctx, placeID, status, adminID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pending place not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record decision"})
	}

	d, err := h.Places.GetDetail(ctx, placeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load place"})
	}

	// The moderation audit trail rides the broker; a publish failure is
	// logged by the publisher and never fails the request.
	_ = queue_publisher.PublishPlaceDecided(ctx, queue.PlaceDecidedEvent{
		PlaceID:   d.ID,
		PlaceName: d.Name,
		Status:    status,
		AdminID:   adminID,
		DecidedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "decision recorded",
		"place":   toPlaceResp(d, true),
	})
}
