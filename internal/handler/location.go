package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusnav/campus-navigator/internal/repository"
	"github.com/campusnav/campus-navigator/internal/utils"
)

// Live-location sharing limits. A requested duration above the maximum is
// clamped, a missing or non-positive one falls back to the default.
const (
	defaultShareMinutes = 15
	maxShareMinutes     = 60
)

// LocationHandler serves the live-location sharing endpoints. All three
// routes require authentication; expired rows are filtered at read time and
// never proactively purged.
type LocationHandler struct {
	Locations *repository.LocationRepo
}

func NewLocationHandler(locations *repository.LocationRepo) *LocationHandler {
	if locations == nil {
		panic("nil repository passed to NewLocationHandler")
	}
	return &LocationHandler{Locations: locations}
}

type shareLocationReq struct {
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	DurationMinutes *int     `json:"duration_minutes"`
}

type activeLocationResp struct {
	ID        string    `json:"id"`
	User      userRef   `json:"user"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type userRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// clampShareMinutes resolves the effective share duration from an optional
// requested value.
func clampShareMinutes(requested *int) int {
	if requested == nil || *requested <= 0 {
		return defaultShareMinutes
	}
	if *requested > maxShareMinutes {
		return maxShareMinutes
	}
	return *requested
}

// Share handles POST /v1/location/share. Sharing again replaces the
// previous row so at most one live location exists per user.
func (h *LocationHandler) Share(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req shareLocationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Latitude == nil || req.Longitude == nil || !utils.IsValidCoordinates(*req.Latitude, *req.Longitude) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid latitude and longitude are required"})
	}

	minutes := clampShareMinutes(req.DurationMinutes)
	expiresAt := time.Now().UTC().Add(time.Duration(minutes) * time.Minute)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.Replace(ctx, userID, *req.Latitude, *req.Longitude, expiresAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to share location"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "location shared",
		"expires_at": loc.ExpiresAt,
		"location": echo.Map{
			"id":        loc.ID,
			"latitude":  loc.Latitude,
			"longitude": loc.Longitude,
		},
	})
}

// Active handles GET /v1/location/active: every unexpired location joined
// with the sharing user's id and name, newest-first.
func (h *LocationHandler) Active(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locs, err := h.Locations.Active(ctx, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list locations"})
	}
	out := make([]activeLocationResp, 0, len(locs))
	for _, l := range locs {
		out = append(out, activeLocationResp{
			ID:        l.ID,
			User:      userRef{ID: l.UserID, Name: l.UserName},
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			ExpiresAt: l.ExpiresAt,
			CreatedAt: l.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": out})
}

// Stop handles DELETE /v1/location/share. Deleting when nothing is shared
// succeeds; the operation is idempotent.
func (h *LocationHandler) Stop(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Locations.DeleteForUser(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to stop sharing"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "location sharing stopped"})
}
