package handler

// reference.go serves the read-only lookup endpoints describing the campus
// hierarchy. Both routes are public and sit behind the response cache since
// the underlying tables are seeded once and rarely change.

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusnav/campus-navigator/internal/repository"
)

type ReferenceHandler struct {
	Refs *repository.ReferenceRepo
}

func NewReferenceHandler(refs *repository.ReferenceRepo) *ReferenceHandler {
	if refs == nil {
		panic("nil repository passed to NewReferenceHandler")
	}
	return &ReferenceHandler{Refs: refs}
}

type categoryResp struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	PlaceCount int    `json:"place_count"`
}

type campusPart struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type blockResp struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Campus     campusPart `json:"campus"`
	FloorCount int        `json:"floor_count"`
	PlaceCount int        `json:"place_count"`
}

// Categories handles GET /v1/categories.
func (h *ReferenceHandler) Categories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Refs.Categories(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list categories"})
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryResp{ID: cat.ID, Name: cat.Name, Icon: cat.Icon, PlaceCount: cat.PlaceCount})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// Blocks handles GET /v1/blocks.
func (h *ReferenceHandler) Blocks(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	blocks, err := h.Refs.Blocks(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list blocks"})
	}
	out := make([]blockResp, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockResp{
			ID:         b.ID,
			Name:       b.Name,
			Latitude:   b.Latitude,
			Longitude:  b.Longitude,
			Campus:     campusPart{ID: b.CampusID, Name: b.CampusName},
			FloorCount: b.FloorCount,
			PlaceCount: b.PlaceCount,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"blocks": out})
}
