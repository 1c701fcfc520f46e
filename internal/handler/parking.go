package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusnav/campus-navigator/internal/repository"
)

// ParkingHandler serves the public parking availability read and the
// admin-only slot status mutations. Slot writes are single-row and carry no
// optimistic lock: concurrent admins race with last-write-wins, which is
// the documented contract.
type ParkingHandler struct {
	Parking *repository.ParkingRepo
}

func NewParkingHandler(parking *repository.ParkingRepo) *ParkingHandler {
	if parking == nil {
		panic("nil repository passed to NewParkingHandler")
	}
	return &ParkingHandler{Parking: parking}
}

// ----- DTOs -----

type slotPart struct {
	ID         string    `json:"id"`
	SlotNumber string    `json:"slot_number"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type parkingStats struct {
	Total               int `json:"total"`
	Available           int `json:"available"`
	Occupied            int `json:"occupied"`
	Reserved            int `json:"reserved"`
	AvailabilityPercent int `json:"availability_percent"`
}

type parkingAreaResp struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Block     *blockPart   `json:"block,omitempty"`
	Slots     []slotPart   `json:"slots"`
	Stats     parkingStats `json:"stats"`
}

type setSlotStatusReq struct {
	Status string `json:"status"`
}

// computeStats derives the availability summary for one area. The numbers
// are never persisted; an empty area reports 0 percent available.
func computeStats(slots []repository.ParkingSlot) parkingStats {
	s := parkingStats{Total: len(slots)}
	for _, sl := range slots {
		switch sl.Status {
		case repository.SlotAvailable:
			s.Available++
		case repository.SlotOccupied:
			s.Occupied++
		case repository.SlotReserved:
			s.Reserved++
		}
	}
	if s.Total > 0 {
		s.AvailabilityPercent = int(math.Round(float64(s.Available) / float64(s.Total) * 100))
	}
	return s
}

// List handles GET /v1/parking. Every area is returned with its block, its
// slots ordered by slot number and the computed availability statistics.
func (h *ParkingHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	areas, err := h.Parking.ListAreas(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list parking areas"})
	}
	out := make([]parkingAreaResp, 0, len(areas))
	for _, a := range areas {
		resp := parkingAreaResp{
			ID:        a.ID,
			Name:      a.Name,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
			Slots:     make([]slotPart, 0, len(a.Slots)),
			Stats:     computeStats(a.Slots),
		}
		if a.Block != nil {
			resp.Block = &blockPart{ID: a.Block.ID, Name: a.Block.Name, Latitude: a.Block.Latitude, Longitude: a.Block.Longitude}
		}
		for _, s := range a.Slots {
			resp.Slots = append(resp.Slots, slotPart{ID: s.ID, SlotNumber: s.SlotNumber, Status: s.Status, UpdatedAt: s.UpdatedAt})
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, echo.Map{"parking_areas": out})
}

// SetSlotStatus handles POST /v1/admin/parking/slots/:id/status. The new
// status must be one of the three valid values; it then overwrites the slot
// unconditionally.
func (h *ParkingHandler) SetSlotStatus(c echo.Context) error {
	slotID := c.Param("id")
	if slotID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	var req setSlotStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !repository.IsValidSlotStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status, use AVAILABLE, OCCUPIED or RESERVED"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Parking.SetSlotStatus(ctx, slotID, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update slot"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "parking slot updated",
		"slot":    slotPart{ID: slot.ID, SlotNumber: slot.SlotNumber, Status: slot.Status, UpdatedAt: slot.UpdatedAt},
	})
}

// AdvanceSlot handles POST /v1/admin/parking/slots/:id/advance, moving the
// slot one step along the fixed AVAILABLE -> OCCUPIED -> RESERVED ->
// AVAILABLE cycle. Kept separate from SetSlotStatus so the transition rule
// in effect is always explicit.
func (h *ParkingHandler) AdvanceSlot(c echo.Context) error {
	slotID := c.Param("id")
	if slotID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Parking.AdvanceSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to advance slot"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "parking slot advanced",
		"slot":    slotPart{ID: slot.ID, SlotNumber: slot.SlotNumber, Status: slot.Status, UpdatedAt: slot.UpdatedAt},
	})
}
