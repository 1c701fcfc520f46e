package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusnav/campus-navigator/internal/repository"
	"github.com/campusnav/campus-navigator/internal/utils"
)

// PlaceHandler serves the public place listing and the authenticated
// submission and admin edit endpoints. Role checks for the admin routes are
// applied by middleware before these methods run.
type PlaceHandler struct {
	Places *repository.PlaceRepo
}

func NewPlaceHandler(places *repository.PlaceRepo) *PlaceHandler {
	if places == nil {
		panic("nil repository passed to NewPlaceHandler")
	}
	return &PlaceHandler{Places: places}
}

// ----- response DTOs -----

type categoryPart struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type blockPart struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type floorPart struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
}

type roomPart struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

type creatorPart struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type photoPart struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type approvalPart struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	AdminID    *string    `json:"admin_id"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

type placeResp struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    *string       `json:"description"`
	Latitude       *float64      `json:"latitude"`
	Longitude      *float64      `json:"longitude"`
	ApprovalStatus string        `json:"approval_status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Category       *categoryPart `json:"category,omitempty"`
	Block          *blockPart    `json:"block,omitempty"`
	Floor          *floorPart    `json:"floor,omitempty"`
	Room           *roomPart     `json:"room,omitempty"`
	Photos         []photoPart   `json:"photos"`
	CreatedBy      *creatorPart  `json:"created_by,omitempty"`
	Approval       *approvalPart `json:"approval,omitempty"`
}

// toPlaceResp maps a joined place onto the response shape. The creator's
// email is only exposed on admin-facing responses.
func toPlaceResp(d repository.PlaceDetail, withEmail bool) placeResp {
	r := placeResp{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
		ApprovalStatus: d.ApprovalStatus,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Photos:         []photoPart{},
	}
	if d.Category != nil {
		r.Category = &categoryPart{ID: d.Category.ID, Name: d.Category.Name, Icon: d.Category.Icon}
	}
	if d.Block != nil {
		r.Block = &blockPart{ID: d.Block.ID, Name: d.Block.Name, Latitude: d.Block.Latitude, Longitude: d.Block.Longitude}
	}
	if d.Floor != nil {
		r.Floor = &floorPart{ID: d.Floor.ID, Number: d.Floor.Number}
	}
	if d.Room != nil {
		r.Room = &roomPart{ID: d.Room.ID, Number: d.Room.Number}
	}
	if d.CreatedBy != nil {
		r.CreatedBy = &creatorPart{ID: d.CreatedBy.ID, Name: d.CreatedBy.Name}
		if withEmail {
			r.CreatedBy.Email = d.CreatedBy.Email
		}
	}
	for _, p := range d.Photos {
		r.Photos = append(r.Photos, photoPart{ID: p.ID, URL: p.URL})
	}
	if d.Approval != nil {
		r.Approval = &approvalPart{
			ID:         d.Approval.ID,
			Status:     d.Approval.Status,
			AdminID:    d.Approval.AdminID,
			ReviewedAt: d.Approval.ReviewedAt,
		}
	}
	return r
}

// ----- request DTOs -----

type createPlaceReq struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	CategoryID  string   `json:"category_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	BlockID     *string  `json:"block_id"`
	FloorID     *string  `json:"floor_id"`
	RoomID      *string  `json:"room_id"`
}

type updatePlaceReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	CategoryID  *string  `json:"category_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	BlockID     *string  `json:"block_id"`
	FloorID     *string  `json:"floor_id"`
	RoomID      *string  `json:"room_id"`
}

// List handles GET /v1/places. Only APPROVED places are returned; the
// optional categoryId, blockId and search query parameters narrow the
// listing.
func (h *PlaceHandler) List(c echo.Context) error {
	f := repository.PlaceFilter{
		CategoryID: c.QueryParam("categoryId"),
		BlockID:    c.QueryParam("blockId"),
		Search:     c.QueryParam("search"),
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Places.ListApproved(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list places"})
	}
	out := make([]placeResp, 0, len(details))
	for _, d := range details {
		out = append(out, toPlaceResp(d, false))
	}
	return c.JSON(http.StatusOK, echo.Map{"places": out})
}

// Get handles GET /v1/places/:id. Places that are not APPROVED are only
// visible to admins; everyone else gets a 404 so pending submissions cannot
// be probed for.
func (h *PlaceHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Places.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "place not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load place"})
	}
	if d.ApprovalStatus != repository.StatusApproved && !isAdmin(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "place not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"place": toPlaceResp(d, isAdmin(c))})
}

// Create handles POST /v1/places. Any authenticated user may submit a
// place; it starts PENDING together with its approval record, both created
// in one transaction.
func (h *PlaceHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req createPlaceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := utils.ValidatePlace(utils.PlaceInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "details": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Places.CreateWithApproval(ctx, repository.Place{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CategoryID:  req.CategoryID,
		BlockID:     req.BlockID,
		FloorID:     req.FloorID,
		RoomID:      req.RoomID,
		CreatedByID: userID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create place"})
	}

	d, err := h.Places.GetDetail(ctx, created.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load place"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "place submitted for approval",
		"place":   toPlaceResp(d, false),
	})
}

// Update handles PUT /v1/places/:id (admin only). Fields absent from the
// body are left untouched; only the enumerated columns can change.
func (h *PlaceHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
	}
	var req updatePlaceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := validatePlaceUpdate(req); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "details": errs})
	}

	upd := repository.PlaceUpdate{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		BlockID:     req.BlockID,
		FloorID:     req.FloorID,
		RoomID:      req.RoomID,
	}
	if upd.IsEmpty() {
		return c.JSON(http.StatusOK, echo.Map{"message": "no changes provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Places.Update(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "place not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update place"})
	}
	d, err := h.Places.GetDetail(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load place"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "place updated",
		"place":   toPlaceResp(d, true),
	})
}

// validatePlaceUpdate checks only the fields present in a partial update.
func validatePlaceUpdate(req updatePlaceReq) []string {
	var errs []string
	if req.Name != nil && !utils.IsValidPlaceName(*req.Name) {
		errs = append(errs, "Place name must be between 2 and 100 characters")
	}
	if req.Description != nil && !utils.IsValidDescription(*req.Description) {
		errs = append(errs, "Description must not exceed 1000 characters")
	}
	if req.Latitude != nil && !utils.IsValidLatitude(*req.Latitude) {
		errs = append(errs, "Invalid latitude")
	}
	if req.Longitude != nil && !utils.IsValidLongitude(*req.Longitude) {
		errs = append(errs, "Invalid longitude")
	}
	return errs
}
