package handler

import (
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/campusnav/campus-navigator/internal/repository"
)

var placeColumns = []string{
	"id", "name", "description", "latitude", "longitude",
	"category_id", "block_id", "floor_id", "room_id",
	"created_by_id", "approval_status", "created_at", "updated_at",
	"category_name", "icon",
	"b.name", "b.latitude", "b.longitude",
	"floor_number",
	"room_number",
	"u.name", "u.email",
}

func placeRow(id, name, status string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, name, "A descriptive text", 30.77, 76.5766,
		"cat-1", nil, nil, nil,
		"u-1", status, now, now,
		"Laboratory", "🔬",
		nil, nil, nil,
		nil,
		nil,
		"Asha Verma", "asha@cu.edu.in",
	}
}

func expectPlaceDetail(mock sqlmock.Sqlmock, id, name, status string) {
	mock.ExpectQuery("FROM places p").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(placeColumns).AddRow(placeRow(id, name, status)...))
	mock.ExpectQuery("FROM place_photos").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "place_id", "url"}))
}

func placeGetContext(t *testing.T, id string) (*PlaceHandler, sqlmock.Sqlmock, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewPlaceHandler(repository.NewPlaceRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/places/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return h, mock, c, rec
}

// Unapproved places must be indistinguishable from missing ones for anyone
// who is not an admin.
func TestPlaceHandler_Get_MasksPendingForNonAdmin(t *testing.T) {
	h, mock, c, rec := placeGetContext(t, "p-1")
	expectPlaceDetail(mock, "p-1", "CS Lab", repository.StatusPending)

	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceHandler_Get_PendingVisibleToAdmin(t *testing.T) {
	h, mock, c, rec := placeGetContext(t, "p-1")
	c.Set("user_id", "admin-1")
	c.Set("role", repository.RoleAdmin)
	expectPlaceDetail(mock, "p-1", "CS Lab", repository.StatusPending)

	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Place placeResp `json:"place"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "CS Lab", body.Place.Name)
	require.Equal(t, repository.StatusPending, body.Place.ApprovalStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceHandler_Get_ApprovedVisibleToAnonymous(t *testing.T) {
	h, mock, c, rec := placeGetContext(t, "p-2")
	expectPlaceDetail(mock, "p-2", "Food Court", repository.StatusApproved)

	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// The creator's email is only exposed to admins.
	var body struct {
		Place placeResp `json:"place"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Place.CreatedBy)
	require.Empty(t, body.Place.CreatedBy.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceHandler_Create_ValidationList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewPlaceHandler(repository.NewPlaceRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/places",
		strings.NewReader(`{"name":"x","latitude":123}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u-1")

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// Short name, missing category and out-of-range latitude are all
	// reported together.
	require.Len(t, body.Details, 3)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceHandler_Create_RequiresAuth(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewPlaceHandler(repository.NewPlaceRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/places",
		strings.NewReader(`{"name":"CS Lab","category_id":"cat-1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
