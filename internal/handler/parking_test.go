package handler

import (
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

func TestComputeStats(t *testing.T) {
	slots := func(statuses ...string) []repository.ParkingSlot {
		out := make([]repository.ParkingSlot, len(statuses))
		for i, s := range statuses {
			out[i].Status = s
		}
		return out
	}

	cases := []struct {
		name string
		in   []repository.ParkingSlot
		want parkingStats
	}{
		{
			name: "empty area reports zero percent",
			in:   nil,
			want: parkingStats{},
		},
		{
			name: "three of ten available",
			in: slots(
				repository.SlotAvailable, repository.SlotAvailable, repository.SlotAvailable,
				repository.SlotOccupied, repository.SlotOccupied, repository.SlotOccupied,
				repository.SlotOccupied, repository.SlotOccupied,
				repository.SlotReserved, repository.SlotReserved,
			),
			want: parkingStats{Total: 10, Available: 3, Occupied: 5, Reserved: 2, AvailabilityPercent: 30},
		},
		{
			name: "one of three rounds to nearest",
			in:   slots(repository.SlotAvailable, repository.SlotOccupied, repository.SlotOccupied),
			want: parkingStats{Total: 3, Available: 1, Occupied: 2, AvailabilityPercent: 33},
		},
		{
			name: "two of three rounds up",
			in:   slots(repository.SlotAvailable, repository.SlotAvailable, repository.SlotOccupied),
			want: parkingStats{Total: 3, Available: 2, Occupied: 1, AvailabilityPercent: 67},
		},
		{
			name: "all available",
			in:   slots(repository.SlotAvailable, repository.SlotAvailable),
			want: parkingStats{Total: 2, Available: 2, AvailabilityPercent: 100},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, computeStats(tc.in))
		})
	}
}

func TestParkingHandler_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM parking_areas").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "latitude", "longitude", "b.id", "b.name", "b.latitude", "b.longitude"}).
			AddRow("main-parking", "Main Parking", 30.7715, 76.5760, "admin-block", "Administrative Block", 30.7710, 76.5765))
	mock.ExpectQuery("FROM parking_slots").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "parking_area_id", "slot_number", "status", "updated_at"}).
			AddRow("slot-1", "main-parking", "P01", repository.SlotOccupied, time.Now()).
			AddRow("slot-2", "main-parking", "P02", repository.SlotAvailable, time.Now()))

	h := NewParkingHandler(repository.NewParkingRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/parking", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ParkingAreas []parkingAreaResp `json:"parking_areas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.ParkingAreas, 1)

	area := body.ParkingAreas[0]
	require.Equal(t, "Main Parking", area.Name)
	require.NotNil(t, area.Block)
	require.Len(t, area.Slots, 2)
	require.Equal(t, parkingStats{Total: 2, Available: 1, Occupied: 1, AvailabilityPercent: 50}, area.Stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParkingHandler_SetSlotStatus_InvalidStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewParkingHandler(repository.NewParkingRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/parking/slots/slot-1/status",
		strings.NewReader(`{"status":"PARKED"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("slot-1")

	require.NoError(t, h.SetSlotStatus(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	// No query may reach the database for a rejected status.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParkingHandler_SetSlotStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE parking_slots SET status").
		WithArgs(repository.SlotReserved, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	h := NewParkingHandler(repository.NewParkingRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/parking/slots/missing/status",
		strings.NewReader(`{"status":"RESERVED"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, h.SetSlotStatus(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
