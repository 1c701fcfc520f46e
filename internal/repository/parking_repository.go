package repository

import (
	"context"
	"database/sql"
	"time"
)

// Parking slot status values. Slots cycle AVAILABLE -> OCCUPIED ->
// RESERVED -> AVAILABLE under the advance operation; SetSlotStatus may jump
// to any valid status directly.
const (
	SlotAvailable = "AVAILABLE"
	SlotOccupied  = "OCCUPIED"
	SlotReserved  = "RESERVED"
)

// IsValidSlotStatus reports whether s is one of the three slot states.
func IsValidSlotStatus(s string) bool {
	return s == SlotAvailable || s == SlotOccupied || s == SlotReserved
}

// NextSlotStatus returns the successor in the fixed advance cycle. Unknown
// input resets to AVAILABLE.
func NextSlotStatus(s string) string {
	switch s {
	case SlotAvailable:
		return SlotOccupied
	case SlotOccupied:
		return SlotReserved
	default:
		return SlotAvailable
	}
}

// ParkingSlot mirrors the 'parking_slots' table.
type ParkingSlot struct {
	ID         string
	AreaID     string
	SlotNumber string
	Status     string
	UpdatedAt  time.Time
}

// ParkingArea mirrors the 'parking_areas' table joined with its block and
// the ordered slot collection.
type ParkingArea struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Block     *BlockRef
	Slots     []ParkingSlot
}

type ParkingRepo struct{ db *sql.DB }

func NewParkingRepo(db *sql.DB) *ParkingRepo { return &ParkingRepo{db: db} }

// ListAreas returns every parking area with its block and slots ordered by
// slot number. Availability statistics are computed by the caller; they are
// derived data and never persisted.
func (r *ParkingRepo) ListAreas(ctx context.Context) ([]ParkingArea, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT pa.id, pa.name, pa.latitude, pa.longitude,
       b.id, b.name, b.latitude, b.longitude
FROM parking_areas pa
LEFT JOIN blocks b ON b.id = pa.block_id
ORDER BY pa.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []ParkingArea
	idx := make(map[string]int)
	for rows.Next() {
		var (
			a         ParkingArea
			blockID   sql.NullString
			blockName sql.NullString
			blockLat  sql.NullFloat64
			blockLng  sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Latitude, &a.Longitude,
			&blockID, &blockName, &blockLat, &blockLng); err != nil {
			return nil, err
		}
		if blockID.Valid {
			a.Block = &BlockRef{ID: blockID.String, Name: blockName.String,
				Latitude: blockLat.Float64, Longitude: blockLng.Float64}
		}
		a.Slots = []ParkingSlot{}
		idx[a.ID] = len(areas)
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(areas) == 0 {
		return areas, nil
	}

	slotRows, err := r.db.QueryContext(ctx, `
SELECT id, parking_area_id, slot_number, status, updated_at
FROM parking_slots
ORDER BY slot_number ASC`)
	if err != nil {
		return nil, err
	}
	defer slotRows.Close()
	for slotRows.Next() {
		var s ParkingSlot
		if err := slotRows.Scan(&s.ID, &s.AreaID, &s.SlotNumber, &s.Status, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := idx[s.AreaID]; ok {
			areas[i].Slots = append(areas[i].Slots, s)
		}
	}
	return areas, slotRows.Err()
}

// GetSlot fetches a single slot by id.
func (r *ParkingRepo) GetSlot(ctx context.Context, id string) (ParkingSlot, error) {
	var s ParkingSlot
	err := r.db.QueryRowContext(ctx,
		"SELECT id, parking_area_id, slot_number, status, updated_at FROM parking_slots WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.AreaID, &s.SlotNumber, &s.Status, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return ParkingSlot{}, ErrNotFound
	}
	return s, err
}

// SetSlotStatus overwrites a slot's status unconditionally. There is no
// optimistic concurrency check: concurrent admins race with last-write-wins
// semantics, which is the documented contract for manual slot updates.
func (r *ParkingRepo) SetSlotStatus(ctx context.Context, id, status string) (ParkingSlot, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE parking_slots SET status=?, updated_at=NOW() WHERE id=?",
		status, id)
	if err != nil {
		return ParkingSlot{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ParkingSlot{}, err
	}
	if n == 0 {
		return ParkingSlot{}, ErrNotFound
	}
	return r.GetSlot(ctx, id)
}

// AdvanceSlot moves a slot to the next status in the fixed cycle. The read
// and write are separate statements; overlapping advances race with
// last-write-wins just like SetSlotStatus.
func (r *ParkingRepo) AdvanceSlot(ctx context.Context, id string) (ParkingSlot, error) {
	cur, err := r.GetSlot(ctx, id)
	if err != nil {
		return ParkingSlot{}, err
	}
	return r.SetSlotStatus(ctx, id, NextSlotStatus(cur.Status))
}
