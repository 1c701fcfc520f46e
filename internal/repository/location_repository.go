package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// LiveLocation mirrors the 'live_locations' table. At most one row exists
// per user; sharing again replaces the prior row. Rows past ExpiresAt are
// filtered out on read, never proactively deleted.
type LiveLocation struct {
	ID        string
	UserID    string
	Latitude  float64
	Longitude float64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActiveLocation joins a live location with the sharing user's summary.
type ActiveLocation struct {
	LiveLocation
	UserName string
}

type LocationRepo struct{ db *sql.DB }

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

// Replace removes any existing live location for the user and inserts the
// new one inside a transaction, so the single-row-per-user invariant holds
// even under concurrent shares from the same account.
func (r *LocationRepo) Replace(ctx context.Context, userID string, lat, lng float64, expiresAt time.Time) (LiveLocation, error) {
	loc := LiveLocation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Latitude:  lat,
		Longitude: lng,
		ExpiresAt: expiresAt.UTC(),
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return LiveLocation{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM live_locations WHERE user_id=?", userID); err != nil {
		return LiveLocation{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO live_locations (id, user_id, latitude, longitude, expires_at) VALUES (?,?,?,?,?)",
		loc.ID, loc.UserID, loc.Latitude, loc.Longitude, loc.ExpiresAt); err != nil {
		return LiveLocation{}, err
	}
	if err := tx.Commit(); err != nil {
		return LiveLocation{}, err
	}
	committed = true
	return loc, nil
}

// Active returns every unexpired location joined with the sharer's id and
// name, newest-first.
func (r *LocationRepo) Active(ctx context.Context, now time.Time) ([]ActiveLocation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT l.id, l.user_id, l.latitude, l.longitude, l.expires_at, l.created_at, u.name
FROM live_locations l
JOIN users u ON u.id = l.user_id
WHERE l.expires_at > ?
ORDER BY l.created_at DESC`, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActiveLocation
	for rows.Next() {
		var a ActiveLocation
		if err := rows.Scan(&a.ID, &a.UserID, &a.Latitude, &a.Longitude,
			&a.ExpiresAt, &a.CreatedAt, &a.UserName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteForUser removes the user's live location if present. Deleting a
// user with no active share is not an error.
func (r *LocationRepo) DeleteForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM live_locations WHERE user_id=?", userID)
	return err
}
