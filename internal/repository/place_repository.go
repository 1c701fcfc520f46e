package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Approval status values shared by places.approval_status and
// approvals.status. A place is created PENDING and moves exactly once to
// APPROVED or REJECTED; both are terminal.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Place mirrors the 'places' table. Optional columns are pointers so the
// absence of a value survives the round trip.
type Place struct {
	ID             string
	Name           string
	Description    *string
	Latitude       *float64
	Longitude      *float64
	CategoryID     string
	BlockID        *string
	FloorID        *string
	RoomID         *string
	CreatedByID    string
	ApprovalStatus string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Approval mirrors the 'approvals' table, the one-to-one moderation record
// of a place. Its status always matches the owning place's approval_status
// after any committed transition.
type Approval struct {
	ID         string
	PlaceID    string
	Status     string
	AdminID    *string
	ReviewedAt *time.Time
}

// CategoryRef, BlockRef, FloorRef and RoomRef are the joined location
// hierarchy fragments attached to a place in list and detail reads.
type CategoryRef struct {
	ID   string
	Name string
	Icon string
}

type BlockRef struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
}

type FloorRef struct {
	ID     string
	Number int
}

type RoomRef struct {
	ID     string
	Number string
}

// CreatorRef is the submitting user's summary. Email is only populated on
// admin-facing reads (pending approval listing).
type CreatorRef struct {
	ID    string
	Name  string
	Email string
}

// Photo is a stored image reference attached to a place.
type Photo struct {
	ID  string
	URL string
}

// PlaceDetail is a place joined with its category, location hierarchy,
// photos and creator summary. Approval is filled only by ListPending.
type PlaceDetail struct {
	Place
	Category  *CategoryRef
	Block     *BlockRef
	Floor     *FloorRef
	Room      *RoomRef
	CreatedBy *CreatorRef
	Photos    []Photo
	Approval  *Approval
}

// PlaceFilter narrows the approved place listing. Zero values mean "no
// filter"; Search matches name or description case-insensitively.
type PlaceFilter struct {
	CategoryID string
	BlockID    string
	Search     string
}

// PlaceUpdate is an explicit partial update: every supported column is
// enumerated as an optional field, nil meaning "leave unchanged". This
// replaces ad-hoc dynamic SQL with a single construction routine over a
// closed field set.
type PlaceUpdate struct {
	Name        *string
	Description *string
	CategoryID  *string
	Latitude    *float64
	Longitude   *float64
	BlockID     *string
	FloorID     *string
	RoomID      *string
}

// IsEmpty reports whether the update touches no columns.
func (u PlaceUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.CategoryID == nil &&
		u.Latitude == nil && u.Longitude == nil &&
		u.BlockID == nil && u.FloorID == nil && u.RoomID == nil
}

type PlaceRepo struct{ db *sql.DB }

func NewPlaceRepo(db *sql.DB) *PlaceRepo { return &PlaceRepo{db: db} }

// DB exposes the underlying handle for handlers that need to open a
// transaction spanning repositories.
func (r *PlaceRepo) DB() *sql.DB { return r.db }

// CreateWithApproval inserts a PENDING place together with its PENDING
// approval record inside one transaction. Either both rows exist afterwards
// or neither does.
func (r *PlaceRepo) CreateWithApproval(ctx context.Context, p Place) (Place, error) {
	p.ID = uuid.NewString()
	p.ApprovalStatus = StatusPending
	p.Name = strings.TrimSpace(p.Name)
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if d == "" {
			p.Description = nil
		} else {
			p.Description = &d
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Place{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO places
		   (id, name, description, latitude, longitude, category_id, block_id, floor_id, room_id, created_by_id, approval_status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Name, p.Description, p.Latitude, p.Longitude, p.CategoryID,
		p.BlockID, p.FloorID, p.RoomID, p.CreatedByID, p.ApprovalStatus)
	if err != nil {
		return Place{}, err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO approvals (id, place_id, status) VALUES (?,?,?)",
		uuid.NewString(), p.ID, StatusPending)
	if err != nil {
		return Place{}, err
	}
	if err := tx.Commit(); err != nil {
		return Place{}, err
	}
	committed = true
	return p, nil
}

const placeSelect = `
SELECT p.id, p.name, p.description, p.latitude, p.longitude,
       p.category_id, p.block_id, p.floor_id, p.room_id,
       p.created_by_id, p.approval_status, p.created_at, p.updated_at,
       c.category_name, c.icon,
       b.name, b.latitude, b.longitude,
       f.floor_number,
       r.room_number,
       u.name, u.email
FROM places p
LEFT JOIN place_categories c ON c.id = p.category_id
LEFT JOIN blocks b ON b.id = p.block_id
LEFT JOIN floors f ON f.id = p.floor_id
LEFT JOIN rooms r ON r.id = p.room_id
LEFT JOIN users u ON u.id = p.created_by_id`

// scanPlaceDetail reads one joined row into a PlaceDetail. extra receives
// any trailing columns (used by ListPending for the approval join).
func scanPlaceDetail(rows interface {
	Scan(dest ...interface{}) error
}, extra ...interface{}) (PlaceDetail, error) {
	var (
		d         PlaceDetail
		catName   sql.NullString
		catIcon   sql.NullString
		blockName sql.NullString
		blockLat  sql.NullFloat64
		blockLng  sql.NullFloat64
		floorNum  sql.NullInt64
		roomNum   sql.NullString
		userName  sql.NullString
		userEmail sql.NullString
	)
	dest := []interface{}{
		&d.ID, &d.Name, &d.Description, &d.Latitude, &d.Longitude,
		&d.CategoryID, &d.BlockID, &d.FloorID, &d.RoomID,
		&d.CreatedByID, &d.ApprovalStatus, &d.CreatedAt, &d.UpdatedAt,
		&catName, &catIcon,
		&blockName, &blockLat, &blockLng,
		&floorNum,
		&roomNum,
		&userName, &userEmail,
	}
	dest = append(dest, extra...)
	if err := rows.Scan(dest...); err != nil {
		return PlaceDetail{}, err
	}
	if catName.Valid {
		d.Category = &CategoryRef{ID: d.CategoryID, Name: catName.String, Icon: catIcon.String}
	}
	if d.BlockID != nil && blockName.Valid {
		d.Block = &BlockRef{ID: *d.BlockID, Name: blockName.String, Latitude: blockLat.Float64, Longitude: blockLng.Float64}
	}
	if d.FloorID != nil && floorNum.Valid {
		d.Floor = &FloorRef{ID: *d.FloorID, Number: int(floorNum.Int64)}
	}
	if d.RoomID != nil && roomNum.Valid {
		d.Room = &RoomRef{ID: *d.RoomID, Number: roomNum.String}
	}
	if userName.Valid {
		d.CreatedBy = &CreatorRef{ID: d.CreatedByID, Name: userName.String, Email: userEmail.String}
	}
	return d, nil
}

// ListApproved returns all APPROVED places newest-first, joined with their
// category, location hierarchy, photos and creator, narrowed by the filter.
func (r *PlaceRepo) ListApproved(ctx context.Context, f PlaceFilter) ([]PlaceDetail, error) {
	query := placeSelect + " WHERE p.approval_status = ?"
	args := []interface{}{StatusApproved}
	if f.CategoryID != "" {
		query += " AND p.category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.BlockID != "" {
		query += " AND p.block_id = ?"
		args = append(args, f.BlockID)
	}
	if f.Search != "" {
		query += " AND (p.name LIKE ? OR p.description LIKE ?)"
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlaceDetail
	for rows.Next() {
		d, err := scanPlaceDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachPhotos(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDetail fetches one place regardless of status. Visibility rules for
// non-admin callers are enforced by the handler.
func (r *PlaceRepo) GetDetail(ctx context.Context, id string) (PlaceDetail, error) {
	row := r.db.QueryRowContext(ctx, placeSelect+" WHERE p.id = ?", id)
	d, err := scanPlaceDetail(row)
	if err == sql.ErrNoRows {
		return PlaceDetail{}, ErrNotFound
	}
	if err != nil {
		return PlaceDetail{}, err
	}
	one := []PlaceDetail{d}
	if err := r.attachPhotos(ctx, one); err != nil {
		return PlaceDetail{}, err
	}
	return one[0], nil
}

// pendingSelect extends the place columns with the joined approval record.
const pendingSelect = `
SELECT p.id, p.name, p.description, p.latitude, p.longitude,
       p.category_id, p.block_id, p.floor_id, p.room_id,
       p.created_by_id, p.approval_status, p.created_at, p.updated_at,
       c.category_name, c.icon,
       b.name, b.latitude, b.longitude,
       f.floor_number,
       r.room_number,
       u.name, u.email,
       a.id, a.status, a.admin_id, a.reviewed_at
FROM places p
LEFT JOIN place_categories c ON c.id = p.category_id
LEFT JOIN blocks b ON b.id = p.block_id
LEFT JOIN floors f ON f.id = p.floor_id
LEFT JOIN rooms r ON r.id = p.room_id
LEFT JOIN users u ON u.id = p.created_by_id
LEFT JOIN approvals a ON a.place_id = p.id`

// ListPending returns every PENDING place with its approval record and the
// creator's email, newest-first. Admin only; the handler enforces the role.
func (r *PlaceRepo) ListPending(ctx context.Context) ([]PlaceDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		pendingSelect+" WHERE p.approval_status = ? ORDER BY p.created_at DESC",
		StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlaceDetail
	for rows.Next() {
		var (
			apprID     sql.NullString
			apprStatus sql.NullString
			adminID    sql.NullString
			reviewedAt sql.NullTime
		)
		d, err := scanPlaceDetail(rows, &apprID, &apprStatus, &adminID, &reviewedAt)
		if err != nil {
			return nil, err
		}
		if apprID.Valid {
			a := &Approval{ID: apprID.String, PlaceID: d.ID, Status: apprStatus.String}
			if adminID.Valid {
				a.AdminID = &adminID.String
			}
			if reviewedAt.Valid {
				t := reviewedAt.Time
				a.ReviewedAt = &t
			}
			d.Approval = a
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachPhotos(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decide transitions a PENDING place and its approval record to the given
// terminal status in one transaction. Returns ErrNotFound when no PENDING
// place matches, which also covers places already decided.
func (r *PlaceRepo) Decide(ctx context.Context, placeID, status, adminID string) error {
	if status != StatusApproved && status != StatusRejected {
		return ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE places SET approval_status=?, updated_at=NOW() WHERE id=? AND approval_status=?",
		status, placeID, StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE approvals SET status=?, admin_id=?, reviewed_at=NOW(), updated_at=NOW() WHERE place_id=?",
		status, adminID, placeID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update applies a partial update built from the enumerated PlaceUpdate
// fields. Callers should check IsEmpty first; an empty update is a no-op.
func (r *PlaceRepo) Update(ctx context.Context, id string, u PlaceUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	set, args := buildPlaceUpdate(u)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		"UPDATE places SET "+set+", updated_at=NOW() WHERE id=?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// buildPlaceUpdate turns the present fields of a PlaceUpdate into a SET
// clause and its arguments. Only the enumerated columns can ever appear, so
// no caller-controlled string reaches the statement text.
func buildPlaceUpdate(u PlaceUpdate) (string, []interface{}) {
	var (
		cols []string
		args []interface{}
	)
	if u.Name != nil {
		cols = append(cols, "name=?")
		args = append(args, strings.TrimSpace(*u.Name))
	}
	if u.Description != nil {
		cols = append(cols, "description=?")
		d := strings.TrimSpace(*u.Description)
		if d == "" {
			args = append(args, nil)
		} else {
			args = append(args, d)
		}
	}
	if u.CategoryID != nil {
		cols = append(cols, "category_id=?")
		args = append(args, *u.CategoryID)
	}
	if u.Latitude != nil {
		cols = append(cols, "latitude=?")
		args = append(args, *u.Latitude)
	}
	if u.Longitude != nil {
		cols = append(cols, "longitude=?")
		args = append(args, *u.Longitude)
	}
	if u.BlockID != nil {
		cols = append(cols, "block_id=?")
		args = append(args, nullable(*u.BlockID))
	}
	if u.FloorID != nil {
		cols = append(cols, "floor_id=?")
		args = append(args, nullable(*u.FloorID))
	}
	if u.RoomID != nil {
		cols = append(cols, "room_id=?")
		args = append(args, nullable(*u.RoomID))
	}
	return strings.Join(cols, ", "), args
}

// nullable maps an empty string to SQL NULL so clients can clear an
// optional reference by sending "".
func nullable(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// attachPhotos loads the photos of every listed place with a single query
// and stitches them onto the details in place.
func (r *PlaceRepo) attachPhotos(ctx context.Context, places []PlaceDetail) error {
	if len(places) == 0 {
		return nil
	}
	idx := make(map[string]int, len(places))
	query := "SELECT id, place_id, url FROM place_photos WHERE place_id IN ("
	args := make([]interface{}, 0, len(places))
	for i := range places {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, places[i].ID)
		idx[places[i].ID] = i
		places[i].Photos = []Photo{}
	}
	query += ") ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ph Photo
		var placeID string
		if err := rows.Scan(&ph.ID, &placeID, &ph.URL); err != nil {
			return err
		}
		if i, ok := idx[placeID]; ok {
			places[i].Photos = append(places[i].Photos, ph)
		}
	}
	return rows.Err()
}
