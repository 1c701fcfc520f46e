package repository

import (
	"context"
	"database/sql"
)

// Category is a place category with its approved usage count.
type Category struct {
	ID         string
	Name       string
	Icon       string
	PlaceCount int
}

// Block is a campus block joined with its campus name and child counts.
type Block struct {
	ID         string
	Name       string
	Latitude   float64
	Longitude  float64
	CampusID   string
	CampusName string
	FloorCount int
	PlaceCount int
}

// ReferenceRepo serves the read-mostly lookup data describing the physical
// campus hierarchy. The tables are seeded once and queried often, which is
// why the reference endpoints sit behind the response cache.
type ReferenceRepo struct{ db *sql.DB }

func NewReferenceRepo(db *sql.DB) *ReferenceRepo { return &ReferenceRepo{db: db} }

// Categories lists all place categories ordered by name, each with the
// number of places tagged with it.
func (r *ReferenceRepo) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.category_name, c.icon, COUNT(p.id)
FROM place_categories c
LEFT JOIN places p ON p.category_id = c.id
GROUP BY c.id, c.category_name, c.icon
ORDER BY c.category_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.PlaceCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Blocks lists all blocks ordered by name with their campus and the counts
// of floors and places attached to each.
func (r *ReferenceRepo) Blocks(ctx context.Context) ([]Block, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT b.id, b.name, b.latitude, b.longitude, b.campus_id, cam.name,
       (SELECT COUNT(*) FROM floors f WHERE f.block_id = b.id),
       (SELECT COUNT(*) FROM places p WHERE p.block_id = b.id)
FROM blocks b
JOIN campuses cam ON cam.id = b.campus_id
ORDER BY b.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.ID, &b.Name, &b.Latitude, &b.Longitude,
			&b.CampusID, &b.CampusName, &b.FloorCount, &b.PlaceCount); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
