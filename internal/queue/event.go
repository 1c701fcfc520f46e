// Package queue defines message payloads exchanged over the message broker.
package queue

// PlaceDecidedEvent is published when an admin approves or rejects a place
// submission. It carries enough information for downstream consumers to
// build an audit trail or notify the submitter without querying the primary
// database.
type PlaceDecidedEvent struct {
	PlaceID   string `json:"place_id"`
	PlaceName string `json:"place_name"`
	Status    string `json:"status"` // APPROVED | REJECTED
	AdminID   string `json:"admin_id"`
	DecidedAt string `json:"decided_at"`
}
