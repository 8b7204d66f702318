package models

import "time"

// AuditEvent records a lifecycle or transfer event. Written
// asynchronously through the worker pool; best-effort, not part of
// the ledger unit.
type AuditEvent struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"` // card | transfer | block_request
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
