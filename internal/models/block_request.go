package models

import "time"

type BlockStatus string

const (
	BlockPending  BlockStatus = "PENDING"
	BlockApproved BlockStatus = "APPROVED"
	// REJECTED is declared but no operation produces it yet.
	BlockRejected BlockStatus = "REJECTED"
)

// BlockRequest is a user's request to block a card. At most one
// PENDING request may exist per card at any time.
type BlockRequest struct {
	ID          string      `json:"id"`
	CardID      string      `json:"card_id"`
	Reason      string      `json:"reason"`
	Status      BlockStatus `json:"status"`
	RequestedAt time.Time   `json:"requested_at"`
	ProcessedAt *time.Time  `json:"processed_at,omitempty"`
}
