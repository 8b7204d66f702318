package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferSuccess TransferStatus = "SUCCESS"
	// FAILED and PENDING are reserved: the engine either commits a
	// SUCCESS row or returns an error without writing anything.
	TransferFailed  TransferStatus = "FAILED"
	TransferPending TransferStatus = "PENDING"
)

// Transfer is an append-only audit row for a completed money
// movement. Never mutated; deleted only by the card-deletion cascade.
type Transfer struct {
	ID          string          `json:"id"`
	FromCardID  string          `json:"from_card_id"`
	ToCardID    string          `json:"to_card_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      TransferStatus  `json:"status"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
