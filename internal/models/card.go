package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CardStatus string

const (
	CardActive       CardStatus = "ACTIVE"
	CardBlocked      CardStatus = "BLOCKED"
	CardExpired      CardStatus = "EXPIRED"
	CardPendingBlock CardStatus = "PENDING_BLOCK"
)

// ParseCardStatus parses a status filter value. EXPIRED is accepted
// even though it is never stored: it is a valid read-time status.
func ParseCardStatus(s string) (CardStatus, bool) {
	switch CardStatus(s) {
	case CardActive, CardBlocked, CardExpired, CardPendingBlock:
		return CardStatus(s), true
	}
	return "", false
}

// Card is a bank card row. NumberEnc holds the AES-encrypted card
// number; NumberHash is its deterministic lookup hash and carries the
// uniqueness constraint. The plain number never leaves the cardsec
// boundary unmasked.
type Card struct {
	ID         string          `json:"id"`
	NumberEnc  string          `json:"-"`
	NumberHash string          `json:"-"`
	Holder     string          `json:"card_holder"`
	ExpiryDate time.Time       `json:"expiry_date"`
	Status     CardStatus      `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
	UserID     string          `json:"user_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EffectiveStatus derives the read-time status: an ACTIVE card whose
// expiry date is before today is EXPIRED. Expiry is compared at date
// precision, so a card expiring today is still usable. EXPIRED is
// never written back to the store.
func (c Card) EffectiveStatus(now time.Time) CardStatus {
	if c.Status == CardActive && dateOf(c.ExpiryDate).Before(dateOf(now)) {
		return CardExpired
	}
	return c.Status
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
