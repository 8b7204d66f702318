package models

import (
	"testing"
	"time"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		status CardStatus
		expiry time.Time
		want   CardStatus
	}{
		{"active future expiry", CardActive, now.AddDate(1, 0, 0), CardActive},
		{"active past expiry", CardActive, now.AddDate(0, 0, -1), CardExpired},
		{"expires today still usable", CardActive, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), CardActive},
		{"expires today later hour", CardActive, time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC), CardActive},
		{"blocked past expiry stays blocked", CardBlocked, now.AddDate(0, 0, -1), CardBlocked},
		{"pending block past expiry stays pending", CardPendingBlock, now.AddDate(0, 0, -1), CardPendingBlock},
	}
	for _, c := range cases {
		card := Card{Status: c.status, ExpiryDate: c.expiry}
		if got := card.EffectiveStatus(now); got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestEffectiveStatusTimezone(t *testing.T) {
	// Both sides compare at UTC date precision regardless of input zone.
	// Local date 2026-03-16 but still 2026-03-15 in UTC.
	loc := time.FixedZone("UTC+13", 13*60*60)
	card := Card{Status: CardActive, ExpiryDate: time.Date(2026, 3, 16, 2, 0, 0, 0, loc)}
	now := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if got := card.EffectiveStatus(now); got != CardExpired {
		t.Errorf("got %s, want EXPIRED", got)
	}
}

func TestParseCardStatus(t *testing.T) {
	for _, s := range []string{"ACTIVE", "BLOCKED", "EXPIRED", "PENDING_BLOCK"} {
		if _, ok := ParseCardStatus(s); !ok {
			t.Errorf("ParseCardStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "active", "FROZEN"} {
		if _, ok := ParseCardStatus(s); ok {
			t.Errorf("ParseCardStatus(%q) = true", s)
		}
	}
}
