package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/gshelgaas/bankcards/internal/models"
)

// ErrNotFound is returned by point lookups when no row matches.
// Services translate it into entity-specific apperr values.
var ErrNotFound = errors.New("not found")

type CardFilter struct {
	UserID string            // empty: all users
	Status models.CardStatus // empty: all statuses; matched against the persisted status
	Limit  int
	Offset int
}

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type Cards interface {
	Create(ctx context.Context, c models.Card) (models.Card, error)
	GetByID(ctx context.Context, id string) (models.Card, error)
	// GetForUpdate locks the card row until the surrounding WithTx
	// returns. Callers locking more than one card must lock in
	// ascending id order so two concurrent transfers over the same
	// pair cannot deadlock.
	GetForUpdate(ctx context.Context, id string) (models.Card, error)
	ExistsByNumberHash(ctx context.Context, hash string) (bool, error)
	List(ctx context.Context, f CardFilter) ([]models.Card, error)
	UpdateStatus(ctx context.Context, id string, status models.CardStatus) error
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

type Transfers interface {
	Create(ctx context.Context, t models.Transfer) (models.Transfer, error)
	// ListByUser returns transfers where the user owns either card,
	// newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transfer, error)
	DeleteByCard(ctx context.Context, cardID string) error
}

type BlockRequests interface {
	Create(ctx context.Context, r models.BlockRequest) (models.BlockRequest, error)
	GetPendingByCard(ctx context.Context, cardID string) (models.BlockRequest, error)
	Update(ctx context.Context, r models.BlockRequest) error
	DeleteByCard(ctx context.Context, cardID string) error
}

type AuditEvents interface {
	Create(ctx context.Context, e models.AuditEvent) error
}

// Store bundles the repositories with an explicit transaction
// boundary. WithTx runs fn against a Store bound to a single
// database transaction: every write inside fn commits or rolls back
// as one unit, and row locks taken via Cards.GetForUpdate are held
// until fn returns.
type Store interface {
	Users() Users
	Cards() Cards
	Transfers() Transfers
	BlockRequests() BlockRequests
	Audit() AuditEvents
	WithTx(ctx context.Context, fn func(Store) error) error
}
