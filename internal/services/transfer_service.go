package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gshelgaas/bankcards/internal/apperr"
	"github.com/gshelgaas/bankcards/internal/metrics"
	"github.com/gshelgaas/bankcards/internal/models"
	"github.com/gshelgaas/bankcards/internal/repository"
	"github.com/gshelgaas/bankcards/internal/worker"
)

// TransferService moves money between cards. The debit, the credit
// and the audit row commit as one transaction; both card rows are
// locked in ascending id order before anything is read, so two
// concurrent transfers over overlapping cards serialize and neither
// can act on a stale balance.
type TransferService struct {
	store repository.Store
	wp    *worker.Pool
}

func NewTransferService(store repository.Store, wp *worker.Pool) *TransferService {
	return &TransferService{store: store, wp: wp}
}

type TransferParams struct {
	FromCardID  string
	ToCardID    string
	Amount      decimal.Decimal
	Description string
}

// Transfer executes a peer-to-peer transfer. The requester must own
// the source card; the destination card may belong to anyone. Both
// cards must be effectively ACTIVE and the source balance
// sufficient.
func (s *TransferService) Transfer(ctx context.Context, p TransferParams, requesterID string) (models.Transfer, error) {
	if p.Amount.Sign() <= 0 {
		return models.Transfer{}, apperr.InvalidArgument("amount must be positive")
	}
	if p.FromCardID == p.ToCardID {
		return models.Transfer{}, apperr.Conflict("cannot transfer to the same card")
	}

	var out models.Transfer
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		// Fixed global lock order: lower card id first.
		first, second := p.FromCardID, p.ToCardID
		if second < first {
			first, second = second, first
		}

		locked := make(map[string]models.Card, 2)
		for _, id := range []string{first, second} {
			c, err := tx.Cards().GetForUpdate(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return err
			}
			locked[id] = c
		}

		from, ok := locked[p.FromCardID]
		if !ok {
			return apperr.NotFound("from card not found")
		}
		to, ok := locked[p.ToCardID]
		if !ok {
			return apperr.NotFound("to card not found")
		}

		if from.UserID != requesterID {
			return apperr.Forbidden("card does not belong to user")
		}

		now := time.Now()
		if from.EffectiveStatus(now) != models.CardActive || to.EffectiveStatus(now) != models.CardActive {
			return apperr.Conflict("cards must be active for transfer")
		}
		if from.Balance.LessThan(p.Amount) {
			return apperr.Conflict("insufficient funds")
		}

		if err := tx.Cards().UpdateBalance(ctx, from.ID, from.Balance.Sub(p.Amount)); err != nil {
			return err
		}
		if err := tx.Cards().UpdateBalance(ctx, to.ID, to.Balance.Add(p.Amount)); err != nil {
			return err
		}

		var err error
		out, err = tx.Transfers().Create(ctx, models.Transfer{
			ID:          uuid.NewString(),
			FromCardID:  p.FromCardID,
			ToCardID:    p.ToCardID,
			Amount:      p.Amount,
			Status:      models.TransferSuccess,
			Description: p.Description,
			CreatedAt:   now.UTC(),
		})
		return err
	})
	if err != nil {
		metrics.TransfersFailed.Inc()
		return models.Transfer{}, err
	}

	slog.Info("transfer completed", "transfer_id", out.ID,
		"from_card_id", out.FromCardID, "to_card_id", out.ToCardID, "amount", out.Amount)
	metrics.TransfersTotal.Inc()
	s.audit(out)
	return out, nil
}

// ListUserTransfers returns transfers where the user owns either
// side, newest first.
func (s *TransferService) ListUserTransfers(ctx context.Context, userID string, limit, offset int) ([]models.Transfer, error) {
	return s.store.Transfers().ListByUser(ctx, userID, limit, offset)
}

func (s *TransferService) audit(t models.Transfer) {
	e := models.AuditEvent{
		ID:         uuid.NewString(),
		EntityType: "transfer",
		EntityID:   t.ID,
		Action:     "completed",
		Details:    t.Amount.String(),
		CreatedAt:  time.Now().UTC(),
	}
	s.wp.Submit(func() {
		if err := s.store.Audit().Create(context.Background(), e); err != nil {
			slog.Error("audit write", "err", err)
		}
	})
}
