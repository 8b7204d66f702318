package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gshelgaas/bankcards/internal/apperr"
	"github.com/gshelgaas/bankcards/internal/cardsec"
	"github.com/gshelgaas/bankcards/internal/metrics"
	"github.com/gshelgaas/bankcards/internal/models"
	"github.com/gshelgaas/bankcards/internal/repository"
	"github.com/gshelgaas/bankcards/internal/worker"
)

// CardService owns the card lifecycle and the block-request
// workflow. Status-changing operations lock the card row for the
// duration of their read-validate-write sequence.
type CardService struct {
	store  repository.Store
	cipher *cardsec.Cipher
	wp     *worker.Pool
}

func NewCardService(store repository.Store, cipher *cardsec.Cipher, wp *worker.Pool) *CardService {
	return &CardService{store: store, cipher: cipher, wp: wp}
}

// CardView is the caller-facing shape of a card: masked number,
// effective status.
type CardView struct {
	ID         string            `json:"id"`
	CardNumber string            `json:"card_number"`
	CardHolder string            `json:"card_holder"`
	ExpiryDate string            `json:"expiry_date"`
	Status     models.CardStatus `json:"status"`
	Balance    decimal.Decimal   `json:"balance"`
	UserID     string            `json:"user_id"`
	CreatedAt  time.Time         `json:"created_at"`
}

type BlockRequestView struct {
	ID          string             `json:"id"`
	CardID      string             `json:"card_id"`
	Reason      string             `json:"reason"`
	Status      models.BlockStatus `json:"status"`
	RequestedAt time.Time          `json:"requested_at"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
}

type CreateCardParams struct {
	Number     string
	Holder     string
	ExpiryDate time.Time
	Balance    decimal.Decimal
}

type ListCardsParams struct {
	UserID string // empty: all users (admin listing)
	Status string // empty: no status filter
	Limit  int
	Offset int
}

// Create issues a card for an existing owner. The number must be
// unique across the system and the expiry date strictly in the
// future.
func (s *CardService) Create(ctx context.Context, p CreateCardParams, ownerID string) (CardView, error) {
	ok, err := s.store.Users().Exists(ctx, ownerID)
	if err != nil {
		return CardView{}, err
	}
	if !ok {
		return CardView{}, apperr.NotFound("user not found with id: %s", ownerID)
	}

	now := time.Now().UTC()
	if !p.ExpiryDate.After(now.Truncate(24 * time.Hour)) {
		return CardView{}, apperr.Conflict("cannot create card with expired date")
	}
	if p.Balance.Sign() < 0 {
		return CardView{}, apperr.InvalidArgument("balance must be positive or zero")
	}
	if !cardsec.ValidNumber(p.Number) {
		return CardView{}, apperr.InvalidArgument("invalid card number")
	}

	hash := s.cipher.LookupHash(p.Number)
	exists, err := s.store.Cards().ExistsByNumberHash(ctx, hash)
	if err != nil {
		return CardView{}, err
	}
	if exists {
		return CardView{}, apperr.Conflict("card with this number already exists")
	}

	enc, err := s.cipher.Encrypt(cardsec.Normalize(p.Number))
	if err != nil {
		return CardView{}, err
	}

	card, err := s.store.Cards().Create(ctx, models.Card{
		ID:         uuid.NewString(),
		NumberEnc:  enc,
		NumberHash: hash,
		Holder:     p.Holder,
		ExpiryDate: p.ExpiryDate,
		Status:     models.CardActive,
		Balance:    p.Balance,
		UserID:     ownerID,
		CreatedAt:  now,
	})
	if err != nil {
		return CardView{}, err
	}

	slog.Info("card created", "card_id", card.ID, "user_id", ownerID)
	metrics.CardsCreated.Inc()
	s.audit("card", card.ID, "created", "")
	return s.view(card)
}

// Get returns a single card with its effective status.
func (s *CardService) Get(ctx context.Context, cardID string) (CardView, error) {
	card, err := s.store.Cards().GetByID(ctx, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		return CardView{}, apperr.NotFound("card not found with id: %s", cardID)
	}
	if err != nil {
		return CardView{}, err
	}
	return s.view(card)
}

// List returns cards filtered by owner and status. The status filter
// is matched against the persisted status; returned views carry the
// effective status.
func (s *CardService) List(ctx context.Context, p ListCardsParams) ([]CardView, error) {
	if p.UserID != "" {
		ok, err := s.store.Users().Exists(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFound("user not found with id: %s", p.UserID)
		}
	}

	var status models.CardStatus
	if p.Status != "" {
		var ok bool
		status, ok = models.ParseCardStatus(p.Status)
		if !ok {
			return nil, apperr.InvalidArgument("invalid card status: %s", p.Status)
		}
	}

	cards, err := s.store.Cards().List(ctx, repository.CardFilter{
		UserID: p.UserID,
		Status: status,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return nil, err
	}

	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		v, err := s.view(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Block sets an ACTIVE or PENDING_BLOCK card to BLOCKED. An expired
// card cannot be administratively toggled.
func (s *CardService) Block(ctx context.Context, cardID string) (CardView, error) {
	return s.setStatus(ctx, cardID, models.CardBlocked, "block")
}

// Activate sets a card back to ACTIVE.
func (s *CardService) Activate(ctx context.Context, cardID string) (CardView, error) {
	return s.setStatus(ctx, cardID, models.CardActive, "activate")
}

func (s *CardService) setStatus(ctx context.Context, cardID string, status models.CardStatus, op string) (CardView, error) {
	var card models.Card
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		card, err = tx.Cards().GetForUpdate(ctx, cardID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("card not found with id: %s", cardID)
		}
		if err != nil {
			return err
		}
		if card.EffectiveStatus(time.Now()) == models.CardExpired {
			return apperr.Conflict("cannot %s expired card", op)
		}
		if err := tx.Cards().UpdateStatus(ctx, cardID, status); err != nil {
			return err
		}
		card.Status = status
		return nil
	})
	if err != nil {
		return CardView{}, err
	}
	slog.Info("card status changed", "card_id", cardID, "status", status)
	s.audit("card", cardID, op, "")
	return s.view(card)
}

// Delete removes a card and, by the explicit cascade below, every
// transfer and block request referencing it. This destroys the
// card's audit trail; observed behavior, kept deliberately.
func (s *CardService) Delete(ctx context.Context, cardID string) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Cards().GetForUpdate(ctx, cardID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("card not found with id: %s", cardID)
			}
			return err
		}
		if err := tx.Transfers().DeleteByCard(ctx, cardID); err != nil {
			return err
		}
		if err := tx.BlockRequests().DeleteByCard(ctx, cardID); err != nil {
			return err
		}
		return tx.Cards().Delete(ctx, cardID)
	})
	if err != nil {
		return err
	}
	slog.Info("card deleted", "card_id", cardID)
	s.audit("card", cardID, "deleted", "")
	return nil
}

// Balance returns the card balance to its owner only.
func (s *CardService) Balance(ctx context.Context, cardID, userID string) (decimal.Decimal, error) {
	card, err := s.store.Cards().GetByID(ctx, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		return decimal.Decimal{}, apperr.NotFound("card not found")
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	if card.UserID != userID {
		return decimal.Decimal{}, apperr.Forbidden("card does not belong to user")
	}
	return card.Balance, nil
}

// RequestBlock starts the block workflow: the owner asks for a
// block, the card moves to PENDING_BLOCK and a PENDING request is
// recorded, both in one transaction. Only an effectively ACTIVE card
// can be requested, and at most one PENDING request may exist per
// card.
func (s *CardService) RequestBlock(ctx context.Context, cardID, requesterID, reason string) (BlockRequestView, error) {
	var req models.BlockRequest
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		card, err := tx.Cards().GetForUpdate(ctx, cardID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("card not found")
		}
		if err != nil {
			return err
		}
		if card.UserID != requesterID {
			return apperr.Forbidden("card does not belong to user")
		}
		switch card.EffectiveStatus(time.Now()) {
		case models.CardActive:
		case models.CardExpired:
			return apperr.Conflict("cannot request block for expired card")
		default:
			return apperr.Conflict("card is not active")
		}
		if _, err := tx.BlockRequests().GetPendingByCard(ctx, cardID); err == nil {
			return apperr.Conflict("block request already exists for this card")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := tx.Cards().UpdateStatus(ctx, cardID, models.CardPendingBlock); err != nil {
			return err
		}
		req, err = tx.BlockRequests().Create(ctx, models.BlockRequest{
			ID:          uuid.NewString(),
			CardID:      cardID,
			Reason:      reason,
			Status:      models.BlockPending,
			RequestedAt: time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return BlockRequestView{}, err
	}
	slog.Info("block requested", "card_id", cardID, "user_id", requesterID)
	metrics.BlockRequestsTotal.Inc()
	s.audit("block_request", req.ID, "requested", reason)
	return blockRequestView(req), nil
}

// ApproveBlock completes the workflow: the card becomes BLOCKED and
// its PENDING request APPROVED with a processed timestamp, in one
// transaction.
func (s *CardService) ApproveBlock(ctx context.Context, cardID string) (CardView, error) {
	var card models.Card
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		card, err = tx.Cards().GetForUpdate(ctx, cardID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("card not found")
		}
		if err != nil {
			return err
		}
		if card.EffectiveStatus(time.Now()) == models.CardExpired {
			return apperr.Conflict("cannot approve block for expired card")
		}
		req, err := tx.BlockRequests().GetPendingByCard(ctx, cardID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("no pending block request for this card")
		}
		if err != nil {
			return err
		}
		if err := tx.Cards().UpdateStatus(ctx, cardID, models.CardBlocked); err != nil {
			return err
		}
		card.Status = models.CardBlocked
		now := time.Now().UTC()
		req.Status = models.BlockApproved
		req.ProcessedAt = &now
		return tx.BlockRequests().Update(ctx, req)
	})
	if err != nil {
		return CardView{}, err
	}
	slog.Info("block approved", "card_id", cardID)
	s.audit("card", cardID, "block_approved", "")
	return s.view(card)
}

func (s *CardService) view(card models.Card) (CardView, error) {
	number, err := s.cipher.Decrypt(card.NumberEnc)
	if err != nil {
		return CardView{}, err
	}
	return CardView{
		ID:         card.ID,
		CardNumber: cardsec.Mask(number),
		CardHolder: card.Holder,
		ExpiryDate: card.ExpiryDate.Format("2006-01-02"),
		Status:     card.EffectiveStatus(time.Now()),
		Balance:    card.Balance,
		UserID:     card.UserID,
		CreatedAt:  card.CreatedAt,
	}, nil
}

func blockRequestView(r models.BlockRequest) BlockRequestView {
	return BlockRequestView{
		ID:          r.ID,
		CardID:      r.CardID,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedAt: r.RequestedAt,
		ProcessedAt: r.ProcessedAt,
	}
}

// audit hands the event to the worker pool; audit writes never block
// or fail the calling operation.
func (s *CardService) audit(entityType, entityID, action, details string) {
	e := models.AuditEvent{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	s.wp.Submit(func() {
		if err := s.store.Audit().Create(context.Background(), e); err != nil {
			slog.Error("audit write", "err", err)
		}
	})
}
