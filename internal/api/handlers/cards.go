package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gshelgaas/bankcards/internal/api/httpx"
	"github.com/gshelgaas/bankcards/internal/apperr"
	"github.com/gshelgaas/bankcards/internal/middleware"
	"github.com/gshelgaas/bankcards/internal/services"
)

type CardHandler struct {
	cards *services.CardService
}

func NewCardHandler(cards *services.CardService) *CardHandler {
	return &CardHandler{cards: cards}
}

type createCardReq struct {
	CardNumber string          `json:"card_number" validate:"required"`
	CardHolder string          `json:"card_holder" validate:"required"`
	ExpiryDate string          `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Balance    decimal.Decimal `json:"balance"`
}

// Create issues a card for the user in the path. Admin only.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCardReq
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.Balance.Sign() < 0 {
		httpx.Error(w, apperr.InvalidArgument("balance must be positive or zero"))
		return
	}
	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		httpx.Error(w, apperr.InvalidArgument("invalid expiry date"))
		return
	}
	card, err := h.cards.Create(r.Context(), services.CreateCardParams{
		Number:     req.CardNumber,
		Holder:     req.CardHolder,
		ExpiryDate: expiry,
		Balance:    req.Balance,
	}, chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Get(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, card)
}

// ListAll lists every card in the system. Admin only.
func (h *CardHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	cards, err := h.cards.List(r.Context(), services.ListCardsParams{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cards)
}

// ListMine lists the caller's cards.
func (h *CardHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	limit, offset := pageParams(r)
	cards, err := h.cards.List(r.Context(), services.ListCardsParams{
		UserID: id.UserID,
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cards)
}

func (h *CardHandler) Block(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Block(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, card)
}

func (h *CardHandler) Activate(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Activate(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, card)
}

func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cards.Delete(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Balance returns the card balance to its owner.
func (h *CardHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	balance, err := h.cards.Balance(r.Context(), chi.URLParam(r, "cardID"), id.UserID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

type blockRequestReq struct {
	Reason string `json:"reason" validate:"required"`
}

// RequestBlock lets the card owner ask for a block.
func (h *CardHandler) RequestBlock(w http.ResponseWriter, r *http.Request) {
	var req blockRequestReq
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	id, _ := middleware.IdentityFrom(r.Context())
	br, err := h.cards.RequestBlock(r.Context(), chi.URLParam(r, "cardID"), id.UserID, req.Reason)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, br)
}

// ApproveBlock approves a pending block request. Admin only.
func (h *CardHandler) ApproveBlock(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.ApproveBlock(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, card)
}
