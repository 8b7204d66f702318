package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gshelgaas/bankcards/internal/api/httpx"
	"github.com/gshelgaas/bankcards/internal/apperr"
	"github.com/gshelgaas/bankcards/internal/middleware"
	"github.com/gshelgaas/bankcards/internal/services"
)

type TransferHandler struct {
	transfers *services.TransferService
}

func NewTransferHandler(transfers *services.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type transferReq struct {
	FromCardID  string          `json:"from_card_id" validate:"required,uuid4"`
	ToCardID    string          `json:"to_card_id" validate:"required,uuid4"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transferReq
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.Amount.Sign() <= 0 {
		httpx.Error(w, apperr.InvalidArgument("amount must be positive"))
		return
	}
	id, _ := middleware.IdentityFrom(r.Context())
	t, err := h.transfers.Transfer(r.Context(), services.TransferParams{
		FromCardID:  req.FromCardID,
		ToCardID:    req.ToCardID,
		Amount:      req.Amount,
		Description: req.Description,
	}, id.UserID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *TransferHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	limit, offset := pageParams(r)
	ts, err := h.transfers.ListUserTransfers(r.Context(), id.UserID, limit, offset)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ts)
}
