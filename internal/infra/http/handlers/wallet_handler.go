package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

type WalletService interface {
	GetBalance(ctx context.Context, accountID string) (*usecase.BalanceOutput, error)
	RequestPayout(ctx context.Context, input usecase.PayoutInput) (*entity.WalletEntry, error)
	GetFinancialSummary(ctx context.Context, accountID string) (*usecase.FinancialSummary, error)
}

type WalletHandler struct {
	UC WalletService
}

func NewWalletHandler(uc WalletService) *WalletHandler {
	return &WalletHandler{UC: uc}
}

func (h *WalletHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	out, err := h.UC.GetBalance(r.Context(), accountID(r))
	writeResult(w, http.StatusOK, out, err)
}

func (h *WalletHandler) HandlePayout(w http.ResponseWriter, r *http.Request) {
	var input usecase.PayoutInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.AccountID = accountID(r)

	entry, err := h.UC.RequestPayout(r.Context(), input)
	writeResult(w, http.StatusCreated, entry, err)
}

func (h *WalletHandler) HandleFinancialSummary(w http.ResponseWriter, r *http.Request) {
	out, err := h.UC.GetFinancialSummary(r.Context(), accountID(r))
	writeResult(w, http.StatusOK, out, err)
}
