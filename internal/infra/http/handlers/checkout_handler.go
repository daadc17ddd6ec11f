package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

type CheckoutService interface {
	Execute(ctx context.Context, input usecase.CheckoutInput) (*usecase.CheckoutOutput, error)
}

type CheckoutHandler struct {
	UC CheckoutService
}

func NewCheckoutHandler(uc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{UC: uc}
}

func (h *CheckoutHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.CheckoutInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.AccountID = accountID(r)

	out, err := h.UC.Execute(r.Context(), input)
	recordIntegrationFailure(err)
	writeResult(w, http.StatusCreated, out, err)
}
