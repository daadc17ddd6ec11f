package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

type SubscriptionService interface {
	Create(ctx context.Context, input usecase.CreateSubscriptionInput) (*usecase.CreateSubscriptionOutput, error)
	ScheduleCancellation(ctx context.Context, input usecase.ScheduleCancellationInput) (*entity.Subscription, error)
}

type SubscriptionHandler struct {
	UC SubscriptionService
}

func NewSubscriptionHandler(uc SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{UC: uc}
}

func (h *SubscriptionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateSubscriptionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.AccountID = accountID(r)

	out, err := h.UC.Create(r.Context(), input)
	writeResult(w, http.StatusCreated, out, err)
}

func (h *SubscriptionHandler) HandleScheduleCancellation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input usecase.ScheduleCancellationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.AccountID = accountID(r)
	input.SubscriptionID = id

	sub, err := h.UC.ScheduleCancellation(r.Context(), input)
	writeResult(w, http.StatusOK, sub, err)
}
