package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

type RenewalRunner interface {
	RunRenewalTick(ctx context.Context) usecase.TickResult
}

// RenewalHandler dispara a mesma renovação que o cron executa.
type RenewalHandler struct {
	UC RenewalRunner
}

func NewRenewalHandler(uc RenewalRunner) *RenewalHandler {
	return &RenewalHandler{UC: uc}
}

func (h *RenewalHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// o tick segue mesmo se o cliente desconectar
	result := h.UC.RunRenewalTick(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, usecase.Ok(result))
}
