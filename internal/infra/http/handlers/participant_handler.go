package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

type ParticipantRegistrar interface {
	Register(ctx context.Context, input usecase.RegisterParticipantInput) (*usecase.RegisterParticipantOutput, error)
}

type ParticipantHandler struct {
	UC ParticipantRegistrar
}

func NewParticipantHandler(uc ParticipantRegistrar) *ParticipantHandler {
	return &ParticipantHandler{UC: uc}
}

// Handle devolve 201 quando cria e 200 quando o participante já existia.
func (h *ParticipantHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterParticipantInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.AccountID = accountID(r)

	out, err := h.UC.Register(r.Context(), input)
	status := http.StatusOK
	if err == nil && out.Created {
		status = http.StatusCreated
	}
	writeResult(w, status, out, err)
}
