package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

// maxProofSize limita o upload de comprovativos (10 MB).
const maxProofSize = 10 << 20

type ChargeService interface {
	ConfirmManually(ctx context.Context, input usecase.ChargeActionInput) (*entity.Charge, error)
	SubmitProof(ctx context.Context, input usecase.SubmitProofInput) (*entity.Charge, error)
	ApproveProof(ctx context.Context, input usecase.ChargeActionInput) (*entity.Charge, error)
	RejectProof(ctx context.Context, input usecase.ChargeActionInput) (*entity.Charge, error)
	CancelCharge(ctx context.Context, input usecase.ChargeActionInput) (*entity.Charge, error)
}

type PixService interface {
	Execute(ctx context.Context, input usecase.ChargeActionInput) (*usecase.ChargePixOutput, error)
}

type ChargeHandler struct {
	UC  ChargeService
	Pix PixService
}

func NewChargeHandler(uc ChargeService, pix PixService) *ChargeHandler {
	return &ChargeHandler{UC: uc, Pix: pix}
}

type chargeAction func(ctx context.Context, input usecase.ChargeActionInput) (*entity.Charge, error)

func (h *ChargeHandler) action(fn chargeAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		c, err := fn(r.Context(), usecase.ChargeActionInput{
			AccountID: accountID(r),
			ChargeID:  id,
		})
		writeResult(w, http.StatusOK, c, err)
	}
}

func (h *ChargeHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	h.action(h.UC.ConfirmManually)(w, r)
}

func (h *ChargeHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.action(h.UC.ApproveProof)(w, r)
}

func (h *ChargeHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.action(h.UC.RejectProof)(w, r)
}

func (h *ChargeHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.action(h.UC.CancelCharge)(w, r)
}

// HandleSubmitProof recebe multipart com o campo "file".
func (h *ChargeHandler) HandleSubmitProof(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxProofSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "arquivo do comprovativo é obrigatório")
		return
	}
	defer file.Close()

	c, err := h.UC.SubmitProof(r.Context(), usecase.SubmitProofInput{
		AccountID:   accountID(r),
		ChargeID:    id,
		File:        file,
		ContentType: header.Header.Get("Content-Type"),
	})
	recordIntegrationFailure(err)
	writeResult(w, http.StatusOK, c, err)
}

func (h *ChargeHandler) HandlePix(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := h.Pix.Execute(r.Context(), usecase.ChargeActionInput{
		AccountID: accountID(r),
		ChargeID:  id,
	})
	writeResult(w, http.StatusOK, out, err)
}
