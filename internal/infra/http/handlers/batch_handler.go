package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

type BatchService interface {
	Submit(ctx context.Context, input usecase.SubmitBatchInput) (*entity.Batch, error)
	Approve(ctx context.Context, input usecase.BatchActionInput) (*entity.Batch, error)
	Reject(ctx context.Context, input usecase.RejectBatchInput) (*entity.Batch, error)
}

type BatchHandler struct {
	UC BatchService
}

func NewBatchHandler(uc BatchService) *BatchHandler {
	return &BatchHandler{UC: uc}
}

// HandleSubmit recebe multipart com "file" e "charge_ids" (repetido ou separado por vírgula).
func (h *BatchHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxProofSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "arquivo do comprovativo é obrigatório")
		return
	}
	defer file.Close()

	ids := chargeIDs(r.MultipartForm.Value["charge_ids"])
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "charge_ids inválido: "+id)
			return
		}
	}

	b, err := h.UC.Submit(r.Context(), usecase.SubmitBatchInput{
		AccountID:   accountID(r),
		ChargeIDs:   ids,
		File:        file,
		ContentType: header.Header.Get("Content-Type"),
	})
	recordIntegrationFailure(err)
	writeResult(w, http.StatusCreated, b, err)
}

func chargeIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (h *BatchHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.UC.Approve(r.Context(), usecase.BatchActionInput{
		AccountID: accountID(r),
		BatchID:   id,
	})
	writeResult(w, http.StatusOK, b, err)
}

func (h *BatchHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input usecase.RejectBatchInput
	if r.ContentLength != 0 && !decodeJSON(w, r, &input) {
		return
	}
	input.AccountID = accountID(r)
	input.BatchID = id

	b, err := h.UC.Reject(r.Context(), input)
	writeResult(w, http.StatusOK, b, err)
}
