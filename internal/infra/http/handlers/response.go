package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xavierca1/ligue-rateio/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

// statusFor traduz a classe do erro de negócio em status HTTP.
func statusFor(err error) int {
	be := usecase.AsBillingError(err)
	switch {
	case be == nil:
		return http.StatusOK
	case be.Code == usecase.CodeNotFound:
		return http.StatusNotFound
	case be.Kind == usecase.KindValidation:
		return http.StatusBadRequest
	case be.Kind == usecase.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeResult responde no envelope Result; success é o status usado quando não há erro.
func writeResult[T any](w http.ResponseWriter, success int, data T, err error) {
	if err != nil {
		writeJSON(w, statusFor(err), usecase.Fail[T](err))
		return
	}
	writeJSON(w, success, usecase.Ok(data))
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, usecase.Result[struct{}]{Success: false, Error: message, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido: "+err.Error())
		return false
	}
	return true
}

// pathID lê o {id} da rota. Id que não é uuid não existe no banco.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeErrorResponse(w, http.StatusNotFound, usecase.CodeNotFound, "registro não encontrado")
		return "", false
	}
	return id, true
}

func accountID(r *http.Request) string {
	return middleware.AccountFromContext(r.Context())
}

// recordIntegrationFailure conta falhas de serviços externos a partir do código do erro.
func recordIntegrationFailure(err error) {
	var be *usecase.BillingError
	if !errors.As(err, &be) {
		return
	}
	switch be.Code {
	case usecase.CodeStorage:
		middleware.RecordIntegrationError("s3")
	case usecase.CodeGateway:
		middleware.RecordIntegrationError("asaas")
	}
}
