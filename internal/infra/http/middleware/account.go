package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type accountKey struct{}

// AccountHeader é preenchido pela camada de autenticação que fica na frente da API.
const AccountHeader = "X-Account-ID"

// RequireAccount rejeita requisições sem conta válida e guarda o id no contexto.
func RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := strings.TrimSpace(r.Header.Get(AccountHeader))
		if accountID == "" {
			unauthorized(w, "conta não informada")
			return
		}
		if _, err := uuid.Parse(accountID); err != nil {
			unauthorized(w, "conta inválida")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), accountID)))
	})
}

// InternalTokenHeader protege rotas operacionais como o disparo da renovação.
const InternalTokenHeader = "X-Internal-Token"

// RequireInternalToken compara o cabeçalho com token em tempo constante.
// Sem token configurado a rota fica fechada.
func RequireInternalToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(InternalTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				unauthorized(w, "token interno inválido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   msg,
		"code":    "UNAUTHORIZED",
	})
}

func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountKey{}, accountID)
}

func AccountFromContext(ctx context.Context) string {
	id, _ := ctx.Value(accountKey{}).(string)
	return id
}
