package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-rateio/internal/infra/integration/asaas"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

const SignatureHeader = "asaas-signature"

// maxWebhookBody limita o corpo aceito do gateway (1 MB).
const maxWebhookBody = 1 << 20

// WebhookHandler valida a assinatura do Asaas e enfileira a liquidação;
// o efeito no banco acontece no consumidor.
type WebhookHandler struct {
	Producer queue.QueueProducerInterface
	Secret   string
	Logger   logrus.FieldLogger
}

func NewWebhookHandler(producer queue.QueueProducerInterface, secret string, logger logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{Producer: producer, Secret: secret, Logger: logger}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "corpo ilegível")
		return
	}

	if !h.validSignature(body, r.Header.Get(SignatureHeader)) {
		h.Logger.WithField("remote", r.RemoteAddr).Warn("🚫 webhook com assinatura inválida")
		writeErrorResponse(w, http.StatusUnauthorized, "invalid_signature", "assinatura inválida")
		return
	}

	var event asaas.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido")
		return
	}

	if event.Event != usecase.GatewayPaymentReceived && event.Event != usecase.GatewayPaymentConfirmed {
		w.WriteHeader(http.StatusOK)
		return
	}

	msg, ok := settlementFrom(event)
	if !ok {
		h.Logger.WithFields(logrus.Fields{
			"payment_id": event.Payment.ID,
			"reference":  event.Payment.ExternalReference,
		}).Info("webhook sem cobrança de participante, ignorado")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.Producer.PublishSettlement(r.Context(), msg); err != nil {
		h.Logger.WithError(err).WithField("payment_id", msg.PaymentID).Error("❌ erro ao enfileirar liquidação")
		middleware.RecordIntegrationError("rabbitmq")
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeGateway, "falha ao enfileirar")
		return
	}

	h.Logger.WithFields(logrus.Fields{
		"subscription_id": msg.SubscriptionID,
		"charge_id":       msg.ChargeID,
		"payment_id":      msg.PaymentID,
	}).Info("📨 liquidação enfileirada")
	w.WriteHeader(http.StatusOK)
}

// validSignature confere hex(sha256(corpo + segredo)). Sem segredo configurado nada passa.
func (h *WebhookHandler) validSignature(body []byte, signature string) bool {
	if h.Secret == "" || signature == "" {
		return false
	}
	sum := sha256.Sum256(append(append([]byte{}, body...), h.Secret...))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) == 1
}

// settlementFrom lê a referência externa "assinatura[:cobrança]" gravada no pagamento.
func settlementFrom(event asaas.WebhookEvent) (queue.SettlementMessage, bool) {
	ref := strings.TrimSpace(event.Payment.ExternalReference)
	if ref == "" || strings.HasPrefix(ref, asaas.CheckoutReferencePrefix) {
		return queue.SettlementMessage{}, false
	}
	subscriptionID, chargeID, _ := strings.Cut(ref, ":")
	return queue.SettlementMessage{
		Event:          event.Event,
		SubscriptionID: subscriptionID,
		ChargeID:       chargeID,
		PaymentID:      event.Payment.ID,
		Status:         event.Payment.Status,
		Value:          strconv.FormatFloat(event.Payment.Value, 'f', 2, 64),
	}, true
}
