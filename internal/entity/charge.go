package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	ChargePendente            ChargeStatus = "pendente"
	ChargeAtrasado            ChargeStatus = "atrasado"
	ChargeAguardandoAprovacao ChargeStatus = "aguardando_aprovacao"
	ChargePago                ChargeStatus = "pago"
	ChargeCancelado           ChargeStatus = "cancelado"
)

// PaymentOrigin registra por qual caminho a cobrança foi quitada.
type PaymentOrigin string

const (
	OriginManual       PaymentOrigin = "manual"
	OriginComprovativo PaymentOrigin = "comprovativo"
	OriginLote         PaymentOrigin = "lote"
	OriginGateway      PaymentOrigin = "gateway"
)

// DefaultGraceDays é o prazo entre o início do período e o vencimento.
const DefaultGraceDays = 5

type Charge struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"account_id"`
	SubscriptionID   string          `json:"subscription_id"`
	Amount           decimal.Decimal `json:"valor"`
	PeriodStart      time.Time       `json:"periodo_inicio"`
	PeriodEnd        time.Time       `json:"periodo_fim"`
	DueDate          time.Time       `json:"data_vencimento"`
	Status           ChargeStatus    `json:"status"`
	PaidAt           *time.Time      `json:"data_pagamento,omitempty"`
	PaymentOrigin    PaymentOrigin   `json:"origem_pagamento,omitempty"`
	ProofURL         string          `json:"comprovativo_url,omitempty"`
	BatchID          string          `json:"lote_id,omitempty"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewCharge monta a cobrança do período [periodStart, NextDueDate(periodStart)).
func NewCharge(sub *Subscription, periodStart time.Time, graceDays int) *Charge {
	now := time.Now()
	start := DateOnly(periodStart)
	return &Charge{
		ID:             uuid.New().String(),
		AccountID:      sub.AccountID,
		SubscriptionID: sub.ID,
		Amount:         CycleTotal(sub.Amount, sub.Frequency),
		PeriodStart:    start,
		PeriodEnd:      NextDueDate(start, sub.Frequency),
		DueDate:        start.AddDate(0, 0, graceDays),
		Status:         ChargePendente,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Outstanding: ainda em aberto (pendente ou atrasado).
func (s ChargeStatus) Outstanding() bool {
	return s == ChargePendente || s == ChargeAtrasado
}

// OpenStatus devolve pendente ou atrasado conforme o vencimento.
func OpenStatus(dueDate, now time.Time) ChargeStatus {
	if IsOverdue(dueDate, now) {
		return ChargeAtrasado
	}
	return ChargePendente
}

var chargeTransitions = map[ChargeStatus][]ChargeStatus{
	ChargePendente:            {ChargeAtrasado, ChargeAguardandoAprovacao, ChargePago, ChargeCancelado},
	ChargeAtrasado:            {ChargeAguardandoAprovacao, ChargePago, ChargeCancelado},
	ChargeAguardandoAprovacao: {ChargePago, ChargePendente, ChargeAtrasado},
}

func (s ChargeStatus) CanTransitionTo(to ChargeStatus) bool {
	for _, allowed := range chargeTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition valida e aplica a mudança de status em memória. A persistência
// compara o status anterior na mesma transação.
func (c *Charge) Transition(to ChargeStatus, now time.Time) error {
	if !c.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, to)
	}
	c.Status = to
	c.UpdatedAt = now
	return nil
}

// MarkPaid quita a cobrança registrando a origem do pagamento.
func (c *Charge) MarkPaid(origin PaymentOrigin, now time.Time) error {
	if err := c.Transition(ChargePago, now); err != nil {
		return err
	}
	c.PaidAt = &now
	c.PaymentOrigin = origin
	return nil
}
