package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionAtiva     SubscriptionStatus = "ativa"
	SubscriptionSuspensa  SubscriptionStatus = "suspensa"
	SubscriptionCancelada SubscriptionStatus = "cancelada"
)

// MotivoInadimplencia é gravado em motivo_suspensao pelo avaliador.
const MotivoInadimplencia = "cobrança em atraso"

type Subscription struct {
	ID               string             `json:"id"`
	AccountID        string             `json:"account_id"`
	ParticipantID    string             `json:"participant_id"`
	StreamingID      string             `json:"streaming_id"`
	Frequency        Frequency          `json:"frequencia"`
	Amount           decimal.Decimal    `json:"valor"` // equivalente mensal
	StartDate        time.Time          `json:"data_inicio"`
	CancellationDate *time.Time         `json:"data_cancelamento,omitempty"`
	Status           SubscriptionStatus `json:"status"`
	SuspendedAt      *time.Time         `json:"data_suspensao,omitempty"`
	SuspensionReason string             `json:"motivo_suspensao,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewSubscription cria a assinatura já ativa.
func NewSubscription(accountID, participantID, streamingID string, freq Frequency, amount decimal.Decimal, start time.Time) *Subscription {
	now := time.Now()
	return &Subscription{
		ID:            uuid.New().String(),
		AccountID:     accountID,
		ParticipantID: participantID,
		StreamingID:   streamingID,
		Frequency:     freq,
		Amount:        amount,
		StartDate:     DateOnly(start),
		Status:        SubscriptionAtiva,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Billable indica se a assinatura ocupa vaga e continua gerando cobranças.
func (s *Subscription) Billable() bool {
	return s.Status == SubscriptionAtiva || s.Status == SubscriptionSuspensa
}

// CancellationScheduled é a visão derivada "cancelamento_agendado".
func (s *Subscription) CancellationScheduled() bool {
	return s.Billable() && s.CancellationDate != nil
}

// CancellationDue indica que a data efetiva do cancelamento já chegou.
func (s *Subscription) CancellationDue(now time.Time) bool {
	return s.CancellationDate != nil && !DateOnly(now).Before(DateOnly(*s.CancellationDate))
}

func (s *Subscription) Suspend(now time.Time, reason string) {
	s.Status = SubscriptionSuspensa
	s.SuspendedAt = &now
	s.SuspensionReason = reason
	s.UpdatedAt = now
}

func (s *Subscription) Reactivate(now time.Time) {
	s.Status = SubscriptionAtiva
	s.SuspendedAt = nil
	s.SuspensionReason = ""
	s.UpdatedAt = now
}

func (s *Subscription) Cancel(now time.Time) {
	s.Status = SubscriptionCancelada
	s.SuspendedAt = nil
	s.SuspensionReason = ""
	s.UpdatedAt = now
}
