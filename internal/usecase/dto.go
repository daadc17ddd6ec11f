package usecase

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type RegisterParticipantInput struct {
	AccountID string `json:"-"`
	UserID    string `json:"user_id"`
	Name      string `json:"nome"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	Phone     string `json:"telefone"`
}

type RegisterParticipantOutput struct {
	Participant *entity.Participant `json:"participant"`
	Created     bool                `json:"created"`
}

type CreateSubscriptionInput struct {
	AccountID     string           `json:"-"`
	ParticipantID string           `json:"participant_id"`
	StreamingID   string           `json:"streaming_id"`
	Frequency     entity.Frequency `json:"frequencia"`
	StartDate     string           `json:"data_inicio"`
}

type CreateSubscriptionOutput struct {
	Subscription *entity.Subscription `json:"subscription"`
	FirstCharge  *entity.Charge       `json:"first_charge"`
}

type ScheduleCancellationInput struct {
	AccountID      string `json:"-"`
	SubscriptionID string `json:"-"`
	EffectiveDate  string `json:"data_cancelamento"`
}

// ChargeActionInput identifica a cobrança alvo de uma ação do operador.
type ChargeActionInput struct {
	AccountID string `json:"-"`
	ChargeID  string `json:"-"`
}

type SubmitProofInput struct {
	AccountID   string
	ChargeID    string
	File        io.Reader
	ContentType string
}

type SubmitBatchInput struct {
	AccountID   string
	ChargeIDs   []string
	File        io.Reader
	ContentType string
}

type RejectBatchInput struct {
	AccountID string `json:"-"`
	BatchID   string `json:"-"`
	Reason    string `json:"motivo"`
}

type PayoutInput struct {
	AccountID string          `json:"-"`
	Amount    decimal.Decimal `json:"valor"`
}

type BalanceOutput struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"saldo_disponivel"`
}

type FinancialSummary struct {
	AccountID string          `json:"account_id"`
	Received  decimal.Decimal `json:"recebido"`
	Pending   decimal.Decimal `json:"pendente"`
	Overdue   decimal.Decimal `json:"atrasado"`
}

type ChargePixOutput struct {
	ChargeID string          `json:"charge_id"`
	Amount   decimal.Decimal `json:"valor"`
	TxID     string          `json:"txid"`
	Payload  string          `json:"payload"`
}

type CheckoutInput struct {
	AccountID string `json:"-"`
	PlanID    string `json:"plan_id"`
}

type CheckoutOutput struct {
	URL string `json:"url"`
}

// TickResult é o resumo de uma execução da renovação; vai para o log.
type TickResult struct {
	TickID    string   `json:"tick_id"`
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Finalized int      `json:"finalized"`
	Overdue   int      `json:"overdue"`
	Suspended int      `json:"suspended"`
	Errors    []string `json:"errors"`
}
