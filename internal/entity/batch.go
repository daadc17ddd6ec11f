package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BatchStatus string

const (
	BatchAguardandoAprovacao BatchStatus = "aguardando_aprovacao"
	BatchAprovado            BatchStatus = "aprovado"
	BatchRejeitado           BatchStatus = "rejeitado"
)

// Batch (lote) agrupa várias cobranças pagas com um único comprovante.
type Batch struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	ChargeIDs       []string        `json:"charge_ids"`
	Total           decimal.Decimal `json:"valor_total"`
	ProofURL        string          `json:"comprovativo_url"`
	Status          BatchStatus     `json:"status"`
	RejectionReason string          `json:"motivo_rejeicao,omitempty"`
	ReviewedAt      *time.Time      `json:"data_revisao,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewBatch(accountID string, charges []*Charge, proofURL string) *Batch {
	now := time.Now()
	b := &Batch{
		ID:        uuid.New().String(),
		AccountID: accountID,
		ProofURL:  proofURL,
		Status:    BatchAguardandoAprovacao,
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, c := range charges {
		b.ChargeIDs = append(b.ChargeIDs, c.ID)
		b.Total = b.Total.Add(c.Amount)
	}
	return b
}
