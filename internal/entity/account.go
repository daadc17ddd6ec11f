package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account é o tenant: dono dos streamings e da carteira.
type Account struct {
	ID              string          `json:"id"`
	Name            string          `json:"nome"`
	Plan            string          `json:"plano"`
	GroupLimit      int             `json:"limite_grupos"`
	PixKey          string          `json:"chave_pix"`
	PixPayeeName    string          `json:"pix_nome"`
	PixCity         string          `json:"pix_cidade"`
	AvailableAmount decimal.Decimal `json:"saldo_disponivel"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Streaming é o grupo de vagas de um serviço compartilhado.
type Streaming struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Name      string          `json:"nome"`
	FullPrice decimal.Decimal `json:"valor_integral"`
	SlotLimit int             `json:"limite_participantes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SlotCost é o valor mensal devido por vaga.
func (s *Streaming) SlotCost() decimal.Decimal {
	return PerSlotCost(s.FullPrice, s.SlotLimit)
}

// HasFreeSlot recebe a contagem de assinaturas ativas+suspensas do streaming.
func (s *Streaming) HasFreeSlot(occupied int) bool {
	return occupied+1 <= s.SlotLimit
}
