package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryCredito EntryKind = "credito"
	EntryDebito  EntryKind = "debito"
)

// WalletEntry é uma linha imutável do extrato da Account. Net é negativo em débitos.
type WalletEntry struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	ChargeID    string          `json:"charge_id,omitempty"`
	Kind        EntryKind       `json:"tipo"`
	Gross       decimal.Decimal `json:"valor_bruto"`
	Fee         decimal.Decimal `json:"taxa"`
	Net         decimal.Decimal `json:"valor_liquido"`
	Description string          `json:"descricao"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewCredit registra gross - fee para uma cobrança liquidada pelo gateway.
func NewCredit(accountID, chargeID string, gross, fee decimal.Decimal) (*WalletEntry, error) {
	if !gross.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if fee.IsNegative() {
		return nil, ErrInvalidAmount
	}
	return &WalletEntry{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		ChargeID:    chargeID,
		Kind:        EntryCredito,
		Gross:       gross,
		Fee:         fee,
		Net:         gross.Sub(fee),
		Description: "cobrança liquidada via gateway",
		CreatedAt:   time.Now(),
	}, nil
}

// NewDebit registra um saque; só é válido se balance cobre o valor.
func NewDebit(accountID string, amount, balance decimal.Decimal) (*WalletEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}
	return &WalletEntry{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Kind:        EntryDebito,
		Gross:       amount,
		Fee:         decimal.Zero,
		Net:         amount.Neg(),
		Description: "saque",
		CreatedAt:   time.Now(),
	}, nil
}

// Balance é a soma de Net: a fonte de verdade do saldo disponível.
func Balance(entries []*WalletEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Net)
	}
	return total
}

// PlatformFee aplica percentual + fixo, arredondado em centavos e limitado ao bruto.
func PlatformFee(gross, percent, fixed decimal.Decimal) decimal.Decimal {
	fee := gross.Mul(percent).Div(decimal.NewFromInt(100)).Add(fixed).Round(MoneyPlaces)
	if fee.GreaterThan(gross) {
		return gross
	}
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}
