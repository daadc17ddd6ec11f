package entity

import "github.com/shopspring/decimal"

// Plan é o plano da plataforma contratado por uma Account via gateway.
type Plan struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	GroupLimit int
}
