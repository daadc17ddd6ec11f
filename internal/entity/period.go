package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency é a periodicidade de cobrança de uma assinatura.
type Frequency string

const (
	FrequencyMensal     Frequency = "mensal"
	FrequencyTrimestral Frequency = "trimestral"
	FrequencySemestral  Frequency = "semestral"
	FrequencyAnual      Frequency = "anual"
)

// MoneyPlaces é a unidade mínima da moeda (centavos).
const MoneyPlaces = 2

// Months devolve o intervalo em meses; 0 para frequências desconhecidas.
func (f Frequency) Months() int {
	switch f {
	case FrequencyMensal:
		return 1
	case FrequencyTrimestral:
		return 3
	case FrequencySemestral:
		return 6
	case FrequencyAnual:
		return 12
	default:
		return 0
	}
}

func (f Frequency) Valid() bool {
	return f.Months() > 0
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("frequência inválida: %q", s)
	}
	return f, nil
}

// NextDueDate soma o intervalo da frequência a reference usando aritmética de
// calendário. Quando o dia não existe no mês de destino ele é limitado ao último
// dia (31/01 + 1 mês = 28/02 ou 29/02).
func NextDueDate(reference time.Time, f Frequency) time.Time {
	return addMonthsClamped(reference, f.Months())
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CycleTotal é o valor do período inteiro: mensalidade * meses do intervalo.
func CycleTotal(monthlyValue decimal.Decimal, f Frequency) decimal.Decimal {
	return monthlyValue.Mul(decimal.NewFromInt(int64(f.Months()))).Round(MoneyPlaces)
}

// PerSlotCost divide o preço integral entre as vagas e arredonda para centavos
// com meio-para-cima (0,025 -> 0,03). slotLimit < 1 é tratado como 1; a
// validação de limites acontece antes de chegar aqui.
func PerSlotCost(fullPrice decimal.Decimal, slotLimit int) decimal.Decimal {
	if slotLimit < 1 {
		slotLimit = 1
	}
	return fullPrice.Div(decimal.NewFromInt(int64(slotLimit))).Round(MoneyPlaces)
}

// IsOverdue compara por dia: uma cobrança vence no fim do dia de vencimento.
func IsOverdue(dueDate, now time.Time) bool {
	return DateOnly(now).After(DateOnly(dueDate))
}

// DateOnly trunca para meia-noite UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
