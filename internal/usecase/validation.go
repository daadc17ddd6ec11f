package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var nonDigits = regexp.MustCompile(`\D`)

func ValidateRegisterParticipantInput(input RegisterParticipantInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"nome", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"nome", "must not exceed 200 characters"})
	}

	if input.CPF != "" && !isValidCPF(input.CPF) {
		errors = append(errors, ValidationError{"cpf", "is invalid"})
	}
	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}
	if input.Phone != "" && !isValidPhoneNumber(input.Phone) {
		errors = append(errors, ValidationError{"telefone", "must be a valid phone number"})
	}

	if input.UserID == "" && input.CPF == "" && input.Email == "" && input.Phone == "" {
		errors = append(errors, ValidationError{"user_id", "user_id, cpf, email or telefone is required"})
	}

	return errors
}

// ValidateCreateSubscriptionInput checa o formato; regras que dependem do banco
// (dono do streaming, vagas, duplicidade) ficam no caso de uso.
func ValidateCreateSubscriptionInput(input CreateSubscriptionInput, now time.Time) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.ParticipantID) == "" {
		errors = append(errors, ValidationError{"participant_id", "is required"})
	}
	if strings.TrimSpace(input.StreamingID) == "" {
		errors = append(errors, ValidationError{"streaming_id", "is required"})
	}
	if !input.Frequency.Valid() {
		errors = append(errors, ValidationError{"frequencia", "must be mensal, trimestral, semestral or anual"})
	}

	if strings.TrimSpace(input.StartDate) == "" {
		errors = append(errors, ValidationError{"data_inicio", "is required"})
	} else if start, err := parseDate(input.StartDate); err != nil {
		errors = append(errors, ValidationError{"data_inicio", "must be a valid date (YYYY-MM-DD)"})
	} else if !withinStartWindow(start, now) {
		errors = append(errors, ValidationError{"data_inicio", "must be between 1 year ago and 1 month ahead"})
	}

	return errors
}

// withinStartWindow: data de início em [hoje - 1 ano, hoje + 1 mês].
func withinStartWindow(start, now time.Time) bool {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !start.Before(today.AddDate(-1, 0, 0)) && !start.After(today.AddDate(0, 1, 0))
}

func ValidateCancellationInput(input ScheduleCancellationInput) []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(input.SubscriptionID) == "" {
		errors = append(errors, ValidationError{"subscription_id", "is required"})
	}
	if strings.TrimSpace(input.EffectiveDate) == "" {
		errors = append(errors, ValidationError{"data_cancelamento", "is required"})
	} else if _, err := parseDate(input.EffectiveDate); err != nil {
		errors = append(errors, ValidationError{"data_cancelamento", "must be a valid date (YYYY-MM-DD)"})
	}
	return errors
}

// validateAmount rejeita valores nulos, negativos ou com mais de 2 casas.
func validateAmount(field string, amount decimal.Decimal) []ValidationError {
	if !amount.IsPositive() {
		return []ValidationError{{field, "must be greater than zero"}}
	}
	if !amount.Equal(amount.Round(2)) {
		return []ValidationError{{field, "must have at most 2 decimal places"}}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func isValidCPF(cpf string) bool {
	cleaned := nonDigits.ReplaceAllString(cpf, "")
	if len(cleaned) != 11 {
		return false
	}

	allEqual := true
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i] != cleaned[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	// dígitos verificadores
	for _, n := range []int{9, 10} {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(cleaned[i]-'0') * (n + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(cleaned[n]-'0') {
			return false
		}
	}
	return true
}

func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	return len(cleaned) >= 10 && len(cleaned) <= 11
}
