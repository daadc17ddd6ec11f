package usecase

import (
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-rateio/internal/entity"
)

// ErrorKind é o conjunto fechado de classes de erro do motor de cobrança.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindInfrastructure ErrorKind = "infrastructure"
)

const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeSlotLimitExceeded     = "SLOT_LIMIT_EXCEEDED"
	CodeDuplicateSubscription = "DUPLICATE_SUBSCRIPTION"
	CodeInvalidStatus         = "INVALID_STATUS"
	CodeInsufficientFunds     = "INSUFFICIENT_FUNDS"
	CodeStaleStatus           = "STALE_STATUS"
	CodeDuplicateCharge       = "DUPLICATE_CHARGE"
	CodeDuplicateParticipant  = "DUPLICATE_PARTICIPANT"
	CodeDatabase              = "DATABASE_ERROR"
	CodeStorage               = "STORAGE_ERROR"
	CodeGateway               = "GATEWAY_ERROR"
)

type BillingError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  []ValidationError
	Err     error
}

func (e *BillingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BillingError) Unwrap() error {
	return e.Err
}

// Retryable: conflitos podem ser refeitos depois de reler o estado.
func (e *BillingError) Retryable() bool {
	return e.Kind == KindConflict
}

// Temporary indica que a mesma mensagem pode dar certo mais tarde: conflito
// ou falha de infraestrutura. Usado pelo consumidor da fila.
func (e *BillingError) Temporary() bool {
	return e.Kind == KindConflict || e.Kind == KindInfrastructure
}

func validationError(code, message string) *BillingError {
	return &BillingError{Kind: KindValidation, Code: code, Message: message}
}

func invalidInput(fields []ValidationError) *BillingError {
	msg := "dados inválidos"
	if len(fields) > 0 {
		msg = fields[0].Error()
	}
	return &BillingError{Kind: KindValidation, Code: CodeValidation, Message: msg, Fields: fields}
}

func notFound(what string) *BillingError {
	return &BillingError{Kind: KindValidation, Code: CodeNotFound, Message: what + " não encontrado(a)"}
}

func invalidStatus(message string) *BillingError {
	return &BillingError{Kind: KindValidation, Code: CodeInvalidStatus, Message: message}
}

func infraError(code, message string, err error) *BillingError {
	return &BillingError{Kind: KindInfrastructure, Code: code, Message: message, Err: err}
}

// AsBillingError classifica qualquer erro vindo das camadas de baixo.
func AsBillingError(err error) *BillingError {
	if err == nil {
		return nil
	}
	var be *BillingError
	if errors.As(err, &be) {
		return be
	}

	switch {
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, entity.ErrPlanNotFound):
		return &BillingError{Kind: KindValidation, Code: CodeNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrDuplicateSubscription):
		return &BillingError{Kind: KindValidation, Code: CodeDuplicateSubscription, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrInvalidTransition):
		return &BillingError{Kind: KindValidation, Code: CodeInvalidStatus, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrInsufficientFunds):
		return &BillingError{Kind: KindValidation, Code: CodeInsufficientFunds, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrInvalidAmount):
		return &BillingError{Kind: KindValidation, Code: CodeValidation, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrStaleStatus):
		return &BillingError{Kind: KindConflict, Code: CodeStaleStatus, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrDuplicateCharge), errors.Is(err, entity.ErrDuplicateWalletEntry):
		return &BillingError{Kind: KindConflict, Code: CodeDuplicateCharge, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrDuplicateParticipant):
		return &BillingError{Kind: KindConflict, Code: CodeDuplicateParticipant, Message: err.Error(), Err: err}
	default:
		return infraError(CodeDatabase, "erro interno ao acessar o banco", err)
	}
}

func IsValidation(err error) bool {
	return err != nil && AsBillingError(err).Kind == KindValidation
}

func IsConflict(err error) bool {
	return err != nil && AsBillingError(err).Kind == KindConflict
}
