package entity

import "errors"

var (
	ErrNotFound              = errors.New("registro não encontrado")
	ErrPlanNotFound          = errors.New("plano não encontrado")
	ErrDuplicateCharge       = errors.New("já existe cobrança para este período")
	ErrDuplicateSubscription = errors.New("participante já possui assinatura neste streaming")
	ErrDuplicateWalletEntry  = errors.New("cobrança já creditada na carteira")
	ErrDuplicateParticipant  = errors.New("participante já cadastrado nesta conta")
	ErrStaleStatus           = errors.New("status alterado por outra operação")
	ErrInvalidTransition     = errors.New("transição de status inválida")
	ErrInsufficientFunds     = errors.New("saldo insuficiente")
	ErrInvalidAmount         = errors.New("valor deve ser positivo")
)
