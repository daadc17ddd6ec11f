package entity

import (
	"context"

	"github.com/shopspring/decimal"
)

type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	// LockByID lê a conta com SELECT ... FOR UPDATE.
	LockByID(ctx context.Context, id string) (*Account, error)
	UpdateAvailableAmount(ctx context.Context, id string, amount decimal.Decimal) error
}

type StreamingRepository interface {
	FindByID(ctx context.Context, id string) (*Streaming, error)
	LockByID(ctx context.Context, id string) (*Streaming, error)
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *Participant) error
	FindByID(ctx context.Context, id string) (*Participant, error)
	FindByIdentity(ctx context.Context, accountID string, id Identity) (*Participant, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *Subscription) error
	FindByID(ctx context.Context, id string) (*Subscription, error)
	// CountBillable conta assinaturas ativas+suspensas do streaming.
	CountBillable(ctx context.Context, streamingID string) (int, error)
	ExistsBillable(ctx context.Context, participantID, streamingID string) (bool, error)
	// ListBillable devolve assinaturas ativas+suspensas de todas as contas.
	ListBillable(ctx context.Context) ([]*Subscription, error)
	// Update grava s somente se o status no banco ainda for from.
	Update(ctx context.Context, s *Subscription, from SubscriptionStatus) error
}

type ChargeRepository interface {
	Create(ctx context.Context, c *Charge) error
	FindByID(ctx context.Context, id string) (*Charge, error)
	// ListBySubscription ordena por periodo_inicio.
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*Charge, error)
	// Latest devolve a cobrança de maior periodo_inicio, canceladas incluídas,
	// para que um período cancelado pelo operador não seja emitido de novo.
	Latest(ctx context.Context, subscriptionID string) (*Charge, error)
	// Update grava c somente se o status no banco ainda for from.
	Update(ctx context.Context, c *Charge, from ChargeStatus) error
	SumByStatus(ctx context.Context, accountID string) (map[ChargeStatus]decimal.Decimal, error)
}

type BatchRepository interface {
	Create(ctx context.Context, b *Batch) error
	FindByID(ctx context.Context, id string) (*Batch, error)
	Update(ctx context.Context, b *Batch, from BatchStatus) error
}

type WalletRepository interface {
	// Append falha com ErrDuplicateWalletEntry se a cobrança já foi creditada.
	Append(ctx context.Context, e *WalletEntry) error
	Balance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

type PlanRepository interface {
	FindByID(ctx context.Context, id string) (*Plan, error)
}
