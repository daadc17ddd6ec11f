package usecase

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

// Store dá acesso aos repositórios, dentro ou fora de uma transação.
type Store interface {
	Accounts() entity.AccountRepository
	Streamings() entity.StreamingRepository
	Participants() entity.ParticipantRepository
	Subscriptions() entity.SubscriptionRepository
	Charges() entity.ChargeRepository
	Batches() entity.BatchRepository
	Wallet() entity.WalletRepository
	Plans() entity.PlanRepository
}

// UnitOfWork executa fn numa transação; erro de fn faz rollback.
type UnitOfWork interface {
	Store
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type ProofStorage interface {
	UploadProof(ctx context.Context, file io.Reader, contentType string) (string, error)
	DeleteProof(ctx context.Context, url string) error
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, accountID string, plan *entity.Plan) (string, error)
}

type PixGenerator interface {
	GenerateStaticPix(key, payeeName, city string, amount decimal.Decimal, txID string) (string, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, ev queue.BillingEvent) error
}

type EmailService interface {
	SendNotice(to, name, subject, message string) error
}
