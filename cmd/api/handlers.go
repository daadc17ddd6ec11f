package main

import (
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/ligue-rateio/internal/config"
	"github.com/xavierca1/ligue-rateio/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

// webhookLimit é o máximo de chamadas do gateway por minuto e IP.
const webhookLimit = 120

type useCases struct {
	participants  *usecase.ParticipantUseCase
	subscriptions *usecase.SubscriptionUseCase
	payments      *usecase.PaymentUseCase
	batches       *usecase.BatchUseCase
	wallet        *usecase.WalletUseCase
	renewal       *usecase.RenewalUseCase
	pix           *usecase.ChargePixUseCase
	checkout      *usecase.CheckoutUseCase
}

func newRouter(cfg *config.Config, uc useCases, producer queue.QueueProducerInterface, db *sql.DB, rabbitMQ *queue.RabbitMQ, logger logrus.FieldLogger) http.Handler {
	return handlers.Router{
		Participants:  handlers.NewParticipantHandler(uc.participants),
		Subscriptions: handlers.NewSubscriptionHandler(uc.subscriptions),
		Charges:       handlers.NewChargeHandler(uc.payments, uc.pix),
		Batches:       handlers.NewBatchHandler(uc.batches),
		Wallet:        handlers.NewWalletHandler(uc.wallet),
		Checkout:      handlers.NewCheckoutHandler(uc.checkout),
		Webhook:       handlers.NewWebhookHandler(producer, cfg.AsaasWebhookSecret, logger),
		Renewal:       handlers.NewRenewalHandler(uc.renewal),
		Health: handlers.NewHealthHandler(db, rabbitMQ.Conn, map[string]bool{
			"asaas": cfg.AsaasAPIKey != "",
			"s3":    cfg.S3Bucket != "",
			"smtp":  cfg.MailHost != "",
		}),
		CORSOrigins:   cfg.CORSOrigins,
		InternalToken: cfg.InternalToken,
		WebhookLimit:  webhookLimit,
	}.Handler()
}
