package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/ligue-rateio/internal/config"
	"github.com/xavierca1/ligue-rateio/internal/infra/database"
	"github.com/xavierca1/ligue-rateio/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-rateio/internal/infra/integration/asaas"
	"github.com/xavierca1/ligue-rateio/internal/infra/mail"
	"github.com/xavierca1/ligue-rateio/internal/infra/pix"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
	"github.com/xavierca1/ligue-rateio/internal/infra/storage"
	"github.com/xavierca1/ligue-rateio/internal/infra/worker"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

func main() {
	config.LoadEnv(logrus.StandardLogger())

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuração inválida")
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		logger.WithError(err).Fatal("❌ falha ao conectar no Postgres")
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		logger.WithError(err).Fatal("❌ falha ao aplicar migrações")
	}
	logger.WithField("applied", applied).Info("migrações conferidas")

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("❌ falha ao conectar no RabbitMQ")
	}
	defer rabbitMQ.Close()

	// 1. Store e adapters
	store := database.NewStore(db)
	producer := queue.NewProducer(rabbitMQ.Ch)
	events := middleware.InstrumentedPublisher{Next: producer}

	proofs, err := storage.NewS3ProofStorage(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("❌ falha ao configurar S3")
	}
	gateway := asaas.NewClient(cfg.AsaasAPIKey, cfg.AsaasURL, logger)
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)

	// 2. UseCases
	engine := usecase.NewEngine(store, events, logger)
	engine.GraceDays = cfg.ChargeGraceDays

	uc := useCases{
		participants:  usecase.NewParticipantUseCase(engine),
		subscriptions: usecase.NewSubscriptionUseCase(engine),
		payments:      usecase.NewPaymentUseCase(engine, proofs, cfg.PlatformFeePercent, cfg.PlatformFeeFixed),
		batches:       usecase.NewBatchUseCase(engine, proofs),
		wallet:        usecase.NewWalletUseCase(engine),
		renewal:       usecase.NewRenewalUseCase(engine),
		pix:           usecase.NewChargePixUseCase(store, pix.NewGenerator()),
		checkout:      usecase.NewCheckoutUseCase(store, gateway, logger),
	}
	notifications := usecase.NewNotificationUseCase(store, mailSender, logger)

	// 3. Workers
	consumer := queue.NewWorker(rabbitMQ.Ch, logger)
	go func() {
		if err := consumer.ConsumeSettlements(ctx, uc.payments); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("consumidor de liquidações parou")
			stop()
		}
	}()
	go func() {
		if err := consumer.ConsumeEvents(ctx, notifications); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("consumidor de notificações parou")
			stop()
		}
	}()

	renewalWorker, err := worker.NewRenewalWorker(uc.renewal, cfg.RenewalCron, logger)
	if err != nil {
		logger.WithError(err).Fatal("❌ agendamento da renovação inválido")
	}
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := renewalWorker.Start(ctx); err != nil {
			logger.WithError(err).Error("worker de renovação parou")
		}
	}()

	// 4. HTTP
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           newRouter(cfg, uc, producer, db, rabbitMQ, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("🔥 Server Ligue Rateio rodando na porta %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("servidor HTTP parou")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("shutdown HTTP incompleto")
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn("renovação ainda em andamento no encerramento")
	}
}
