package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

type TickRunner interface {
	RunRenewalTick(ctx context.Context) usecase.TickResult
}

// RenewalWorker dispara a renovação no agendamento do cron e uma vez na subida.
type RenewalWorker struct {
	runner   TickRunner
	schedule string
	logger   logrus.FieldLogger
}

func NewRenewalWorker(runner TickRunner, schedule string, logger logrus.FieldLogger) (*RenewalWorker, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("RENEWAL_CRON inválido (%q): %w", schedule, err)
	}
	return &RenewalWorker{runner: runner, schedule: schedule, logger: logger}, nil
}

// Start bloqueia até ctx ser cancelado e espera o tick em andamento terminar.
func (w *RenewalWorker) Start(ctx context.Context) error {
	w.logger.WithField("schedule", w.schedule).Info("🕒 Renewal Worker iniciado")

	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(w.logger)),
		cron.SkipIfStillRunning(cron.PrintfLogger(w.logger)),
	))
	if _, err := c.AddFunc(w.schedule, func() { w.run(ctx) }); err != nil {
		return fmt.Errorf("erro ao agendar renovação: %w", err)
	}

	w.run(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("⚠️ Renewal Worker encerrado")
	return nil
}

func (w *RenewalWorker) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	result := w.runner.RunRenewalTick(ctx)
	middleware.RecordTick(result, time.Since(start))

	if len(result.Errors) > 0 {
		w.logger.WithFields(logrus.Fields{
			"tick_id": result.TickID,
			"errors":  len(result.Errors),
		}).Warn("renovação concluída com falhas")
	}
}
