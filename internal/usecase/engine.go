package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

// Engine reúne as dependências compartilhadas pelos casos de uso de cobrança.
type Engine struct {
	UoW       UnitOfWork
	Events    EventPublisher
	Logger    logrus.FieldLogger
	Now       func() time.Time
	GraceDays int
}

func NewEngine(uow UnitOfWork, events EventPublisher, logger logrus.FieldLogger) *Engine {
	return &Engine{
		UoW:       uow,
		Events:    events,
		Logger:    logger,
		Now:       time.Now,
		GraceDays: entity.DefaultGraceDays,
	}
}

func (e *Engine) now() time.Time {
	return e.Now().UTC()
}

// txEvents acumula eventos durante a transação; só são publicados após o commit.
type txEvents struct {
	events []queue.BillingEvent
}

func (b *txEvents) add(ev queue.BillingEvent) {
	b.events = append(b.events, ev)
}

// inTx executa fn numa transação e publica os eventos gerados se ela confirmar.
func (e *Engine) inTx(ctx context.Context, fn func(tx Store, evs *txEvents) error) error {
	evs := &txEvents{}
	err := e.UoW.WithinTx(ctx, func(tx Store) error {
		evs.events = evs.events[:0]
		return fn(tx, evs)
	})
	if err != nil {
		return err
	}
	e.publish(ctx, evs.events)
	return nil
}

// Falha na fila não desfaz o que já foi gravado no banco.
func (e *Engine) publish(ctx context.Context, events []queue.BillingEvent) {
	if e.Events == nil {
		return
	}
	for _, ev := range events {
		if err := e.Events.PublishEvent(ctx, ev); err != nil {
			e.Logger.WithError(err).WithFields(logrus.Fields{
				"event":      ev.Type,
				"account_id": ev.AccountID,
				"charge_id":  ev.ChargeID,
			}).Error("⚠️ gravado no banco, mas falha ao publicar evento")
		}
	}
}

func chargeEvent(typ string, c *entity.Charge, now time.Time) queue.BillingEvent {
	return queue.BillingEvent{
		Type:           typ,
		AccountID:      c.AccountID,
		SubscriptionID: c.SubscriptionID,
		ChargeID:       c.ID,
		Amount:         c.Amount.StringFixed(entity.MoneyPlaces),
		DueDate:        c.DueDate.Format("2006-01-02"),
		Origin:         string(c.PaymentOrigin),
		OccurredAt:     now,
	}
}

func subscriptionEvent(typ string, s *entity.Subscription, now time.Time) queue.BillingEvent {
	return queue.BillingEvent{
		Type:           typ,
		AccountID:      s.AccountID,
		SubscriptionID: s.ID,
		ParticipantID:  s.ParticipantID,
		OccurredAt:     now,
	}
}

// loadCharge busca a cobrança garantindo que pertence à conta.
func loadCharge(ctx context.Context, s Store, accountID, chargeID string) (*entity.Charge, error) {
	c, err := s.Charges().FindByID(ctx, chargeID)
	if err != nil {
		return nil, wrapLookup(err, "cobrança")
	}
	if c.AccountID != accountID {
		return nil, notFound("cobrança")
	}
	return c, nil
}

func wrapLookup(err error, what string) error {
	if AsBillingError(err).Code == CodeNotFound {
		return notFound(what)
	}
	return err
}
