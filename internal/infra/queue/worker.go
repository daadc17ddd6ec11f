package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type SettlementHandler interface {
	HandleSettlement(ctx context.Context, msg SettlementMessage) error
}

type EventHandler interface {
	HandleEvent(ctx context.Context, ev BillingEvent) error
}

// Consumer é o subconjunto de *amqp.Channel usado pelo worker.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 200 * time.Millisecond
)

// temporary é implementado pelos erros que podem dar certo numa nova tentativa.
type temporary interface {
	Temporary() bool
}

type Worker struct {
	Channel Consumer
	Logger  logrus.FieldLogger
	// MaxAttempts é o número de tentativas locais antes de devolver a mensagem.
	MaxAttempts int
	// RetryDelay cresce linearmente a cada tentativa.
	RetryDelay time.Duration
}

func NewWorker(ch Consumer, logger logrus.FieldLogger) *Worker {
	return &Worker{
		Channel:     ch,
		Logger:      logger,
		MaxAttempts: defaultMaxAttempts,
		RetryDelay:  defaultRetryDelay,
	}
}

// ConsumeSettlements bloqueia até ctx terminar ou o canal fechar.
func (w *Worker) ConsumeSettlements(ctx context.Context, h SettlementHandler) error {
	return w.consume(ctx, SettlementQueue, func(ctx context.Context, body []byte) error {
		var msg SettlementMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("json inválido: %w", err)
		}
		return h.HandleSettlement(ctx, msg)
	})
}

func (w *Worker) ConsumeEvents(ctx context.Context, h EventHandler) error {
	return w.consume(ctx, NotificationQueue, func(ctx context.Context, body []byte) error {
		var ev BillingEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("json inválido: %w", err)
		}
		return h.HandleEvent(ctx, ev)
	})
}

func (w *Worker) consume(ctx context.Context, queueName string, process func(context.Context, []byte) error) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor em %s: %w", queueName, err)
	}

	log := w.Logger.WithField("queue", queueName)
	log.Info("worker aguardando mensagens")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de %s fechado", queueName)
			}
			w.handle(ctx, log, d, process)
		}
	}
}

// handle tenta de novo localmente os erros temporários. Esgotadas as
// tentativas a mensagem volta para a fila uma vez; na segunda entrega vai
// para a DLQ. Erros permanentes vão direto para a DLQ.
func (w *Worker) handle(ctx context.Context, log logrus.FieldLogger, d amqp.Delivery, process func(context.Context, []byte) error) {
	attempts := w.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = process(ctx, d.Body); err == nil {
			d.Ack(false)
			return
		}
		if !isTemporary(err) || attempt == attempts {
			break
		}
		log.WithError(err).WithField("attempt", attempt).Warn("falha temporária, tentando de novo")
		select {
		case <-ctx.Done():
			d.Nack(false, true)
			return
		case <-time.After(w.RetryDelay * time.Duration(attempt)):
		}
	}

	requeue := isTemporary(err) && !d.Redelivered
	log.WithError(err).WithFields(logrus.Fields{
		"routing_key": d.RoutingKey,
		"requeue":     requeue,
	}).Error("falha ao processar mensagem")
	d.Nack(false, requeue)
}

func isTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t) && t.Temporary()
}
