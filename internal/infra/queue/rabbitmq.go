package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.billing"
	DLXName      = "ex.billing.dlx" // Dead Letter Exchange

	SettlementQueue      = "q.gateway-settlements"
	SettlementDLQ        = "q.gateway-settlements.dlq"
	SettlementRoutingKey = "gateway.settlement"

	NotificationQueue = "q.billing-notifications"
	NotificationDLQ   = "q.billing-notifications.dlq"
	NotificationDLKey = "billing.notification"
)

// Chaves de roteamento dos eventos publicados no exchange de cobrança.
const (
	EventChargeCreated           = "charge.created"
	EventChargePaid              = "charge.paid"
	EventChargeOverdue           = "charge.overdue"
	EventChargeCancelled         = "charge.cancelled"
	EventSubscriptionSuspended   = "subscription.suspended"
	EventSubscriptionReactivated = "subscription.reactivated"
	EventSubscriptionCancelled   = "subscription.cancelled"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := SetupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar topologia: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() error {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}

// Declarer é o subconjunto de *amqp.Channel usado na topologia.
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

type binding struct {
	queue, dlq, dlKey string
	keys              []string
}

var bindings = []binding{
	{SettlementQueue, SettlementDLQ, SettlementRoutingKey, []string{SettlementRoutingKey}},
	{NotificationQueue, NotificationDLQ, NotificationDLKey, []string{"charge.*", "subscription.*"}},
}

func SetupTopology(ch Declarer) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.dlq, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(b.dlq, b.dlKey, DLXName, false, nil); err != nil {
			return err
		}

		args := amqp.Table{
			"x-dead-letter-exchange":    DLXName, // Nack sem requeue vai pra DLQ
			"x-dead-letter-routing-key": b.dlKey,
		}
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, args); err != nil {
			return err
		}
		for _, key := range b.keys {
			if err := ch.QueueBind(b.queue, key, ExchangeName, false, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
