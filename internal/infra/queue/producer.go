package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BillingEvent é publicado depois do commit de cada mudança relevante.
type BillingEvent struct {
	Type           string    `json:"type"`
	AccountID      string    `json:"account_id"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	ChargeID       string    `json:"charge_id,omitempty"`
	ParticipantID  string    `json:"participant_id,omitempty"`
	Amount         string    `json:"valor,omitempty"`
	DueDate        string    `json:"data_vencimento,omitempty"`
	Origin         string    `json:"origem_pagamento,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// SettlementMessage é o que o webhook do gateway enfileira para o consumidor.
type SettlementMessage struct {
	Event          string `json:"event"`
	SubscriptionID string `json:"subscription_id"`
	ChargeID       string `json:"charge_id,omitempty"`
	PaymentID      string `json:"payment_id"`
	Status         string `json:"status"`
	Value          string `json:"value,omitempty"`
}

type QueueProducerInterface interface {
	PublishEvent(ctx context.Context, ev BillingEvent) error
	PublishSettlement(ctx context.Context, msg SettlementMessage) error
}

// Publisher é o subconjunto de *amqp.Channel usado pelo produtor.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
	mu sync.Mutex
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishEvent(ctx context.Context, ev BillingEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return p.publish(ctx, ev.Type, ev)
}

func (p *RabbitMQProducer) PublishSettlement(ctx context.Context, msg SettlementMessage) error {
	return p.publish(ctx, SettlementRoutingKey, msg)
}

func (p *RabbitMQProducer) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ (%s): %w", key, err)
	}
	return nil
}
