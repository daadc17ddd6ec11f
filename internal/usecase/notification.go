package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

// NotificationUseCase consome os eventos de cobrança e avisa o participante por email.
type NotificationUseCase struct {
	Store  Store
	Email  EmailService
	Logger logrus.FieldLogger
}

func NewNotificationUseCase(store Store, email EmailService, logger logrus.FieldLogger) *NotificationUseCase {
	return &NotificationUseCase{Store: store, Email: email, Logger: logger}
}

func (uc *NotificationUseCase) HandleEvent(ctx context.Context, ev queue.BillingEvent) error {
	subject, message, ok := noticeFor(ev)
	if !ok {
		return nil
	}

	participant, err := uc.participantFor(ctx, ev)
	if errors.Is(err, entity.ErrNotFound) {
		uc.Logger.WithField("event", ev.Type).Warn("participante do evento não encontrado, aviso descartado")
		return nil
	}
	if err != nil {
		return err
	}
	if participant.Email == "" {
		return nil
	}

	if err := uc.Email.SendNotice(participant.Email, participant.Name, subject, message); err != nil {
		return fmt.Errorf("falha ao enviar aviso %s: %w", ev.Type, err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"event":           ev.Type,
		"account_id":      ev.AccountID,
		"subscription_id": ev.SubscriptionID,
	}).Info("📧 aviso enviado")
	return nil
}

func (uc *NotificationUseCase) participantFor(ctx context.Context, ev queue.BillingEvent) (*entity.Participant, error) {
	participantID := ev.ParticipantID
	if participantID == "" {
		if ev.SubscriptionID == "" {
			return nil, entity.ErrNotFound
		}
		sub, err := uc.Store.Subscriptions().FindByID(ctx, ev.SubscriptionID)
		if err != nil {
			return nil, err
		}
		participantID = sub.ParticipantID
	}
	return uc.Store.Participants().FindByID(ctx, participantID)
}

func noticeFor(ev queue.BillingEvent) (subject, message string, ok bool) {
	switch ev.Type {
	case queue.EventChargeCreated:
		return "Nova cobrança disponível",
			fmt.Sprintf("Sua cobrança de R$ %s vence em %s.", ev.Amount, ev.DueDate), true
	case queue.EventChargeOverdue:
		return "Cobrança em atraso",
			fmt.Sprintf("A cobrança de R$ %s venceu em %s e ainda não foi paga.", ev.Amount, ev.DueDate), true
	case queue.EventChargePaid:
		return "Pagamento confirmado",
			fmt.Sprintf("Recebemos o pagamento de R$ %s. Obrigado!", ev.Amount), true
	case queue.EventSubscriptionSuspended:
		return "Assinatura suspensa",
			"Sua assinatura foi suspensa por cobrança em atraso. Regularize para reativar o acesso.", true
	case queue.EventSubscriptionReactivated:
		return "Assinatura reativada", "Sua assinatura foi reativada. Bom proveito!", true
	default:
		return "", "", false
	}
}
