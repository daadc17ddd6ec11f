package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

type SubscriptionUseCase struct {
	*Engine
}

func NewSubscriptionUseCase(engine *Engine) *SubscriptionUseCase {
	return &SubscriptionUseCase{Engine: engine}
}

// Create abre a assinatura e a primeira cobrança na mesma transação: não
// existe assinatura sem cobrança.
func (uc *SubscriptionUseCase) Create(ctx context.Context, input CreateSubscriptionInput) (*CreateSubscriptionOutput, error) {
	now := uc.now()
	input.Frequency = entity.Frequency(normalize(string(input.Frequency)))
	if errs := ValidateCreateSubscriptionInput(input, now); len(errs) > 0 {
		return nil, invalidInput(errs)
	}
	start, _ := parseDate(input.StartDate)

	var out CreateSubscriptionOutput
	err := uc.inTx(ctx, func(tx Store, evs *txEvents) error {
		// o lock no streaming serializa a contagem de vagas
		streaming, err := tx.Streamings().LockByID(ctx, input.StreamingID)
		if err != nil {
			return wrapLookup(err, "streaming")
		}
		if streaming.AccountID != input.AccountID {
			return notFound("streaming")
		}

		participant, err := tx.Participants().FindByID(ctx, input.ParticipantID)
		if err != nil {
			return wrapLookup(err, "participante")
		}
		if participant.AccountID != input.AccountID {
			return notFound("participante")
		}

		occupied, err := tx.Subscriptions().CountBillable(ctx, streaming.ID)
		if err != nil {
			return fmt.Errorf("erro ao contar vagas: %w", err)
		}
		if !streaming.HasFreeSlot(occupied) {
			return validationError(CodeSlotLimitExceeded,
				fmt.Sprintf("limite de %d participantes atingido", streaming.SlotLimit))
		}

		exists, err := tx.Subscriptions().ExistsBillable(ctx, participant.ID, streaming.ID)
		if err != nil {
			return fmt.Errorf("erro ao checar duplicidade: %w", err)
		}
		if exists {
			return validationError(CodeDuplicateSubscription, entity.ErrDuplicateSubscription.Error())
		}

		sub := entity.NewSubscription(input.AccountID, participant.ID, streaming.ID, input.Frequency, streaming.SlotCost(), start)
		if err := tx.Subscriptions().Create(ctx, sub); err != nil {
			return err
		}

		charge := entity.NewCharge(sub, sub.StartDate, uc.GraceDays)
		if err := tx.Charges().Create(ctx, charge); err != nil {
			return err
		}
		evs.add(chargeEvent(queue.EventChargeCreated, charge, now))

		if _, err := uc.evaluateSubscription(ctx, tx, sub.ID, now, evs); err != nil {
			return err
		}

		// relê para devolver o estado pós-avaliação
		if out.Subscription, err = tx.Subscriptions().FindByID(ctx, sub.ID); err != nil {
			return err
		}
		out.FirstCharge, err = tx.Charges().FindByID(ctx, charge.ID)
		return err
	})
	if err != nil {
		return nil, AsBillingError(err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"account_id":      input.AccountID,
		"subscription_id": out.Subscription.ID,
		"charge_id":       out.FirstCharge.ID,
	}).Info("✅ assinatura criada")
	return &out, nil
}

// ScheduleCancellation grava a data efetiva; a assinatura segue cobrando até
// lá. Datas de hoje ou passadas finalizam na hora.
func (uc *SubscriptionUseCase) ScheduleCancellation(ctx context.Context, input ScheduleCancellationInput) (*entity.Subscription, error) {
	if errs := ValidateCancellationInput(input); len(errs) > 0 {
		return nil, invalidInput(errs)
	}
	effective, _ := parseDate(input.EffectiveDate)
	now := uc.now()

	var out *entity.Subscription
	err := uc.inTx(ctx, func(tx Store, evs *txEvents) error {
		sub, err := tx.Subscriptions().FindByID(ctx, input.SubscriptionID)
		if err != nil {
			return wrapLookup(err, "assinatura")
		}
		if sub.AccountID != input.AccountID {
			return notFound("assinatura")
		}
		if !sub.Billable() {
			return invalidStatus("assinatura já cancelada")
		}
		if effective.Before(sub.StartDate) {
			return invalidInput([]ValidationError{{"data_cancelamento", "must not be before data_inicio"}})
		}

		from := sub.Status
		sub.CancellationDate = &effective
		sub.UpdatedAt = now
		if err := tx.Subscriptions().Update(ctx, sub, from); err != nil {
			return err
		}

		if sub.CancellationDue(now) {
			if err := uc.finalizeCancellation(ctx, tx, sub, now, evs); err != nil {
				return err
			}
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, AsBillingError(err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"account_id":      input.AccountID,
		"subscription_id": out.ID,
		"effective_date":  input.EffectiveDate,
	}).Info("cancelamento agendado")
	return out, nil
}

// finalizeCancellation cancela a assinatura e as cobranças em aberto de
// períodos a partir da data efetiva; dívidas anteriores continuam abertas.
func (e *Engine) finalizeCancellation(ctx context.Context, tx Store, sub *entity.Subscription, now time.Time, evs *txEvents) error {
	charges, err := tx.Charges().ListBySubscription(ctx, sub.ID)
	if err != nil {
		return fmt.Errorf("erro ao listar cobranças: %w", err)
	}

	cutoff := entity.DateOnly(*sub.CancellationDate)
	for _, c := range charges {
		if !c.Status.Outstanding() || c.PeriodStart.Before(cutoff) {
			continue
		}
		from := c.Status
		if err := c.Transition(entity.ChargeCancelado, now); err != nil {
			return err
		}
		if err := tx.Charges().Update(ctx, c, from); err != nil {
			return err
		}
		evs.add(chargeEvent(queue.EventChargeCancelled, c, now))
	}

	from := sub.Status
	sub.Cancel(now)
	if err := tx.Subscriptions().Update(ctx, sub, from); err != nil {
		return err
	}
	evs.add(subscriptionEvent(queue.EventSubscriptionCancelled, sub, now))
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
