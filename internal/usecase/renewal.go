package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

// maxCatchUpPeriods limita quantos períodos uma única execução gera para a
// mesma assinatura (anual = 1, mensal com 2 anos parado = 24).
const maxCatchUpPeriods = 36

type RenewalUseCase struct {
	*Engine
}

func NewRenewalUseCase(engine *Engine) *RenewalUseCase {
	return &RenewalUseCase{Engine: engine}
}

// RunRenewalTick percorre todas as assinaturas ativas/suspensas de todas as
// contas, uma transação por assinatura. Pode ser chamado de novo a qualquer
// momento: o índice único em (subscription_id, periodo_inicio) impede cobrança
// duplicada.
func (uc *RenewalUseCase) RunRenewalTick(ctx context.Context) TickResult {
	now := uc.now()
	res := TickResult{TickID: uuid.New().String(), Errors: []string{}}
	log := uc.Logger.WithField("tick_id", res.TickID)

	subs, err := uc.UoW.Subscriptions().ListBillable(ctx)
	if err != nil {
		log.WithError(err).Error("❌ falha ao listar assinaturas")
		res.Errors = append(res.Errors, fmt.Sprintf("listar assinaturas: %v", err))
		return res
	}

	for _, sub := range subs {
		if ctx.Err() != nil {
			res.Errors = append(res.Errors, "execução interrompida: "+ctx.Err().Error())
			break
		}

		out, err := uc.renewSubscription(ctx, sub.ID, now)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"account_id":      sub.AccountID,
				"subscription_id": sub.ID,
			}).Error("❌ falha ao renovar assinatura, segue para a próxima")
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", sub.ID, err))
			continue
		}

		res.Processed++
		res.Created += out.created
		res.Overdue += out.overdue
		if out.finalized {
			res.Finalized++
		}
		if out.suspended {
			res.Suspended++
		}
	}

	log.WithFields(logrus.Fields{
		"processed": res.Processed,
		"created":   res.Created,
		"finalized": res.Finalized,
		"overdue":   res.Overdue,
		"suspended": res.Suspended,
		"errors":    len(res.Errors),
	}).Info("🕒 renovação concluída")
	return res
}

type renewalOutcome struct {
	created   int
	overdue   int
	finalized bool
	suspended bool
}

func (uc *RenewalUseCase) renewSubscription(ctx context.Context, subscriptionID string, now time.Time) (renewalOutcome, error) {
	var out renewalOutcome
	today := entity.DateOnly(now)

	err := uc.inTx(ctx, func(tx Store, evs *txEvents) error {
		out = renewalOutcome{}

		// relido dentro da transação: pode ter mudado desde a listagem
		sub, err := tx.Subscriptions().FindByID(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if !sub.Billable() {
			return nil
		}

		if sub.CancellationDue(now) {
			out.finalized = true
			return uc.finalizeCancellation(ctx, tx, sub, now, evs)
		}

		for i := 0; i < maxCatchUpPeriods; i++ {
			start, err := nextPeriodStart(ctx, tx, sub)
			if err != nil {
				return err
			}
			if start.After(today) {
				break
			}
			if sub.CancellationDate != nil && !start.Before(entity.DateOnly(*sub.CancellationDate)) {
				break
			}

			charge := entity.NewCharge(sub, start, uc.GraceDays)
			err = tx.Charges().Create(ctx, charge)
			if errors.Is(err, entity.ErrDuplicateCharge) {
				// outra execução gerou este período
				break
			}
			if err != nil {
				return err
			}
			out.created++
			evs.add(chargeEvent(queue.EventChargeCreated, charge, now))
		}

		ev, err := uc.evaluateSubscription(ctx, tx, sub.ID, now, evs)
		if err != nil {
			return err
		}
		out.overdue = ev.Overdue
		out.suspended = ev.Suspended
		return nil
	})
	return out, err
}

// nextPeriodStart é o fim do último período emitido, ou a data de
// início se a assinatura ainda não tem cobrança.
func nextPeriodStart(ctx context.Context, tx Store, sub *entity.Subscription) (time.Time, error) {
	latest, err := tx.Charges().Latest(ctx, sub.ID)
	if errors.Is(err, entity.ErrNotFound) {
		return sub.StartDate, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return entity.DateOnly(latest.PeriodEnd), nil
}
