package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

// Evaluate decide o status da assinatura a partir das cobranças dela:
// suspensa se e somente se houver alguma cobrança atrasada. Cancelamento
// nunca passa por aqui.
func Evaluate(sub *entity.Subscription, charges []*entity.Charge) (entity.SubscriptionStatus, bool) {
	if !sub.Billable() {
		return sub.Status, false
	}

	overdue := false
	for _, c := range charges {
		if c.Status == entity.ChargeAtrasado {
			overdue = true
			break
		}
	}

	switch {
	case overdue && sub.Status == entity.SubscriptionAtiva:
		return entity.SubscriptionSuspensa, true
	case !overdue && sub.Status == entity.SubscriptionSuspensa:
		return entity.SubscriptionAtiva, true
	default:
		return sub.Status, false
	}
}

type evaluation struct {
	Overdue   int
	Suspended bool
}

// evaluateSubscription marca como atrasadas as pendentes vencidas e aplica
// Evaluate, tudo dentro da transação recebida.
func (e *Engine) evaluateSubscription(ctx context.Context, tx Store, subscriptionID string, now time.Time, evs *txEvents) (evaluation, error) {
	var res evaluation

	sub, err := tx.Subscriptions().FindByID(ctx, subscriptionID)
	if err != nil {
		return res, fmt.Errorf("erro ao buscar assinatura %s: %w", subscriptionID, err)
	}
	charges, err := tx.Charges().ListBySubscription(ctx, subscriptionID)
	if err != nil {
		return res, fmt.Errorf("erro ao listar cobranças: %w", err)
	}

	for _, c := range charges {
		if c.Status != entity.ChargePendente || !entity.IsOverdue(c.DueDate, now) {
			continue
		}
		if err := c.Transition(entity.ChargeAtrasado, now); err != nil {
			return res, err
		}
		if err := tx.Charges().Update(ctx, c, entity.ChargePendente); err != nil {
			return res, err
		}
		res.Overdue++
		evs.add(chargeEvent(queue.EventChargeOverdue, c, now))
	}

	target, changed := Evaluate(sub, charges)
	if !changed {
		return res, nil
	}

	from := sub.Status
	if target == entity.SubscriptionSuspensa {
		sub.Suspend(now, entity.MotivoInadimplencia)
		evs.add(subscriptionEvent(queue.EventSubscriptionSuspended, sub, now))
		res.Suspended = true
	} else {
		sub.Reactivate(now)
		evs.add(subscriptionEvent(queue.EventSubscriptionReactivated, sub, now))
	}
	if err := tx.Subscriptions().Update(ctx, sub, from); err != nil {
		return res, err
	}
	return res, nil
}
