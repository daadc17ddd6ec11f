package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

const (
	GatewayPaymentReceived  = "PAYMENT_RECEIVED"
	GatewayPaymentConfirmed = "PAYMENT_CONFIRMED"
)

type PaymentUseCase struct {
	*Engine
	Storage    ProofStorage
	FeePercent decimal.Decimal
	FeeFixed   decimal.Decimal
}

func NewPaymentUseCase(engine *Engine, storage ProofStorage, feePercent, feeFixed decimal.Decimal) *PaymentUseCase {
	return &PaymentUseCase{
		Engine:     engine,
		Storage:    storage,
		FeePercent: feePercent,
		FeeFixed:   feeFixed,
	}
}

// ConfirmManually registra pagamento feito fora da plataforma: não credita a
// carteira nem cobra taxa.
func (uc *PaymentUseCase) ConfirmManually(ctx context.Context, input ChargeActionInput) (*entity.Charge, error) {
	return uc.transition(ctx, input, "confirmação manual", func(c *entity.Charge, now time.Time) error {
		if c.BatchID != "" {
			return invalidStatus("cobrança faz parte de um lote em análise")
		}
		if !c.Status.Outstanding() && c.Status != entity.ChargeAguardandoAprovacao {
			return invalidStatus(fmt.Sprintf("cobrança %s não pode ser confirmada", c.Status))
		}
		return c.MarkPaid(entity.OriginManual, now)
	}, queue.EventChargePaid)
}

func (uc *PaymentUseCase) ApproveProof(ctx context.Context, input ChargeActionInput) (*entity.Charge, error) {
	return uc.transition(ctx, input, "aprovação de comprovativo", func(c *entity.Charge, now time.Time) error {
		if err := requireSingleReview(c); err != nil {
			return err
		}
		return c.MarkPaid(entity.OriginComprovativo, now)
	}, queue.EventChargePaid)
}

// RejectProof devolve a cobrança para pendente ou atrasado, conforme o vencimento.
func (uc *PaymentUseCase) RejectProof(ctx context.Context, input ChargeActionInput) (*entity.Charge, error) {
	return uc.transition(ctx, input, "rejeição de comprovativo", func(c *entity.Charge, now time.Time) error {
		if err := requireSingleReview(c); err != nil {
			return err
		}
		if err := c.Transition(entity.OpenStatus(c.DueDate, now), now); err != nil {
			return err
		}
		c.ProofURL = ""
		return nil
	}, "")
}

func (uc *PaymentUseCase) CancelCharge(ctx context.Context, input ChargeActionInput) (*entity.Charge, error) {
	return uc.transition(ctx, input, "cancelamento de cobrança", func(c *entity.Charge, now time.Time) error {
		if !c.Status.Outstanding() {
			return invalidStatus(fmt.Sprintf("cobrança %s não pode ser cancelada", c.Status))
		}
		return c.Transition(entity.ChargeCancelado, now)
	}, queue.EventChargeCancelled)
}

func requireSingleReview(c *entity.Charge) error {
	if c.Status != entity.ChargeAguardandoAprovacao {
		return invalidStatus("cobrança não está aguardando aprovação")
	}
	if c.BatchID != "" {
		return invalidStatus("comprovativo de lote deve ser revisado pelo lote")
	}
	return nil
}

// transition aplica apply com checagem otimista do status lido e roda o avaliador.
func (uc *PaymentUseCase) transition(ctx context.Context, input ChargeActionInput, action string, apply func(*entity.Charge, time.Time) error, eventType string) (*entity.Charge, error) {
	now := uc.now()
	var out *entity.Charge

	err := uc.inTx(ctx, func(tx Store, evs *txEvents) error {
		c, err := loadCharge(ctx, tx, input.AccountID, input.ChargeID)
		if err != nil {
			return err
		}
		from := c.Status
		if err := apply(c, now); err != nil {
			return err
		}
		if err := tx.Charges().Update(ctx, c, from); err != nil {
			return err
		}
		if eventType != "" {
			evs.add(chargeEvent(eventType, c, now))
		}
		if _, err := uc.evaluateSubscription(ctx, tx, c.SubscriptionID, now, evs); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, AsBillingError(err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"account_id": input.AccountID,
		"charge_id":  out.ID,
		"status":     out.Status,
	}).Info("✅ " + action)
	return out, nil
}

// SubmitProof guarda o arquivo fora da transação; se a gravação no banco
// falhar, o arquivo enviado é removido.
func (uc *PaymentUseCase) SubmitProof(ctx context.Context, input SubmitProofInput) (*entity.Charge, error) {
	if input.File == nil {
		return nil, invalidInput([]ValidationError{{"file", "is required"}})
	}

	// falha rápido antes de subir o arquivo
	c, err := loadCharge(ctx, uc.UoW, input.AccountID, input.ChargeID)
	if err != nil {
		return nil, AsBillingError(err)
	}
	if !c.Status.Outstanding() {
		return nil, invalidStatus(fmt.Sprintf("cobrança %s não aceita comprovativo", c.Status))
	}

	var url string
	var out *entity.Charge
	saga := NewTransaction(uc.Logger)
	saga.AddStep("upload_comprovativo",
		func(ctx context.Context) error {
			url, err = uc.Storage.UploadProof(ctx, input.File, input.ContentType)
			if err != nil {
				return infraError(CodeStorage, "falha ao enviar comprovativo", err)
			}
			return nil
		},
		func(ctx context.Context) error {
			return uc.Storage.DeleteProof(ctx, url)
		},
	)
	saga.AddStep("registrar_comprovativo", func(ctx context.Context) error {
		out, err = uc.transition(ctx, ChargeActionInput{AccountID: input.AccountID, ChargeID: input.ChargeID}, "comprovativo enviado",
			func(c *entity.Charge, now time.Time) error {
				if !c.Status.Outstanding() {
					return invalidStatus(fmt.Sprintf("cobrança %s não aceita comprovativo", c.Status))
				}
				if err := c.Transition(entity.ChargeAguardandoAprovacao, now); err != nil {
					return err
				}
				c.ProofURL = url
				return nil
			}, "")
		return err
	}, nil)

	if err := saga.Execute(ctx); err != nil {
		return nil, AsBillingError(err)
	}
	return out, nil
}

// HandleSettlement aplica o efeito do webhook do gateway: cobrança paga e
// crédito líquido na carteira, na mesma transação. Reenvios são ignorados.
func (uc *PaymentUseCase) HandleSettlement(ctx context.Context, msg queue.SettlementMessage) error {
	if msg.Event != GatewayPaymentReceived && msg.Event != GatewayPaymentConfirmed {
		return nil
	}
	log := uc.Logger.WithFields(logrus.Fields{
		"subscription_id": msg.SubscriptionID,
		"charge_id":       msg.ChargeID,
		"payment_id":      msg.PaymentID,
	})
	now := uc.now()
	var settled *entity.Charge

	err := uc.inTx(ctx, func(tx Store, evs *txEvents) error {
		settled = nil
		sub, err := tx.Subscriptions().FindByID(ctx, msg.SubscriptionID)
		if err != nil {
			return wrapLookup(err, "assinatura")
		}

		c, err := settlementTarget(ctx, tx, sub, msg)
		if err != nil || c == nil {
			return err
		}
		if c.Status == entity.ChargePago || c.Status == entity.ChargeCancelado {
			log.WithField("status", c.Status).Info("liquidação ignorada, cobrança já encerrada")
			return nil
		}

		account, err := tx.Accounts().LockByID(ctx, c.AccountID)
		if err != nil {
			return wrapLookup(err, "conta")
		}

		from := c.Status
		if err := c.MarkPaid(entity.OriginGateway, now); err != nil {
			return err
		}
		c.GatewayPaymentID = msg.PaymentID
		if c.BatchID != "" {
			// sai do lote; a revisão do lote ignora cobranças já liquidadas
			log.WithField("batch_id", c.BatchID).Info("cobrança liquidada pelo gateway enquanto estava em lote")
			c.BatchID = ""
		}
		if err := tx.Charges().Update(ctx, c, from); err != nil {
			return err
		}

		fee := entity.PlatformFee(c.Amount, uc.FeePercent, uc.FeeFixed)
		entry, err := entity.NewCredit(account.ID, c.ID, c.Amount, fee)
		if err != nil {
			return err
		}
		if err := tx.Wallet().Append(ctx, entry); err != nil {
			return err
		}
		if err := refreshBalance(ctx, tx, account.ID); err != nil {
			return err
		}

		evs.add(chargeEvent(queue.EventChargePaid, c, now))
		if _, err := uc.evaluateSubscription(ctx, tx, c.SubscriptionID, now, evs); err != nil {
			return err
		}
		settled = c
		return nil
	})
	if err != nil {
		log.WithError(err).Error("❌ falha ao liquidar pagamento do gateway")
		return AsBillingError(err)
	}

	if settled != nil {
		log.WithFields(logrus.Fields{
			"account_id": settled.AccountID,
			"charge_id":  settled.ID,
			"valor":      settled.Amount.StringFixed(entity.MoneyPlaces),
		}).Info("💰 pagamento via gateway liquidado")
	}
	return nil
}

// settlementTarget escolhe a cobrança citada no webhook ou, sem ela, a mais
// antiga ainda em aberto. nil quando não há nada a liquidar.
func settlementTarget(ctx context.Context, tx Store, sub *entity.Subscription, msg queue.SettlementMessage) (*entity.Charge, error) {
	if msg.ChargeID != "" {
		c, err := tx.Charges().FindByID(ctx, msg.ChargeID)
		if err != nil {
			return nil, wrapLookup(err, "cobrança")
		}
		if c.SubscriptionID != sub.ID {
			return nil, notFound("cobrança")
		}
		return c, nil
	}

	charges, err := tx.Charges().ListBySubscription(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range charges {
		if c.GatewayPaymentID != "" && strings.EqualFold(c.GatewayPaymentID, msg.PaymentID) {
			return c, nil
		}
	}
	for _, c := range charges {
		if c.Status.Outstanding() || c.Status == entity.ChargeAguardandoAprovacao {
			return c, nil
		}
	}
	return nil, nil
}

// refreshBalance mantém saldo_disponivel igual à soma dos lançamentos.
func refreshBalance(ctx context.Context, tx Store, accountID string) error {
	balance, err := tx.Wallet().Balance(ctx, accountID)
	if err != nil {
		return err
	}
	return tx.Accounts().UpdateAvailableAmount(ctx, accountID, balance)
}
