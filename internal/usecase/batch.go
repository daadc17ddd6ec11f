package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

type BatchActionInput struct {
	AccountID string `json:"-"`
	BatchID   string `json:"-"`
}

// BatchUseCase trata o lote: um único comprovante para várias cobranças,
// aprovado ou rejeitado por inteiro.
type BatchUseCase struct {
	*Engine
	Storage ProofStorage
}

func NewBatchUseCase(engine *Engine, storage ProofStorage) *BatchUseCase {
	return &BatchUseCase{Engine: engine, Storage: storage}
}

func (uc *BatchUseCase) Submit(ctx context.Context, input SubmitBatchInput) (*entity.Batch, error) {
	ids := uniqueIDs(input.ChargeIDs)
	var errs []ValidationError
	if len(ids) == 0 {
		errs = append(errs, ValidationError{"charge_ids", "is required"})
	}
	if input.File == nil {
		errs = append(errs, ValidationError{"file", "is required"})
	}
	if len(errs) > 0 {
		return nil, invalidInput(errs)
	}

	// falha rápido antes de subir o arquivo
	for _, id := range ids {
		c, err := loadCharge(ctx, uc.UoW, input.AccountID, id)
		if err != nil {
			return nil, AsBillingError(err)
		}
		if err := batchable(c); err != nil {
			return nil, err
		}
	}

	var url string
	var out *entity.Batch
	saga := NewTransaction(uc.Logger)
	saga.AddStep("upload_comprovativo_lote",
		func(ctx context.Context) error {
			var err error
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
	saga.AddStep("registrar_lote", func(ctx context.Context) error {
		now := uc.now()
		return uc.inTx(ctx, func(tx Store, evs *txEvents) error {
			charges := make([]*entity.Charge, 0, len(ids))
			for _, id := range ids {
				c, err := loadCharge(ctx, tx, input.AccountID, id)
				if err != nil {
					return err
				}
				if err := batchable(c); err != nil {
					return err
				}
				charges = append(charges, c)
			}

			b := entity.NewBatch(input.AccountID, charges, url)
			if err := tx.Batches().Create(ctx, b); err != nil {
				return err
			}

			for _, c := range charges {
				from := c.Status
				if err := c.Transition(entity.ChargeAguardandoAprovacao, now); err != nil {
					return err
				}
				c.BatchID = b.ID
				c.ProofURL = url
				if err := tx.Charges().Update(ctx, c, from); err != nil {
					return err
				}
			}
			if err := uc.evaluateAll(ctx, tx, charges, now, evs); err != nil {
				return err
			}
			out = b
			return nil
		})
	}, nil)

	if err := saga.Execute(ctx); err != nil {
		return nil, AsBillingError(err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"account_id": input.AccountID,
		"batch_id":   out.ID,
		"charges":    len(out.ChargeIDs),
	}).Info("📦 lote enviado para aprovação")
	return out, nil
}

func batchable(c *entity.Charge) error {
	if !c.Status.Outstanding() {
		return invalidStatus(fmt.Sprintf("cobrança %s está %s", c.ID, c.Status))
	}
	if c.BatchID != "" {
		return invalidStatus(fmt.Sprintf("cobrança %s já está em outro lote", c.ID))
	}
	return nil
}

// Approve quita todas as cobranças do lote ou nenhuma.
func (uc *BatchUseCase) Approve(ctx context.Context, input BatchActionInput) (*entity.Batch, error) {
	return uc.review(ctx, input, func(b *entity.Batch, c *entity.Charge, now time.Time) error {
		return c.MarkPaid(entity.OriginLote, now)
	}, entity.BatchAprovado, "", queue.EventChargePaid)
}

// Reject devolve cada cobrança para pendente/atrasado e libera o vínculo com o lote.
func (uc *BatchUseCase) Reject(ctx context.Context, input RejectBatchInput) (*entity.Batch, error) {
	action := BatchActionInput{AccountID: input.AccountID, BatchID: input.BatchID}
	return uc.review(ctx, action, func(b *entity.Batch, c *entity.Charge, now time.Time) error {
		if err := c.Transition(entity.OpenStatus(c.DueDate, now), now); err != nil {
			return err
		}
		c.BatchID = ""
		c.ProofURL = ""
		return nil
	}, entity.BatchRejeitado, input.Reason, "")
}

func (uc *BatchUseCase) review(ctx context.Context, input BatchActionInput, apply func(*entity.Batch, *entity.Charge, time.Time) error, to entity.BatchStatus, reason, eventType string) (*entity.Batch, error) {
	now := uc.now()
	var out *entity.Batch

	err := uc.inTx(ctx, func(tx Store, evs *txEvents) error {
		b, err := tx.Batches().FindByID(ctx, input.BatchID)
		if err != nil {
			return wrapLookup(err, "lote")
		}
		if b.AccountID != input.AccountID {
			return notFound("lote")
		}
		if b.Status != entity.BatchAguardandoAprovacao {
			return invalidStatus(fmt.Sprintf("lote já está %s", b.Status))
		}

		charges := make([]*entity.Charge, 0, len(b.ChargeIDs))
		for _, id := range b.ChargeIDs {
			c, err := loadCharge(ctx, tx, input.AccountID, id)
			if err != nil {
				return err
			}
			if c.Status == entity.ChargePago && c.BatchID == "" {
				continue
			}
			if c.Status != entity.ChargeAguardandoAprovacao || c.BatchID != b.ID {
				return invalidStatus(fmt.Sprintf("cobrança %s mudou de estado desde o envio do lote", c.ID))
			}
			from := c.Status
			if err := apply(b, c, now); err != nil {
				return err
			}
			if err := tx.Charges().Update(ctx, c, from); err != nil {
				return err
			}
			if eventType != "" {
				evs.add(chargeEvent(eventType, c, now))
			}
			charges = append(charges, c)
		}

		from := b.Status
		b.Status = to
		b.RejectionReason = reason
		b.ReviewedAt = &now
		b.UpdatedAt = now
		if err := tx.Batches().Update(ctx, b, from); err != nil {
			return err
		}
		if err := uc.evaluateAll(ctx, tx, charges, now, evs); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, AsBillingError(err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"account_id": input.AccountID,
		"batch_id":   out.ID,
		"status":     out.Status,
	}).Info("📦 lote revisado")
	return out, nil
}

// evaluateAll roda o avaliador uma vez por assinatura afetada.
func (e *Engine) evaluateAll(ctx context.Context, tx Store, charges []*entity.Charge, now time.Time, evs *txEvents) error {
	seen := map[string]bool{}
	for _, c := range charges {
		if seen[c.SubscriptionID] {
			continue
		}
		seen[c.SubscriptionID] = true
		if _, err := e.evaluateSubscription(ctx, tx, c.SubscriptionID, now, evs); err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
