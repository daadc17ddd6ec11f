package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

func batchFixture(t *testing.T) (*fixture, []*CreateSubscriptionOutput) {
	f := newFixture(t, date(2024, 1, 1), 4)
	var subs []*CreateSubscriptionOutput
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		subs = append(subs, f.subscribe(f.participant("P", email), entity.FrequencyMensal, date(2024, 1, 1)))
	}
	return f, subs
}

func submitBatch(t *testing.T, f *fixture, ids ...string) *entity.Batch {
	t.Helper()
	b, err := NewBatchUseCase(f.engine, f.storage).Submit(context.Background(), SubmitBatchInput{
		AccountID: f.accountID, ChargeIDs: ids, File: strings.NewReader("img"), ContentType: "image/png",
	})
	require.NoError(t, err)
	return b
}

func TestSubmitBatchMovesChargesToReview(t *testing.T) {
	f, subs := batchFixture(t)

	b := submitBatch(t, f, subs[0].FirstCharge.ID, subs[1].FirstCharge.ID, subs[0].FirstCharge.ID)

	assert.Equal(t, entity.BatchAguardandoAprovacao, b.Status)
	assert.Len(t, b.ChargeIDs, 2)
	assert.Equal(t, "100.00", b.Total.StringFixed(2))
	for _, id := range b.ChargeIDs {
		c := f.store.charge(id)
		assert.Equal(t, entity.ChargeAguardandoAprovacao, c.Status)
		assert.Equal(t, b.ID, c.BatchID)
		assert.Equal(t, b.ProofURL, c.ProofURL)
	}
	assert.Len(t, f.storage.uploaded, 1)
}

func TestSubmitBatchValidation(t *testing.T) {
	f, subs := batchFixture(t)
	uc := NewBatchUseCase(f.engine, f.storage)
	submitBatch(t, f, subs[0].FirstCharge.ID)

	_, err := uc.Submit(context.Background(), SubmitBatchInput{AccountID: f.accountID, File: strings.NewReader("x")})
	requireCode(t, err, CodeValidation)

	// já está em outro lote
	_, err = uc.Submit(context.Background(), SubmitBatchInput{AccountID: f.accountID, ChargeIDs: []string{subs[0].FirstCharge.ID, subs[1].FirstCharge.ID}, File: strings.NewReader("x")})
	requireCode(t, err, CodeInvalidStatus)
	assert.Equal(t, entity.ChargePendente, f.store.charge(subs[1].FirstCharge.ID).Status)

	_, err = uc.Submit(context.Background(), SubmitBatchInput{AccountID: "acc-2", ChargeIDs: []string{subs[2].FirstCharge.ID}, File: strings.NewReader("x")})
	requireCode(t, err, CodeNotFound)
	assert.Len(t, f.storage.uploaded, 1)
}

func TestApproveBatchPaysEveryCharge(t *testing.T) {
	f, subs := batchFixture(t)
	b := submitBatch(t, f, subs[0].FirstCharge.ID, subs[1].FirstCharge.ID)

	approved, err := NewBatchUseCase(f.engine, f.storage).Approve(context.Background(), BatchActionInput{AccountID: f.accountID, BatchID: b.ID})
	require.NoError(t, err)

	assert.Equal(t, entity.BatchAprovado, approved.Status)
	require.NotNil(t, approved.ReviewedAt)
	for _, id := range b.ChargeIDs {
		c := f.store.charge(id)
		assert.Equal(t, entity.ChargePago, c.Status)
		assert.Equal(t, entity.OriginLote, c.PaymentOrigin)
	}
	assert.Equal(t, entity.ChargePendente, f.store.charge(subs[2].FirstCharge.ID).Status)
	assert.Empty(t, f.store.snapshot().wallet)

	_, err = NewBatchUseCase(f.engine, f.storage).Approve(context.Background(), BatchActionInput{AccountID: f.accountID, BatchID: b.ID})
	requireCode(t, err, CodeInvalidStatus)
}

func TestApproveBatchIsAllOrNothing(t *testing.T) {
	f, subs := batchFixture(t)
	b := submitBatch(t, f, subs[0].FirstCharge.ID, subs[1].FirstCharge.ID)

	// uma das cobranças mudou por fora depois do envio
	f.store.seed(func(d *memData) {
		c := d.charges[subs[1].FirstCharge.ID]
		c.Status = entity.ChargePago
		d.charges[c.ID] = c
	})

	_, err := NewBatchUseCase(f.engine, f.storage).Approve(context.Background(), BatchActionInput{AccountID: f.accountID, BatchID: b.ID})
	requireCode(t, err, CodeInvalidStatus)

	assert.Equal(t, entity.ChargeAguardandoAprovacao, f.store.charge(subs[0].FirstCharge.ID).Status)
	assert.Equal(t, entity.BatchAguardandoAprovacao, f.store.snapshot().batches[b.ID].Status)
}

func TestRejectBatchReleasesCharges(t *testing.T) {
	f, subs := batchFixture(t)
	b := submitBatch(t, f, subs[0].FirstCharge.ID, subs[1].FirstCharge.ID)

	f.now = date(2024, 1, 7)
	rejected, err := NewBatchUseCase(f.engine, f.storage).Reject(context.Background(), RejectBatchInput{AccountID: f.accountID, BatchID: b.ID, Reason: "comprovante ilegível"})
	require.NoError(t, err)

	assert.Equal(t, entity.BatchRejeitado, rejected.Status)
	assert.Equal(t, "comprovante ilegível", rejected.RejectionReason)
	for i := 0; i < 2; i++ {
		c := f.store.charge(subs[i].FirstCharge.ID)
		assert.Equal(t, entity.ChargeAtrasado, c.Status)
		assert.Empty(t, c.BatchID)
		assert.Empty(t, c.ProofURL)
		assert.Equal(t, entity.SubscriptionSuspensa, f.store.subscription(subs[i].Subscription.ID).Status)
	}

	// cobranças liberadas podem entrar em outro lote
	submitBatch(t, f, subs[0].FirstCharge.ID)
}

func TestBatchChargesCannotBeReviewedIndividually(t *testing.T) {
	f, subs := batchFixture(t)
	submitBatch(t, f, subs[0].FirstCharge.ID)

	_, err := f.payments().ApproveProof(context.Background(), f.action(subs[0].FirstCharge.ID))
	requireCode(t, err, CodeInvalidStatus)
	_, err = f.payments().ConfirmManually(context.Background(), f.action(subs[0].FirstCharge.ID))
	requireCode(t, err, CodeInvalidStatus)
}

func TestGatewaySettlementInsideBatchKeepsBatchReviewable(t *testing.T) {
	f, subs := batchFixture(t)
	b := submitBatch(t, f, subs[0].FirstCharge.ID, subs[1].FirstCharge.ID)

	err := f.payments().HandleSettlement(context.Background(), queue.SettlementMessage{
		Event: GatewayPaymentReceived, SubscriptionID: subs[0].Subscription.ID, ChargeID: subs[0].FirstCharge.ID, PaymentID: "pay_lote",
	})
	require.NoError(t, err)

	settled := f.store.charge(subs[0].FirstCharge.ID)
	assert.Equal(t, entity.ChargePago, settled.Status)
	assert.Equal(t, entity.OriginGateway, settled.PaymentOrigin)
	assert.Empty(t, settled.BatchID)

	approved, err := NewBatchUseCase(f.engine, f.storage).Approve(context.Background(), BatchActionInput{AccountID: f.accountID, BatchID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.BatchAprovado, approved.Status)

	other := f.store.charge(subs[1].FirstCharge.ID)
	assert.Equal(t, entity.ChargePago, other.Status)
	assert.Equal(t, entity.OriginLote, other.PaymentOrigin)
	// a cobrança liquidada pelo gateway continua com a origem do gateway
	assert.Equal(t, entity.OriginGateway, f.store.charge(subs[0].FirstCharge.ID).PaymentOrigin)
	assert.Len(t, f.store.snapshot().wallet, 1)
}

func TestRejectBatchAfterGatewaySettlement(t *testing.T) {
	f, subs := batchFixture(t)
	b := submitBatch(t, f, subs[0].FirstCharge.ID, subs[1].FirstCharge.ID)

	require.NoError(t, f.payments().HandleSettlement(context.Background(), queue.SettlementMessage{
		Event: GatewayPaymentConfirmed, SubscriptionID: subs[1].Subscription.ID, ChargeID: subs[1].FirstCharge.ID, PaymentID: "pay_2",
	}))

	_, err := NewBatchUseCase(f.engine, f.storage).Reject(context.Background(), RejectBatchInput{AccountID: f.accountID, BatchID: b.ID, Reason: "ilegível"})
	require.NoError(t, err)

	assert.Equal(t, entity.ChargePendente, f.store.charge(subs[0].FirstCharge.ID).Status)
	assert.Empty(t, f.store.charge(subs[0].FirstCharge.ID).BatchID)
	assert.Equal(t, entity.ChargePago, f.store.charge(subs[1].FirstCharge.ID).Status)
}
