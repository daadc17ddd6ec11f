package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

func TestCreateSubscriptionCreatesFirstCharge(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1), 4)
	p := f.participant("Bruno", "bruno@x.com")

	out := f.subscribe(p, entity.FrequencyMensal, date(2024, 1, 1))

	assert.Equal(t, entity.SubscriptionAtiva, out.Subscription.Status)
	assert.Equal(t, "50.00", out.Subscription.Amount.StringFixed(2))

	c := out.FirstCharge
	assert.Equal(t, date(2024, 1, 1), c.PeriodStart)
	assert.Equal(t, date(2024, 2, 1), c.PeriodEnd)
	assert.Equal(t, date(2024, 1, 6), c.DueDate)
	assert.Equal(t, "50.00", c.Amount.StringFixed(2))
	assert.Equal(t, entity.ChargePendente, c.Status)

	assert.Len(t, f.store.chargesOf(out.Subscription.ID), 1)
	assert.Equal(t, []string{queue.EventChargeCreated}, f.events.types())
}

func TestCreateSubscriptionQuarterlyUsesCycleTotal(t *testing.T) {
	f := newFixture(t, date(2024, 3, 10), 3)
	p := f.participant("Carla", "carla@x.com")

	out := f.subscribe(p, entity.FrequencyTrimestral, date(2024, 3, 10))

	// 200 / 3 = 66,666... -> 66,67 por mês, 200,01 no trimestre
	assert.Equal(t, "66.67", out.Subscription.Amount.StringFixed(2))
	assert.Equal(t, "200.01", out.FirstCharge.Amount.StringFixed(2))
	assert.Equal(t, date(2024, 6, 10), out.FirstCharge.PeriodEnd)
}

func TestCreateSubscriptionSlotLimit(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1), 2)
	f.subscribe(f.participant("A", "a@x.com"), entity.FrequencyMensal, date(2024, 1, 1))
	f.subscribe(f.participant("B", "b@x.com"), entity.FrequencyMensal, date(2024, 1, 1))

	_, err := NewSubscriptionUseCase(f.engine).Create(context.Background(), CreateSubscriptionInput{
		AccountID:     f.accountID,
		ParticipantID: f.participant("C", "c@x.com"),
		StreamingID:   f.streaming,
		Frequency:     entity.FrequencyMensal,
		StartDate:     "2024-01-01",
	})

	requireCode(t, err, CodeSlotLimitExceeded)
	assert.True(t, IsValidation(err))
}

func TestCreateSubscriptionSlotLimitUnderConcurrency(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1), 2)
	uc := NewSubscriptionUseCase(f.engine)

	var participants []string
	for _, email := range []string{"1@x.com", "2@x.com", "3@x.com", "4@x.com", "5@x.com", "6@x.com", "7@x.com", "8@x.com"} {
		participants = append(participants, f.participant("P", email))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for _, p := range participants {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, err := uc.Create(context.Background(), CreateSubscriptionInput{
				AccountID: f.accountID, ParticipantID: p, StreamingID: f.streaming,
				Frequency: entity.FrequencyMensal, StartDate: "2024-01-01",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if AsBillingError(err).Code == CodeSlotLimitExceeded {
				rejected++
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 2, ok)
	assert.Equal(t, 6, rejected)
}

func TestCreateSubscriptionRejectsDuplicate(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1), 4)
	p := f.participant("Bruno", "bruno@x.com")
	f.subscribe(p, entity.FrequencyMensal, date(2024, 1, 1))

	_, err := NewSubscriptionUseCase(f.engine).Create(context.Background(), CreateSubscriptionInput{
		AccountID: f.accountID, ParticipantID: p, StreamingID: f.streaming,
		Frequency: entity.FrequencyAnual, StartDate: "2024-01-01",
	})
	requireCode(t, err, CodeDuplicateSubscription)
}

func TestCreateSubscriptionValidation(t *testing.T) {
	f := newFixture(t, date(2024, 6, 15), 4)
	p := f.participant("Bruno", "bruno@x.com")
	uc := NewSubscriptionUseCase(f.engine)

	tests := []struct {
		name  string
		input CreateSubscriptionInput
		code  string
	}{
		{"início há mais de um ano", CreateSubscriptionInput{ParticipantID: p, StreamingID: f.streaming, Frequency: "mensal", StartDate: "2023-06-14"}, CodeValidation},
		{"início mais de um mês à frente", CreateSubscriptionInput{ParticipantID: p, StreamingID: f.streaming, Frequency: "mensal", StartDate: "2024-07-16"}, CodeValidation},
		{"frequência desconhecida", CreateSubscriptionInput{ParticipantID: p, StreamingID: f.streaming, Frequency: "quinzenal", StartDate: "2024-06-15"}, CodeValidation},
		{"data inválida", CreateSubscriptionInput{ParticipantID: p, StreamingID: f.streaming, Frequency: "mensal", StartDate: "15/06/2024"}, CodeValidation},
		{"streaming de outra conta", CreateSubscriptionInput{ParticipantID: p, StreamingID: "str-other", Frequency: "mensal", StartDate: "2024-06-15"}, CodeNotFound},
		{"participante inexistente", CreateSubscriptionInput{ParticipantID: "nope", StreamingID: f.streaming, Frequency: "mensal", StartDate: "2024-06-15"}, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.AccountID = f.accountID
			_, err := uc.Create(context.Background(), tt.input)
			requireCode(t, err, tt.code)
		})
	}

	// limites da janela são inclusivos
	_, err := uc.Create(context.Background(), CreateSubscriptionInput{
		AccountID: f.accountID, ParticipantID: p, StreamingID: f.streaming, Frequency: " Mensal ", StartDate: "2023-06-15",
	})
	require.NoError(t, err)
}

func TestBackdatedSubscriptionStartsSuspended(t *testing.T) {
	f := newFixture(t, date(2024, 3, 1), 4)
	out := f.subscribe(f.participant("Bruno", "bruno@x.com"), entity.FrequencyMensal, date(2024, 1, 1))

	assert.Equal(t, entity.ChargeAtrasado, out.FirstCharge.Status)
	assert.Equal(t, entity.SubscriptionSuspensa, out.Subscription.Status)
	assert.Equal(t, entity.MotivoInadimplencia, out.Subscription.SuspensionReason)
}

func TestScheduleCancellationKeepsBillingUntilEffectiveDate(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1), 2)
	out := f.subscribe(f.participant("Bruno", "bruno@x.com"), entity.FrequencyMensal, date(2024, 1, 1))
	uc := NewSubscriptionUseCase(f.engine)

	sub, err := uc.ScheduleCancellation(context.Background(), ScheduleCancellationInput{
		AccountID: f.accountID, SubscriptionID: out.Subscription.ID, EffectiveDate: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionAtiva, sub.Status)
	assert.True(t, sub.CancellationScheduled())

	renewal := NewRenewalUseCase(f.engine)

	f.now = date(2024, 2, 1)
	res := renewal.RunRenewalTick(context.Background())
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Finalized)

	f.now = date(2024, 3, 1)
	res = renewal.RunRenewalTick(context.Background())
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Finalized)

	assert.Equal(t, entity.SubscriptionCancelada, f.store.subscription(out.Subscription.ID).Status)
	// nenhuma cobrança para março; janeiro e fevereiro continuam devidos
	charges := f.store.chargesOf(out.Subscription.ID)
	require.Len(t, charges, 2)
	assert.Equal(t, date(2024, 2, 1), charges[1].PeriodStart)
	assert.NotEqual(t, entity.ChargeCancelado, charges[1].Status)

	// vaga liberada
	f.subscribe(f.participant("Carla", "carla@x.com"), entity.FrequencyMensal, date(2024, 3, 1))
	f.subscribe(f.participant("Dani", "dani@x.com"), entity.FrequencyMensal, date(2024, 3, 1))
}

func TestScheduleCancellationInThePastFinalizesNow(t *testing.T) {
	f := newFixture(t, date(2024, 1, 10), 2)
	out := f.subscribe(f.participant("Bruno", "bruno@x.com"), entity.FrequencyMensal, date(2024, 1, 1))

	sub, err := NewSubscriptionUseCase(f.engine).ScheduleCancellation(context.Background(), ScheduleCancellationInput{
		AccountID: f.accountID, SubscriptionID: out.Subscription.ID, EffectiveDate: "2024-01-01",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionCancelada, sub.Status)
	assert.Equal(t, entity.ChargeCancelado, f.store.charge(out.FirstCharge.ID).Status)
	assert.Contains(t, f.events.types(), queue.EventSubscriptionCancelled)

	_, err = NewSubscriptionUseCase(f.engine).ScheduleCancellation(context.Background(), ScheduleCancellationInput{
		AccountID: f.accountID, SubscriptionID: out.Subscription.ID, EffectiveDate: "2024-02-01",
	})
	requireCode(t, err, CodeInvalidStatus)
}

func TestScheduleCancellationValidation(t *testing.T) {
	f := newFixture(t, date(2024, 1, 10), 2)
	out := f.subscribe(f.participant("Bruno", "bruno@x.com"), entity.FrequencyMensal, date(2024, 1, 5))
	uc := NewSubscriptionUseCase(f.engine)

	_, err := uc.ScheduleCancellation(context.Background(), ScheduleCancellationInput{AccountID: f.accountID, SubscriptionID: out.Subscription.ID})
	requireCode(t, err, CodeValidation)

	_, err = uc.ScheduleCancellation(context.Background(), ScheduleCancellationInput{AccountID: f.accountID, SubscriptionID: out.Subscription.ID, EffectiveDate: "2024-01-01"})
	requireCode(t, err, CodeValidation)

	_, err = uc.ScheduleCancellation(context.Background(), ScheduleCancellationInput{AccountID: "acc-2", SubscriptionID: out.Subscription.ID, EffectiveDate: "2024-03-01"})
	requireCode(t, err, CodeNotFound)
}
