package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BillingEvent
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, ev queue.BillingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeStorage struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	onUpload func()
	err      error
}

func (s *fakeStorage) UploadProof(ctx context.Context, file io.Reader, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	if s.onUpload != nil {
		s.onUpload()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "https://proofs.local/" + uuid.New().String()
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *fakeStorage) DeleteProof(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

type fixture struct {
	t         *testing.T
	store     *memStore
	events    *recordingPublisher
	storage   *fakeStorage
	engine    *Engine
	now       time.Time
	accountID string
	streaming string
}

// newFixture monta uma conta com um streaming de 200,00 dividido em slots vagas.
func newFixture(t *testing.T, now time.Time, slots int) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()

	f := &fixture{
		t:         t,
		store:     newMemStore(),
		events:    &recordingPublisher{},
		storage:   &fakeStorage{},
		now:       now,
		accountID: "acc-1",
		streaming: "str-1",
	}
	f.engine = NewEngine(f.store, f.events, logger)
	f.engine.Now = func() time.Time { return f.now }

	f.store.seed(func(d *memData) {
		d.accounts["acc-1"] = entity.Account{ID: "acc-1", Name: "Grupo da Ana", PixKey: "ana@pix.com", PixPayeeName: "Ana", PixCity: "Sao Paulo", AvailableAmount: decimal.Zero}
		d.accounts["acc-2"] = entity.Account{ID: "acc-2", Name: "Outra conta"}
		d.streamings["str-1"] = entity.Streaming{ID: "str-1", AccountID: "acc-1", Name: "Netflix", FullPrice: decimal.RequireFromString("200.00"), SlotLimit: slots}
		d.streamings["str-other"] = entity.Streaming{ID: "str-other", AccountID: "acc-2", Name: "Spotify", FullPrice: decimal.NewFromInt(30), SlotLimit: 5}
		d.plans["plan-pro"] = entity.Plan{ID: "plan-pro", Name: "Pro", Price: decimal.RequireFromString("29.90"), GroupLimit: 10}
	})
	return f
}

func (f *fixture) participant(name, email string) string {
	f.t.Helper()
	p, err := entity.NewParticipant(f.accountID, "", name, "", email, "")
	require.NoError(f.t, err)
	f.store.seed(func(d *memData) { d.participants[p.ID] = *p })
	return p.ID
}

func (f *fixture) subscribe(participantID string, freq entity.Frequency, start time.Time) *CreateSubscriptionOutput {
	f.t.Helper()
	out, err := NewSubscriptionUseCase(f.engine).Create(context.Background(), CreateSubscriptionInput{
		AccountID:     f.accountID,
		ParticipantID: participantID,
		StreamingID:   f.streaming,
		Frequency:     freq,
		StartDate:     start.Format("2006-01-02"),
	})
	require.NoError(f.t, err)
	return out
}

func (f *fixture) payments() *PaymentUseCase {
	return NewPaymentUseCase(f.engine, f.storage, decimal.NewFromInt(5), decimal.RequireFromString("0.49"))
}

func (f *fixture) action(chargeID string) ChargeActionInput {
	return ChargeActionInput{AccountID: f.accountID, ChargeID: chargeID}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var be *BillingError
	require.True(t, errors.As(err, &be), "esperava BillingError, veio %T", err)
	require.Equal(t, code, be.Code, be.Error())
}
