package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

func TestRequireAccount(t *testing.T) {
	var seen string
	h := RequireAccount(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = AccountFromContext(r.Context())
	}))

	t.Run("sem cabeçalho", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet/balance", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	})

	t.Run("com cabeçalho", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wallet/balance", nil)
		req.Header.Set(AccountHeader, " 5d0c8f0e-3b1a-4c2e-9f7d-1a2b3c4d5e6f ")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "5d0c8f0e-3b1a-4c2e-9f7d-1a2b3c4d5e6f", seen)
	})

	t.Run("conta que não é uuid", func(t *testing.T) {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/wallet/balance", nil)
		req.Header.Set(AccountHeader, "acc-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "conta inválida")
		assert.Empty(t, seen)
	})
}

func TestRequireInternalToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	call := func(token, header string) int {
		req := httptest.NewRequest(http.MethodPost, "/internal/renewal-tick", nil)
		if header != "" {
			req.Header.Set(InternalTokenHeader, header)
		}
		rec := httptest.NewRecorder()
		RequireInternalToken(token)(ok).ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("s3cr3t", "s3cr3t"))
	assert.Equal(t, http.StatusUnauthorized, call("s3cr3t", "outro"))
	assert.Equal(t, http.StatusUnauthorized, call("s3cr3t", ""))
	// sem token configurado nada passa
	assert.Equal(t, http.StatusUnauthorized, call("", ""))
}

func TestRateLimiterWindow(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	clock = clock.Add(2 * time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestRateLimiterHandler(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/charges/{id}/pix", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := value(t, httpRequestsTotal.WithLabelValues(http.MethodGet, "/charges/{id}/pix", "404"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/charges/abc/pix", nil))

	after := value(t, httpRequestsTotal.WithLabelValues(http.MethodGet, "/charges/{id}/pix", "404"))
	assert.Equal(t, before+1, after)
}

type stubPublisher struct {
	got []queue.BillingEvent
	err error
}

func (s *stubPublisher) PublishEvent(ctx context.Context, ev queue.BillingEvent) error {
	s.got = append(s.got, ev)
	return s.err
}

func TestInstrumentedPublisherCountsEvents(t *testing.T) {
	next := &stubPublisher{}
	p := InstrumentedPublisher{Next: next}

	created := value(t, chargesCreated)
	paid := value(t, paymentsConfirmed.WithLabelValues(string(entity.OriginGateway)))

	require.NoError(t, p.PublishEvent(context.Background(), queue.BillingEvent{Type: queue.EventChargeCreated}))
	require.NoError(t, p.PublishEvent(context.Background(), queue.BillingEvent{Type: queue.EventChargePaid, Origin: string(entity.OriginGateway)}))

	assert.Len(t, next.got, 2)
	assert.Equal(t, created+1, value(t, chargesCreated))
	assert.Equal(t, paid+1, value(t, paymentsConfirmed.WithLabelValues(string(entity.OriginGateway))))

	failures := value(t, integrationErrors.WithLabelValues("rabbitmq"))
	next.err = errors.New("canal fechado")
	assert.Error(t, p.PublishEvent(context.Background(), queue.BillingEvent{Type: queue.EventChargeOverdue}))
	assert.Equal(t, failures+1, value(t, integrationErrors.WithLabelValues("rabbitmq")))
}

func TestRecordTick(t *testing.T) {
	partial := value(t, renewalTicks.WithLabelValues("partial"))
	RecordTick(usecase.TickResult{Errors: []string{"sub-1: boom"}}, time.Second)
	assert.Equal(t, partial+1, value(t, renewalTicks.WithLabelValues("partial")))
}

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return out.GetCounter().GetValue()
}
