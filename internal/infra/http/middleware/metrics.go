package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xavierca1/ligue-rateio/internal/infra/queue"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	renewalTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_renewal_ticks_total",
			Help: "Total number of renewal ticks, by outcome",
		},
		[]string{"outcome"},
	)

	renewalTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "billing_renewal_tick_duration_seconds",
			Help:    "Duration of renewal ticks in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	chargesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_charges_created_total",
			Help: "Total number of charges issued",
		},
	)

	cancellationsFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_cancellations_finalized_total",
			Help: "Total number of subscriptions whose cancellation took effect",
		},
	)

	paymentsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_payments_confirmed_total",
			Help: "Total number of charges paid, by payment origin",
		},
		[]string{"origin"},
	)

	subscriptionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_subscription_transitions_total",
			Help: "Total number of subscription suspensions and reactivations",
		},
		[]string{"event"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão da rota (/charges/{id}/pix) para não explodir a cardinalidade.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func RecordTick(result usecase.TickResult, elapsed time.Duration) {
	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "partial"
	}
	renewalTicks.WithLabelValues(outcome).Inc()
	renewalTickDuration.Observe(elapsed.Seconds())
}

func RecordBillingEvent(ev queue.BillingEvent) {
	switch ev.Type {
	case queue.EventChargeCreated:
		chargesCreated.Inc()
	case queue.EventChargePaid:
		paymentsConfirmed.WithLabelValues(ev.Origin).Inc()
	case queue.EventSubscriptionCancelled:
		cancellationsFinalized.Inc()
	case queue.EventSubscriptionSuspended, queue.EventSubscriptionReactivated:
		subscriptionTransitions.WithLabelValues(ev.Type).Inc()
	}
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

// InstrumentedPublisher conta os eventos de cobrança antes de repassá-los.
type InstrumentedPublisher struct {
	Next usecase.EventPublisher
}

func (p InstrumentedPublisher) PublishEvent(ctx context.Context, ev queue.BillingEvent) error {
	RecordBillingEvent(ev)
	if err := p.Next.PublishEvent(ctx, ev); err != nil {
		RecordIntegrationError("rabbitmq")
		return err
	}
	return nil
}
