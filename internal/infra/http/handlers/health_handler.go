package handlers

import (
	"context"
	"net/http"
	"time"
)

const (
	depHealthy       = "healthy"
	depConfigured    = "configured"
	depNotConfigured = "not configured"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Broker é o que importa da conexão AMQP para o health check.
type Broker interface {
	IsClosed() bool
}

type HealthHandler struct {
	DB        Pinger
	RabbitMQ  Broker
	Optional  map[string]bool
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler recebe em optional as integrações que só precisam estar configuradas (asaas, s3, smtp).
func NewHealthHandler(db Pinger, rabbitMQ Broker, optional map[string]bool) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Optional:  optional,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := map[string]string{
		"database": h.probeDatabase(r.Context()),
		"rabbitmq": h.probeBroker(),
	}
	for name, configured := range h.Optional {
		deps[name] = depNotConfigured
		if configured {
			deps[name] = depConfigured
		}
	}

	status, code := "healthy", http.StatusOK
	for _, v := range deps {
		if v != depHealthy && v != depConfigured && v != depNotConfigured {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}

func (h *HealthHandler) probeDatabase(ctx context.Context) string {
	if h.DB == nil {
		return depNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return depHealthy
}

func (h *HealthHandler) probeBroker() string {
	switch {
	case h.RabbitMQ == nil:
		return depNotConfigured
	case h.RabbitMQ.IsClosed():
		return "unhealthy: connection closed"
	default:
		return depHealthy
	}
}
