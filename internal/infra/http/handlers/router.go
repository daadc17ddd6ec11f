package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xavierca1/ligue-rateio/internal/infra/http/middleware"
)

type Router struct {
	Participants  *ParticipantHandler
	Subscriptions *SubscriptionHandler
	Charges       *ChargeHandler
	Batches       *BatchHandler
	Wallet        *WalletHandler
	Checkout      *CheckoutHandler
	Webhook       *WebhookHandler
	Renewal       *RenewalHandler
	Health        *HealthHandler

	CORSOrigins []string
	// InternalToken libera /internal/*; vazio fecha essas rotas.
	InternalToken string
	// WebhookLimit é o máximo de chamadas por minuto e IP no /webhook; 0 desliga.
	WebhookLimit int
}

func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.AccountHeader},
	}))

	r.Get("/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if rt.WebhookLimit > 0 {
			r.Use(middleware.NewRateLimiter(rt.WebhookLimit, time.Minute).Handler)
		}
		r.Post("/webhook", rt.Webhook.Handle)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireInternalToken(rt.InternalToken))
		r.Post("/internal/renewal-tick", rt.Renewal.Handle)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccount)

		r.Post("/participants", rt.Participants.Handle)

		r.Post("/subscriptions", rt.Subscriptions.HandleCreate)
		r.Post("/subscriptions/{id}/cancellation", rt.Subscriptions.HandleScheduleCancellation)

		r.Route("/charges/{id}", func(r chi.Router) {
			r.Post("/confirm", rt.Charges.HandleConfirm)
			r.Post("/proof", rt.Charges.HandleSubmitProof)
			r.Post("/approve", rt.Charges.HandleApprove)
			r.Post("/reject", rt.Charges.HandleReject)
			r.Post("/cancel", rt.Charges.HandleCancel)
			r.Get("/pix", rt.Charges.HandlePix)
		})

		r.Post("/batches", rt.Batches.HandleSubmit)
		r.Post("/batches/{id}/approve", rt.Batches.HandleApprove)
		r.Post("/batches/{id}/reject", rt.Batches.HandleReject)

		r.Get("/wallet/balance", rt.Wallet.HandleBalance)
		r.Post("/wallet/payouts", rt.Wallet.HandlePayout)
		r.Get("/reports/financial", rt.Wallet.HandleFinancialSummary)

		r.Post("/checkout", rt.Checkout.Handle)
	})

	return r
}
