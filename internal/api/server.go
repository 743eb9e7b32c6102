// Package api is the HTTP surface: platform webhooks, scheduler callbacks
// and the merchant admin API. Handlers authenticate and decode, then hand
// off to the automation engine; no send logic lives here.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/storemailer/internal/automation"
	appconfig "github.com/ignite/storemailer/internal/config"
	"github.com/ignite/storemailer/internal/pkg/httputil"
	"github.com/ignite/storemailer/internal/pkg/logger"
	"github.com/ignite/storemailer/internal/signature"
	"github.com/ignite/storemailer/internal/store"
)

// Signature headers on inbound triggers.
const (
	webhookSigHeader  = "X-Platform-Hmac-Sha256"
	callbackSigHeader = "X-Callback-Signature"
)

// maxBodyBytes caps webhook and admin request bodies.
const maxBodyBytes = 1 << 20

// Server hosts the HTTP API.
type Server struct {
	engine    *automation.Engine
	settings  *store.Settings
	activity  *store.Activity
	webhooks  *signature.WebhookVerifier
	callbacks *signature.CallbackVerifier

	httpServer *http.Server
}

// New builds the server and its signature verifiers. Verifier construction
// fails on missing secrets, which stops startup rather than serving 401s.
func New(cfg *appconfig.Config, engine *automation.Engine, settings *store.Settings, activity *store.Activity) (*Server, error) {
	webhooks, err := signature.NewWebhookVerifier(cfg.Webhook.SharedSecret)
	if err != nil {
		return nil, err
	}
	callbacks, err := signature.NewCallbackVerifier(cfg.App.BaseURL, cfg.Scheduler.SigningKey, cfg.Scheduler.SigningKeyNext)
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:    engine,
		settings:  settings,
		activity:  activity,
		webhooks:  webhooks,
		callbacks: callbacks,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // batch dispatch can hold a request open
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Router assembles the route tree. Exposed separately so tests can drive the
// handler stack without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/customers/create", s.handleCustomerCreated)
		r.Post("/orders/create", s.handleOrderCreated)
		r.Post("/orders/create/gift-cards", s.handleGiftCardOrder)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/abandoned-cart", s.handleAbandonedCartTick)
		r.Post("/campaigns/{campaignID}/fire", s.handleCampaignFire)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/automations/{type}/settings", s.handleGetSettings)
		r.Put("/automations/{type}/settings", s.handlePutSettings)

		r.Get("/campaigns", s.handleListCampaigns)
		r.Post("/campaigns", s.handleCreateCampaign)
		r.Post("/campaigns/send", s.handleManualSend)
		r.Post("/campaigns/{campaignID}/cancel", s.handleCancelCampaign)

		r.Get("/activity", s.handleActivity)
	})

	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// writeEngineError maps engine errors onto the API contract.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, automation.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, automation.ErrInvalidCampaign):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start).String())
	})
}
