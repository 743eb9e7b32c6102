package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/ignite/storemailer/internal/automation"
	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/pkg/httputil"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// verifiedBody reads the raw body and checks the webhook signature against
// it. Verification happens on the exact bytes received; decoding comes
// after. A failed check writes the 401 and reports false — the caller must
// not touch the engine in that case.
func (s *Server) verifiedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.BadRequest(w, "unreadable body")
		return nil, false
	}
	if !s.webhooks.Verify(body, r.Header.Get(webhookSigHeader)) {
		logger.Warn("webhook signature rejected", "path", r.URL.Path)
		httputil.Unauthorized(w, "invalid signature")
		return nil, false
	}
	return body, true
}

func (s *Server) handleCustomerCreated(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}
	var customer domain.CustomerPayload
	if err := json.Unmarshal(body, &customer); err != nil {
		httputil.BadRequest(w, "invalid payload: "+err.Error())
		return
	}
	s.runOrchestrator(w, r.Context(), func(ctx context.Context) (automation.Outcome, error) {
		return s.engine.HandleCustomerCreated(ctx, customer)
	})
}

func (s *Server) handleOrderCreated(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}
	var order domain.OrderPayload
	if err := json.Unmarshal(body, &order); err != nil {
		httputil.BadRequest(w, "invalid payload: "+err.Error())
		return
	}
	s.runOrchestrator(w, r.Context(), func(ctx context.Context) (automation.Outcome, error) {
		return s.engine.HandleOrderCreated(ctx, order)
	})
}

func (s *Server) handleGiftCardOrder(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}
	var order domain.OrderPayload
	if err := json.Unmarshal(body, &order); err != nil {
		httputil.BadRequest(w, "invalid payload: "+err.Error())
		return
	}
	s.runOrchestrator(w, r.Context(), func(ctx context.Context) (automation.Outcome, error) {
		return s.engine.HandleGiftCardOrder(ctx, order)
	})
}

// runOrchestrator executes an engine call and writes the outcome. Skips are
// successes: the trigger was authentic, the engine just decided not to send.
func (s *Server) runOrchestrator(w http.ResponseWriter, ctx context.Context, run func(context.Context) (automation.Outcome, error)) {
	out, err := run(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.OK(w, out)
}
