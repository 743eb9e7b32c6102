package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/storemailer/internal/automation"
	"github.com/ignite/storemailer/internal/pkg/httputil"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// verifiedCallback checks the scheduler-callback signature, which is bound
// to the callback URL as well as the body so it cannot be replayed against
// a different endpoint.
func (s *Server) verifiedCallback(w http.ResponseWriter, r *http.Request) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.BadRequest(w, "unreadable body")
		return false
	}
	if !s.callbacks.Verify(r.URL.Path, body, r.Header.Get(callbackSigHeader)) {
		logger.Warn("callback signature rejected", "path", r.URL.Path)
		httputil.Unauthorized(w, "invalid signature")
		return false
	}
	return true
}

func (s *Server) handleAbandonedCartTick(w http.ResponseWriter, r *http.Request) {
	if !s.verifiedCallback(w, r) {
		return
	}
	s.runOrchestrator(w, r.Context(), func(ctx context.Context) (automation.Outcome, error) {
		return s.engine.RunAbandonedCart(ctx)
	})
}

func (s *Server) handleCampaignFire(w http.ResponseWriter, r *http.Request) {
	if !s.verifiedCallback(w, r) {
		return
	}
	campaignID := chi.URLParam(r, "campaignID")
	s.runOrchestrator(w, r.Context(), func(ctx context.Context) (automation.Outcome, error) {
		return s.engine.FireCampaign(ctx, campaignID)
	})
}
