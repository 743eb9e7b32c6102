package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/storemailer/internal/automation"
	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/pkg/httputil"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	t := domain.AutomationType(chi.URLParam(r, "type"))
	if !domain.ValidAutomationType(t) {
		httputil.NotFound(w, "unknown automation type: "+string(t))
		return
	}

	settings, err := s.settings.Get(r.Context(), t)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, settings)
}

// handlePutSettings overwrites the automation's settings record wholesale.
// The admin UI reads, edits and writes back the full record.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	t := domain.AutomationType(chi.URLParam(r, "type"))
	if !domain.ValidAutomationType(t) {
		httputil.NotFound(w, "unknown automation type: "+string(t))
		return
	}

	var settings domain.AutomationSettings
	if !httputil.Decode(w, r, &settings) {
		return
	}
	if err := s.settings.Save(r.Context(), t, settings); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, settings)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.engine.ListCampaigns(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"campaigns": campaigns})
}

type createCampaignRequest struct {
	automation.CampaignInput
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	campaign, err := s.engine.CreateCampaign(r.Context(), req.CampaignInput, req.ScheduledAt)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.Created(w, campaign)
}

func (s *Server) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	if err := s.engine.CancelCampaign(r.Context(), campaignID); err != nil {
		if errors.Is(err, automation.ErrNotFound) {
			httputil.NotFound(w, "campaign not found: "+campaignID)
			return
		}
		writeEngineError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"id": campaignID, "status": string(domain.CampaignCancelled)})
}

func (s *Server) handleManualSend(w http.ResponseWriter, r *http.Request) {
	var in automation.CampaignInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	s.runOrchestrator(w, r.Context(), func(ctx context.Context) (automation.Outcome, error) {
		return s.engine.SendManualCampaign(ctx, in)
	})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.activity.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	httputil.OK(w, map[string]any{"activity": entries})
}
