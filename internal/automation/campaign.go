package automation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/storemailer/internal/dispatch"
	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/mailer"
	"github.com/ignite/storemailer/internal/platform"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// CampaignInput is the operator-supplied half of a campaign.
type CampaignInput struct {
	Subject       string               `json:"subject"`
	Body          string               `json:"body"`
	RecipientMode domain.RecipientMode `json:"recipient_mode"`
	CustomerIDs   []string             `json:"customer_ids,omitempty"`
}

func (in CampaignInput) validate() error {
	if strings.TrimSpace(in.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidCampaign)
	}
	if strings.TrimSpace(in.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidCampaign)
	}
	switch in.RecipientMode {
	case domain.RecipientsAllConsenting:
	case domain.RecipientsCustomerIDs:
		if len(in.CustomerIDs) == 0 {
			return fmt.Errorf("%w: customer_ids is required for mode %s", ErrInvalidCampaign, in.RecipientMode)
		}
	default:
		return fmt.Errorf("%w: unknown recipient mode %q", ErrInvalidCampaign, in.RecipientMode)
	}
	return nil
}

// CreateCampaign validates and persists a campaign armed for a future time.
// Arming the timed callback is the scheduler's job, not this service's.
func (e *Engine) CreateCampaign(ctx context.Context, in CampaignInput, scheduledAt time.Time) (*domain.ScheduledCampaign, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := e.now()
	if !scheduledAt.After(now) {
		return nil, fmt.Errorf("%w: scheduled_at must be in the future", ErrInvalidCampaign)
	}

	campaign := &domain.ScheduledCampaign{
		ID:            e.newID(),
		Subject:       in.Subject,
		Body:          in.Body,
		RecipientMode: in.RecipientMode,
		CustomerIDs:   in.CustomerIDs,
		ScheduledAt:   scheduledAt.UTC(),
		Status:        domain.CampaignScheduled,
		CreatedAt:     now,
	}
	if err := e.campaigns.Put(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	e.record(ctx, "campaign", "Campaign scheduled: "+campaign.Subject,
		"fires at "+campaign.ScheduledAt.Format("2006-01-02 15:04 MST"))
	return campaign, nil
}

// ListCampaigns returns every stored campaign, newest first.
func (e *Engine) ListCampaigns(ctx context.Context) ([]domain.ScheduledCampaign, error) {
	return e.campaigns.List(ctx)
}

// CancelCampaign moves a scheduled campaign to cancelled. Only the scheduled
// state is externally cancellable; an unknown id and an already-terminal
// campaign both report ErrNotFound.
func (e *Engine) CancelCampaign(ctx context.Context, id string) error {
	campaign, err := e.campaigns.Get(ctx, id)
	if err != nil {
		return err
	}
	if campaign.Status != domain.CampaignScheduled {
		return ErrNotFound
	}

	campaign.Status = domain.CampaignCancelled
	if err := e.campaigns.Put(ctx, campaign); err != nil {
		return fmt.Errorf("cancel campaign %s: %w", id, err)
	}

	e.record(ctx, "campaign", "Campaign cancelled: "+campaign.Subject, "")
	return nil
}

// FireCampaign executes a scheduled campaign's send. Firing a campaign that
// already reached a terminal state is a successful no-op, so a duplicate
// scheduler callback cannot double-send. The terminal status is persisted
// before the outcome is returned, whatever the dispatch counts were.
func (e *Engine) FireCampaign(ctx context.Context, id string) (Outcome, error) {
	campaign, err := e.campaigns.Get(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if campaign.Status.Terminal() {
		logger.Info("campaign fire ignored, already handled",
			"campaign", id, "status", campaign.Status)
		return skipped(ReasonAlreadyHandled), nil
	}

	res, recipients, err := e.dispatchCampaign(ctx, campaign.Subject, campaign.Body,
		campaign.RecipientMode, campaign.CustomerIDs)
	if err != nil {
		return Outcome{}, fmt.Errorf("fire campaign %s: %w", id, err)
	}

	campaign.Status = domain.CampaignSent
	campaign.RecipientCount = recipients
	if err := e.campaigns.Put(ctx, campaign); err != nil {
		// The sends already happened. Surfacing the error lets the
		// scheduler retry, and the terminal-status guard depends on this
		// write, so it must not be silent.
		return Outcome{}, fmt.Errorf("persist campaign %s after send: %w", id, err)
	}

	e.record(ctx, "campaign", countSummary("Campaign sent: "+campaign.Subject, res), "")
	return outcomeFor(res), nil
}

// SendManualCampaign dispatches a one-off campaign immediately.
func (e *Engine) SendManualCampaign(ctx context.Context, in CampaignInput) (Outcome, error) {
	if err := in.validate(); err != nil {
		return Outcome{}, err
	}

	res, _, err := e.dispatchCampaign(ctx, in.Subject, in.Body, in.RecipientMode, in.CustomerIDs)
	if err != nil {
		return Outcome{}, fmt.Errorf("manual campaign: %w", err)
	}

	e.record(ctx, "campaign", countSummary("Manual campaign sent: "+in.Subject, res), "")
	return outcomeFor(res), nil
}

// dispatchCampaign resolves the recipient set and fans the send out. It
// returns the dispatch result and the resolved recipient count.
func (e *Engine) dispatchCampaign(ctx context.Context, subject, body string, mode domain.RecipientMode, ids []string) (dispatch.Result, int, error) {
	recipients, err := e.resolveRecipients(ctx, mode, ids)
	if err != nil {
		return dispatch.Result{}, 0, err
	}

	res := dispatch.SendInBatches(ctx, recipients, e.dispatchOpt,
		func(ctx context.Context, c platform.Customer) error {
			msg := mailer.Message{
				From:    e.senderEmail,
				To:      c.Email,
				Subject: mailer.Personalize(subject, c.FirstName, e.storeName),
				HTML:    mailer.Personalize(body, c.FirstName, e.storeName),
			}
			return e.sender.Send(ctx, msg)
		})
	return res, len(recipients), nil
}

// resolveRecipients materializes the recipient set for a campaign. Consent
// gates both modes: an explicit id list still drops customers without it.
func (e *Engine) resolveRecipients(ctx context.Context, mode domain.RecipientMode, ids []string) ([]platform.Customer, error) {
	var customers []platform.Customer
	var err error

	switch mode {
	case domain.RecipientsCustomerIDs:
		customers, err = e.platform.GetCustomersByIDs(ctx, ids)
	default:
		customers, err = e.platform.ListConsentingCustomers(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving recipients: %w", err)
	}

	recipients := customers[:0]
	for _, c := range customers {
		if c.Email == "" || c.Consent != domain.ConsentSubscribed {
			continue
		}
		recipients = append(recipients, c)
	}
	return recipients, nil
}
