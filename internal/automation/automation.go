// Package automation holds the orchestrators: one per trigger, each walking
// the same path of gate checks → recipient resolution → send → activity
// entry. The HTTP layer authenticates and decodes; everything after that
// lives here.
package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appconfig "github.com/ignite/storemailer/internal/config"
	"github.com/ignite/storemailer/internal/dispatch"
	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/mailer"
	"github.com/ignite/storemailer/internal/platform"
	"github.com/ignite/storemailer/internal/store"
)

// Outcome statuses.
const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
	StatusPartial = "partial"
)

// Skip reasons surfaced to callers in Outcome.Reason.
const (
	ReasonDisabled       = "automation_disabled"
	ReasonNoEmail        = "no_email"
	ReasonNoConsent      = "no_consent"
	ReasonNotGiftCard    = "not_gift_card_order"
	ReasonAlreadySent    = "already_sent"
	ReasonNoRecipients   = "no_recipients"
	ReasonAlreadyHandled = "campaign_already_handled"
)

var (
	// ErrNotFound is returned when a campaign id has no record.
	ErrNotFound = store.ErrCampaignNotFound

	// ErrInvalidCampaign is returned when campaign input fails validation.
	ErrInvalidCampaign = errors.New("invalid campaign")
)

// Outcome is the result of one orchestrator run.
type Outcome struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
}

func skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

// outcomeFor folds a dispatch result into an Outcome: all sends succeeded →
// sent, none attempted → skipped, anything in between → partial.
func outcomeFor(res dispatch.Result) Outcome {
	switch {
	case res.Sent+res.Failed == 0:
		return skipped(ReasonNoRecipients)
	case res.Failed == 0:
		return Outcome{Status: StatusSent, Sent: res.Sent}
	default:
		return Outcome{Status: StatusPartial, Sent: res.Sent, Failed: res.Failed}
	}
}

// PlatformAPI is the slice of the platform client the orchestrators use.
type PlatformAPI interface {
	ListAbandonedCheckouts(ctx context.Context) ([]domain.AbandonedCheckout, error)
	ListConsentingCustomers(ctx context.Context) ([]platform.Customer, error)
	GetCustomersByIDs(ctx context.Context, ids []string) ([]platform.Customer, error)
}

// Engine wires the orchestrators to their collaborators.
type Engine struct {
	settings  *store.Settings
	campaigns *store.Campaigns
	activity  *store.Activity
	sentSet   *store.SentSet
	platform  PlatformAPI
	sender    mailer.Sender

	storeName   string
	senderEmail string
	dispatchOpt dispatch.Options

	now   func() time.Time
	newID func() string
}

// New builds the automation engine.
func New(
	cfg *appconfig.Config,
	settings *store.Settings,
	campaigns *store.Campaigns,
	activity *store.Activity,
	sentSet *store.SentSet,
	platformAPI PlatformAPI,
	sender mailer.Sender,
) *Engine {
	return &Engine{
		settings:    settings,
		campaigns:   campaigns,
		activity:    activity,
		sentSet:     sentSet,
		platform:    platformAPI,
		sender:      sender,
		storeName:   cfg.App.StoreName,
		senderEmail: cfg.App.SenderEmail,
		dispatchOpt: dispatch.Options{
			BatchSize:       cfg.Dispatch.BatchSize,
			InterBatchDelay: cfg.Dispatch.InterBatchDelay(),
			PerItemTimeout:  cfg.Dispatch.PerItemTimeout(),
		},
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// sendTo personalizes the settings content and sends one message.
func (e *Engine) sendTo(ctx context.Context, settings domain.AutomationSettings, email, firstName string) error {
	msg := mailer.Message{
		From:    e.senderEmail,
		To:      email,
		Subject: mailer.Personalize(settings.Subject, firstName, e.storeName),
		HTML:    mailer.Personalize(settings.Body, firstName, e.storeName),
	}
	return e.sender.Send(ctx, msg)
}

// record appends an activity entry. Failures are handled inside the log.
func (e *Engine) record(ctx context.Context, entryType, summary, details string) {
	e.activity.Record(ctx, domain.ActivityEntry{
		Type:    entryType,
		Summary: summary,
		Details: details,
	})
}

func countSummary(what string, res dispatch.Result) string {
	return fmt.Sprintf("%s: %d sent, %d failed", what, res.Sent, res.Failed)
}
