package automation

import (
	"context"
	"fmt"

	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/eligibility"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// HandleCustomerCreated runs the welcome automation for one new customer.
// Gate failures are skips, not errors: the webhook was valid, there is just
// nothing to send.
func (e *Engine) HandleCustomerCreated(ctx context.Context, customer domain.CustomerPayload) (Outcome, error) {
	settings, err := e.settings.Get(ctx, domain.AutomationWelcome)
	if err != nil {
		return Outcome{}, fmt.Errorf("welcome: %w", err)
	}
	if !settings.Enabled {
		return skipped(ReasonDisabled), nil
	}
	if customer.Email == "" {
		return skipped(ReasonNoEmail), nil
	}
	if !eligibility.HasConsent(customer.Consent()) {
		return skipped(ReasonNoConsent), nil
	}

	if err := e.sendTo(ctx, settings, customer.Email, customer.FirstName); err != nil {
		logger.Error("welcome send failed", "email", customer.Email, "error", err)
		return Outcome{Status: StatusPartial, Failed: 1}, nil
	}

	e.record(ctx, string(domain.AutomationWelcome),
		"Welcome email sent",
		"recipient "+logger.RedactEmail(customer.Email))
	return Outcome{Status: StatusSent, Sent: 1}, nil
}
