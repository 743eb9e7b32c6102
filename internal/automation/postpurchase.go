package automation

import (
	"context"
	"fmt"

	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/eligibility"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// HandleOrderCreated runs the post-purchase thank-you automation for one
// completed order.
func (e *Engine) HandleOrderCreated(ctx context.Context, order domain.OrderPayload) (Outcome, error) {
	settings, err := e.settings.Get(ctx, domain.AutomationPostPurchase)
	if err != nil {
		return Outcome{}, fmt.Errorf("post-purchase: %w", err)
	}
	if !settings.Enabled {
		return skipped(ReasonDisabled), nil
	}

	email := order.RecipientEmail()
	if email == "" {
		return skipped(ReasonNoEmail), nil
	}
	if !eligibility.HasConsent(order.Customer.Consent()) {
		return skipped(ReasonNoConsent), nil
	}

	if err := e.sendTo(ctx, settings, email, order.Customer.FirstName); err != nil {
		logger.Error("post-purchase send failed",
			"order", order.OrderName, "email", email, "error", err)
		return Outcome{Status: StatusPartial, Failed: 1}, nil
	}

	e.record(ctx, string(domain.AutomationPostPurchase),
		"Post-purchase email sent for order "+order.OrderName,
		"recipient "+logger.RedactEmail(email))
	return Outcome{Status: StatusSent, Sent: 1}, nil
}
