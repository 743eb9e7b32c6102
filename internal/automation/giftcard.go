package automation

import (
	"context"
	"fmt"

	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/eligibility"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// HandleGiftCardOrder runs the gift-card automation for one order. The order
// qualifies only when every line item is a gift card, and each order id is
// sent at most once per the sent-set.
func (e *Engine) HandleGiftCardOrder(ctx context.Context, order domain.OrderPayload) (Outcome, error) {
	settings, err := e.settings.Get(ctx, domain.AutomationGiftCard)
	if err != nil {
		return Outcome{}, fmt.Errorf("gift-card: %w", err)
	}
	if !settings.Enabled {
		return skipped(ReasonDisabled), nil
	}
	if !eligibility.GiftCardOrderEligible(order) {
		return skipped(ReasonNotGiftCard), nil
	}

	email := order.RecipientEmail()
	if email == "" {
		return skipped(ReasonNoEmail), nil
	}
	if !eligibility.HasConsent(order.Customer.Consent()) {
		return skipped(ReasonNoConsent), nil
	}

	orderID := fmt.Sprint(order.ID)
	already, err := e.sentSet.Contains(ctx, orderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("gift-card: %w", err)
	}
	if already {
		return skipped(ReasonAlreadySent), nil
	}

	if err := e.sendTo(ctx, settings, email, order.Customer.FirstName); err != nil {
		logger.Error("gift-card send failed",
			"order", order.OrderName, "email", email, "error", err)
		return Outcome{Status: StatusPartial, Failed: 1}, nil
	}

	// Marking after the send is best-effort: a failed mark means a
	// redelivered webhook could send a duplicate, which is preferred over
	// marking first and risking a swallowed send.
	if err := e.sentSet.Add(ctx, orderID); err != nil {
		logger.Warn("gift-card sent-set mark failed", "order", orderID, "error", err)
	}

	e.record(ctx, string(domain.AutomationGiftCard),
		"Gift card email sent for order "+order.OrderName,
		"recipient "+logger.RedactEmail(email))
	return Outcome{Status: StatusSent, Sent: 1}, nil
}
