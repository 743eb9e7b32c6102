package automation

import (
	"context"
	"fmt"

	"github.com/ignite/storemailer/internal/dispatch"
	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/eligibility"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// RunAbandonedCart runs one abandoned-cart batch tick: fetch every abandoned
// checkout from the platform, filter to the eligible window, and dispatch
// reminders in batches.
func (e *Engine) RunAbandonedCart(ctx context.Context) (Outcome, error) {
	settings, err := e.settings.Get(ctx, domain.AutomationAbandonedCart)
	if err != nil {
		return Outcome{}, fmt.Errorf("abandoned-cart: %w", err)
	}
	if !settings.Enabled {
		return skipped(ReasonDisabled), nil
	}

	checkouts, err := e.platform.ListAbandonedCheckouts(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("abandoned-cart: %w", err)
	}

	eligible, excluded := eligibility.FilterAbandonedCheckouts(
		checkouts, e.now(), settings.DelayHours, settings.MaxAgeHours)
	logger.Info("abandoned-cart tick",
		"fetched", len(checkouts), "eligible", len(eligible), "excluded", len(excluded))

	if len(eligible) == 0 {
		return skipped(ReasonNoRecipients), nil
	}

	res := dispatch.SendInBatches(ctx, eligible, e.dispatchOpt,
		func(ctx context.Context, c domain.AbandonedCheckout) error {
			return e.sendTo(ctx, settings, c.Email, c.FirstName)
		})

	e.record(ctx, string(domain.AutomationAbandonedCart),
		countSummary("Abandoned cart reminders", res),
		fmt.Sprintf("%d checkouts fetched, %d excluded", len(checkouts), len(excluded)))
	return outcomeFor(res), nil
}
