// Package eligibility decides whether a recipient or event qualifies for an
// automation. Every function here is a pure, total predicate over its
// inputs: no I/O, no clock reads, every input shape maps to a definite
// answer.
package eligibility

import (
	"strings"
	"time"

	"github.com/ignite/storemailer/internal/domain"
)

// SkipReason explains why an item was excluded from a run.
type SkipReason string

const (
	SkipNoEmail    SkipReason = "no_email"
	SkipNoConsent  SkipReason = "no_consent"
	SkipTooYoung   SkipReason = "too_young"
	SkipTooOld     SkipReason = "too_old"
	SkipDuplicate  SkipReason = "duplicate_email"
)

// HasConsent reports whether the consent state authorizes a send.
// Only the exact subscribed state qualifies; anything else — including
// states added by future platform versions — does not.
func HasConsent(s domain.ConsentState) bool {
	return s == domain.ConsentSubscribed
}

// Skipped records one excluded checkout and why.
type Skipped struct {
	ID     string
	Reason SkipReason
}

// FilterAbandonedCheckouts returns the checkouts eligible for an
// abandoned-cart send, preserving input order, plus a record of every
// exclusion. A checkout is eligible when:
//
//   - its age is within [delayHours, maxAgeHours],
//   - the customer has marketing consent,
//   - it carries an email address, and
//   - no earlier checkout in the same batch used the same address
//     (case-insensitive; the first occurrence wins).
func FilterAbandonedCheckouts(checkouts []domain.AbandonedCheckout, now time.Time, delayHours, maxAgeHours int) ([]domain.AbandonedCheckout, []Skipped) {
	minAge := time.Duration(delayHours) * time.Hour
	maxAge := time.Duration(maxAgeHours) * time.Hour

	var eligible []domain.AbandonedCheckout
	var skipped []Skipped
	seen := make(map[string]bool, len(checkouts))

	for _, c := range checkouts {
		if c.Email == "" {
			skipped = append(skipped, Skipped{ID: c.ID, Reason: SkipNoEmail})
			continue
		}
		if !HasConsent(c.Consent) {
			skipped = append(skipped, Skipped{ID: c.ID, Reason: SkipNoConsent})
			continue
		}
		age := now.Sub(c.CreatedAt)
		if age < minAge {
			skipped = append(skipped, Skipped{ID: c.ID, Reason: SkipTooYoung})
			continue
		}
		if age > maxAge {
			skipped = append(skipped, Skipped{ID: c.ID, Reason: SkipTooOld})
			continue
		}
		key := strings.ToLower(c.Email)
		if seen[key] {
			skipped = append(skipped, Skipped{ID: c.ID, Reason: SkipDuplicate})
			continue
		}
		seen[key] = true
		eligible = append(eligible, c)
	}

	return eligible, skipped
}

// GiftCardOrderEligible reports whether an order qualifies for the gift-card
// automation: the order must have line items and every one of them must be
// a gift card. Mixed carts are excluded entirely.
func GiftCardOrderEligible(order domain.OrderPayload) bool {
	if len(order.LineItems) == 0 {
		return false
	}
	for _, item := range order.LineItems {
		if !item.GiftCard {
			return false
		}
	}
	return true
}
