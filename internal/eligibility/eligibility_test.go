package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/storemailer/internal/domain"
)

func TestHasConsent(t *testing.T) {
	cases := map[domain.ConsentState]bool{
		domain.ConsentSubscribed:    true,
		domain.ConsentNotSubscribed: false,
		domain.ConsentUnsubscribed:  false,
		domain.ConsentPending:       false,
		domain.ConsentRedacted:      false,
		domain.ConsentState("SUBSCRIBED"): false, // exact match only
		domain.ConsentState(""):           false,
	}
	for state, want := range cases {
		assert.Equal(t, want, HasConsent(state), "state %q", state)
	}
}

func checkout(id, email string, age time.Duration, now time.Time) domain.AbandonedCheckout {
	return domain.AbandonedCheckout{
		ID:        id,
		Email:     email,
		Consent:   domain.ConsentSubscribed,
		CreatedAt: now.Add(-age),
	}
}

func TestAbandonedCartWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	checkouts := []domain.AbandonedCheckout{
		checkout("young", "young@example.com", 3*time.Hour, now),
		checkout("good", "good@example.com", 10*time.Hour, now),
		checkout("old", "old@example.com", 50*time.Hour, now),
	}

	eligible, skipped := FilterAbandonedCheckouts(checkouts, now, 4, 48)

	assert.Len(t, eligible, 1)
	assert.Equal(t, "good", eligible[0].ID)

	reasons := map[string]SkipReason{}
	for _, s := range skipped {
		reasons[s.ID] = s.Reason
	}
	assert.Equal(t, SkipTooYoung, reasons["young"])
	assert.Equal(t, SkipTooOld, reasons["old"])
}

func TestAbandonedCartWindowBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Exactly delayHours old and exactly maxAgeHours old are both eligible.
	checkouts := []domain.AbandonedCheckout{
		checkout("at-delay", "a@example.com", 4*time.Hour, now),
		checkout("at-max", "b@example.com", 48*time.Hour, now),
	}
	eligible, skipped := FilterAbandonedCheckouts(checkouts, now, 4, 48)
	assert.Len(t, eligible, 2)
	assert.Empty(t, skipped)
}

func TestAbandonedCartDedup(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	checkouts := []domain.AbandonedCheckout{
		checkout("first", "Shopper@Example.com", 10*time.Hour, now),
		checkout("dupe", "shopper@example.com", 12*time.Hour, now),
		checkout("other", "other@example.com", 12*time.Hour, now),
	}

	eligible, skipped := FilterAbandonedCheckouts(checkouts, now, 4, 48)

	assert.Len(t, eligible, 2)
	assert.Equal(t, "first", eligible[0].ID) // first occurrence wins, order preserved
	assert.Equal(t, "other", eligible[1].ID)

	assert.Len(t, skipped, 1)
	assert.Equal(t, "dupe", skipped[0].ID)
	assert.Equal(t, SkipDuplicate, skipped[0].Reason)
}

func TestAbandonedCartConsentAndEmail(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	noConsent := checkout("nc", "nc@example.com", 10*time.Hour, now)
	noConsent.Consent = domain.ConsentPending
	noEmail := checkout("ne", "", 10*time.Hour, now)

	eligible, skipped := FilterAbandonedCheckouts(
		[]domain.AbandonedCheckout{noConsent, noEmail}, now, 4, 48)

	assert.Empty(t, eligible)
	assert.Len(t, skipped, 2)
	assert.Equal(t, SkipNoConsent, skipped[0].Reason)
	assert.Equal(t, SkipNoEmail, skipped[1].Reason)
}

func TestFilterEmptyInput(t *testing.T) {
	eligible, skipped := FilterAbandonedCheckouts(nil, time.Now(), 4, 48)
	assert.Empty(t, eligible)
	assert.Empty(t, skipped)
}

func TestGiftCardAllOrNothing(t *testing.T) {
	gift := domain.LineItem{Title: "Gift Card $50", GiftCard: true}
	mug := domain.LineItem{Title: "Coffee Mug"}

	assert.True(t, GiftCardOrderEligible(domain.OrderPayload{
		LineItems: []domain.LineItem{gift, gift},
	}))
	assert.False(t, GiftCardOrderEligible(domain.OrderPayload{
		LineItems: []domain.LineItem{gift, mug},
	}), "mixed cart must be excluded entirely")
	assert.False(t, GiftCardOrderEligible(domain.OrderPayload{}), "empty order")
}
