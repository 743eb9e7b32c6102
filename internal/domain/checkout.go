package domain

import "time"

// AbandonedCheckout is a checkout the customer started but never completed,
// as returned by the platform API. The platform owns this data; the engine
// receives it by value and never persists it.
type AbandonedCheckout struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	Consent   ConsentState `json:"consent"`
	CreatedAt time.Time    `json:"created_at"`
}
