package domain

import "time"

// CustomerPayload is the customer-created webhook body. Fields beyond these
// are ignored at the boundary.
type CustomerPayload struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	CreatedAt time.Time `json:"created_at"`

	EmailMarketingConsent struct {
		State ConsentState `json:"state"`
	} `json:"email_marketing_consent"`
}

// Consent returns the customer's marketing consent state.
func (c CustomerPayload) Consent() ConsentState {
	return c.EmailMarketingConsent.State
}

// LineItem is a single order line.
type LineItem struct {
	Title    string `json:"title"`
	GiftCard bool   `json:"gift_card"`
}

// OrderPayload is the order-created webhook body.
type OrderPayload struct {
	ID        int64           `json:"id"`
	OrderName string          `json:"name"`
	Email     string          `json:"email"`
	Customer  CustomerPayload `json:"customer"`
	LineItems []LineItem      `json:"line_items"`
	CreatedAt time.Time       `json:"created_at"`
}

// RecipientEmail returns the order-level email, falling back to the
// customer record when the order itself carries none.
func (o OrderPayload) RecipientEmail() string {
	if o.Email != "" {
		return o.Email
	}
	return o.Customer.Email
}
