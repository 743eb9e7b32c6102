package domain

// AutomationType identifies one automation and keys its settings record.
type AutomationType string

const (
	AutomationWelcome       AutomationType = "welcome"
	AutomationPostPurchase  AutomationType = "post_purchase"
	AutomationGiftCard      AutomationType = "gift_card"
	AutomationAbandonedCart AutomationType = "abandoned_cart"
)

// ValidAutomationType reports whether t names a known automation.
func ValidAutomationType(t AutomationType) bool {
	switch t {
	case AutomationWelcome, AutomationPostPurchase, AutomationGiftCard, AutomationAbandonedCart:
		return true
	}
	return false
}

// AutomationSettings is the operator-editable record for one automation.
// It is read-mostly: the engine only reads it, the admin API overwrites it
// wholesale on save (callers merge before writing).
type AutomationSettings struct {
	Enabled      bool   `json:"enabled"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	TemplateName string `json:"template_name,omitempty"`

	// Abandoned-cart timing window. Ignored by other automations.
	DelayHours  int `json:"delay_hours,omitempty"`
	MaxAgeHours int `json:"max_age_hours,omitempty"`
}

// DefaultSettings returns the record created on first read when no settings
// have been saved yet for the given automation.
func DefaultSettings(t AutomationType) AutomationSettings {
	s := AutomationSettings{Enabled: false}
	switch t {
	case AutomationWelcome:
		s.Subject = "Welcome to {{shop}}!"
		s.Body = "<p>Hi {{name}}, thanks for joining {{shop}}.</p>"
	case AutomationPostPurchase:
		s.Subject = "Thanks for your order"
		s.Body = "<p>Hi {{name}}, thank you for shopping with {{shop}}.</p>"
	case AutomationGiftCard:
		s.Subject = "You received a gift card"
		s.Body = "<p>Hi {{name}}, your gift card from {{shop}} is on its way.</p>"
	case AutomationAbandonedCart:
		s.Subject = "You left something behind"
		s.Body = "<p>Hi {{name}}, your cart at {{shop}} is still waiting.</p>"
		s.DelayHours = 4
		s.MaxAgeHours = 48
	}
	return s
}
