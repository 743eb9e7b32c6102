package domain

import "time"

// CampaignStatus is the lifecycle state of a scheduled campaign.
// The machine is one-way: scheduled → sent or scheduled → cancelled.
// There is no transition out of a terminal state.
type CampaignStatus string

const (
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSent      CampaignStatus = "sent"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignSent || s == CampaignCancelled
}

// RecipientMode selects how a campaign resolves its recipient set.
type RecipientMode string

const (
	// RecipientsAllConsenting sends to every customer with marketing consent.
	RecipientsAllConsenting RecipientMode = "all_consenting"
	// RecipientsCustomerIDs sends to a manually curated customer id list.
	RecipientsCustomerIDs RecipientMode = "customer_ids"
)

// ScheduledCampaign is a one-shot campaign armed for a future time.
// Created by an operator action; transitioned to sent/cancelled only by the
// engine, guarded by an idempotency check on the current status.
type ScheduledCampaign struct {
	ID             string         `json:"id"`
	Subject        string         `json:"subject"`
	Body           string         `json:"body"`
	RecipientMode  RecipientMode  `json:"recipient_mode"`
	CustomerIDs    []string       `json:"customer_ids,omitempty"`
	ScheduledAt    time.Time      `json:"scheduled_at"`
	Status         CampaignStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	RecipientCount int            `json:"recipient_count"`
}
