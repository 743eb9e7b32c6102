// Package store persists the engine's durable state — automation settings,
// scheduled campaigns, the activity log and the gift-card sent-set — as
// whole JSON documents in the metadata store.
//
// All writes are read-modify-write with no concurrency token: concurrent
// writers to the same logical record can clobber each other (last write
// wins). That limitation comes from the metadata-store contract and is
// deliberately not hidden here.
package store

import "errors"

// Metadata-store namespaces.
const (
	nsSettings  = "settings"
	nsCampaigns = "campaigns"
	nsActivity  = "activity"
	nsGiftCards = "giftcards"
)

// ErrCampaignNotFound is returned when a campaign id has no record.
var ErrCampaignNotFound = errors.New("campaign not found")
