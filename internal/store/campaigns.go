package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/metastore"
)

// terminalRetention is how long sent and cancelled campaign records stay
// readable before the backing store may garbage-collect them.
const terminalRetention = 7 * 24 * time.Hour

// Campaigns stores one ScheduledCampaign record per campaign id.
type Campaigns struct {
	meta metastore.Store
}

// NewCampaigns creates a campaign store on the given metadata store.
func NewCampaigns(meta metastore.Store) *Campaigns {
	return &Campaigns{meta: meta}
}

// Get returns the campaign record, or ErrCampaignNotFound.
func (c *Campaigns) Get(ctx context.Context, id string) (*domain.ScheduledCampaign, error) {
	raw, err := c.meta.Read(ctx, nsCampaigns, id)
	if errors.Is(err, metastore.ErrNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read campaign %s: %w", id, err)
	}

	var campaign domain.ScheduledCampaign
	if err := json.Unmarshal(raw, &campaign); err != nil {
		return nil, fmt.Errorf("parse campaign %s: %w", id, err)
	}
	return &campaign, nil
}

// Put writes the campaign record wholesale. Records in a terminal status
// are written with a retention expiry so old sent and cancelled campaigns
// age out of the store on their own.
func (c *Campaigns) Put(ctx context.Context, campaign *domain.ScheduledCampaign) error {
	raw, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("marshal campaign %s: %w", campaign.ID, err)
	}

	if campaign.Status.Terminal() {
		expireAt := time.Now().UTC().Add(terminalRetention)
		if err := c.meta.WriteExpiring(ctx, nsCampaigns, campaign.ID, raw, expireAt); err != nil {
			return fmt.Errorf("write campaign %s: %w", campaign.ID, err)
		}
		return nil
	}

	if err := c.meta.Write(ctx, nsCampaigns, campaign.ID, raw); err != nil {
		return fmt.Errorf("write campaign %s: %w", campaign.ID, err)
	}
	return nil
}

// List returns all stored campaigns, newest first by creation time.
// Records that fail to parse are skipped rather than failing the listing.
func (c *Campaigns) List(ctx context.Context) ([]domain.ScheduledCampaign, error) {
	docs, err := c.meta.List(ctx, nsCampaigns)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	campaigns := make([]domain.ScheduledCampaign, 0, len(docs))
	for _, raw := range docs {
		var campaign domain.ScheduledCampaign
		if err := json.Unmarshal(raw, &campaign); err != nil {
			continue
		}
		campaigns = append(campaigns, campaign)
	}

	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})
	return campaigns, nil
}
