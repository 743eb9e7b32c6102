package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ignite/storemailer/internal/metastore"
)

// sentSetKey is the single document holding the set of handled order ids.
const sentSetKey = "sent-orders"

// SentSet remembers which gift-card orders already had their email sent so
// a redelivered webhook does not send a second one.
//
// Contains and Add are separate calls with no lock between them, so two
// truly concurrent deliveries of the same order can both pass the check.
// The set is best-effort dedup, not an exactly-once guarantee.
type SentSet struct {
	meta metastore.Store
}

// NewSentSet creates a sent-set on the given metadata store.
func NewSentSet(meta metastore.Store) *SentSet {
	return &SentSet{meta: meta}
}

// Contains reports whether the order id is already in the set.
func (s *SentSet) Contains(ctx context.Context, orderID string) (bool, error) {
	set, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return set[orderID], nil
}

// Add records the order id in the set.
func (s *SentSet) Add(ctx context.Context, orderID string) error {
	set, err := s.load(ctx)
	if err != nil {
		return err
	}
	if set[orderID] {
		return nil
	}
	set[orderID] = true

	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal sent-set: %w", err)
	}
	if err := s.meta.Write(ctx, nsGiftCards, sentSetKey, raw); err != nil {
		return fmt.Errorf("write sent-set: %w", err)
	}
	return nil
}

func (s *SentSet) load(ctx context.Context) (map[string]bool, error) {
	raw, err := s.meta.Read(ctx, nsGiftCards, sentSetKey)
	if errors.Is(err, metastore.ErrNotFound) {
		return make(map[string]bool), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sent-set: %w", err)
	}

	set := make(map[string]bool)
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parse sent-set: %w", err)
	}
	return set, nil
}
