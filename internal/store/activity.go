package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/metastore"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// activityKey is the single document the whole log lives under.
const activityKey = "log"

// Activity is the capped activity log. The newest entry is first and the
// log never grows past domain.ActivityLogCap entries.
type Activity struct {
	meta metastore.Store
}

// NewActivity creates an activity log on the given metadata store.
func NewActivity(meta metastore.Store) *Activity {
	return &Activity{meta: meta}
}

// Record prepends an entry to the log, filling in the id and timestamp when
// the caller left them zero. Failures are logged and swallowed: the log is
// diagnostics, and a broken log must never fail the automation that fired.
func (a *Activity) Record(ctx context.Context, entry domain.ActivityEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	entries, err := a.List(ctx)
	if err != nil {
		logger.Warn("activity log read failed, entry dropped", "type", entry.Type, "error", err)
		return
	}

	entries = append([]domain.ActivityEntry{entry}, entries...)
	if len(entries) > domain.ActivityLogCap {
		entries = entries[:domain.ActivityLogCap]
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		logger.Warn("activity log marshal failed, entry dropped", "type", entry.Type, "error", err)
		return
	}
	if err := a.meta.Write(ctx, nsActivity, activityKey, raw); err != nil {
		logger.Warn("activity log write failed, entry dropped", "type", entry.Type, "error", err)
	}
}

// List returns the log, newest first. A missing document is an empty log.
func (a *Activity) List(ctx context.Context) ([]domain.ActivityEntry, error) {
	raw, err := a.meta.Read(ctx, nsActivity, activityKey)
	if errors.Is(err, metastore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read activity log: %w", err)
	}

	var entries []domain.ActivityEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse activity log: %w", err)
	}
	return entries, nil
}
