package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/metastore"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// Settings stores one AutomationSettings record per automation type.
type Settings struct {
	meta metastore.Store
}

// NewSettings creates a settings store on the given metadata store.
func NewSettings(meta metastore.Store) *Settings {
	return &Settings{meta: meta}
}

// Get returns the settings for the automation, creating the default record
// on first read when none has been saved yet.
func (s *Settings) Get(ctx context.Context, t domain.AutomationType) (domain.AutomationSettings, error) {
	raw, err := s.meta.Read(ctx, nsSettings, string(t))
	if errors.Is(err, metastore.ErrNotFound) {
		defaults := domain.DefaultSettings(t)
		if err := s.Save(ctx, t, defaults); err != nil {
			logger.Warn("persisting default settings failed", "automation", t, "error", err)
		}
		return defaults, nil
	}
	if err != nil {
		return domain.AutomationSettings{}, fmt.Errorf("read settings %s: %w", t, err)
	}

	var settings domain.AutomationSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.AutomationSettings{}, fmt.Errorf("parse settings %s: %w", t, err)
	}
	return settings, nil
}

// Save overwrites the settings record wholesale. There is no partial patch
// at this layer; callers merge before writing.
func (s *Settings) Save(ctx context.Context, t domain.AutomationType, settings domain.AutomationSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings %s: %w", t, err)
	}
	if err := s.meta.Write(ctx, nsSettings, string(t), raw); err != nil {
		return fmt.Errorf("write settings %s: %w", t, err)
	}
	return nil
}
