// Package static implements the settings store on top of environment-derived
// configuration, for deployments that run the gateway without a database.
package static

import (
	"context"

	"github.com/membergate/membergate/internal/model"
)

var _ model.SettingsStore = (*SettingsStore)(nil)

// SettingsStore serves one immutable settings snapshot.
type SettingsStore struct {
	settings model.Settings
}

func NewSettingsStore(settings model.Settings) *SettingsStore {
	return &SettingsStore{
		settings: settings,
	}
}

func (s *SettingsStore) Load(ctx context.Context) (model.Settings, error) {
	return s.settings, nil
}
