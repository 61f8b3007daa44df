package settingsstore

import (
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/settings"
)

// Priority: database > environment > default
type SettingsStore struct {
	settings *settings.Repository
}

func New(settings *settings.Repository) *SettingsStore {
	return &SettingsStore{settings: settings}
}
