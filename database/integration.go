package database

import (
	"encoding/json"
	"fmt"
	"time"
)

// Integration represents one configured connection to an external Notion workspace.
// The bearer credential is stored encrypted and never leaves this package in
// encrypted form other than through BearerToken.
type Integration struct {
	Model
	Name         string     `json:"name" gorm:"index"`
	WorkspaceID  string     `json:"workspace_id" gorm:"uniqueIndex"`
	Token        []byte     `json:"-"` // secretbox-encrypted bearer credential
	Active       bool       `json:"active"`
	Settings     []byte     `json:"settings"` // JSON, see SyncSettings
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// SyncSettings is the subset of an integration's free-form settings the sync
// core consumes.
type SyncSettings struct {
	DefaultDatabaseID string   `json:"default_database_id"`
	TargetTables      []string `json:"target_tables"`
}

func (i *Integration) SyncSettings() (SyncSettings, error) {
	var settings SyncSettings
	if len(i.Settings) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(i.Settings, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse integration settings: %w", err)
	}
	return settings, nil
}

func (i *Integration) SetSyncSettings(settings SyncSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode integration settings: %w", err)
	}
	i.Settings = raw
	return nil
}

// BearerToken decrypts and returns the integration's remote API credential.
func (i *Integration) BearerToken() (string, error) {
	plain, err := DecryptSecret(i.Token)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt integration token: %w", err)
	}
	return plain, nil
}

// SetBearerToken encrypts and stores the remote API credential.
func (i *Integration) SetBearerToken(token string) error {
	sealed, err := EncryptSecret(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt integration token: %w", err)
	}
	i.Token = sealed
	return nil
}
