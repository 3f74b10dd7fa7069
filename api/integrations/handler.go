package integrations

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"portalsync/database"
)

// IntegrationsHandler handles integration-related API requests
type IntegrationsHandler struct {
	NotionHost string
	Log        *logrus.Logger
}

type ListedIntegration struct {
	ID           uint                   `json:"id"`
	Name         string                 `json:"name"`
	WorkspaceID  string                 `json:"workspace_id"`
	Active       bool                   `json:"active"`
	LastSyncedAt *time.Time             `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Settings     map[string]interface{} `json:"settings,omitempty"`
}

func convertIntegrationToListedIntegration(integration database.Integration) ListedIntegration {
	listedIntegration := ListedIntegration{
		ID:           integration.ID,
		Name:         integration.Name,
		WorkspaceID:  integration.WorkspaceID,
		Active:       integration.Active,
		LastSyncedAt: integration.LastSyncedAt,
		CreatedAt:    integration.CreatedAt,
		UpdatedAt:    integration.UpdatedAt,
	}

	// The token never leaves the database layer; settings are plain JSON.
	if len(integration.Settings) > 0 {
		var settings map[string]interface{}
		if err := json.Unmarshal(integration.Settings, &settings); err == nil {
			listedIntegration.Settings = settings
		}
	}

	return listedIntegration
}
