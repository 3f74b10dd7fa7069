package integrations

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"portalsync/database"
	"portalsync/notion"
	"portalsync/server/util"
)

// UpdateIntegrationRequest represents the request for updating an integration.
// Nil fields are left unchanged.
type UpdateIntegrationRequest struct {
	Name     *string                `json:"name,omitempty"`
	Token    *string                `json:"token,omitempty"`
	Settings *database.SyncSettings `json:"settings,omitempty"`
}

// Update edits an integration. A changed credential is re-validated against
// the remote API before it replaces the stored one.
//
//	@Summary      Update integration
//	@Description  Update an integration's name, settings or credential. A new credential is validated against the remote API first.
//	@Tags         integrations
//	@Accept       json
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Param        request body UpdateIntegrationRequest true "Fields to update"
//	@Success      200 {object} ListedIntegration "Updated integration details"
//	@Failure      400 {string} string "Invalid request"
//	@Failure      401 {string} string "Credential rejected by the remote API"
//	@Failure      404 {string} string "Integration not found"
//	@Failure      500 {string} string "Internal server error"
//	@Router       /api/v1/integrations/{id}/update [post]
func (h *IntegrationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	integration, ok := findIntegration(w, r, DB)
	if !ok {
		return
	}

	var data UpdateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if data.Name != nil {
		if *data.Name == "" {
			http.Error(w, "Integration name must not be empty", http.StatusBadRequest)
			return
		}
		integration.Name = *data.Name
	}

	if data.Settings != nil {
		if err := integration.SetSyncSettings(*data.Settings); err != nil {
			http.Error(w, fmt.Sprintf("Failed to store settings: %v", err), http.StatusInternalServerError)
			return
		}
	}

	if data.Token != nil {
		if *data.Token == "" {
			http.Error(w, "Token must not be empty", http.StatusBadRequest)
			return
		}

		client := notion.NewClient(h.NotionHost, *data.Token)
		if _, err := client.ListDatabases(r.Context()); err != nil {
			if errors.Is(err, notion.ErrAuthenticationFailed) {
				http.Error(w, "Credential rejected by the remote API", http.StatusUnauthorized)
				return
			}
			http.Error(w, fmt.Sprintf("Failed to verify credential: %v", err), http.StatusBadGateway)
			return
		}
		if err := integration.SetBearerToken(*data.Token); err != nil {
			http.Error(w, fmt.Sprintf("Failed to store credential: %v", err), http.StatusInternalServerError)
			return
		}
	}

	if err := DB.Save(integration).Error; err != nil {
		http.Error(w, "Failed to update integration", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(convertIntegrationToListedIntegration(*integration))
}
