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

// CreateIntegrationRequest represents the request for creating a new integration
type CreateIntegrationRequest struct {
	Name        string                `json:"name"`
	WorkspaceID string                `json:"workspace_id"`
	Token       string                `json:"token"`
	Settings    database.SyncSettings `json:"settings"`
}

// CreateIntegrationResponse represents the response for creating a new integration
type CreateIntegrationResponse struct {
	Message     string            `json:"message"`
	Integration ListedIntegration `json:"integration"`
}

// Create registers a new workspace integration after a round-trip credential
// check against the remote API.
//
//	@Summary      Create integration
//	@Description  Register a new workspace integration. The supplied credential is validated against the remote API before the integration is stored.
//	@Tags         integrations
//	@Accept       json
//	@Produce      json
//	@Param        request body CreateIntegrationRequest true "Integration creation request"
//	@Success      201 {object} CreateIntegrationResponse "Integration created successfully"
//	@Failure      400 {string} string "Invalid request or missing required fields"
//	@Failure      401 {string} string "Credential rejected by the remote API"
//	@Failure      409 {string} string "Integration for this workspace already exists"
//	@Failure      500 {string} string "Internal server error"
//	@Router       /api/v1/integrations/create [post]
func (h *IntegrationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	var data CreateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if data.Name == "" {
		http.Error(w, "Integration name is required", http.StatusBadRequest)
		return
	}
	if data.WorkspaceID == "" {
		http.Error(w, "Workspace ID is required", http.StatusBadRequest)
		return
	}
	if data.Token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	// Workspace identifiers are unique across integrations.
	var existingIntegration database.Integration
	result := DB.Where("workspace_id = ?", data.WorkspaceID).First(&existingIntegration)
	if result.Error == nil {
		http.Error(w, fmt.Sprintf("Integration for workspace '%s' already exists", data.WorkspaceID), http.StatusConflict)
		return
	}

	// Round-trip credential check before anything is stored.
	client := notion.NewClient(h.NotionHost, data.Token)
	if _, err := client.ListDatabases(r.Context()); err != nil {
		if errors.Is(err, notion.ErrAuthenticationFailed) {
			http.Error(w, "Credential rejected by the remote API", http.StatusUnauthorized)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to verify credential: %v", err), http.StatusBadGateway)
		return
	}

	integration := database.Integration{
		Name:        data.Name,
		WorkspaceID: data.WorkspaceID,
		Active:      true,
	}
	if err := integration.SetBearerToken(data.Token); err != nil {
		http.Error(w, fmt.Sprintf("Failed to store credential: %v", err), http.StatusInternalServerError)
		return
	}
	if err := integration.SetSyncSettings(data.Settings); err != nil {
		http.Error(w, fmt.Sprintf("Failed to store settings: %v", err), http.StatusInternalServerError)
		return
	}

	if err := DB.Create(&integration).Error; err != nil {
		http.Error(w, fmt.Sprintf("Failed to create integration: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateIntegrationResponse{
		Message:     "Integration created successfully",
		Integration: convertIntegrationToListedIntegration(integration),
	})
}
