package integrations

import (
	"encoding/json"
	"net/http"

	"portalsync/server/util"
)

type ToggleActiveRequest struct {
	Active bool `json:"active"`
}

// ToggleActive activates or deactivates an integration. Deactivation takes
// effect before the next pass starts; a pass already running completes.
//
//	@Summary      Toggle integration active status
//	@Description  Activate or deactivate an integration by its ID
//	@Tags         integrations
//	@Accept       json
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Param        request body ToggleActiveRequest true "Toggle request"
//	@Success      200 {object} ListedIntegration "Updated integration details"
//	@Failure      400 {string} string "Unable to get database"
//	@Failure      404 {string} string "Integration not found"
//	@Failure      500 {string} string "Internal server error"
//	@Router       /api/v1/integrations/{id}/toggle-active [post]
func (h *IntegrationsHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	integration, ok := findIntegration(w, r, DB)
	if !ok {
		return
	}

	var req ToggleActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	integration.Active = req.Active

	if err := DB.Save(integration).Error; err != nil {
		http.Error(w, "Failed to update integration", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(convertIntegrationToListedIntegration(*integration))
}
