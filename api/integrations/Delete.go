package integrations

import (
	"encoding/json"
	"net/http"

	"portalsync/server/util"
)

type DeleteIntegrationResponse struct {
	Message string `json:"message"`
}

// Delete removes an integration.
//
//	@Summary      Delete integration
//	@Description  Delete a workspace integration by its ID
//	@Tags         integrations
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Success      200 {object} DeleteIntegrationResponse "Integration deleted"
//	@Failure      400 {string} string "Unable to get database"
//	@Failure      404 {string} string "Integration not found"
//	@Failure      500 {string} string "Internal server error"
//	@Router       /api/v1/integrations/{id} [delete]
func (h *IntegrationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	integration, ok := findIntegration(w, r, DB)
	if !ok {
		return
	}

	// Hard delete: the workspace id carries a unique index, and a soft-deleted
	// row would block the workspace from ever being registered again.
	if err := DB.Unscoped().Delete(integration).Error; err != nil {
		http.Error(w, "Failed to delete integration", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DeleteIntegrationResponse{
		Message: "Integration deleted successfully",
	})
}
