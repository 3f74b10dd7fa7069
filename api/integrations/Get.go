package integrations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"portalsync/database"
	"portalsync/server/util"
)

// Get returns one integration by ID.
//
//	@Summary      Get integration
//	@Description  Retrieve a single workspace integration by its ID
//	@Tags         integrations
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Success      200 {object} ListedIntegration "Integration details"
//	@Failure      400 {string} string "Unable to get database"
//	@Failure      404 {string} string "Integration not found"
//	@Router       /api/v1/integrations/{id} [get]
func (h *IntegrationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	integration, ok := findIntegration(w, r, DB)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(convertIntegrationToListedIntegration(*integration))
}

// findIntegration resolves the {id} path parameter to an integration,
// writing the error response itself when the lookup fails.
func findIntegration(w http.ResponseWriter, r *http.Request, DB *gorm.DB) (*database.Integration, bool) {
	integrationIDStr := r.PathValue("id")
	if integrationIDStr == "" {
		http.Error(w, "Integration ID is required", http.StatusBadRequest)
		return nil, false
	}

	integrationID, err := strconv.ParseUint(integrationIDStr, 10, 32)
	if err != nil {
		http.Error(w, "Invalid integration ID", http.StatusBadRequest)
		return nil, false
	}

	var integration database.Integration
	q := DB.First(&integration, uint(integrationID))
	if q.Error != nil {
		if errors.Is(q.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Integration not found", http.StatusNotFound)
		} else {
			http.Error(w, q.Error.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return &integration, true
}
