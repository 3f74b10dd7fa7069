package integrations

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"portalsync/database"
	"portalsync/notion"
	"portalsync/server/util"
	"portalsync/syncer"
)

// Sync triggers one synchronization pass for an integration and returns the
// structured pass result. Direction is "pull" (default) or "push".
//
//	@Summary      Trigger synchronization pass
//	@Description  Run one pull or push pass for an integration and return the pass result with explicit row counts
//	@Tags         integrations
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Param        direction query string false "Pass direction: pull or push" default(pull)
//	@Success      200 {object} syncer.Result "Pass result"
//	@Failure      400 {string} string "Invalid request"
//	@Failure      404 {string} string "Integration not found"
//	@Failure      409 {string} string "Target table missing"
//	@Failure      500 {string} string "Pass failed"
//	@Router       /api/v1/integrations/{id}/sync [post]
func (h *IntegrationsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	integration, ok := findIntegration(w, r, DB)
	if !ok {
		return
	}

	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = "pull"
	}
	if direction != "pull" && direction != "push" {
		http.Error(w, fmt.Sprintf("Unsupported sync direction: %s", direction), http.StatusBadRequest)
		return
	}

	token, err := integration.BearerToken()
	if err != nil {
		http.Error(w, "Failed to read integration credential", http.StatusInternalServerError)
		return
	}

	client := notion.NewClient(h.NotionHost, token)
	s := syncer.New(database.NewStore(DB), client, h.Log)

	var result syncer.Result
	if direction == "pull" {
		result = s.PullPass(r.Context(), integration)
	} else {
		result = s.PushPass(r.Context(), integration)
	}

	status := http.StatusOK
	if result.Err != nil {
		status = http.StatusInternalServerError
		if errors.Is(result.Err, syncer.ErrSchemaMismatch) {
			status = http.StatusConflict
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}
