package integrations

import (
	"encoding/json"
	"net/http"
	"strconv"

	"portalsync/database"
	"portalsync/server/util"
)

// List returns a paginated list of integrations.
//
//	@Summary      List integrations
//	@Description  Retrieve a paginated list of configured workspace integrations
//	@Tags         integrations
//	@Accept       json
//	@Produce      json
//	@Param        page  query  int  false  "Page number"  default(1)
//	@Param        limit query  int  false  "Page size"    default(20)
//	@Param        active query bool false "Filter by active status"
//	@Success      200 {object} database.Pagination "Paginated list of integrations"
//	@Failure      400 {string} string "Unable to get database"
//	@Failure      500 {string} string "Internal server error"
//	@Router       /api/v1/integrations/list [get]
func (h *IntegrationsHandler) List(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	pagination := database.Pagination{Page: 1, Limit: 20}
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil && page > 0 {
			pagination.Page = page
		}
	}
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if limit, err := strconv.Atoi(limitParam); err == nil && limit > 0 {
			pagination.Limit = limit
		}
	}

	query := DB
	if activeParam := r.URL.Query().Get("active"); activeParam != "" {
		if active, err := strconv.ParseBool(activeParam); err == nil {
			query = query.Where("active = ?", active)
		}
	}

	var integrations []database.Integration
	q := query.Scopes(database.Paginate(&integrations, &pagination, query)).
		Find(&integrations)
	if q.Error != nil {
		http.Error(w, q.Error.Error(), http.StatusInternalServerError)
		return
	}

	listedIntegrations := make([]ListedIntegration, len(integrations))
	for i, integration := range integrations {
		listedIntegrations[i] = convertIntegrationToListedIntegration(integration)
	}

	pagination.Rows = listedIntegrations

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pagination)
}
