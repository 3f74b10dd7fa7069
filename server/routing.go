package server

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"portalsync/api/integrations"
)

func BackendRouting(
	DB *gorm.DB,
	log *logrus.Logger,
	notionHost string,
) *http.ServeMux {
	mux := http.NewServeMux()
	v1Apis := http.NewServeMux()

	integrationsHandler := &integrations.IntegrationsHandler{
		NotionHost: notionHost,
		Log:        log,
	}

	v1Apis.HandleFunc("POST /integrations/create", integrationsHandler.Create)
	v1Apis.HandleFunc("GET /integrations/list", integrationsHandler.List)
	v1Apis.HandleFunc("GET /integrations/{id}", integrationsHandler.Get)
	v1Apis.HandleFunc("POST /integrations/{id}/update", integrationsHandler.Update)
	v1Apis.HandleFunc("DELETE /integrations/{id}", integrationsHandler.Delete)
	v1Apis.HandleFunc("POST /integrations/{id}/toggle-active", integrationsHandler.ToggleActive)
	v1Apis.HandleFunc("POST /integrations/{id}/sync", integrationsHandler.Sync)

	mux.HandleFunc("GET /_health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Server is running"))
	})

	stack := CreateStack(Logging(log), WithDB(DB))
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", stack(v1Apis)))

	return mux
}
