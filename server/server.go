package server

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func BackendServer(
	DB *gorm.DB,
	log *logrus.Logger,
	host string,
	port int,
	notionHost string,
) (*http.Server, string) {
	mux := BackendRouting(DB, log, notionHost)

	addr := fmt.Sprintf("%s:%d", host, port)
	s := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s, fmt.Sprintf("http://%s", addr)
}
