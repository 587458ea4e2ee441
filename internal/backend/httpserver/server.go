// Package httpserver exposes the development backend over HTTP. It speaks
// the native field convention (nom, prénom, prix, idCommande) so the engine
// exercises the same reconciliation paths it needs against production.
package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP server setup for the backend API.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds a Server exposing the backend API over addr.
func New(addr string, logger *log.Logger, deps Deps, allowedOrigins []string) *Server {
	router := buildRouter(logger, deps, allowedOrigins)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
