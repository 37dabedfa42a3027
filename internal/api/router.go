package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/accessories", s.handleAccessories)
		r.Get("/characteristics", s.handleReadCharacteristics)
		r.Put("/characteristics", s.handleWriteCharacteristics)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status together with the
// device identity and configuration number.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"identifier":    s.device.Identifier(),
		"config_number": s.device.ConfigNumber(),
		"clients":       s.hub.ClientCount(),
	})
}
