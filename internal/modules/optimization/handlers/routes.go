package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers optimization routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/optimization", func(r chi.Router) {
		// frontier sweeps solve many QPs
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/", h.HandleOptimize)
		r.Post("/full", h.HandleFull)
		r.Post("/frontier", h.HandleFrontier)
	})
}
