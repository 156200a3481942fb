package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers price history routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/prices", func(r chi.Router) {
		r.Get("/", h.HandleSymbols)
		r.Post("/{symbol}", h.HandleImport)
		r.Get("/{symbol}/latest", h.HandleLatest)
	})
}
