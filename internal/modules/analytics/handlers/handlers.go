// Package handlers provides HTTP handlers for portfolio analytics.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/analytics"
	"github.com/aristath/folio/internal/utils"
)

// Analyzer computes analytics reports.
type Analyzer interface {
	ComputeAnalytics(ctx context.Context, positions []domain.Position, benchmark string) (*analytics.Report, error)
}

// Handler handles analytics HTTP requests
type Handler struct {
	service Analyzer
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service Analyzer, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// PositionRequest is one holding in a request body.
type PositionRequest struct {
	Symbol    string  `json:"symbol" validate:"required,max=32"`
	Quantity  float64 `json:"quantity"`
	CostBasis float64 `json:"cost_basis" validate:"gte=0"`
}

// AnalyticsRequest is the body of POST /api/analytics.
type AnalyticsRequest struct {
	Positions []PositionRequest `json:"positions" validate:"dive"`
	Benchmark string            `json:"benchmark" validate:"omitempty,max=32"`
}

// Positions converts request holdings to domain positions, upper-casing symbols.
func Positions(in []PositionRequest) []domain.Position {
	out := make([]domain.Position, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Position{
			Symbol:    strings.ToUpper(strings.TrimSpace(p.Symbol)),
			Quantity:  p.Quantity,
			CostBasis: p.CostBasis,
		})
	}
	return out
}

// HandleAnalytics handles POST /api/analytics
func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	var req AnalyticsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	report, err := h.service.ComputeAnalytics(r.Context(), Positions(req.Positions), req.Benchmark)
	if err != nil {
		status := utils.ErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Failed to compute analytics")
		}
		utils.WriteError(w, r, status, err.Error(), h.log)
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, report, h.log)
}
