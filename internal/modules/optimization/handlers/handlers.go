// Package handlers provides HTTP handlers for portfolio optimization.
package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	analyticshandlers "github.com/aristath/folio/internal/modules/analytics/handlers"
	"github.com/aristath/folio/internal/modules/optimization"
	"github.com/aristath/folio/internal/utils"
)

// Optimizer runs the optimization pipeline.
type Optimizer interface {
	Optimize(ctx context.Context, positions []domain.Position, objective optimization.Objective) (optimization.Outcome, error)
	FullOptimizationData(ctx context.Context, positions []domain.Position) (optimization.FullOutcome, error)
	EfficientFrontier(ctx context.Context, positions []domain.Position, points int) ([]optimization.FrontierPoint, error)
}

// Handler handles optimization HTTP requests
type Handler struct {
	service Optimizer
	log     zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(service Optimizer, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "optimization").Logger(),
	}
}

// OptimizeRequest is the body of POST /api/optimization.
type OptimizeRequest struct {
	Positions []analyticshandlers.PositionRequest `json:"positions" validate:"dive"`
	Objective string                              `json:"objective" validate:"omitempty,oneof=max_sharpe min_volatility"`
}

// FullRequest is the body of POST /api/optimization/full.
type FullRequest struct {
	Positions []analyticshandlers.PositionRequest `json:"positions" validate:"dive"`
}

// FrontierRequest is the body of POST /api/optimization/frontier.
type FrontierRequest struct {
	Positions []analyticshandlers.PositionRequest `json:"positions" validate:"dive"`
	Points    int                                 `json:"points" validate:"gte=0,lte=200"`
}

// HandleOptimize handles POST /api/optimization
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	outcome, err := h.service.Optimize(r.Context(), analyticshandlers.Positions(req.Positions), optimization.ParseObjective(req.Objective))
	if err != nil {
		h.fail(w, r, err, "Failed to optimize portfolio")
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, outcome, h.log)
}

// HandleFull handles POST /api/optimization/full
func (h *Handler) HandleFull(w http.ResponseWriter, r *http.Request) {
	var req FullRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	outcome, err := h.service.FullOptimizationData(r.Context(), analyticshandlers.Positions(req.Positions))
	if err != nil {
		h.fail(w, r, err, "Failed to build optimization data")
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, outcome, h.log)
}

// HandleFrontier handles POST /api/optimization/frontier
func (h *Handler) HandleFrontier(w http.ResponseWriter, r *http.Request) {
	var req FrontierRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	points, err := h.service.EfficientFrontier(r.Context(), analyticshandlers.Positions(req.Positions), req.Points)
	if err != nil {
		h.fail(w, r, err, "Failed to compute efficient frontier")
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"efficientFrontier": points,
	}, h.log)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := utils.ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg(msg)
	}
	utils.WriteError(w, r, status, err.Error(), h.log)
}
