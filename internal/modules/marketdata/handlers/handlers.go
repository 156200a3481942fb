// Package handlers provides HTTP handlers for importing and inspecting
// stored price history.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/marketdata"
	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/internal/utils"
)

// maxCSVBytes caps CSV uploads.
const maxCSVBytes = 32 << 20

// Store is the writable side of the history store.
type Store interface {
	SyncPrices(ctx context.Context, symbol string, bars []domain.PriceBar) error
	UpsertInstrument(ctx context.Context, inst domain.Instrument) error
	LatestPrice(ctx context.Context, symbol string) (float64, error)
	Symbols(ctx context.Context) ([]string, error)
}

// Handler handles price history HTTP requests
type Handler struct {
	store Store
	log   zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(store Store, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "marketdata").Logger(),
	}
}

// BarRequest is one daily bar in a JSON import.
type BarRequest struct {
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	Open          float64  `json:"open" validate:"gte=0"`
	High          float64  `json:"high" validate:"gte=0"`
	Low           float64  `json:"low" validate:"gte=0"`
	Close         float64  `json:"close" validate:"gt=0"`
	Volume        int64    `json:"volume" validate:"gte=0"`
	AdjustedClose *float64 `json:"adjusted_close,omitempty" validate:"omitempty,gt=0"`
}

// InstrumentRequest is optional metadata sent with an import.
type InstrumentRequest struct {
	Name       string `json:"name" validate:"max=128"`
	AssetClass string `json:"asset_class" validate:"max=64"`
	Sector     string `json:"sector" validate:"max=64"`
	Country    string `json:"country" validate:"max=64"`
	Currency   string `json:"currency" validate:"omitempty,len=3"`
}

// ImportRequest is the JSON body of POST /api/prices/{symbol}.
type ImportRequest struct {
	Bars       []BarRequest       `json:"bars" validate:"required,min=1,dive"`
	Instrument *InstrumentRequest `json:"instrument,omitempty"`
}

// HandleImport handles POST /api/prices/{symbol}. The body is either CSV
// (Content-Type text/csv) or an ImportRequest.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		utils.WriteError(w, r, http.StatusBadRequest, "symbol is required", h.log)
		return
	}

	var (
		bars []domain.PriceBar
		inst *InstrumentRequest
		err  error
	)
	if isCSV(r) {
		bars, err = marketdata.ParseBarsCSV(http.MaxBytesReader(w, r.Body, maxCSVBytes))
		if err != nil {
			err = fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	} else {
		var req ImportRequest
		if err = utils.DecodeJSON(r, &req); err == nil {
			bars, err = toBars(req.Bars)
			inst = req.Instrument
		}
	}
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	if err := h.store.SyncPrices(r.Context(), symbol, bars); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to import prices")
		utils.WriteError(w, r, http.StatusInternalServerError, "failed to import prices", h.log)
		return
	}
	if inst != nil {
		err := h.store.UpsertInstrument(r.Context(), domain.Instrument{
			Symbol:     symbol,
			Name:       inst.Name,
			AssetClass: inst.AssetClass,
			Sector:     inst.Sector,
			Country:    inst.Country,
			Currency:   domain.Currency(strings.ToUpper(inst.Currency)),
		})
		if err != nil {
			h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store instrument metadata")
			utils.WriteError(w, r, http.StatusInternalServerError, "failed to store instrument metadata", h.log)
			return
		}
	}

	utils.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"imported": len(bars),
	}, h.log)
}

// HandleSymbols handles GET /api/prices
func (h *Handler) HandleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.store.Symbols(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list symbols")
		utils.WriteError(w, r, http.StatusInternalServerError, "failed to list symbols", h.log)
		return
	}
	utils.WriteJSON(w, r, http.StatusOK, map[string]interface{}{"symbols": symbols}, h.log)
}

// HandleLatest handles GET /api/prices/{symbol}/latest
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	price, err := h.store.LatestPrice(r.Context(), symbol)
	if errors.Is(err, marketdata.ErrNotFound) {
		utils.WriteError(w, r, http.StatusNotFound, err.Error(), h.log)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get latest price")
		utils.WriteError(w, r, http.StatusInternalServerError, "failed to get latest price", h.log)
		return
	}
	utils.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"price":  price,
	}, h.log)
}

func isCSV(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "text/csv" || mt == "application/csv")
}

func toBars(in []BarRequest) ([]domain.PriceBar, error) {
	bars := make([]domain.PriceBar, 0, len(in))
	for _, b := range in {
		date, err := time.Parse(timeseries.DateLayout, b.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInput, b.Date)
		}
		bar := domain.PriceBar{
			Date:          date,
			Open:          b.Open,
			High:          b.High,
			Low:           b.Low,
			Close:         b.Close,
			Volume:        b.Volume,
			AdjustedClose: b.AdjustedClose,
		}
		if bar.Open == 0 {
			bar.Open = bar.Close
		}
		if bar.High == 0 {
			bar.High = bar.Close
		}
		if bar.Low == 0 {
			bar.Low = bar.Close
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
