// Package marketdata is the boundary to daily price bars and instrument
// metadata. The analytics and optimization pipelines only see Provider.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/timeseries"
)

// Provider supplies daily bars and instrument metadata per symbol.
type Provider interface {
	PriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.PriceBar, error)
	Instrument(ctx context.Context, symbol string) (*domain.Instrument, error)
}

// LoadSeries fetches the price history of every symbol in [start, end].
// Symbols that fail to load or have no bars are left out and logged; the
// caller decides whether what remains is enough.
func LoadSeries(ctx context.Context, p Provider, symbols []string, start, end time.Time, log zerolog.Logger) map[string]timeseries.PriceSeries {
	out := make(map[string]timeseries.PriceSeries, len(symbols))
	for _, symbol := range symbols {
		if _, done := out[symbol]; done {
			continue
		}
		bars, err := p.PriceHistory(ctx, symbol, start, end)
		if err != nil {
			log.Warn().
				Err(fmt.Errorf("%w: %v", domain.ErrUpstreamDataGap, err)).
				Str("symbol", symbol).
				Msg("Failed to load price history")
			continue
		}
		if len(bars) == 0 {
			log.Warn().
				Err(domain.ErrUpstreamDataGap).
				Str("symbol", symbol).
				Msg("No price history in window")
			continue
		}
		out[symbol] = timeseries.FromBars(symbol, bars)
	}

	log.Debug().
		Int("requested", len(symbols)).
		Int("loaded", len(out)).
		Msg("Loaded price series")

	return out
}

// LoadInstruments resolves metadata for each symbol: the provider first, then
// the built-in table. Symbols that neither source knows are absent from the
// result. Every returned instrument has its defaults applied.
func LoadInstruments(ctx context.Context, p Provider, symbols []string, log zerolog.Logger) map[string]domain.Instrument {
	out := make(map[string]domain.Instrument, len(symbols))
	for _, symbol := range symbols {
		if _, done := out[symbol]; done {
			continue
		}
		inst, err := p.Instrument(ctx, symbol)
		if err == nil && inst != nil {
			out[symbol] = mergeKnown(*inst).WithDefaults()
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to load instrument metadata")
		}
		if known, ok := KnownInstrument(symbol); ok {
			out[symbol] = known.WithDefaults()
		}
	}
	return out
}

// mergeKnown fills empty fields of inst from the built-in table.
func mergeKnown(inst domain.Instrument) domain.Instrument {
	known, ok := KnownInstrument(inst.Symbol)
	if !ok {
		return inst
	}
	if inst.Name == "" {
		inst.Name = known.Name
	}
	if inst.AssetClass == "" {
		inst.AssetClass = known.AssetClass
	}
	if inst.Sector == "" {
		inst.Sector = known.Sector
	}
	if inst.Country == "" {
		inst.Country = known.Country
	}
	if inst.Currency == "" {
		inst.Currency = known.Currency
	}
	return inst
}

// Window returns the [start, end] date range ending on now's calendar day
// and reaching back lookbackDays calendar days.
func Window(now time.Time, lookbackDays int) (time.Time, time.Time) {
	end := timeseries.Day(now)
	return end.AddDate(0, 0, -lookbackDays), end
}
