package marketdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/timeseries"
)

// ErrNotFound is returned when the store has no record for a symbol.
var ErrNotFound = errors.New("not found")

// HistoryStore keeps imported daily bars and instrument metadata in SQLite
// and serves them as a Provider.
type HistoryStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryStore creates a store over an already migrated history database
func NewHistoryStore(db *sql.DB, log zerolog.Logger) *HistoryStore {
	return &HistoryStore{
		db:  db,
		log: log.With().Str("component", "history_store").Logger(),
	}
}

// PriceHistory returns the bars of symbol between start and end inclusive,
// ordered by date ascending.
func (h *HistoryStore) PriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.PriceBar, error) {
	query := `
		SELECT date, open, high, low, close, volume, adjusted_close
		FROM daily_prices
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := h.db.QueryContext(ctx, query, symbol, timeseries.Day(start).Unix(), timeseries.Day(end).Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	bars := []domain.PriceBar{}
	for rows.Next() {
		var b domain.PriceBar
		var dateUnix int64
		var volume sql.NullInt64
		var adjusted sql.NullFloat64

		if err := rows.Scan(&dateUnix, &b.Open, &b.High, &b.Low, &b.Close, &volume, &adjusted); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		b.Date = time.Unix(dateUnix, 0).UTC()
		if volume.Valid {
			b.Volume = volume.Int64
		}
		if adjusted.Valid {
			v := adjusted.Float64
			b.AdjustedClose = &v
		}
		bars = append(bars, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return bars, nil
}

// SyncPrices inserts or replaces bars for symbol in one transaction.
func (h *HistoryStore) SyncPrices(ctx context.Context, symbol string, bars []domain.PriceBar) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	err := database.WithTransaction(h.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO daily_prices
			(symbol, date, open, high, low, close, volume, adjusted_close)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, b := range bars {
			adjusted := sql.NullFloat64{}
			if b.AdjustedClose != nil {
				adjusted = sql.NullFloat64{Float64: *b.AdjustedClose, Valid: true}
			}

			day := timeseries.Day(b.Date)
			if _, err := stmt.ExecContext(ctx,
				symbol, day.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume, adjusted,
			); err != nil {
				return fmt.Errorf("failed to insert daily price for %s: %w", day.Format(timeseries.DateLayout), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.log.Info().
		Str("symbol", symbol).
		Int("count", len(bars)).
		Msg("Synced historical prices")

	return nil
}

// Instrument returns the stored metadata of symbol, or ErrNotFound.
func (h *HistoryStore) Instrument(ctx context.Context, symbol string) (*domain.Instrument, error) {
	var inst domain.Instrument
	var name, assetClass, sector, country, currency sql.NullString
	var price sql.NullFloat64

	err := h.db.QueryRowContext(ctx, `
		SELECT symbol, name, asset_class, sector, country, currency, current_price
		FROM instruments WHERE symbol = ?
	`, symbol).Scan(&inst.Symbol, &name, &assetClass, &sector, &country, &currency, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("instrument %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query instrument: %w", err)
	}

	inst.Name = name.String
	inst.AssetClass = assetClass.String
	inst.Sector = sector.String
	inst.Country = country.String
	inst.Currency = domain.Currency(currency.String)
	inst.CurrentPrice = price.Float64
	return &inst, nil
}

// UpsertInstrument stores metadata for inst.Symbol, keeping previously
// stored fields that inst leaves empty.
func (h *HistoryStore) UpsertInstrument(ctx context.Context, inst domain.Instrument) error {
	if inst.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO instruments (symbol, name, asset_class, sector, country, currency, current_price, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = COALESCE(NULLIF(excluded.name, ''), instruments.name),
			asset_class = COALESCE(NULLIF(excluded.asset_class, ''), instruments.asset_class),
			sector = COALESCE(NULLIF(excluded.sector, ''), instruments.sector),
			country = COALESCE(NULLIF(excluded.country, ''), instruments.country),
			currency = COALESCE(NULLIF(excluded.currency, ''), instruments.currency),
			current_price = COALESCE(NULLIF(excluded.current_price, 0), instruments.current_price),
			updated_at = excluded.updated_at
	`, inst.Symbol, inst.Name, inst.AssetClass, inst.Sector, inst.Country, string(inst.Currency), inst.CurrentPrice, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert instrument %s: %w", inst.Symbol, err)
	}
	return nil
}

// LatestPrice returns the most recent adjusted close (or close) of symbol.
func (h *HistoryStore) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	var closePrice float64
	var adjusted sql.NullFloat64
	err := h.db.QueryRowContext(ctx, `
		SELECT close, adjusted_close FROM daily_prices
		WHERE symbol = ? ORDER BY date DESC LIMIT 1
	`, symbol).Scan(&closePrice, &adjusted)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("latest price %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query latest price: %w", err)
	}
	if adjusted.Valid && adjusted.Float64 > 0 {
		return adjusted.Float64, nil
	}
	return closePrice, nil
}

// Symbols lists every symbol with at least one stored bar.
func (h *HistoryStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM daily_prices ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
