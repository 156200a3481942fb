// Package domain provides core domain models and types.
package domain

import "time"

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
)

// Metadata defaults applied when the market-data collaborator has nothing better.
const (
	UnknownCategory = "Unknown"
	DefaultCountry  = "US"
	DefaultCurrency = CurrencyUSD
)

// PriceBar is one daily OHLCV bar as delivered by the market-data collaborator.
type PriceBar struct {
	Date          time.Time `json:"date"`
	AdjustedClose *float64  `json:"adjusted_close,omitempty"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        int64     `json:"volume"`
}

// Instrument is the descriptive metadata of a tradable symbol.
type Instrument struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	AssetClass   string   `json:"asset_class"`
	Sector       string   `json:"sector"`
	Country      string   `json:"country"`
	Currency     Currency `json:"currency"`
	CurrentPrice float64  `json:"current_price"`
}

// WithDefaults returns a copy of the instrument with empty fields defaulted.
func (i Instrument) WithDefaults() Instrument {
	if i.Name == "" {
		i.Name = i.Symbol
	}
	if i.AssetClass == "" {
		i.AssetClass = UnknownCategory
	}
	if i.Sector == "" {
		i.Sector = UnknownCategory
	}
	if i.Country == "" {
		i.Country = DefaultCountry
	}
	if i.Currency == "" {
		i.Currency = DefaultCurrency
	}
	return i
}

// Attribute returns the categorical attribute used for allocation breakdowns.
// Empty values and unknown attribute names report "Unknown".
func (i Instrument) Attribute(attr string) string {
	var v string
	switch attr {
	case "asset_class":
		v = i.AssetClass
	case "sector":
		v = i.Sector
	case "country":
		v = i.Country
	}
	if v == "" {
		return UnknownCategory
	}
	return v
}

// Position represents a portfolio holding
type Position struct {
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	CostBasis float64 `json:"cost_basis,omitempty"`
}
