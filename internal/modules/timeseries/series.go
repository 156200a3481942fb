// Package timeseries turns raw per-symbol daily bars into aligned price
// tables and simple-return series on an explicit date index.
package timeseries

import (
	"sort"
	"time"

	"github.com/aristath/folio/internal/domain"
)

// DateLayout is the wire format for dates in every report.
const DateLayout = "2006-01-02"

// PricePoint is one observation of a price series.
type PricePoint struct {
	Date          time.Time
	AdjustedClose *float64
	Close         float64
}

// Value returns the adjusted close when present and positive, else the close.
func (p PricePoint) Value() float64 {
	if p.AdjustedClose != nil && *p.AdjustedClose > 0 {
		return *p.AdjustedClose
	}
	return p.Close
}

// PriceSeries is the ascending, de-duplicated price history of one symbol.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Len returns the number of observations.
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// FromBars builds a PriceSeries from daily bars. Dates are truncated to the
// calendar day in UTC; when a day repeats, the last bar wins.
func FromBars(symbol string, bars []domain.PriceBar) PriceSeries {
	byDate := make(map[time.Time]PricePoint, len(bars))
	for _, b := range bars {
		d := Day(b.Date)
		byDate[d] = PricePoint{Date: d, Close: b.Close, AdjustedClose: b.AdjustedClose}
	}

	points := make([]PricePoint, 0, len(byDate))
	for _, p := range byDate {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return PriceSeries{Symbol: symbol, Points: points}
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
