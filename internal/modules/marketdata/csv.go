package marketdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/folio/internal/domain"
)

var barColumns = []string{"date", "open", "high", "low", "close", "volume", "adjusted_close"}

// ParseBarsCSV reads daily bars from CSV with a header row naming at least
// date and close. open/high/low default to close; volume and adjusted_close
// are optional. Dates use YYYY-MM-DD.
func ParseBarsCSV(r io.Reader) ([]domain.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		name = strings.ReplaceAll(name, " ", "_")
		if name == "adj_close" {
			name = "adjusted_close"
		}
		index[name] = i
	}
	for _, required := range []string{"date", "close"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q (known columns: %s)", required, strings.Join(barColumns, ","))
		}
	}

	bars := []domain.PriceBar{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		bar, err := parseBarRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBarRecord(record []string, index map[string]int) (domain.PriceBar, error) {
	field := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return "", false
		}
		v := strings.TrimSpace(record[i])
		return v, v != ""
	}

	var bar domain.PriceBar

	rawDate, _ := field("date")
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return bar, fmt.Errorf("invalid date %q: %w", rawDate, err)
	}
	bar.Date = date

	rawClose, _ := field("close")
	bar.Close, err = strconv.ParseFloat(rawClose, 64)
	if err != nil {
		return bar, fmt.Errorf("invalid close %q: %w", rawClose, err)
	}
	bar.Open, bar.High, bar.Low = bar.Close, bar.Close, bar.Close

	for name, dst := range map[string]*float64{"open": &bar.Open, "high": &bar.High, "low": &bar.Low} {
		if raw, ok := field(name); ok {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return bar, fmt.Errorf("invalid %s %q: %w", name, raw, err)
			}
			*dst = v
		}
	}

	if raw, ok := field("volume"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bar, fmt.Errorf("invalid volume %q: %w", raw, err)
		}
		bar.Volume = int64(v)
	}

	if raw, ok := field("adjusted_close"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bar, fmt.Errorf("invalid adjusted_close %q: %w", raw, err)
		}
		bar.AdjustedClose = &v
	}

	return bar, nil
}
