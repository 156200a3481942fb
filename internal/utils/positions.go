package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/folio/internal/domain"
)

// ParseCSV splits a comma-separated string and returns trimmed non-empty values.
// Returns nil for empty/whitespace-only input.
func ParseCSV(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ParsePositions reads holdings written as "SYMBOL:QTY[:COST]" separated by
// commas, e.g. "AAPL:10,MSFT:4.5:310". Symbols are upper-cased.
func ParsePositions(s string) ([]domain.Position, error) {
	entries := ParseCSV(s)
	positions := make([]domain.Position, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid position %q: want SYMBOL:QTY[:COST]", entry)
		}

		symbol := strings.ToUpper(strings.TrimSpace(parts[0]))
		if symbol == "" {
			return nil, fmt.Errorf("invalid position %q: empty symbol", entry)
		}

		qty, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", entry, err)
		}

		p := domain.Position{Symbol: symbol, Quantity: qty}
		if len(parts) == 3 {
			p.CostBasis, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid cost basis in %q: %w", entry, err)
			}
		}
		positions = append(positions, p)
	}
	return positions, nil
}
