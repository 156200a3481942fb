package analytics

import (
	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/pkg/formulas"
)

// BuildCorrelationMatrix returns the pairwise Pearson correlations of the
// listed symbols' returns, rounded to 2 decimals. Undefined entries,
// including the diagonal of a flat series, are 0. Symbols absent from the
// table are skipped.
func BuildCorrelationMatrix(returns timeseries.ReturnTable, symbols []string) CorrelationMatrix {
	labels := []string{}
	cols := [][]float64{}
	for _, s := range symbols {
		col, ok := returns.Column(s)
		if !ok {
			continue
		}
		labels = append(labels, s)
		cols = append(cols, col)
	}

	data := make([][]float64, len(cols))
	for i := range cols {
		data[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			var c float64
			if i == j {
				if !formulas.IsZero(formulas.StdDev(cols[i])) {
					c = 1
				}
			} else {
				c = formulas.Round(formulas.Correlation(cols[i], cols[j]), 2)
			}
			data[i][j] = c
			data[j][i] = c
		}
	}

	return CorrelationMatrix{Labels: labels, Data: data}
}
