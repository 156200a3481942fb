package timeseries

import "time"

// MonthlyReturn is the compounded return of one calendar month.
type MonthlyReturn struct {
	Month  time.Time // first day of the month, UTC
	Return float64
}

// Monthly compounds daily returns within each calendar month:
// prod(1+r) - 1. Months without observations between the first and last are
// reported with a zero return.
func Monthly(s ReturnSeries) []MonthlyReturn {
	out := []MonthlyReturn{}
	if s.Len() == 0 {
		return out
	}

	growth := map[time.Time]float64{}
	for i, d := range s.Dates {
		m := monthStart(d)
		g, ok := growth[m]
		if !ok {
			g = 1
		}
		growth[m] = g * (1 + s.Values[i])
	}

	first := monthStart(s.Dates[0])
	last := monthStart(s.Dates[len(s.Dates)-1])
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		r := 0.0
		if g, ok := growth[m]; ok {
			r = g - 1
		}
		out = append(out, MonthlyReturn{Month: m, Return: r})
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
