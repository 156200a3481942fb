package formulas

// Drawdowns returns (cum - runningMax)/runningMax for the growth index of
// dailyReturns. Every value is <= 0.
func Drawdowns(dailyReturns []float64) []float64 {
	cum := GrowthIndex(dailyReturns)
	out := make([]float64, len(cum))
	peak := 0.0
	for i, v := range cum {
		if i == 0 || v > peak {
			peak = v
		}
		if peak > 0 {
			out[i] = (v - peak) / peak
		}
	}
	return out
}

// MaxDrawdown returns the most negative of drawdowns (0 when there is none).
func MaxDrawdown(drawdowns []float64) float64 {
	worst := 0.0
	for _, v := range drawdowns {
		if v < worst {
			worst = v
		}
	}
	return worst
}

// LongestDrawdown counts the longest run of consecutive periods spent
// strictly below a prior peak.
func LongestDrawdown(drawdowns []float64) int {
	longest, run := 0, 0
	for _, v := range drawdowns {
		if v < 0 {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}
