package analytics

// RiskMetrics is the scalar risk/performance summary of a portfolio against
// its benchmark. Percent fields are already scaled by 100.
type RiskMetrics struct {
	AnnualizedReturn     float64 `json:"annualizedReturn" msgpack:"annualizedReturn"`
	AnnualizedVolatility float64 `json:"annualizedVolatility" msgpack:"annualizedVolatility"`
	SharpeRatio          float64 `json:"sharpeRatio" msgpack:"sharpeRatio"`
	SortinoRatio         float64 `json:"sortinoRatio" msgpack:"sortinoRatio"`
	CalmarRatio          float64 `json:"calmarRatio" msgpack:"calmarRatio"`
	InformationRatio     float64 `json:"informationRatio" msgpack:"informationRatio"`
	MaxDrawdown          float64 `json:"maxDrawdown" msgpack:"maxDrawdown"`
	MaxDrawdownDuration  int     `json:"maxDrawdownDuration" msgpack:"maxDrawdownDuration"`
	Beta                 float64 `json:"beta" msgpack:"beta"`
	Alpha                float64 `json:"alpha" msgpack:"alpha"`
	TrackingError        float64 `json:"trackingError" msgpack:"trackingError"`
	RSquared             float64 `json:"rSquared" msgpack:"rSquared"`
	VaR95                float64 `json:"var95" msgpack:"var95"`
	VaR99                float64 `json:"var99" msgpack:"var99"`
	CVaR95               float64 `json:"cvar95" msgpack:"cvar95"`
	CVaR99               float64 `json:"cvar99" msgpack:"cvar99"`
	DownsideDeviation    float64 `json:"downsideDeviation" msgpack:"downsideDeviation"`
	Skewness             float64 `json:"skewness" msgpack:"skewness"`
	Kurtosis             float64 `json:"kurtosis" msgpack:"kurtosis"`
	BestDay              float64 `json:"bestDay" msgpack:"bestDay"`
	WorstDay             float64 `json:"worstDay" msgpack:"worstDay"`
	BestMonth            float64 `json:"bestMonth" msgpack:"bestMonth"`
	WorstMonth           float64 `json:"worstMonth" msgpack:"worstMonth"`
	PositiveMonths       int     `json:"positiveMonths" msgpack:"positiveMonths"`
	WinRate              float64 `json:"winRate" msgpack:"winRate"`
}

// PerformancePoint is one day of the cumulative performance curve.
type PerformancePoint struct {
	Date            string  `json:"date" msgpack:"date"`
	Portfolio       float64 `json:"portfolio" msgpack:"portfolio"` // growth index, 100 = start
	Benchmark       float64 `json:"benchmark" msgpack:"benchmark"`
	PortfolioReturn float64 `json:"portfolioReturn" msgpack:"portfolioReturn"` // cumulative %
	BenchmarkReturn float64 `json:"benchmarkReturn" msgpack:"benchmarkReturn"`
}

// MonthlyReturn is the compounded return of one calendar month, in percent.
type MonthlyReturn struct {
	Month     string  `json:"month" msgpack:"month"`
	Portfolio float64 `json:"portfolio" msgpack:"portfolio"`
	Benchmark float64 `json:"benchmark" msgpack:"benchmark"`
}

// DistributionBin is one bucket of the daily return histogram.
type DistributionBin struct {
	Bin       string `json:"bin" msgpack:"bin"`
	Frequency int    `json:"frequency" msgpack:"frequency"`
}

// AllocationItem is the weight of one category of holdings.
type AllocationItem struct {
	Name  string  `json:"name" msgpack:"name"`
	Value float64 `json:"value" msgpack:"value"`
	Color string  `json:"color" msgpack:"color"`
}

// CorrelationMatrix is a labelled square matrix of pairwise correlations.
type CorrelationMatrix struct {
	Labels []string    `json:"labels" msgpack:"labels"`
	Data   [][]float64 `json:"data" msgpack:"data"`
}

// DrawdownPoint is one day of the drawdown curve.
type DrawdownPoint struct {
	Date      string  `json:"date" msgpack:"date"`
	Drawdown  float64 `json:"drawdown" msgpack:"drawdown"`
	CumReturn float64 `json:"cumReturn" msgpack:"cumReturn"`
}

// RollingVolatilityPoint is a sampled rolling-window volatility, in percent.
type RollingVolatilityPoint struct {
	Date      string  `json:"date" msgpack:"date"`
	Portfolio float64 `json:"portfolio" msgpack:"portfolio"`
	Benchmark float64 `json:"benchmark" msgpack:"benchmark"`
}

// RollingCorrelationPoint is a sampled rolling-window correlation.
type RollingCorrelationPoint struct {
	Date        string  `json:"date" msgpack:"date"`
	Correlation float64 `json:"correlation" msgpack:"correlation"`
}

// Report is the complete analytics payload for one portfolio.
type Report struct {
	RiskMetrics         RiskMetrics               `json:"riskMetrics" msgpack:"riskMetrics"`
	PerformanceData     []PerformancePoint        `json:"performanceData" msgpack:"performanceData"`
	MonthlyReturns      []MonthlyReturn           `json:"monthlyReturns" msgpack:"monthlyReturns"`
	ReturnDistribution  []DistributionBin         `json:"returnDistribution" msgpack:"returnDistribution"`
	AllocationByClass   []AllocationItem          `json:"allocationByClass" msgpack:"allocationByClass"`
	AllocationBySector  []AllocationItem          `json:"allocationBySector" msgpack:"allocationBySector"`
	AllocationByCountry []AllocationItem          `json:"allocationByCountry" msgpack:"allocationByCountry"`
	CorrelationMatrix   CorrelationMatrix         `json:"correlationMatrix" msgpack:"correlationMatrix"`
	DrawdownData        []DrawdownPoint           `json:"drawdownData" msgpack:"drawdownData"`
	RollingVolatility   []RollingVolatilityPoint  `json:"rollingVolatility" msgpack:"rollingVolatility"`
	RollingCorrelation  []RollingCorrelationPoint `json:"rollingCorrelation" msgpack:"rollingCorrelation"`
}

// EmptyRiskMetrics returns the all-zero metrics used when data is insufficient.
func EmptyRiskMetrics() RiskMetrics {
	return RiskMetrics{}
}

// EmptyReport returns the canonical no-data report: zero metrics and every
// series an empty, non-nil slice.
func EmptyReport() *Report {
	return &Report{
		RiskMetrics:         EmptyRiskMetrics(),
		PerformanceData:     []PerformancePoint{},
		MonthlyReturns:      []MonthlyReturn{},
		ReturnDistribution:  []DistributionBin{},
		AllocationByClass:   []AllocationItem{},
		AllocationBySector:  []AllocationItem{},
		AllocationByCountry: []AllocationItem{},
		CorrelationMatrix:   CorrelationMatrix{Labels: []string{}, Data: [][]float64{}},
		DrawdownData:        []DrawdownPoint{},
		RollingVolatility:   []RollingVolatilityPoint{},
		RollingCorrelation:  []RollingCorrelationPoint{},
	}
}

// IsEmpty reports whether the report carries no series at all.
func (r *Report) IsEmpty() bool {
	return r == nil || len(r.PerformanceData) == 0
}

// Normalize replaces nil series with empty ones so the report always
// serializes lists as [] rather than null.
func (r *Report) Normalize() {
	if r.PerformanceData == nil {
		r.PerformanceData = []PerformancePoint{}
	}
	if r.MonthlyReturns == nil {
		r.MonthlyReturns = []MonthlyReturn{}
	}
	if r.ReturnDistribution == nil {
		r.ReturnDistribution = []DistributionBin{}
	}
	if r.AllocationByClass == nil {
		r.AllocationByClass = []AllocationItem{}
	}
	if r.AllocationBySector == nil {
		r.AllocationBySector = []AllocationItem{}
	}
	if r.AllocationByCountry == nil {
		r.AllocationByCountry = []AllocationItem{}
	}
	if r.CorrelationMatrix.Labels == nil {
		r.CorrelationMatrix.Labels = []string{}
	}
	if r.CorrelationMatrix.Data == nil {
		r.CorrelationMatrix.Data = [][]float64{}
	}
	if r.DrawdownData == nil {
		r.DrawdownData = []DrawdownPoint{}
	}
	if r.RollingVolatility == nil {
		r.RollingVolatility = []RollingVolatilityPoint{}
	}
	if r.RollingCorrelation == nil {
		r.RollingCorrelation = []RollingCorrelationPoint{}
	}
}
