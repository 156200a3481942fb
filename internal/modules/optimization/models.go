package optimization

// Objective selects the portfolio the optimizer solves for.
type Objective string

const (
	ObjectiveMaxSharpe     Objective = "max_sharpe"
	ObjectiveMinVolatility Objective = "min_volatility"
)

// ParseObjective maps a request value to an objective. Anything other than
// "min_volatility" means max-Sharpe.
func ParseObjective(s string) Objective {
	if Objective(s) == ObjectiveMinVolatility {
		return ObjectiveMinVolatility
	}
	return ObjectiveMaxSharpe
}

// Error payload messages.
const (
	MsgNoPositions      = "No positions to optimize"
	MsgInsufficientData = "Insufficient data for optimization"
)

// DefaultFrontierPoints is the number of frontier targets swept by default.
const DefaultFrontierPoints = 25

// WeightComparison is one row of the current vs optimized weights table, in percent.
type WeightComparison struct {
	Symbol    string  `json:"symbol" msgpack:"symbol"`
	Current   float64 `json:"current" msgpack:"current"`
	Optimized float64 `json:"optimized" msgpack:"optimized"`
	Diff      float64 `json:"diff" msgpack:"diff"`
}

// Result is a solved portfolio. Return and volatility are percentages.
type Result struct {
	Weights              map[string]float64 `json:"optimized_weights" msgpack:"optimized_weights"`
	ExpectedAnnualReturn float64            `json:"expected_annual_return" msgpack:"expected_annual_return"`
	AnnualVolatility     float64            `json:"annual_volatility" msgpack:"annual_volatility"`
	SharpeRatio          float64            `json:"sharpe_ratio" msgpack:"sharpe_ratio"`
	WeightsTable         []WeightComparison `json:"weights_table" msgpack:"weights_table"`
}

// Outcome is either a Result or an error message, never both.
type Outcome struct {
	*Result
	Error string `json:"error,omitempty"`
}

// Failed reports whether the outcome carries an error message.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

func failure(msg string) Outcome {
	return Outcome{Error: msg}
}

// FrontierPoint is one point of the efficient frontier, in percent.
type FrontierPoint struct {
	Risk   float64 `json:"risk" msgpack:"risk"`
	Return float64 `json:"return" msgpack:"return"`
}

// PortfolioMetrics summarizes one portfolio on the optimization page.
type PortfolioMetrics struct {
	Return float64 `json:"return" msgpack:"return"`
	Risk   float64 `json:"risk" msgpack:"risk"`
	Sharpe float64 `json:"sharpe" msgpack:"sharpe"`
}

// MetricsComparison groups the metrics of the three highlighted portfolios.
type MetricsComparison struct {
	Current   PortfolioMetrics `json:"current" msgpack:"current"`
	MinVol    PortfolioMetrics `json:"minVol" msgpack:"minVol"`
	MaxSharpe PortfolioMetrics `json:"maxSharpe" msgpack:"maxSharpe"`
}

// WeightsRow compares a symbol's weight across the highlighted portfolios, in percent.
type WeightsRow struct {
	Symbol    string  `json:"symbol" msgpack:"symbol"`
	Name      string  `json:"name" msgpack:"name"`
	Current   float64 `json:"current" msgpack:"current"`
	MinVol    float64 `json:"minVol" msgpack:"minVol"`
	MaxSharpe float64 `json:"maxSharpe" msgpack:"maxSharpe"`
	Diff      float64 `json:"diff" msgpack:"diff"`
}

// FullData is everything the optimization page shows.
type FullData struct {
	EfficientFrontier  []FrontierPoint   `json:"efficientFrontier" msgpack:"efficientFrontier"`
	CurrentPortfolio   FrontierPoint     `json:"currentPortfolio" msgpack:"currentPortfolio"`
	MinVolPortfolio    FrontierPoint     `json:"minVolPortfolio" msgpack:"minVolPortfolio"`
	MaxSharpePortfolio FrontierPoint     `json:"maxSharpePortfolio" msgpack:"maxSharpePortfolio"`
	WeightsTable       []WeightsRow      `json:"weightsTable" msgpack:"weightsTable"`
	Metrics            MetricsComparison `json:"metrics" msgpack:"metrics"`
}

// FullOutcome is either FullData or an error message.
type FullOutcome struct {
	*FullData
	Error string `json:"error,omitempty"`
}

// Failed reports whether the outcome carries an error message.
func (o FullOutcome) Failed() bool {
	return o.Error != ""
}
