// Package optimization solves long-only, fully-invested mean-variance
// portfolios (min-volatility, max-Sharpe and the efficient frontier) over a
// set of holdings.
package optimization

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/cache"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/metrics"
	"github.com/aristath/folio/internal/modules/marketdata"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/internal/utils"
	"github.com/aristath/folio/pkg/formulas"
)

// DefaultLookbackDays is the calendar-day price window loaded per request.
const DefaultLookbackDays = 730

// Settings tunes the optimization pipeline.
type Settings struct {
	LookbackDays   int
	RiskFreeRate   float64
	FrontierPoints int
	CacheTTL       time.Duration
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		LookbackDays:   DefaultLookbackDays,
		FrontierPoints: DefaultFrontierPoints,
		CacheTTL:       time.Hour,
	}
}

// Service runs the optimization pipeline against a market-data provider.
type Service struct {
	provider marketdata.Provider
	solver   Solver
	settings Settings
	cache    cache.Store
	metrics  *metrics.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new optimization service. A nil solver selects the
// active-set solver.
func NewService(provider marketdata.Provider, solver Solver, settings Settings, log zerolog.Logger) *Service {
	if solver == nil {
		solver = NewActiveSetSolver()
	}
	if settings.LookbackDays <= 0 {
		settings.LookbackDays = DefaultLookbackDays
	}
	if settings.FrontierPoints <= 0 {
		settings.FrontierPoints = DefaultFrontierPoints
	}
	return &Service{
		provider: provider,
		solver:   solver,
		settings: settings,
		now:      time.Now,
		log:      log.With().Str("component", "optimization").Logger(),
	}
}

// SetCache enables result caching. A zero CacheTTL disables it.
func (s *Service) SetCache(c cache.Store) {
	s.cache = c
}

// SetMetrics attaches pipeline instrumentation.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Settings returns the effective settings.
func (s *Service) Settings() Settings {
	return s.settings
}

// problem is the shared input of every optimization entry point.
type problem struct {
	symbols []string
	prices  timeseries.AlignedPriceTable
	model   *RiskModel
	current []float64
}

// load fetches and aligns prices for the positions' symbols. A nil problem
// with a nil error means there is not enough data.
func (s *Service) load(ctx context.Context, positions []domain.Position) (*problem, error) {
	symbols := portfolio.UniqueSymbols(positions)
	start, end := marketdata.Window(s.now(), s.settings.LookbackDays)

	series := marketdata.LoadSeries(ctx, s.provider, symbols, start, end, s.log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.metrics.DataGaps(len(symbols) - len(series))

	prices := timeseries.Align(series)
	available := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if prices.Has(symbol) {
			available = append(available, symbol)
		}
	}
	if prices.Len() < 3 || len(available) < 2 {
		s.log.Info().
			Int("rows", prices.Len()).
			Int("num_symbols", len(available)).
			Msg("Not enough aligned data to optimize")
		return nil, nil
	}
	prices = prices.Restrict(available)

	model, err := NewRiskModel(prices, available)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			return nil, nil
		}
		return nil, err
	}

	weights := portfolio.CurrentWeights(positions, prices)
	return &problem{
		symbols: symbols,
		prices:  prices,
		model:   model,
		current: model.Vector(weights),
	}, nil
}

// solve runs the objective's solver and returns raw weights in model order.
func (s *Service) solve(objective Objective, model *RiskModel) ([]float64, error) {
	var (
		w   []float64
		err error
	)
	switch objective {
	case ObjectiveMinVolatility:
		w, err = s.solver.SolveMinVariance(model.Cov)
	default:
		w, err = s.solver.SolveMaxSharpe(model.Mu, model.Cov, s.settings.RiskFreeRate)
	}
	if err != nil {
		s.metrics.SolverFailure(string(objective))
		return nil, err
	}
	return w, nil
}

// Optimize solves for objective and compares the result to the current
// weights. Data and solver problems come back as an error payload; the
// returned error is reserved for invalid input and cancellation.
func (s *Service) Optimize(ctx context.Context, positions []domain.Position, objective Objective) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if err := domain.ValidatePositions(positions); err != nil {
		return Outcome{}, err
	}
	if len(positions) == 0 {
		return failure(MsgNoPositions), nil
	}
	if objective == "" {
		objective = ObjectiveMaxSharpe
	}

	key := s.cacheKey(cache.KindOptimize, positions, string(objective))
	var cached Result
	if s.cached(ctx, cache.KindOptimize, key, &cached) {
		return Outcome{Result: &cached}, nil
	}

	defer utils.NewTimer("optimize", s.log).Observe(s.metrics.ObservePipeline("optimize")).Stop()

	p, err := s.load(ctx, positions)
	if err != nil {
		return Outcome{}, err
	}
	if p == nil {
		return failure(MsgInsufficientData), nil
	}

	raw, err := s.solve(objective, p.model)
	if err != nil {
		s.log.Warn().Err(err).Str("objective", string(objective)).Msg("Optimization failed")
		return failure(err.Error()), nil
	}
	cleaned := CleanWeights(raw)
	ret, vol, sharpe := p.model.Performance(raw, s.settings.RiskFreeRate)

	weights := make(map[string]float64)
	for i, symbol := range p.model.Symbols {
		if cleaned[i] > 0 {
			weights[symbol] = formulas.Round(cleaned[i], 4)
		}
	}

	table := make([]WeightComparison, 0, len(p.symbols))
	for _, symbol := range p.symbols {
		cur, opt := p.weightOf(p.current, symbol), p.weightOf(cleaned, symbol)
		table = append(table, WeightComparison{
			Symbol:    symbol,
			Current:   pct(cur),
			Optimized: pct(opt),
			Diff:      pct(opt - cur),
		})
	}

	result := &Result{
		Weights:              weights,
		ExpectedAnnualReturn: pct(ret),
		AnnualVolatility:     pct(vol),
		SharpeRatio:          formulas.Round(sharpe, 2),
		WeightsTable:         table,
	}
	s.store(ctx, cache.KindOptimize, key, result)

	s.log.Info().
		Str("objective", string(objective)).
		Int("num_symbols", len(p.model.Symbols)).
		Float64("sharpe", result.SharpeRatio).
		Msg("Portfolio optimized")

	return Outcome{Result: result}, nil
}

// EfficientFrontier returns up to points frontier points (the configured
// default when points <= 0). Insufficient data yields an empty frontier.
func (s *Service) EfficientFrontier(ctx context.Context, positions []domain.Position, points int) ([]FrontierPoint, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.ValidatePositions(positions); err != nil {
		return nil, err
	}
	if points <= 0 {
		points = s.settings.FrontierPoints
	}
	if len(positions) == 0 {
		return []FrontierPoint{}, nil
	}

	key := s.cacheKey(cache.KindFrontier, positions, strconv.Itoa(points))
	var cached []FrontierPoint
	if s.cached(ctx, cache.KindFrontier, key, &cached) {
		return cached, nil
	}

	defer utils.NewTimer("frontier", s.log).Observe(s.metrics.ObservePipeline("frontier")).Stop()

	p, err := s.load(ctx, positions)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []FrontierPoint{}, nil
	}

	frontier, err := s.frontier(ctx, p.model, points)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cache.KindFrontier, key, frontier)
	return frontier, nil
}

// frontier wraps Frontier, treating solver failures as an empty frontier.
func (s *Service) frontier(ctx context.Context, model *RiskModel, points int) ([]FrontierPoint, error) {
	frontier, err := Frontier(ctx, s.solver, model, points, s.log)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.metrics.SolverFailure("frontier")
		s.log.Warn().Err(err).Msg("Efficient frontier failed")
		return []FrontierPoint{}, nil
	}
	return frontier, nil
}

// FullOptimizationData returns the frontier, the current, min-volatility and
// max-Sharpe portfolios, a weights comparison and their metrics.
func (s *Service) FullOptimizationData(ctx context.Context, positions []domain.Position) (FullOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return FullOutcome{}, err
	}
	if err := domain.ValidatePositions(positions); err != nil {
		return FullOutcome{}, err
	}
	if len(positions) == 0 {
		return FullOutcome{Error: MsgNoPositions}, nil
	}

	key := s.cacheKey(cache.KindFullData, positions, strconv.Itoa(s.settings.FrontierPoints))
	var cached FullData
	if s.cached(ctx, cache.KindFullData, key, &cached) {
		return FullOutcome{FullData: &cached}, nil
	}

	defer utils.NewTimer("optimization_full", s.log).Observe(s.metrics.ObservePipeline("optimization_full")).Stop()

	p, err := s.load(ctx, positions)
	if err != nil {
		return FullOutcome{}, err
	}
	if p == nil {
		return FullOutcome{Error: MsgInsufficientData}, nil
	}
	model := p.model
	rf := s.settings.RiskFreeRate

	curRet, curVol, _ := model.Performance(p.current, rf)
	current := FrontierPoint{Risk: pct(curVol), Return: pct(curRet)}
	curSharpe := 0.0
	if curVol > 0 {
		curSharpe = formulas.Round(curRet/curVol, 2)
	}

	minVolPoint, minVolWeights, minVolSharpe := current, []float64(nil), 0.0
	if raw, err := s.solve(ObjectiveMinVolatility, model); err == nil {
		ret, vol, sharpe := model.Performance(raw, rf)
		minVolPoint = FrontierPoint{Risk: pct(vol), Return: pct(ret)}
		minVolWeights = CleanWeights(raw)
		minVolSharpe = formulas.Round(sharpe, 2)
	} else {
		s.log.Warn().Err(err).Msg("Min-volatility solve failed, using current portfolio")
	}

	maxSharpePoint, maxSharpeWeights, maxSharpeSharpe := current, []float64(nil), 0.0
	if raw, err := s.solve(ObjectiveMaxSharpe, model); err == nil {
		ret, vol, sharpe := model.Performance(raw, rf)
		maxSharpePoint = FrontierPoint{Risk: pct(vol), Return: pct(ret)}
		maxSharpeWeights = CleanWeights(raw)
		maxSharpeSharpe = formulas.Round(sharpe, 2)
	} else {
		s.log.Warn().Err(err).Msg("Max-Sharpe solve failed, using current portfolio")
	}

	frontier, err := s.frontier(ctx, model, s.settings.FrontierPoints)
	if err != nil {
		return FullOutcome{}, err
	}

	instruments := marketdata.LoadInstruments(ctx, s.provider, p.symbols, s.log)
	table := make([]WeightsRow, 0, len(p.symbols))
	for _, symbol := range p.symbols {
		cur := p.weightOf(p.current, symbol)
		ms := p.weightOf(maxSharpeWeights, symbol)
		name := symbol
		if inst, ok := instruments[symbol]; ok && inst.Name != "" {
			name = inst.Name
		}
		table = append(table, WeightsRow{
			Symbol:    symbol,
			Name:      name,
			Current:   pct(cur),
			MinVol:    pct(p.weightOf(minVolWeights, symbol)),
			MaxSharpe: pct(ms),
			Diff:      pct(ms - cur),
		})
	}

	data := &FullData{
		EfficientFrontier:  frontier,
		CurrentPortfolio:   current,
		MinVolPortfolio:    minVolPoint,
		MaxSharpePortfolio: maxSharpePoint,
		WeightsTable:       table,
		Metrics: MetricsComparison{
			Current:   PortfolioMetrics{Return: current.Return, Risk: current.Risk, Sharpe: curSharpe},
			MinVol:    PortfolioMetrics{Return: minVolPoint.Return, Risk: minVolPoint.Risk, Sharpe: minVolSharpe},
			MaxSharpe: PortfolioMetrics{Return: maxSharpePoint.Return, Risk: maxSharpePoint.Risk, Sharpe: maxSharpeSharpe},
		},
	}
	s.store(ctx, cache.KindFullData, key, data)
	return FullOutcome{FullData: data}, nil
}

// weightOf looks up symbol's entry in a model-ordered weight vector; symbols
// outside the model (or a nil vector) weigh 0.
func (p *problem) weightOf(w []float64, symbol string) float64 {
	if w == nil {
		return 0
	}
	for i, s := range p.model.Symbols {
		if s == symbol {
			return w[i]
		}
	}
	return 0
}

func (s *Service) cacheKey(kind string, positions []domain.Position, extra string) string {
	parts := make([]string, 0, len(positions)+2)
	for _, p := range positions {
		parts = append(parts, p.Symbol+":"+strconv.FormatFloat(p.Quantity, 'g', -1, 64))
	}
	sort.Strings(parts)
	_, end := marketdata.Window(s.now(), s.settings.LookbackDays)
	parts = append(parts,
		kind+"="+extra,
		fmt.Sprintf("lookback=%d rf=%g end=%s", s.settings.LookbackDays, s.settings.RiskFreeRate, end.Format(timeseries.DateLayout)),
	)
	return cache.Fingerprint(parts...)
}

func (s *Service) cached(ctx context.Context, kind, key string, dst interface{}) bool {
	if s.cache == nil || s.settings.CacheTTL <= 0 {
		return false
	}
	hit, err := s.cache.Get(ctx, kind, key, dst)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Msg("Failed to read cached optimization")
	}
	s.metrics.CacheLookup(kind, hit)
	return hit
}

func (s *Service) store(ctx context.Context, kind, key string, v interface{}) {
	if s.cache == nil || s.settings.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, kind, key, v, s.settings.CacheTTL); err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Msg("Failed to cache optimization")
	}
}

// pct converts a fraction to a percentage rounded to 2 decimals.
func pct(v float64) float64 {
	return formulas.Pct(v, 2)
}
