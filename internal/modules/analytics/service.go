package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/cache"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/metrics"
	"github.com/aristath/folio/internal/modules/marketdata"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/internal/utils"
)

// DefaultBenchmark is used when a request names no benchmark.
const DefaultBenchmark = "SPY"

// DefaultLookbackDays is the calendar-day price window loaded per request.
const DefaultLookbackDays = 730

// Settings tunes the analytics pipeline.
type Settings struct {
	LookbackDays     int
	DefaultBenchmark string
	RollingWindow    int
	CacheTTL         time.Duration
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		LookbackDays:     DefaultLookbackDays,
		DefaultBenchmark: DefaultBenchmark,
		RollingWindow:    DefaultRollingWindow,
		CacheTTL:         time.Hour,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.LookbackDays <= 0 {
		s.LookbackDays = d.LookbackDays
	}
	if s.DefaultBenchmark == "" {
		s.DefaultBenchmark = d.DefaultBenchmark
	}
	if s.RollingWindow <= 0 {
		s.RollingWindow = d.RollingWindow
	}
	return s
}

// Service runs the analytics pipeline against a market-data provider.
type Service struct {
	provider marketdata.Provider
	settings Settings
	cache    cache.Store
	metrics  *metrics.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new analytics service
func NewService(provider marketdata.Provider, settings Settings, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		settings: settings.withDefaults(),
		now:      time.Now,
		log:      log.With().Str("component", "analytics").Logger(),
	}
}

// SetCache enables report caching. A zero CacheTTL disables it.
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

// ComputeAnalytics builds the full report for positions measured against
// benchmark (the configured default when empty). Data problems yield the
// empty report; the error is reserved for invalid input and cancellation.
func (s *Service) ComputeAnalytics(ctx context.Context, positions []domain.Position, benchmark string) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.ValidatePositions(positions); err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return EmptyReport(), nil
	}
	benchmark = strings.ToUpper(strings.TrimSpace(benchmark))
	if benchmark == "" {
		benchmark = s.settings.DefaultBenchmark
	}

	start, end := marketdata.Window(s.now(), s.settings.LookbackDays)
	key := s.cacheKey(positions, benchmark, end)
	if report, ok := s.cached(ctx, key); ok {
		return report, nil
	}

	timer := utils.NewTimer("analytics", s.log).Observe(s.metrics.ObservePipeline("analytics"))
	defer timer.Stop()

	report, err := s.compute(ctx, positions, benchmark, start, end)
	if err != nil {
		return nil, err
	}

	if !report.IsEmpty() {
		s.store(ctx, key, report)
	}
	return report, nil
}

func (s *Service) compute(ctx context.Context, positions []domain.Position, benchmark string, start, end time.Time) (*Report, error) {
	symbols := portfolio.UniqueSymbols(positions)
	requested := append(append([]string{}, symbols...), benchmark)

	series := marketdata.LoadSeries(ctx, s.provider, requested, start, end, s.log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.metrics.DataGaps(len(symbolSet(requested)) - len(series))

	prices := timeseries.Align(series)
	if prices.Len() < timeseries.MinAlignedRows {
		s.log.Info().
			Int("rows", prices.Len()).
			Int("num_symbols", len(symbols)).
			Msg("Not enough aligned price history, returning empty analytics")
		return EmptyReport(), nil
	}

	weights := portfolio.CurrentWeights(positions, prices)
	valid := make([]string, 0, len(weights))
	for _, symbol := range symbols {
		if _, ok := weights[symbol]; ok {
			valid = append(valid, symbol)
		}
	}
	if len(valid) == 0 {
		s.log.Info().Msg("No position carries value, returning empty analytics")
		return EmptyReport(), nil
	}

	returns := timeseries.Returns(prices)
	portfolioReturns := returns.Weighted(weights)
	benchReturns, ok := returns.Series(benchmark)
	if !ok {
		s.log.Warn().Str("benchmark", benchmark).Msg("Benchmark has no data, using zero returns")
		benchReturns = timeseries.Zeros(returns.Dates)
	}
	portfolioReturns, benchReturns = timeseries.Intersect(portfolioReturns, benchReturns)
	if portfolioReturns.Len() < MinReturnRows {
		return EmptyReport(), nil
	}

	instruments := marketdata.LoadInstruments(ctx, s.provider, valid, s.log)

	report := &Report{
		RiskMetrics:         ComputeRiskMetrics(portfolioReturns, benchReturns),
		PerformanceData:     BuildPerformance(portfolioReturns, benchReturns),
		MonthlyReturns:      BuildMonthlyReturns(portfolioReturns, benchReturns),
		ReturnDistribution:  BuildReturnDistribution(portfolioReturns),
		AllocationByClass:   AggregateAllocation(positions, weights, instruments, AttrAssetClass),
		AllocationBySector:  AggregateAllocation(positions, weights, instruments, AttrSector),
		AllocationByCountry: AggregateAllocation(positions, weights, instruments, AttrCountry),
		CorrelationMatrix:   BuildCorrelationMatrix(returns, valid),
		DrawdownData:        BuildDrawdown(portfolioReturns),
		RollingVolatility:   BuildRollingVolatility(portfolioReturns, benchReturns, s.settings.RollingWindow),
		RollingCorrelation:  BuildRollingCorrelation(portfolioReturns, benchReturns, s.settings.RollingWindow),
	}
	report.Normalize()

	s.log.Debug().
		Int("num_symbols", len(valid)).
		Int("observations", portfolioReturns.Len()).
		Str("benchmark", benchmark).
		Msg("Analytics computed")

	return report, nil
}

func (s *Service) cacheKey(positions []domain.Position, benchmark string, end time.Time) string {
	parts := make([]string, 0, len(positions)+3)
	for _, p := range positions {
		parts = append(parts, p.Symbol+":"+strconv.FormatFloat(p.Quantity, 'g', -1, 64))
	}
	sort.Strings(parts)
	parts = append(parts,
		"benchmark="+benchmark,
		fmt.Sprintf("window=%d/%d", s.settings.LookbackDays, s.settings.RollingWindow),
		"end="+end.Format(timeseries.DateLayout),
	)
	return cache.Fingerprint(parts...)
}

func (s *Service) cached(ctx context.Context, key string) (*Report, bool) {
	if s.cache == nil || s.settings.CacheTTL <= 0 {
		return nil, false
	}
	var report Report
	hit, err := s.cache.Get(ctx, cache.KindAnalytics, key, &report)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read cached analytics")
	}
	s.metrics.CacheLookup(cache.KindAnalytics, hit)
	if !hit {
		return nil, false
	}
	report.Normalize()
	return &report, true
}

func (s *Service) store(ctx context.Context, key string, report *Report) {
	if s.cache == nil || s.settings.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, cache.KindAnalytics, key, report, s.settings.CacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache analytics")
	}
}

func symbolSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}
