package optimization

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/folio/internal/cache"
	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/marketdata"
)

type fakeProvider struct {
	bars        map[string][]domain.PriceBar
	instruments map[string]domain.Instrument
	calls       atomic.Int32
}

func (f *fakeProvider) PriceHistory(_ context.Context, symbol string, _, _ time.Time) ([]domain.PriceBar, error) {
	f.calls.Add(1)
	if b, ok := f.bars[symbol]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("no history for %s", symbol)
}

func (f *fakeProvider) Instrument(_ context.Context, symbol string) (*domain.Instrument, error) {
	inst, ok := f.instruments[symbol]
	if !ok {
		return nil, marketdata.ErrNotFound
	}
	return &inst, nil
}

// failingSolver fails every solve.
type failingSolver struct{}

func (failingSolver) SolveMinVariance(mat.Symmetric) ([]float64, error) {
	return nil, fmt.Errorf("%w: singular", domain.ErrSolverFailure)
}

func (failingSolver) SolveTargetReturn([]float64, mat.Symmetric, float64) ([]float64, error) {
	return nil, fmt.Errorf("%w: singular", domain.ErrSolverFailure)
}

func (failingSolver) SolveMaxSharpe([]float64, mat.Symmetric, float64) ([]float64, error) {
	return nil, fmt.Errorf("%w: singular", domain.ErrSolverFailure)
}

func twoAssetProvider() *fakeProvider {
	return &fakeProvider{
		bars: map[string][]domain.PriceBar{
			"AAA": pricePath(200, 0.01, 0.001, 0.7),
			"BBB": pricePath(200, 0.02, 0.0008, 0.3),
		},
		instruments: map[string]domain.Instrument{
			"AAA": {Symbol: "AAA", Name: "Alpha Corp"},
		},
	}
}

func newTestService(p marketdata.Provider, solver Solver) *Service {
	svc := NewService(p, solver, Settings{FrontierPoints: 8}, zerolog.Nop())
	svc.now = func() time.Time { return day(400) }
	return svc
}

var twoPositions = []domain.Position{
	{Symbol: "AAA", Quantity: 10},
	{Symbol: "BBB", Quantity: 5},
}

func TestOptimize_NoPositions(t *testing.T) {
	out, err := newTestService(&fakeProvider{}, nil).Optimize(context.Background(), nil, ObjectiveMaxSharpe)
	require.NoError(t, err)
	assert.True(t, out.Failed())
	assert.Equal(t, MsgNoPositions, out.Error)
	assert.Nil(t, out.Result)
}

func TestOptimize_InvalidInput(t *testing.T) {
	svc := newTestService(&fakeProvider{}, nil)

	_, err := svc.Optimize(context.Background(), []domain.Position{{Quantity: 1}}, ObjectiveMaxSharpe)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Optimize(ctx, twoPositions, ObjectiveMaxSharpe)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimize_InsufficientData(t *testing.T) {
	p := &fakeProvider{bars: map[string][]domain.PriceBar{
		"AAA": pricePath(200, 0.01, 0.001, 0.7),
	}}
	svc := newTestService(p, nil)

	out, err := svc.Optimize(context.Background(), twoPositions, ObjectiveMaxSharpe)
	require.NoError(t, err)
	assert.Equal(t, MsgInsufficientData, out.Error)

	full, err := svc.FullOptimizationData(context.Background(), twoPositions)
	require.NoError(t, err)
	assert.Equal(t, MsgInsufficientData, full.Error)

	frontier, err := svc.EfficientFrontier(context.Background(), twoPositions, 0)
	require.NoError(t, err)
	assert.Empty(t, frontier)
}

func TestOptimize_MaxSharpe(t *testing.T) {
	svc := newTestService(twoAssetProvider(), nil)

	out, err := svc.Optimize(context.Background(), twoPositions, "")
	require.NoError(t, err)
	require.False(t, out.Failed(), out.Error)

	total := 0.0
	for _, w := range out.Weights {
		assert.Greater(t, w, 0.0)
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-3)

	require.Len(t, out.WeightsTable, 2)
	assert.Equal(t, "AAA", out.WeightsTable[0].Symbol)
	assert.Equal(t, "BBB", out.WeightsTable[1].Symbol)
	currentTotal := 0.0
	for _, row := range out.WeightsTable {
		assert.InDelta(t, row.Optimized-row.Current, row.Diff, 0.011)
		currentTotal += row.Current
	}
	assert.InDelta(t, 100.0, currentTotal, 0.02)
	assert.Greater(t, out.AnnualVolatility, 0.0)
}

func TestOptimize_MinVolatilityIsLessRisky(t *testing.T) {
	svc := newTestService(twoAssetProvider(), nil)

	minVol, err := svc.Optimize(context.Background(), twoPositions, ObjectiveMinVolatility)
	require.NoError(t, err)
	require.False(t, minVol.Failed(), minVol.Error)

	maxSharpe, err := svc.Optimize(context.Background(), twoPositions, ObjectiveMaxSharpe)
	require.NoError(t, err)
	require.False(t, maxSharpe.Failed(), maxSharpe.Error)

	assert.LessOrEqual(t, minVol.AnnualVolatility, maxSharpe.AnnualVolatility)
	assert.GreaterOrEqual(t, maxSharpe.SharpeRatio, minVol.SharpeRatio-0.01)
}

func TestOptimize_SolverFailureIsPayload(t *testing.T) {
	svc := newTestService(twoAssetProvider(), failingSolver{})

	out, err := svc.Optimize(context.Background(), twoPositions, ObjectiveMaxSharpe)
	require.NoError(t, err)
	assert.True(t, out.Failed())
	assert.Contains(t, out.Error, "solver failure")
}

func TestFullOptimizationData(t *testing.T) {
	svc := newTestService(twoAssetProvider(), nil)

	out, err := svc.FullOptimizationData(context.Background(), twoPositions)
	require.NoError(t, err)
	require.False(t, out.Failed(), out.Error)

	assert.NotEmpty(t, out.EfficientFrontier)
	assert.LessOrEqual(t, len(out.EfficientFrontier), 8)
	assert.LessOrEqual(t, out.MinVolPortfolio.Risk, out.MaxSharpePortfolio.Risk)
	assert.Equal(t, out.CurrentPortfolio.Return, out.Metrics.Current.Return)
	assert.Equal(t, out.CurrentPortfolio.Risk, out.Metrics.Current.Risk)
	assert.Equal(t, out.MaxSharpePortfolio.Risk, out.Metrics.MaxSharpe.Risk)

	require.Len(t, out.WeightsTable, 2)
	assert.Equal(t, "Alpha Corp", out.WeightsTable[0].Name)
	assert.Equal(t, "BBB", out.WeightsTable[1].Name)
	for _, row := range out.WeightsTable {
		assert.InDelta(t, row.MaxSharpe-row.Current, row.Diff, 0.011)
	}
}

func TestFullOptimizationData_FallsBackToCurrent(t *testing.T) {
	svc := newTestService(twoAssetProvider(), failingSolver{})

	out, err := svc.FullOptimizationData(context.Background(), twoPositions)
	require.NoError(t, err)
	require.False(t, out.Failed(), out.Error)

	assert.Equal(t, out.CurrentPortfolio, out.MinVolPortfolio)
	assert.Equal(t, out.CurrentPortfolio, out.MaxSharpePortfolio)
	assert.Equal(t, 0.0, out.Metrics.MinVol.Sharpe)
	assert.Equal(t, 0.0, out.Metrics.MaxSharpe.Sharpe)
	assert.Empty(t, out.EfficientFrontier)
	for _, row := range out.WeightsTable {
		assert.Equal(t, 0.0, row.MinVol)
		assert.Equal(t, 0.0, row.MaxSharpe)
	}
}

func TestEfficientFrontier(t *testing.T) {
	svc := newTestService(twoAssetProvider(), nil)

	points, err := svc.EfficientFrontier(context.Background(), twoPositions, 5)
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.LessOrEqual(t, len(points), 5)
	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].Return, points[i-1].Return)
	}

	_, err = svc.EfficientFrontier(context.Background(), []domain.Position{{Quantity: 1}}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOptimize_UsesCache(t *testing.T) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    database.NameCache,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	p := twoAssetProvider()
	svc := NewService(p, nil, DefaultSettings(), zerolog.Nop())
	svc.now = func() time.Time { return day(400) }
	svc.SetCache(cache.NewRepository(db.Conn()))

	first, err := svc.Optimize(context.Background(), twoPositions, ObjectiveMinVolatility)
	require.NoError(t, err)
	calls := p.calls.Load()
	require.Equal(t, int32(2), calls)

	second, err := svc.Optimize(context.Background(), twoPositions, ObjectiveMinVolatility)
	require.NoError(t, err)
	assert.Equal(t, calls, p.calls.Load())
	assert.Equal(t, first.Weights, second.Weights)
	assert.Equal(t, first.WeightsTable, second.WeightsTable)

	// another objective is a different entry
	_, err = svc.Optimize(context.Background(), twoPositions, ObjectiveMaxSharpe)
	require.NoError(t, err)
	assert.Equal(t, 2*calls, p.calls.Load())
}
