package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/modules/analytics"
	"github.com/aristath/folio/internal/modules/optimization"
)

// run executes cmd with args and returns its exit status and stdout.
func run(t *testing.T, cmd subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { stdout, stderr = os.Stdout, os.Stderr })

	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))

	status := cmd.Execute(context.Background(), f)
	if status != subcommands.ExitSuccess {
		t.Logf("stderr: %s", errOut.String())
	}
	return status, out.String()
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FOLIO_DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("FOLIO_DEFAULT_BENCHMARK", "SPY")
	t.Setenv("FOLIO_FRONTIER_POINTS", "6")
	return dir
}

// writeCSV writes n daily closes ending yesterday.
func writeCSV(t *testing.T, dir, name string, n int, amp, drift float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	start := time.Now().UTC().AddDate(0, 0, -n)
	price := 50.0
	for i := 0; i < n; i++ {
		if i > 0 {
			price *= 1 + amp*float64((i*7)%5-2)/2 + drift
		}
		fmt.Fprintf(&b, "%s,%.4f,%.4f,%.4f,%.4f,1000\n", start.AddDate(0, 0, i).Format("2006-01-02"), price, price, price, price)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func importFixtures(t *testing.T, dir string) {
	t.Helper()
	status, out := run(t, &importCmd{}, "-s", "aaa", "-name", "Alpha Corp", "-sector", "Tech", writeCSV(t, dir, "aaa.csv", 90, 0.01, 0.001))
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "Imported 90 bars for AAA\n", out)

	for symbol, amp := range map[string]float64{"BBB": 0.02, "SPY": 0.008} {
		status, _ = run(t, &importCmd{}, "-s", symbol, writeCSV(t, dir, symbol+".csv", 90, amp, 0.0006))
		require.Equal(t, subcommands.ExitSuccess, status)
	}
}

func TestImport_Usage(t *testing.T) {
	setupEnv(t)

	status, _ := run(t, &importCmd{})
	assert.Equal(t, subcommands.ExitUsageError, status)

	status, _ = run(t, &importCmd{}, "-s", "AAA", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestImport_BadCSV(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("when,price\n2024-01-01,1\n"), 0o644))

	status, _ := run(t, &importCmd{}, "-s", "AAA", path)
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestAnalyze(t *testing.T) {
	dir := setupEnv(t)
	importFixtures(t, dir)

	status, out := run(t, &analyzeCmd{}, "-p", "AAA:10,BBB:5", "-raw")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "# Portfolio analytics")
	assert.Contains(t, out, "benchmark **SPY**")
	assert.Contains(t, out, "## Risk metrics")
	assert.Contains(t, out, "| Tech |")

	status, out = run(t, &analyzeCmd{}, "-p", "AAA:10,BBB:5", "-json")
	require.Equal(t, subcommands.ExitSuccess, status)
	var report analytics.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.PerformanceData)
	assert.Equal(t, []string{"AAA", "BBB"}, report.CorrelationMatrix.Labels)
}

func TestAnalyze_BadPositions(t *testing.T) {
	setupEnv(t)
	status, _ := run(t, &analyzeCmd{}, "-p", "AAA")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestOptimize(t *testing.T) {
	dir := setupEnv(t)
	importFixtures(t, dir)

	status, out := run(t, &optimizeCmd{}, "-p", "AAA:10,BBB:5", "-o", "min_volatility", "-json")
	require.Equal(t, subcommands.ExitSuccess, status)
	var outcome optimization.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	require.False(t, outcome.Failed(), outcome.Error)
	assert.Len(t, outcome.WeightsTable, 2)

	status, out = run(t, &optimizeCmd{}, "-p", "AAA:10,BBB:5", "-full", "-raw")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "# Optimization overview")
	assert.Contains(t, out, "| AAA | Alpha Corp |")

	status, _ = run(t, &optimizeCmd{}, "-p", "AAA:10", "-o", "max_return")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestOptimize_NoHistory(t *testing.T) {
	setupEnv(t)

	status, out := run(t, &optimizeCmd{}, "-p", "AAA:10,BBB:5", "-raw")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, optimization.MsgInsufficientData)
}

func TestFrontier(t *testing.T) {
	dir := setupEnv(t)
	importFixtures(t, dir)

	status, out := run(t, &frontierCmd{}, "-p", "AAA:10,BBB:5", "-n", "4", "-json")
	require.Equal(t, subcommands.ExitSuccess, status)
	var points []optimization.FrontierPoint
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	assert.NotEmpty(t, points)
	assert.LessOrEqual(t, len(points), 4)
}

func TestMarkdown_Empty(t *testing.T) {
	assert.Contains(t, AnalyticsMarkdown(analytics.EmptyReport(), "SPY"), "Not enough price history")
	assert.Contains(t, FrontierMarkdown(nil), "No frontier")
	assert.Contains(t, OptimizationMarkdown(optimization.Outcome{Error: optimization.MsgNoPositions}, optimization.ObjectiveMaxSharpe), optimization.MsgNoPositions)
}

func TestFrontierMarkdown(t *testing.T) {
	md := FrontierMarkdown([]optimization.FrontierPoint{{Risk: 10, Return: 5}, {Risk: 12.5, Return: 7.25}})
	assert.Contains(t, md, "| 1 | 10.00% | 5.00% |")
	assert.Contains(t, md, "| 2 | 12.50% | 7.25% |")
}
