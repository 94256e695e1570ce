package exporter

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stocksim/internal/engine"
	"stocksim/internal/simulation"
	"stocksim/internal/stats"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testResult() *engine.Result {
	return &engine.Result{
		SimulationID: "sim-1",
		Ticker:       "msft",
		ModelType:    simulation.ModelJump,
		Parameters:   simulation.DefaultParameters(),
		InitialPrice: 100,
		Report: &stats.Report{
			InitialPrice:     100,
			TotalPaths:       1000,
			ValidPaths:       1000,
			MeanFinalPrice:   108.5,
			MedianFinalPrice: 107.2,
			ExpectedReturn:   8.5,
			ProbProfit:       61.0,
			ProbLoss:         39.0,
			Percentiles: stats.Percentiles{
				P1: 70, P5: 80, P10: 85, P25: 95, P50: 107.2,
				P75: 120, P90: 132, P95: 140, P99: 155,
			},
			HasAdvancedStats: true,
			Advanced: &stats.AdvancedStats{
				Skewness:      0.12,
				NormalityTest: "shapiro-wilk",
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"xlsx", FormatXLSX, false},
		{"", FormatXLSX, false},
		{"CSV", FormatCSV, false},
		{"none", FormatNone, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "format %q", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestExportNoneIsNoOp(t *testing.T) {
	e := New(t.TempDir(), FormatNone, testLogger())
	path, err := e.ExportReport(testResult())
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, FormatCSV, testLogger())

	path, err := e.ExportReport(testResult())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".csv"))
	assert.Contains(t, filepath.Base(path), "MSFT")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// BOM prefix for Excel.
	require.True(t, len(data) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	records, err := csv.NewReader(strings.NewReader(string(data[3:]))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"metric", "value"}, records[0])

	flat := make(map[string]string, len(records))
	for _, rec := range records[1:] {
		flat[rec[0]] = rec[1]
	}
	assert.Equal(t, "MSFT", flat["Ticker"])
	assert.Equal(t, "jump", flat["Model"])
	assert.Equal(t, "108.5000", flat["Mean Final Price"])
	assert.Equal(t, "107.2000", flat["Percentile P50"])
	assert.Equal(t, "shapiro-wilk", flat["Normality Test"])
}

func TestExportXLSX(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, FormatXLSX, testLogger())

	path, err := e.ExportReport(testResult())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".xlsx"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Summary", "Percentiles"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, []string{"Ticker", "MSFT"}, rows[1])

	pRows, err := f.GetRows("Percentiles")
	require.NoError(t, err)
	require.Len(t, pRows, 10)
	assert.Equal(t, []string{"P99", "155.0000"}, pRows[9])
}

func TestExportBatchSummaryCSV(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, FormatCSV, testLogger())

	zoom := testResult()
	zoom.Ticker = "zm"
	batch := &engine.BatchResult{
		SimulationID: "batch-1",
		Results: map[string]*engine.Result{
			"ZM":   zoom,
			"MSFT": testResult(),
		},
		Failures:  []engine.TickerFailure{{Ticker: "gone", Message: "no data"}},
		Succeeded: 2,
		Failed:    1,
	}

	path, err := e.ExportBatchSummary(batch)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "BATCH_")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	reader := csv.NewReader(strings.NewReader(string(data[3:])))
	reader.FieldsPerRecord = -1 // failure rows are shorter
	records, err := reader.ReadAll()
	require.NoError(t, err)

	// header + two results sorted by ticker + one failure row
	require.Len(t, records, 4)
	assert.Equal(t, "Ticker", records[0][0])
	assert.Equal(t, "MSFT", records[1][0])
	assert.Equal(t, "ZM", records[2][0])
	assert.Equal(t, []string{"GONE", "FAILED", "no data"}, records[3])
}

func TestExportBatchSummaryWithoutResultsFails(t *testing.T) {
	e := New(t.TempDir(), FormatXLSX, testLogger())
	_, err := e.ExportBatchSummary(&engine.BatchResult{SimulationID: "batch-2"})
	assert.Error(t, err)
}

func TestExportWithoutReportFails(t *testing.T) {
	e := New(t.TempDir(), FormatCSV, testLogger())
	result := testResult()
	result.Report = nil
	_, err := e.ExportReport(result)
	assert.Error(t, err)
}
