// Package exporter renders simulation statistics reports for human
// consumption, as xlsx workbooks or CSV files.
package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stocksim/internal/engine"
	"stocksim/internal/infrastructure"
	"stocksim/internal/stats"
)

// Format selects the export output format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatNone Format = "none"
)

// ParseFormat maps a config string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "xlsx", "":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "none":
		return FormatNone, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Exporter writes report files under a base directory.
type Exporter struct {
	dir    string
	format Format
	logger *slog.Logger
}

// New creates an exporter writing files of the given format under dir.
func New(dir string, format Format, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Exporter{
		dir:    dir,
		format: format,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// ExportReport implements engine.Exporter. It returns the path of the
// written file, or "" when the format is none.
func (e *Exporter) ExportReport(result *engine.Result) (string, error) {
	if e.format == FormatNone {
		return "", nil
	}
	if result.Report == nil {
		return "", fmt.Errorf("no report to export for %s", result.Ticker)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	path := filepath.Join(e.dir, e.fileName(result))
	var err error
	switch e.format {
	case FormatXLSX:
		err = writeXLSX(path, result)
	case FormatCSV:
		err = writeCSV(path, result)
	default:
		return "", fmt.Errorf("unsupported export format: %s", e.format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("report exported",
		slog.String("ticker", result.Ticker),
		slog.String("path", path),
	)
	return path, nil
}

func (e *Exporter) fileName(result *engine.Result) string {
	ticker := strings.ToUpper(result.Ticker)
	if ticker == "" {
		ticker = "UNKNOWN"
	}
	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("%s_%s_report.%s", ticker, stamp, e.format)
}

// summaryRows produces the label/value rows shared by both formats.
func summaryRows(result *engine.Result) [][2]string {
	r := result.Report
	rows := [][2]string{
		{"Ticker", strings.ToUpper(result.Ticker)},
		{"Model", result.ModelType.String()},
		{"Initial Price", formatFloat(r.InitialPrice)},
		{"Total Paths", fmt.Sprintf("%d", r.TotalPaths)},
		{"Valid Paths", fmt.Sprintf("%d", r.ValidPaths)},
		{"Mean Final Price", formatFloat(r.MeanFinalPrice)},
		{"Median Final Price", formatFloat(r.MedianFinalPrice)},
		{"Std Final Price", formatFloat(r.StdFinalPrice)},
		{"Min Final Price", formatFloat(r.MinFinalPrice)},
		{"Max Final Price", formatFloat(r.MaxFinalPrice)},
		{"Expected Return %", formatFloat(r.ExpectedReturn)},
		{"Median Return %", formatFloat(r.MedianReturn)},
		{"Return Volatility", formatFloat(r.ReturnVolatility)},
		{"VaR 95%", formatFloat(r.VaR95)},
		{"VaR 99%", formatFloat(r.VaR99)},
		{"Prob Profit %", formatFloat(r.ProbProfit)},
		{"Prob Loss %", formatFloat(r.ProbLoss)},
		{"Prob Up 10%+", formatFloat(r.ProbUp10Percent)},
		{"Prob Up 20%+", formatFloat(r.ProbUp20Percent)},
		{"Prob Down 10%+", formatFloat(r.ProbDown10Percent)},
		{"Prob Down 20%+", formatFloat(r.ProbDown20Percent)},
		{"Sharpe Ratio", formatFloat(r.SharpeRatio)},
		{"Sortino Ratio", formatFloat(r.SortinoRatio)},
		{"Avg Max Drawdown", formatFloat(r.MaxDrawdown)},
		{"Worst Max Drawdown", formatFloat(r.MaxDrawdownWorst)},
		{"Return CI Lower", formatFloat(r.ReturnCILower)},
		{"Return CI Upper", formatFloat(r.ReturnCIUpper)},
	}
	if r.HasAdvancedStats && r.Advanced != nil {
		rows = append(rows,
			[2]string{"Skewness", formatFloat(r.Advanced.Skewness)},
			[2]string{"Excess Kurtosis", formatFloat(r.Advanced.Kurtosis)},
			[2]string{"T Statistic", formatFloat(r.Advanced.TStat)},
			[2]string{"T-Test P-Value", formatFloat(r.Advanced.PValue)},
			[2]string{"Normality Test", r.Advanced.NormalityTest},
			[2]string{"Normality Stat", formatFloat(r.Advanced.NormalityStat)},
			[2]string{"Normality P-Value", formatFloat(r.Advanced.NormalityP)},
		)
	}
	return rows
}

// percentileRows pairs ladder labels with values.
func percentileRows(p stats.Percentiles) [][2]string {
	labels := []string{"P1", "P5", "P10", "P25", "P50", "P75", "P90", "P95", "P99"}
	values := p.Ladder()
	rows := make([][2]string, len(labels))
	for i, label := range labels {
		rows[i] = [2]string{label, formatFloat(values[i])}
	}
	return rows
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
