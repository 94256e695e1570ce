package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"stocksim/internal/engine"
)

const batchSheet = "Batch Summary"

var batchHeader = []string{
	"Ticker", "Model", "Initial Price", "Mean Final Price",
	"Expected Return %", "Prob Profit %", "VaR 95%", "Degraded",
}

// ExportBatchSummary implements engine.BatchExporter: one row per ticker of
// the batch, failures listed below the results.
func (e *Exporter) ExportBatchSummary(batch *engine.BatchResult) (string, error) {
	if e.format == FormatNone {
		return "", nil
	}
	if len(batch.Results) == 0 {
		return "", fmt.Errorf("no results to summarize")
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	path := filepath.Join(e.dir, fmt.Sprintf("BATCH_%s_summary.%s", stamp, e.format))

	var err error
	switch e.format {
	case FormatXLSX:
		err = writeBatchXLSX(path, batch)
	case FormatCSV:
		err = writeBatchCSV(path, batch)
	default:
		return "", fmt.Errorf("unsupported export format: %s", e.format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("batch summary exported",
		"simulation_id", batch.SimulationID,
		"tickers", len(batch.Results),
		"path", path,
	)
	return path, nil
}

// batchRows flattens results alphabetically by ticker.
func batchRows(batch *engine.BatchResult) [][]string {
	tickers := make([]string, 0, len(batch.Results))
	for t := range batch.Results {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	rows := make([][]string, 0, len(tickers))
	for _, t := range tickers {
		result := batch.Results[t]
		r := result.Report
		rows = append(rows, []string{
			strings.ToUpper(t),
			result.ModelType.String(),
			formatFloat(result.InitialPrice),
			formatFloat(r.MeanFinalPrice),
			formatFloat(r.ExpectedReturn),
			formatFloat(r.ProbProfit),
			formatFloat(r.VaR95),
			fmt.Sprintf("%t", result.Degraded),
		})
	}
	return rows
}

func writeBatchXLSX(path string, batch *engine.BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", batchSheet); err != nil {
		return fmt.Errorf("rename batch sheet: %w", err)
	}
	if err := f.SetSheetRow(batchSheet, "A1", &batchHeader); err != nil {
		return err
	}
	rowNum := 2
	for _, row := range batchRows(batch) {
		cell := fmt.Sprintf("A%d", rowNum)
		if err := f.SetSheetRow(batchSheet, cell, &row); err != nil {
			return err
		}
		rowNum++
	}
	for _, failure := range batch.Failures {
		row := []string{strings.ToUpper(failure.Ticker), "FAILED", failure.Message}
		cell := fmt.Sprintf("A%d", rowNum)
		if err := f.SetSheetRow(batchSheet, cell, &row); err != nil {
			return err
		}
		rowNum++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeBatchCSV(path string, batch *engine.BatchResult) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open summary file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(batchHeader); err != nil {
		return err
	}
	for _, row := range batchRows(batch) {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	for _, failure := range batch.Failures {
		if err := writer.Write([]string{strings.ToUpper(failure.Ticker), "FAILED", failure.Message}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
