package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"stocksim/internal/engine"
)

const (
	summarySheet    = "Summary"
	percentileSheet = "Percentiles"
)

// writeXLSX renders the report as a two-sheet workbook: a summary sheet of
// labelled metrics and the final-price percentile ladder.
func writeXLSX(path string, result *engine.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	if err := f.SetCellValue(summarySheet, "A1", "Metric"); err != nil {
		return err
	}
	if err := f.SetCellValue(summarySheet, "B1", "Value"); err != nil {
		return err
	}
	for i, row := range summaryRows(result) {
		rowNum := i + 2
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", rowNum), row[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", rowNum), row[1]); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(percentileSheet); err != nil {
		return fmt.Errorf("create percentile sheet: %w", err)
	}
	if err := f.SetCellValue(percentileSheet, "A1", "Percentile"); err != nil {
		return err
	}
	if err := f.SetCellValue(percentileSheet, "B1", "Price"); err != nil {
		return err
	}
	for i, row := range percentileRows(result.Report.Percentiles) {
		rowNum := i + 2
		if err := f.SetCellValue(percentileSheet, fmt.Sprintf("A%d", rowNum), row[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(percentileSheet, fmt.Sprintf("B%d", rowNum), row[1]); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
