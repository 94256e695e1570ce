package exporter

import (
	"encoding/csv"
	"fmt"
	"os"

	"stocksim/internal/engine"
)

// writeCSV renders the report as metric,value rows followed by the
// percentile ladder. A UTF-8 BOM is prefixed so Excel opens the file
// correctly.
func writeCSV(path string, result *engine.Result) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"metric", "value"}); err != nil {
		return err
	}
	for _, row := range summaryRows(result) {
		if err := writer.Write([]string{row[0], row[1]}); err != nil {
			return err
		}
	}
	for _, row := range percentileRows(result.Report.Percentiles) {
		if err := writer.Write([]string{"Percentile " + row[0], row[1]}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
