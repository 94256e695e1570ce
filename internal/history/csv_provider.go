package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006"}

// CSVProvider serves close-price series from a directory of per-ticker CSV
// files named <TICKER>.csv. Files must carry a header and at least date and
// close columns; column order is resolved from the header.
type CSVProvider struct {
	dir    string
	logger *slog.Logger
}

// NewCSVProvider creates a provider rooted at dir.
func NewCSVProvider(dir string, logger *slog.Logger) *CSVProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVProvider{dir: dir, logger: logger}
}

// Fetch loads the ticker's CSV file, sorts it chronologically and trims it
// to the lookback window. A missing file or an empty series fails with
// ErrNoData.
func (p *CSVProvider) Fetch(ctx context.Context, ticker, lookback string) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}

	days, err := ParseLookback(lookback)
	if err != nil {
		return Series{}, err
	}

	path := filepath.Join(p.dir, strings.ToUpper(ticker)+".csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Series{}, fmt.Errorf("%w for ticker %s", ErrNoData, ticker)
		}
		return Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return Series{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return Series{}, fmt.Errorf("%w for ticker %s", ErrNoData, ticker)
	}

	dateCol, closeCol, err := resolveColumns(records[0])
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", path, err)
	}

	series := Series{Ticker: strings.ToUpper(ticker)}
	skipped := 0
	for _, record := range records[1:] {
		if len(record) <= dateCol || len(record) <= closeCol {
			skipped++
			continue
		}
		date, err := parseDate(record[dateCol])
		if err != nil {
			skipped++
			continue
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			skipped++
			continue
		}
		series.Points = append(series.Points, ClosePoint{Date: date, Close: close})
	}
	if skipped > 0 {
		p.logger.Warn("skipped malformed CSV rows",
			"ticker", ticker,
			"file", path,
			"skipped", skipped,
		)
	}
	if len(series.Points) == 0 {
		return Series{}, fmt.Errorf("%w for ticker %s", ErrNoData, ticker)
	}

	series.sortChronological()
	if days > 0 {
		series = series.Tail(days)
	}

	p.logger.Debug("fetched historical series",
		"ticker", ticker,
		"points", series.Len(),
		"lookback", lookback,
	)
	return series, nil
}

// resolveColumns locates the date and close columns from the header row.
func resolveColumns(header []string) (dateCol, closeCol int, err error) {
	dateCol, closeCol = -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "timestamp":
			if dateCol < 0 {
				dateCol = i
			}
		case "close", "adj close", "adj_close", "closeprice":
			if closeCol < 0 {
				closeCol = i
			}
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return 0, 0, fmt.Errorf("header missing date or close column: %v", header)
	}
	return dateCol, closeCol, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
