package history

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLookback(t *testing.T) {
	tests := []struct {
		name    string
		period  string
		want    int
		wantErr bool
	}{
		{"days", "90d", 90, false},
		{"months", "6mo", 126, false},
		{"years", "2y", 504, false},
		{"max", "max", 0, false},
		{"empty means unbounded", "", 0, false},
		{"uppercase", "1Y", 252, false},
		{"garbage", "soon", 0, true},
		{"zero count", "0d", 0, true},
		{"negative", "-3y", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLookback(tt.period)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeries(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	s := Series{
		Ticker: "AAPL",
		Points: []ClosePoint{
			{Date: day(1), Close: 100},
			{Date: day(2), Close: 101},
			{Date: day(3), Close: 102},
		},
	}

	t.Run("closes in order", func(t *testing.T) {
		assert.Equal(t, []float64{100, 101, 102}, s.Closes())
	})

	t.Run("last close", func(t *testing.T) {
		last, err := s.LastClose()
		require.NoError(t, err)
		assert.Equal(t, 102.0, last)
	})

	t.Run("empty series has no last close", func(t *testing.T) {
		_, err := Series{Ticker: "X"}.LastClose()
		assert.Error(t, err)
	})

	t.Run("non-positive last close rejected", func(t *testing.T) {
		bad := Series{Ticker: "X", Points: []ClosePoint{{Date: day(1), Close: -1}}}
		_, err := bad.LastClose()
		assert.Error(t, err)
	})

	t.Run("tail", func(t *testing.T) {
		assert.Equal(t, []float64{101, 102}, s.Tail(2).Closes())
		assert.Equal(t, []float64{100, 101, 102}, s.Tail(10).Closes())
		assert.Equal(t, []float64{100, 101, 102}, s.Tail(0).Closes())
	})
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCSVProviderFetch(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAPL.csv",
		"Date,Open,Close\n"+
			"2024-01-03,103,103.5\n"+
			"2024-01-01,100,100.5\n"+
			"2024-01-02,101,101.5\n")
	writeCSV(t, dir, "BAD.csv", "Date,Close\nnot-a-date,abc\n")
	writeCSV(t, dir, "EMPTY.csv", "Date,Close\n")

	p := NewCSVProvider(dir, slog.Default())
	ctx := context.Background()

	t.Run("loads and sorts chronologically", func(t *testing.T) {
		series, err := p.Fetch(ctx, "aapl", "max")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", series.Ticker)
		assert.Equal(t, []float64{100.5, 101.5, 103.5}, series.Closes())
	})

	t.Run("lookback trims to most recent", func(t *testing.T) {
		series, err := p.Fetch(ctx, "AAPL", "2d")
		require.NoError(t, err)
		assert.Equal(t, []float64{101.5, 103.5}, series.Closes())
	})

	t.Run("missing ticker is ErrNoData", func(t *testing.T) {
		_, err := p.Fetch(ctx, "MSFT", "1y")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("all rows malformed is ErrNoData", func(t *testing.T) {
		_, err := p.Fetch(ctx, "BAD", "1y")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("header only is ErrNoData", func(t *testing.T) {
		_, err := p.Fetch(ctx, "EMPTY", "1y")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("invalid lookback", func(t *testing.T) {
		_, err := p.Fetch(ctx, "AAPL", "eventually")
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := p.Fetch(cancelled, "AAPL", "1y")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
