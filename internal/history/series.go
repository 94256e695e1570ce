package history

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ClosePoint is one (timestamp, close-price) observation.
type ClosePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is a strictly chronological close-price series for one ticker.
type Series struct {
	Ticker string       `json:"ticker"`
	Points []ClosePoint `json:"points"`
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Points)
}

// Closes returns the close prices in chronological order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// LastClose returns the most recent close, or an error when the series is
// empty or the latest close is non-positive. The last close seeds the
// simulation's initial price, so a bad value here is fatal upstream.
func (s Series) LastClose() (float64, error) {
	if len(s.Points) == 0 {
		return 0, fmt.Errorf("series for %s is empty", s.Ticker)
	}
	last := s.Points[len(s.Points)-1].Close
	if last <= 0 {
		return 0, fmt.Errorf("series for %s has non-positive last close %v", s.Ticker, last)
	}
	return last, nil
}

// Tail returns a series restricted to the most recent n points.
func (s Series) Tail(n int) Series {
	if n <= 0 || n >= len(s.Points) {
		return s
	}
	return Series{Ticker: s.Ticker, Points: s.Points[len(s.Points)-n:]}
}

// sortChronological orders points by date, oldest first.
func (s *Series) sortChronological() {
	sort.Slice(s.Points, func(i, j int) bool {
		return s.Points[i].Date.Before(s.Points[j].Date)
	})
}

// ParseLookback converts a lookback token like "6mo", "2y", "90d" or "max"
// into a trading-day count. Zero means unbounded.
func ParseLookback(period string) (int, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" || period == "max" {
		return 0, nil
	}

	var unit string
	var numPart string
	switch {
	case strings.HasSuffix(period, "mo"):
		unit, numPart = "mo", strings.TrimSuffix(period, "mo")
	case strings.HasSuffix(period, "y"):
		unit, numPart = "y", strings.TrimSuffix(period, "y")
	case strings.HasSuffix(period, "d"):
		unit, numPart = "d", strings.TrimSuffix(period, "d")
	default:
		return 0, fmt.Errorf("unrecognized lookback period %q (want e.g. 90d, 6mo, 2y, max)", period)
	}

	n, err := strconv.Atoi(numPart)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid lookback period %q", period)
	}

	switch unit {
	case "d":
		return n, nil
	case "mo":
		return n * 21, nil // approximate trading days per month
	default:
		return n * 252, nil
	}
}
