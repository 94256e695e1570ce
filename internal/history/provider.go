package history

import (
	"context"
	"errors"
)

// ErrNoData indicates the provider has no observations for the ticker.
// Callers treat this as a fatal calibration input: they either fall back to
// default parameters or abort, never fabricate prices.
var ErrNoData = errors.New("no historical data")

// Provider fetches a close-price series for a ticker, bounded by a lookback
// period token ("90d", "6mo", "2y", "max"). The returned series is strictly
// chronological. An empty result fails with ErrNoData.
type Provider interface {
	Fetch(ctx context.Context, ticker, lookback string) (Series, error)
}
