// Package history defines the historical-data collaborator consumed by the
// simulation engine: an ordered close-price series per ticker, fetched over
// a bounded lookback window. The only bundled implementation reads
// per-ticker CSV files from a directory; anything that can produce a Series
// (a market-data API client, a database) satisfies the Provider contract.
package history
