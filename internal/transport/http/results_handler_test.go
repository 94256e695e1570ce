package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksim/internal/store"
)

type fakeStore struct {
	entries []store.Entry
	reports map[string][]byte
}

func (f *fakeStore) List() ([]store.Entry, error) {
	return f.entries, nil
}

func (f *fakeStore) LoadReport(id string) ([]byte, error) {
	data, ok := f.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return data, nil
}

func newResultsRouter(t *testing.T) *chi.Mux {
	t.Helper()
	st := &fakeStore{
		entries: []store.Entry{
			{SimulationID: "sim-1", Ticker: "AAPL", CreatedAt: time.Now()},
			{SimulationID: "sim-2", Ticker: "MSFT", CreatedAt: time.Now()},
		},
		reports: map[string][]byte{
			"sim-1": []byte(`{"ticker":"aapl","report":{"total_paths":100}}`),
		},
	}
	handler := NewResultsHandler(st, testLogger())

	r := chi.NewRouter()
	r.Route("/api", handler.Routes)
	return r
}

func TestListSimulationsEndpoint(t *testing.T) {
	router := newResultsRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/simulations", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Simulations []store.Entry `json:"simulations"`
		Count       int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "AAPL", resp.Simulations[0].Ticker)
}

func TestReportEndpoint(t *testing.T) {
	router := newResultsRouter(t)

	t.Run("existing report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/simulations/sim-1/report", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		var doc map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "aapl", doc["ticker"])
	})

	t.Run("unknown simulation", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/simulations/nope/report", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "SIMULATION_NOT_FOUND")
	})
}
