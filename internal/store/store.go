// Package store persists completed simulations on disk: the raw path matrix
// as Parquet and the statistics report as JSON, one directory per
// simulation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"stocksim/internal/engine"
	"stocksim/internal/infrastructure"
)

const (
	pathsFile  = "paths.parquet"
	reportFile = "statistics.json"

	dirStampLayout = "20060102T150405"
)

// ErrNotFound reports that no persisted simulation matches the given id.
var ErrNotFound = errors.New("simulation not found")

// PathRow is the long-form Parquet layout of one matrix cell.
type PathRow struct {
	Path  int32   `json:"path" parquet:"path"`
	Step  int32   `json:"step" parquet:"step"`
	Price float64 `json:"price" parquet:"price"`
}

// reportEnvelope is the JSON document written next to the Parquet file.
type reportEnvelope struct {
	SimulationID string      `json:"simulation_id"`
	Ticker       string      `json:"ticker"`
	ModelType    string      `json:"model_type"`
	Parameters   interface{} `json:"parameters"`
	Degraded     bool        `json:"calibration_degraded"`
	CreatedAt    time.Time   `json:"created_at"`
	Report       interface{} `json:"report"`
}

// Store writes simulation artifacts under a base directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a store rooted at dir.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Store{
		dir:    dir,
		logger: logger.With(slog.String("component", "store")),
	}
}

// SaveSimulation implements engine.Store. It returns the directory holding
// the simulation's artifacts.
func (s *Store) SaveSimulation(result *engine.Result) (string, error) {
	dir := filepath.Join(s.dir, simulationDirName(result))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create simulation directory: %w", err)
	}

	if err := s.writePaths(dir, result); err != nil {
		return "", err
	}
	if err := s.writeReport(dir, result); err != nil {
		return "", err
	}

	s.logger.Info("simulation persisted",
		slog.String("ticker", result.Ticker),
		slog.String("dir", dir),
		slog.Int("paths", result.Matrix.NumPaths()),
	)
	return dir, nil
}

func (s *Store) writePaths(dir string, result *engine.Result) error {
	rows := make([]PathRow, 0, result.Matrix.NumPaths()*(result.Matrix.NumSteps()+1))
	for p, path := range result.Matrix {
		for step, price := range path {
			rows = append(rows, PathRow{
				Path:  int32(p),
				Step:  int32(step),
				Price: price,
			})
		}
	}

	path := filepath.Join(dir, pathsFile)
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("write path matrix: %w", err)
	}
	return nil
}

func (s *Store) writeReport(dir string, result *engine.Result) error {
	envelope := reportEnvelope{
		SimulationID: result.SimulationID,
		Ticker:       result.Ticker,
		ModelType:    result.ModelType.String(),
		Parameters:   result.Parameters,
		Degraded:     result.Degraded,
		CreatedAt:    time.Now().UTC(),
		Report:       result.Report,
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, reportFile), data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadPaths loads a persisted path matrix back in long form. Used by tests
// and ad hoc analysis.
func ReadPaths(dir string) ([]PathRow, error) {
	rows, err := parquet.ReadFile[PathRow](filepath.Join(dir, pathsFile))
	if err != nil {
		return nil, fmt.Errorf("read path matrix: %w", err)
	}
	return rows, nil
}

func simulationDirName(result *engine.Result) string {
	ticker := strings.ToUpper(result.Ticker)
	if ticker == "" {
		ticker = "UNKNOWN"
	}
	stamp := time.Now().UTC().Format(dirStampLayout)
	if result.SimulationID != "" {
		return fmt.Sprintf("%s_%s_%s", ticker, stamp, result.SimulationID)
	}
	return fmt.Sprintf("%s_%s", ticker, stamp)
}

// Entry describes one persisted simulation, reconstructed from its
// directory name.
type Entry struct {
	SimulationID string    `json:"simulation_id,omitempty"`
	Ticker       string    `json:"ticker"`
	CreatedAt    time.Time `json:"created_at"`
	Dir          string    `json:"dir"`
}

// List enumerates persisted simulations, newest first. A missing base
// directory is an empty store, not an error.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list simulations: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		entry, ok := parseDirName(de.Name())
		if !ok {
			continue
		}
		entry.Dir = filepath.Join(s.dir, de.Name())
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func parseDirName(name string) (Entry, bool) {
	parts := strings.SplitN(name, "_", 3)
	if len(parts) < 2 {
		return Entry{}, false
	}
	created, err := time.Parse(dirStampLayout, parts[1])
	if err != nil {
		return Entry{}, false
	}
	entry := Entry{Ticker: parts[0], CreatedAt: created}
	if len(parts) == 3 {
		entry.SimulationID = parts[2]
	}
	return entry, true
}

// LoadReport returns the raw statistics document of the simulation with
// the given id, or ErrNotFound.
func (s *Store) LoadReport(simulationID string) ([]byte, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.SimulationID == simulationID {
			data, err := os.ReadFile(filepath.Join(entry.Dir, reportFile))
			if err != nil {
				return nil, fmt.Errorf("read report for %s: %w", simulationID, err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, simulationID)
}
