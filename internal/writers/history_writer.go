package writers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-steps/internal/execution"
	"github.com/rxtech-lab/argo-steps/internal/types"
)

// HistoryWriter persists step attempts to a parquet file through an in-memory
// DuckDB table. It implements engine.HistorySink.
type HistoryWriter struct {
	db         *sql.DB
	sq         squirrel.StatementBuilderType
	outputPath string
	runID      string
	strategy   string
	lastID     int64
	mu         sync.Mutex
}

// NewHistoryWriter creates a HistoryWriter. outputPath is the full path to the
// parquet file; runID and strategy are stamped on every row.
func NewHistoryWriter(outputPath, runID, strategy string) *HistoryWriter {
	return &HistoryWriter{
		db:         nil,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		outputPath: outputPath,
		runID:      runID,
		strategy:   strategy,
		lastID:     0,
		mu:         sync.Mutex{},
	}
}

// SetRunID changes the run id stamped on rows recorded from now on. Batch
// runs call it when a new symbol starts.
func (w *HistoryWriter) SetRunID(runID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.runID = runID
}

// Initialize sets up the DuckDB table. Rows of an existing output file are
// loaded so that a restarted session appends to it.
func (w *HistoryWriter) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	w.db = db

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id BIGINT PRIMARY KEY,
			run_id TEXT,
			strategy TEXT,
			symbol TEXT,
			bar_time TIMESTAMP,
			step TEXT,
			attempt INTEGER,
			success BOOLEAN,
			message TEXT,
			outputs TEXT,
			stack TEXT
		)
	`)
	if err != nil {
		_ = w.close()

		return fmt.Errorf("failed to create history table: %w", err)
	}

	if _, err := os.Stat(w.outputPath); err == nil {
		_, err = w.db.Exec(fmt.Sprintf(`INSERT INTO history SELECT * FROM read_parquet('%s')`, quote(w.outputPath)))
		if err != nil {
			_ = w.close()

			return fmt.Errorf("failed to load existing history %s: %w", w.outputPath, err)
		}
	}

	if err := w.db.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM history`).Scan(&w.lastID); err != nil {
		_ = w.close()

		return fmt.Errorf("failed to read history ids: %w", err)
	}

	return nil
}

// Record implements engine.HistorySink.
func (w *HistoryWriter) Record(bar types.MarketData, entry execution.HistoryEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return fmt.Errorf("writer not initialized")
	}

	query, args, err := w.sq.Insert("history").
		Columns("id", "run_id", "strategy", "symbol", "bar_time", "step", "attempt", "success", "message", "outputs", "stack").
		Values(
			w.lastID+1,
			w.runID,
			w.strategy,
			bar.Symbol,
			entry.Key.Timestamp,
			entry.Key.Step,
			entry.Key.Attempt,
			entry.Result.IsSuccess(),
			entry.Result.Message(),
			encodeOutputs(entry.Result.Outputs()),
			entry.Result.Stack(),
		).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := w.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	w.lastID++

	return nil
}

// Flush exports every recorded row to the parquet file.
func (w *HistoryWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return fmt.Errorf("writer not initialized")
	}

	_, err := w.db.Exec(fmt.Sprintf(`
		COPY (SELECT * FROM history ORDER BY id ASC)
		TO '%s' (FORMAT PARQUET)
	`, quote(w.outputPath)))
	if err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}

// GetOutputPath returns the parquet file path.
func (w *HistoryWriter) GetOutputPath() string {
	return w.outputPath
}

// GetRecordCount returns the number of rows stored.
func (w *HistoryWriter) GetRecordCount() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return 0, fmt.Errorf("writer not initialized")
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}

	return count, nil
}

// Close releases database resources.
func (w *HistoryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.close()
}

func (w *HistoryWriter) close() error {
	if w.db == nil {
		return nil
	}

	err := w.db.Close()
	w.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// encodeOutputs renders outputs as JSON, falling back to Go syntax for values
// JSON cannot represent (NaN, channels, functions).
func encodeOutputs(outputs map[string]any) string {
	if len(outputs) == 0 {
		return ""
	}

	encoded, err := json.Marshal(outputs)
	if err != nil {
		return fmt.Sprintf("%v", outputs)
	}

	return string(encoded)
}

func quote(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
