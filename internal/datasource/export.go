package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

const exportBatchSize = 500

// WriteSeries writes bars to path through an in-memory DuckDB table. Files
// ending in .csv are written as CSV with a header, anything else as parquet.
func WriteSeries(path string, bars []types.MarketData) error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE bars (
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create bars table: %w", err)
	}

	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	for start := 0; start < len(bars); start += exportBatchSize {
		end := min(start+exportBatchSize, len(bars))

		insert := sq.Insert("bars").Columns("time", "symbol", "open", "high", "low", "close", "volume")
		for _, bar := range bars[start:end] {
			insert = insert.Values(bar.Time, bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}

		if _, err := db.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to insert bars: %w", err)
		}
	}

	format := "FORMAT PARQUET"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		format = "FORMAT CSV, HEADER"
	}

	// Squirrel doesn't support COPY
	copyQuery := fmt.Sprintf(`COPY (SELECT * FROM bars ORDER BY time, symbol) TO '%s' (%s)`,
		strings.ReplaceAll(path, "'", "''"), format)

	if _, err := db.Exec(copyQuery); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
