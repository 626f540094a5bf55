package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-steps/internal/logger"
	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"go.uber.org/zap"
)

const marketDataView = "market_data"

// DuckDB is a PriceSeries backed by an in-memory DuckDB view over a parquet or
// CSV file with time, symbol, open, high, low, close and volume columns.
type DuckDB struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDB opens an in-memory DuckDB database and creates a view over path.
// Files ending in .csv are read with read_csv_auto, anything else as parquet.
func NewDuckDB(path string, log *logger.Logger) (*DuckDB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	d := &DuckDB{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := d.initialize(path); err != nil {
		db.Close()

		return nil, err
	}

	return d, nil
}

func (d *DuckDB) initialize(path string) error {
	d.logger.Debug("Initializing DuckDB price series", zap.String("path", path))

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	// Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`CREATE OR REPLACE VIEW %s AS SELECT * FROM %s('%s');`,
		marketDataView, reader, strings.ReplaceAll(path, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, fmt.Sprintf("failed to load price series %s", path), err)
	}

	return nil
}

func (d *DuckDB) where(builder squirrel.SelectBuilder, query Query) squirrel.SelectBuilder {
	if query.Symbol.IsSome() {
		builder = builder.Where(squirrel.Eq{"symbol": query.Symbol.Unwrap()})
	}

	if query.Start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": query.Start.Unwrap()})
	}

	if query.End.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": query.End.Unwrap()})
	}

	return builder
}

// Count implements PriceSeries.
func (d *DuckDB) Count(query Query) (int, error) {
	sqlQuery, args, err := d.where(d.sq.Select("COUNT(*)").From(marketDataView), query).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(sqlQuery, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count price series", err)
	}

	return count, nil
}

// ReadAll implements PriceSeries.
func (d *DuckDB) ReadAll(query Query) func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		d.logger.Debug("Reading price series from DuckDB")

		sqlQuery, args, err := d.where(
			d.sq.Select("time", "symbol", "open", "high", "low", "close", "volume").From(marketDataView),
			query,
		).OrderBy("time ASC").ToSql()
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build read query", err))

			return
		}

		rows, err := d.db.Query(sqlQuery, args...)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query price series", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				timestamp                      time.Time
				open, high, low, close, volume float64
				symbol                         string
			)

			if err := rows.Scan(&timestamp, &symbol, &open, &high, &low, &close, &volume); err != nil {
				yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err))

				return
			}

			bar := types.MarketData{
				Id:     "",
				Symbol: symbol,
				Time:   timestamp,
				Open:   open,
				High:   high,
				Low:    low,
				Close:  close,
				Volume: volume,
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// Symbols implements PriceSeries.
func (d *DuckDB) Symbols() ([]string, error) {
	sqlQuery, args, err := d.sq.Select("DISTINCT symbol").From(marketDataView).OrderBy("symbol").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build symbols query", err)
	}

	rows, err := d.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	return symbols, nil
}

// Close implements PriceSeries.
func (d *DuckDB) Close() error {
	return d.db.Close()
}
