package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// openDuckDB opens an in-memory DuckDB database.
func openDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataUnavailable, "failed to open DuckDB connection", err)
	}

	return db, nil
}

// quoteLiteral quotes s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// scanBars reads (time, open, high, low, close, volume) rows.
func scanBars(rows *sql.Rows) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, 1000)

	for rows.Next() {
		var bar types.Bar

		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		bar.Time = bar.Time.UTC()
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return bars, nil
}

// WriteParquet writes the series to a parquet file with the market data columns
// (id, time, symbol, open, high, low, close, volume, fetched_at) that ParquetSource reads.
func WriteParquet(path string, series types.BarSeries, fetchedAt time.Time) (err error) {
	db, err := openDuckDB()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			fetched_at TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create table", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to begin transaction", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to prepare statement", err)
	}
	defer stmt.Close()

	for i := 0; i < series.Len(); i++ {
		bar := series.At(i)

		_, err = stmt.Exec(
			barID(series.Symbol(), bar.Time),
			bar.Time.UTC(),
			series.Symbol(),
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
			fetchedAt.UTC(),
		)
		if err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to insert bar", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to commit transaction", err)
	}

	_, err = db.Exec(fmt.Sprintf(`COPY market_data TO %s (FORMAT PARQUET)`, quoteLiteral(path)))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to export to parquet file %s", path)
	}

	return nil
}
