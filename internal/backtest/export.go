package backtest

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Prefixes of the per-strategy columns that follow the fixed columns.
const (
	signalColumnPrefix    = "signal:"
	indicatorColumnPrefix = "indicator:"
)

// baseColumns are the fixed leading columns of a tabular export.
var baseColumns = []string{
	"time", "close", "signal", "return", "log_return", "strategy_return", "cum_return", "cum_strategy", "drawdown",
}

// Table is a parsed tabular export.
type Table struct {
	Strategies []string
	Rows       []Row
}

// Columns returns the header of the tabular export, one signal and one indicator column per strategy.
func (r *Result) Columns() []string {
	return tableColumns(r.StrategyNames())
}

func tableColumns(strategies []string) []string {
	columns := append([]string(nil), baseColumns...)
	for _, name := range strategies {
		columns = append(columns, signalColumnPrefix+name, indicatorColumnPrefix+name)
	}

	return columns
}

// WriteCSV writes one row per bar with a header row. Undefined values are written as empty fields.
func (r *Result) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(r.Columns()); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to write csv header", err)
	}

	for _, row := range r.Rows() {
		record := []string{
			row.Time.UTC().Format(time.RFC3339Nano),
			formatFloat(row.Close),
			strconv.Itoa(int(row.Signal)),
			formatOptional(row.Return),
			formatOptional(row.LogReturn),
			formatOptional(row.StrategyReturn),
			formatFloat(row.CumulativeReturn),
			formatFloat(row.CumulativeStrategy),
			formatFloat(row.Drawdown),
		}

		for i := range row.StrategySignals {
			record = append(record, strconv.Itoa(int(row.StrategySignals[i])), formatOptional(row.Indicators[i]))
		}

		if err := writer.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to write csv row", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to flush csv", err)
	}

	return nil
}

// WriteCSVFile writes the CSV export to path.
func (r *Result) WriteCSVFile(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to create %s", path)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(errors.ErrCodeExportFailed, closeErr, "failed to close %s", path)
		}
	}()

	return r.WriteCSV(file)
}

// ReadCSV parses a table written by WriteCSV.
func ReadCSV(reader io.Reader) (Table, error) {
	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return Table{}, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to read csv", err)
	}

	if len(records) == 0 {
		return Table{}, errors.New(errors.ErrCodeInvalidParameter, "csv has no header")
	}

	strategies, err := parseHeader(records[0])
	if err != nil {
		return Table{}, err
	}

	table := Table{
		Strategies: strategies,
		Rows:       make([]Row, 0, len(records)-1),
	}

	for line, record := range records[1:] {
		row, err := parseRecord(record, len(strategies))
		if err != nil {
			return Table{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid csv row %d", line+1)
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func parseHeader(header []string) ([]string, error) {
	if len(header) < len(baseColumns) || (len(header)-len(baseColumns))%2 != 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unexpected csv header with %d columns", len(header))
	}

	for i, name := range baseColumns {
		if header[i] != name {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "expected column %q at position %d, got %q", name, i, header[i])
		}
	}

	var strategies []string

	for i := len(baseColumns); i < len(header); i += 2 {
		name, ok := strings.CutPrefix(header[i], signalColumnPrefix)
		if !ok || header[i+1] != indicatorColumnPrefix+name {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unexpected strategy columns %q, %q", header[i], header[i+1])
		}

		strategies = append(strategies, name)
	}

	return strategies, nil
}

func parseRecord(record []string, strategies int) (Row, error) {
	var (
		row Row
		err error
	)

	if row.Time, err = time.Parse(time.RFC3339Nano, record[0]); err != nil {
		return Row{}, err
	}

	if row.Close, err = strconv.ParseFloat(record[1], 64); err != nil {
		return Row{}, err
	}

	if row.Signal, err = types.ParseSignal(record[2]); err != nil {
		return Row{}, err
	}

	if row.Return, err = parseOptional(record[3]); err != nil {
		return Row{}, err
	}

	if row.LogReturn, err = parseOptional(record[4]); err != nil {
		return Row{}, err
	}

	if row.StrategyReturn, err = parseOptional(record[5]); err != nil {
		return Row{}, err
	}

	if row.CumulativeReturn, err = strconv.ParseFloat(record[6], 64); err != nil {
		return Row{}, err
	}

	if row.CumulativeStrategy, err = strconv.ParseFloat(record[7], 64); err != nil {
		return Row{}, err
	}

	if row.Drawdown, err = strconv.ParseFloat(record[8], 64); err != nil {
		return Row{}, err
	}

	row.StrategySignals = make([]types.Signal, strategies)
	row.Indicators = make([]optional.Option[float64], strategies)

	for i := 0; i < strategies; i++ {
		column := len(baseColumns) + 2*i

		if row.StrategySignals[i], err = types.ParseSignal(record[column]); err != nil {
			return Row{}, err
		}

		if row.Indicators[i], err = parseOptional(record[column+1]); err != nil {
			return Row{}, err
		}
	}

	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v optional.Option[float64]) string {
	if v.IsNone() {
		return ""
	}

	return formatFloat(v.Unwrap())
}

func parseOptional(s string) (optional.Option[float64], error) {
	if s == "" {
		return optional.None[float64](), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return optional.None[float64](), err
	}

	return optional.Some(v), nil
}

// ExportParquet writes the tabular export to a parquet file through DuckDB.
// Undefined values are stored as NULL.
func (r *Result) ExportParquet(path string) (err error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	columns := r.Columns()
	definitions := make([]string, len(columns))
	placeholders := make([]string, len(columns))

	for i, name := range columns {
		definitions[i] = quoteIdentifier(name) + " " + columnType(name)
		placeholders[i] = "?"
	}

	if _, err = db.Exec(fmt.Sprintf("CREATE TABLE backtest_result (%s)", strings.Join(definitions, ", "))); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create result table", err)
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

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO backtest_result VALUES (%s)", strings.Join(placeholders, ", ")))
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to prepare statement", err)
	}
	defer stmt.Close()

	for _, row := range r.Rows() {
		args := []any{
			row.Time.UTC(),
			row.Close,
			int(row.Signal),
			nullable(row.Return),
			nullable(row.LogReturn),
			nullable(row.StrategyReturn),
			row.CumulativeReturn,
			row.CumulativeStrategy,
			row.Drawdown,
		}

		for i := range row.StrategySignals {
			args = append(args, int(row.StrategySignals[i]), nullable(row.Indicators[i]))
		}

		if _, err = stmt.Exec(args...); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to insert row", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to commit transaction", err)
	}

	_, err = db.Exec(fmt.Sprintf("COPY backtest_result TO '%s' (FORMAT PARQUET)", strings.ReplaceAll(path, "'", "''")))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to export to parquet file %s", path)
	}

	return nil
}

func columnType(name string) string {
	switch {
	case name == "time":
		return "TIMESTAMP"
	case name == "signal", strings.HasPrefix(name, signalColumnPrefix):
		return "INTEGER"
	default:
		return "DOUBLE"
	}
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func nullable(v optional.Option[float64]) sql.NullFloat64 {
	if v.IsNone() || math.IsNaN(v.Unwrap()) {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: v.Unwrap(), Valid: true}
}

// WriteSummaries writes run summaries to a YAML file.
func WriteSummaries(path string, summaries []Summary) error {
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to marshal summaries", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write summaries to %s", path)
	}

	return nil
}

// ReadSummaries reads a file written by WriteSummaries.
func ReadSummaries(path string) ([]Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to read %s", path)
	}

	var summaries []Summary
	if err := yaml.Unmarshal(data, &summaries); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to parse %s", path)
	}

	return summaries, nil
}
