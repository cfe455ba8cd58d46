package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/backtest"
	"github.com/rxtech-lab/argo-backtest/internal/datasource"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BacktestCmdTestSuite struct {
	suite.Suite
	tempDir  string
	dataPath string
}

func TestBacktestCmdSuite(t *testing.T) {
	suite.Run(t, new(BacktestCmdTestSuite))
}

func (suite *BacktestCmdTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.dataPath = filepath.Join(suite.tempDir, "bars.parquet")

	config := mocks.DefaultConfig()
	config.Symbol = "BTC-USD"
	config.StartTime = time.Now().UTC().Truncate(24 * time.Hour).Add(-20 * 24 * time.Hour)
	config.Interval = time.Hour
	config.Count = 400

	series, err := mocks.NewDataGenerator(5).GenerateSeries(config)
	suite.Require().NoError(err)
	suite.Require().NoError(datasource.WriteParquet(suite.dataPath, series, time.Now()))
}

func (suite *BacktestCmdTestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out

	err := app.Run(context.Background(), append([]string{"backtest"}, args...))

	return out.String(), err
}

func (suite *BacktestCmdTestSuite) TestSchema() {
	out, err := suite.run("schema")
	suite.Require().NoError(err)
	suite.Contains(out, `"symbol"`)
	suite.Contains(out, `"overbought"`)

	path := filepath.Join(suite.tempDir, "schema.json")
	_, err = suite.run("schema", "--output", path)
	suite.Require().NoError(err)

	content, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(content), "backtest-run-config")
}

func (suite *BacktestCmdTestSuite) TestProviders() {
	out, err := suite.run("providers")
	suite.Require().NoError(err)
	suite.Contains(out, "parquet")
	suite.Contains(out, "polygon")
	suite.Contains(out, "binance")
}

func (suite *BacktestCmdTestSuite) TestRunWritesOutputs() {
	csvPath := filepath.Join(suite.tempDir, "result.csv")
	parquetPath := filepath.Join(suite.tempDir, "result.parquet")
	summaryPath := filepath.Join(suite.tempDir, "summary.yaml")

	out, err := suite.run("run",
		"--symbol", "BTC-USD",
		"--period", "1mo",
		"--interval", "1h",
		"--data", suite.dataPath,
		"--csv", csvPath,
		"--parquet", parquetPath,
		"--summary", summaryPath,
	)
	suite.Require().NoError(err)
	suite.Contains(out, "Total return")
	suite.Contains(out, "Sharpe ratio")
	suite.FileExists(csvPath)
	suite.FileExists(parquetPath)

	summaries, err := backtest.ReadSummaries(summaryPath)
	suite.Require().NoError(err)
	suite.Require().Len(summaries, 1)
	suite.Equal("BTC-USD", summaries[0].Symbol)
	suite.Equal([]string{"EMA(20)", "RSI(14,30,70)"}, summaries[0].Strategies)
	suite.Equal(400, summaries[0].Bars)
}

func (suite *BacktestCmdTestSuite) TestRunKeepsLogsOffStdout() {
	reader, writer, err := os.Pipe()
	suite.Require().NoError(err)

	stdout := os.Stdout
	os.Stdout = writer

	captured := make(chan string, 1)

	go func() {
		content, _ := io.ReadAll(reader)
		captured <- string(content)
	}()

	out, runErr := suite.run("run",
		"--symbol", "BTC-USD",
		"--period", "1mo",
		"--interval", "1h",
		"--data", suite.dataPath,
		"--verbose",
	)

	os.Stdout = stdout
	suite.Require().NoError(writer.Close())

	suite.Require().NoError(runErr)
	suite.Contains(out, "Total return")
	suite.NotContains(<-captured, `"level":`)
}

func (suite *BacktestCmdTestSuite) TestRunWithConfigFileAndOverrides() {
	configPath := filepath.Join(suite.tempDir, "run.yaml")
	suite.Require().NoError(os.WriteFile(configPath, []byte(`
symbol: BTC-USD
period: 1mo
interval: 4h
ema:
  enabled: true
  window: 10
`), 0644))

	summaryPath := filepath.Join(suite.tempDir, "summary.yaml")

	_, err := suite.run("run",
		"--config", configPath,
		"--no-rsi",
		"--ema-window", "5",
		"--data", suite.dataPath,
		"--summary", summaryPath,
	)
	suite.Require().NoError(err)

	summaries, err := backtest.ReadSummaries(summaryPath)
	suite.Require().NoError(err)
	suite.Equal([]string{"EMA(5)"}, summaries[0].Strategies)
	suite.Equal(100, summaries[0].Bars)
}

func (suite *BacktestCmdTestSuite) TestRunWithoutStrategies() {
	_, err := suite.run("run", "--symbol", "BTC-USD", "--no-ema", "--no-rsi", "--data", suite.dataPath)
	suite.True(errors.HasCode(err, errors.ErrCodeNoStrategySelected))
}

func (suite *BacktestCmdTestSuite) TestRunUnknownSymbolHasNoData() {
	_, err := suite.run("run", "--symbol", "ETH-USD", "--period", "1mo", "--interval", "1h", "--data", suite.dataPath)
	suite.True(errors.HasCode(err, errors.ErrCodeNoData))
}

func (suite *BacktestCmdTestSuite) TestRunUnknownSource() {
	_, err := suite.run("run", "--symbol", "BTC-USD", "--source", "yahoo")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
