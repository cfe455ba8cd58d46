package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rxtech-lab/argo-backtest/internal/backtest"
	"github.com/rxtech-lab/argo-backtest/internal/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/events"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one backtest and print its metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML run config; flags override its values",
			},
			&cli.StringFlag{
				Name:    "symbol",
				Aliases: []string{"s"},
				Usage:   "Ticker symbol (e.g. BTC-USD, AAPL)",
			},
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Lookback period (%s)", joinPeriods()),
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   fmt.Sprintf("Bar interval (%s)", joinIntervals()),
			},
			&cli.BoolFlag{
				Name:  "no-ema",
				Usage: "Disable the EMA strategy",
			},
			&cli.IntFlag{
				Name:  "ema-window",
				Usage: "EMA window in bars",
			},
			&cli.BoolFlag{
				Name:  "no-rsi",
				Usage: "Disable the RSI strategy",
			},
			&cli.IntFlag{
				Name:  "rsi-window",
				Usage: "RSI window in bars",
			},
			&cli.FloatFlag{
				Name:  "oversold",
				Usage: "RSI level below which the strategy goes long",
			},
			&cli.FloatFlag{
				Name:  "overbought",
				Usage: "RSI level above which the strategy goes short",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: fmt.Sprintf("Bar source (%s)", strings.Join(datasource.SupportedProviders(), ", ")),
				Value: string(datasource.ProviderParquet),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Parquet file or glob for the parquet source",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Keep parquet snapshots of fetched bars in this directory",
			},
			&cli.DurationFlag{
				Name:  "cache-max-age",
				Usage: "Maximum snapshot age before bars are fetched again",
				Value: datasource.DefaultCacheMaxAge,
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Write per-bar results to this CSV file",
			},
			&cli.StringFlag{
				Name:  "parquet",
				Usage: "Write per-bar results to this parquet file",
			},
			&cli.StringFlag{
				Name:  "summary",
				Usage: "Write the run summary to this YAML file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	config, err := runConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	level := zapcore.InfoLevel
	if cmd.Bool("verbose") {
		level = zapcore.DebugLevel
	}

	// stdout carries the metrics table, so logs go to stderr
	log, err := logger.NewLoggerWithOutput(level, "stderr")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	source, closeSource, err := datasource.NewSource(datasource.SourceConfig{
		Provider:      datasource.ProviderType(cmd.String("source")),
		DataPath:      cmd.String("data"),
		PolygonAPIKey: os.Getenv("POLYGON_API_KEY"),
		CacheDir:      cmd.String("cache-dir"),
		CacheMaxAge:   cmd.Duration("cache-max-age"),
	}, datasource.WithLogger(log))
	if err != nil {
		return err
	}

	defer func() { _ = closeSource() }()

	bus := events.NewBus(log)
	if err := bus.Subscribe(events.NewLogObserver(log)); err != nil {
		return err
	}

	engine := backtest.NewEngine(source, backtest.WithLogger(log), backtest.WithBus(bus))

	result, err := engine.Run(ctx, config)
	if err != nil {
		return err
	}

	if err := writeOutputs(cmd, result); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, renderSummary(result.Summary()))

	return err
}

// runConfigFromFlags loads the config file (or defaults) and applies the flags that were set.
func runConfigFromFlags(cmd *cli.Command) (backtest.RunConfig, error) {
	config, err := backtest.LoadConfig(cmd.String("config"))
	if err != nil {
		return backtest.RunConfig{}, err
	}

	if cmd.IsSet("symbol") {
		config.Symbol = cmd.String("symbol")
	}

	if cmd.IsSet("period") {
		config.Period = types.Period(cmd.String("period"))
	}

	if cmd.IsSet("interval") {
		config.Interval = types.Interval(cmd.String("interval"))
	}

	if cmd.Bool("no-ema") {
		config.EMA.Enabled = false
	}

	if cmd.IsSet("ema-window") {
		config.EMA.Window = int(cmd.Int("ema-window"))
	}

	if cmd.Bool("no-rsi") {
		config.RSI.Enabled = false
	}

	if cmd.IsSet("rsi-window") {
		config.RSI.Window = int(cmd.Int("rsi-window"))
	}

	if cmd.IsSet("oversold") {
		config.RSI.Oversold = cmd.Float("oversold")
	}

	if cmd.IsSet("overbought") {
		config.RSI.Overbought = cmd.Float("overbought")
	}

	return config, nil
}

func writeOutputs(cmd *cli.Command, result *backtest.Result) error {
	if path := cmd.String("csv"); path != "" {
		if err := result.WriteCSVFile(path); err != nil {
			return err
		}
	}

	if path := cmd.String("parquet"); path != "" {
		if err := result.ExportParquet(path); err != nil {
			return err
		}
	}

	if path := cmd.String("summary"); path != "" {
		if err := backtest.WriteSummaries(path, []backtest.Summary{result.Summary()}); err != nil {
			return err
		}
	}

	return nil
}

func joinPeriods() string {
	names := make([]string, len(types.AllPeriods))
	for i, p := range types.AllPeriods {
		names[i] = string(p)
	}

	return strings.Join(names, ", ")
}

func joinIntervals() string {
	names := make([]string, len(types.AllIntervals))
	for i, interval := range types.AllIntervals {
		names[i] = string(interval)
	}

	return strings.Join(names, ", ")
}

