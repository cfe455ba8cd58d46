package backtest

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-backtest/internal/events"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides read by LoadConfig, e.g. BACKTEST_EMA_WINDOW.
const EnvPrefix = "BACKTEST"

// EMAConfig configures the EMA trend strategy.
type EMAConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled" jsonschema:"title=Enabled,description=Include the EMA trend strategy,default=true"`
	Window  int  `yaml:"window" json:"window" mapstructure:"window" jsonschema:"title=Window,description=EMA window in bars,minimum=1,default=20"`
}

// RSIConfig configures the RSI mean-reversion strategy.
type RSIConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled" mapstructure:"enabled" jsonschema:"title=Enabled,description=Include the RSI strategy,default=true"`
	Window     int     `yaml:"window" json:"window" mapstructure:"window" jsonschema:"title=Window,description=RSI window in bars,minimum=1,default=14"`
	Oversold   float64 `yaml:"oversold" json:"oversold" mapstructure:"oversold" jsonschema:"title=Oversold,description=Go long below this RSI level,minimum=0,maximum=100,default=30"`
	Overbought float64 `yaml:"overbought" json:"overbought" mapstructure:"overbought" jsonschema:"title=Overbought,description=Go short above this RSI level,minimum=0,maximum=100,default=70"`
}

// RunConfig fully describes one backtest run. It is comparable and serves as the result cache key.
type RunConfig struct {
	Symbol   string         `yaml:"symbol" json:"symbol" mapstructure:"symbol" jsonschema:"required,title=Symbol,description=Ticker symbol to backtest (e.g. BTC-USD or AAPL)" validate:"required"`
	Period   types.Period   `yaml:"period" json:"period" mapstructure:"period" jsonschema:"title=Period,description=Lookback period of the data" validate:"required,oneof=1mo 3mo 6mo 1y 2y 5y"`
	Interval types.Interval `yaml:"interval" json:"interval" mapstructure:"interval" jsonschema:"title=Interval,description=Sampling interval of the bars" validate:"required,oneof=1h 4h 1d 1wk"`
	EMA      EMAConfig      `yaml:"ema" json:"ema" mapstructure:"ema" jsonschema:"title=EMA,description=EMA strategy settings"`
	RSI      RSIConfig      `yaml:"rsi" json:"rsi" mapstructure:"rsi" jsonschema:"title=RSI,description=RSI strategy settings"`
	Version  string         `yaml:"version,omitempty" json:"version,omitempty" mapstructure:"version" jsonschema:"title=Version,description=Library version the config was written for"`
}

// DefaultConfig returns the defaults for symbol: 6mo of 4h bars with EMA(20) and RSI(14, 30/70) enabled.
func DefaultConfig(symbol string) RunConfig {
	return RunConfig{
		Symbol:   symbol,
		Period:   types.Period6Months,
		Interval: types.Interval4Hours,
		EMA: EMAConfig{
			Enabled: true,
			Window:  20,
		},
		RSI: RSIConfig{
			Enabled:    true,
			Window:     14,
			Oversold:   30,
			Overbought: 70,
		},
		Version: "",
	}
}

// Validate checks the fields that do not depend on strategy construction.
func (c RunConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if c.Version != "" {
		if err := version.CheckVersionCompatibility(version.GetVersion(), c.Version); err != nil {
			return err
		}
	}

	return nil
}

// BuildStrategies instantiates the enabled strategies in a fixed order: EMA, then RSI.
func (c RunConfig) BuildStrategies() ([]strategy.Strategy, error) {
	var strategies []strategy.Strategy

	if c.EMA.Enabled {
		ema, err := strategy.NewEMAStrategy(c.EMA.Window)
		if err != nil {
			return nil, err
		}

		strategies = append(strategies, ema)
	}

	if c.RSI.Enabled {
		rsi, err := strategy.NewRSIStrategy(c.RSI.Window, c.RSI.Oversold, c.RSI.Overbought)
		if err != nil {
			return nil, err
		}

		strategies = append(strategies, rsi)
	}

	if len(strategies) == 0 {
		return nil, errors.New(errors.ErrCodeNoStrategySelected, "no strategy enabled in config")
	}

	return strategies, nil
}

func (c RunConfig) runInfo(strategies []strategy.Strategy) events.RunInfo {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}

	return events.RunInfo{
		Symbol:     c.Symbol,
		Period:     c.Period,
		Interval:   c.Interval,
		Strategies: names,
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// Environment variables prefixed with BACKTEST_ override file values.
// An empty path loads defaults and environment only.
func LoadConfig(path string) (RunConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := DefaultConfig("")
	v.SetDefault("symbol", defaults.Symbol)
	v.SetDefault("period", string(defaults.Period))
	v.SetDefault("interval", string(defaults.Interval))
	v.SetDefault("ema.enabled", defaults.EMA.Enabled)
	v.SetDefault("ema.window", defaults.EMA.Window)
	v.SetDefault("rsi.enabled", defaults.RSI.Enabled)
	v.SetDefault("rsi.window", defaults.RSI.Window)
	v.SetDefault("rsi.oversold", defaults.RSI.Oversold)
	v.SetDefault("rsi.overbought", defaults.RSI.Overbought)
	v.SetDefault("version", defaults.Version)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return RunConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}
	}

	var config RunConfig
	if err := v.Unmarshal(&config); err != nil {
		return RunConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	return config, nil
}

// GenerateSchema generates a JSON schema for RunConfig.
func (c *RunConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case reflect.TypeOf(types.Period("")):
				return &jsonschema.Schema{
					Type: "string",
					Enum: toAny(types.AllPeriods),
				}
			case reflect.TypeOf(types.Interval("")):
				return &jsonschema.Schema{
					Type: "string",
					Enum: toAny(types.AllIntervals),
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-run-config"
	schema.Description = "Configuration schema for a backtest run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for RunConfig.
func (c *RunConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}
