package datasource

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// ProviderType names a bar source implementation.
type ProviderType string

const (
	ProviderParquet ProviderType = "parquet"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// ProviderInfo contains metadata about a bar source provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderParquet: {
		Name:         string(ProviderParquet),
		DisplayName:  "Parquet file",
		Description:  "Local parquet file or glob with time, symbol and OHLCV columns",
		RequiresAuth: false,
	},
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data provider with historical OHLCV aggregates",
		RequiresAuth: true,
	},
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange klines for USDT pairs",
		RequiresAuth: false,
	},
}

// SupportedProviders returns all provider names, sorted.
func SupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a provider.
func GetProviderInfo(name string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(name)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", name)
	}

	return info, nil
}

// SourceConfig selects and configures a bar source.
type SourceConfig struct {
	Provider      ProviderType `validate:"required,oneof=parquet polygon binance"`
	DataPath      string       `validate:"required_if=Provider parquet"`
	PolygonAPIKey string       `validate:"required_if=Provider polygon"`
	// CacheDir enables a parquet snapshot cache in front of the provider when set.
	CacheDir    string
	CacheMaxAge time.Duration `validate:"gte=0"`
}

// NewSource builds the configured bar source. The returned close function releases
// resources held by the source and is never nil.
func NewSource(config SourceConfig, opts ...Option) (BarSource, func() error, error) {
	noop := func() error { return nil }

	if _, err := GetProviderInfo(string(config.Provider)); err != nil {
		return nil, noop, err
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, noop, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid source configuration", err)
	}

	var (
		source BarSource
		closer = noop
	)

	switch config.Provider {
	case ProviderParquet:
		parquet, err := NewParquetSource(config.DataPath, opts...)
		if err != nil {
			return nil, noop, err
		}

		source, closer = parquet, parquet.Close
	case ProviderPolygon:
		polygon, err := NewPolygonSource(config.PolygonAPIKey, opts...)
		if err != nil {
			return nil, noop, err
		}

		source = polygon
	case ProviderBinance:
		source = NewBinanceSource(opts...)
	}

	if config.CacheDir == "" {
		return source, closer, nil
	}

	cacheOpts := opts
	if config.CacheMaxAge > 0 {
		cacheOpts = append(append([]Option(nil), opts...), WithMaxAge(config.CacheMaxAge))
	}

	cached, err := NewCachedSource(source, config.CacheDir, cacheOpts...)
	if err != nil {
		_ = closer()

		return nil, noop, err
	}

	return cached, closer, nil
}
