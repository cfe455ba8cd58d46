package strategy

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func mustSeries(closes ...float64) types.BarSeries {
	series, err := mocks.SeriesFromCloses("TEST", testStart, 4*time.Hour, closes)
	if err != nil {
		panic(err)
	}

	return series
}

func generatedSeries(seed int64, count int) types.BarSeries {
	config := mocks.DefaultConfig()
	config.Count = count

	series, err := mocks.NewDataGenerator(seed).GenerateSeries(config)
	if err != nil {
		panic(err)
	}

	return series
}
