package indicator

import (
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// EMATestSuite is a test suite for the EMA calculation
type EMATestSuite struct {
	suite.Suite
}

func TestEMACalcSuite(t *testing.T) {
	suite.Run(t, new(EMATestSuite))
}

func (suite *EMATestSuite) TestSeededWithSimpleAverage() {
	// closes 1..10, window 3: seed = 2, alpha = 0.5, so EMA trails the close by exactly 1
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	values, err := ExponentialMovingAverage(seriesFromCloses(closes), 3)
	suite.Require().NoError(err)
	suite.Len(values, len(closes))

	suite.False(values.Defined(0))
	suite.False(values.Defined(1))

	for i := 2; i < len(closes); i++ {
		suite.InDelta(closes[i]-1, values[i].Unwrap(), 1e-12, "index %d", i)
	}
}

func (suite *EMATestSuite) TestWindowOneEqualsClose() {
	closes := []float64{100, 110, 121, 108.9}
	values, err := ExponentialMovingAverage(seriesFromCloses(closes), 1)
	suite.Require().NoError(err)

	for i, c := range closes {
		suite.InDelta(c, values[i].Unwrap(), 1e-12)
	}
}

func (suite *EMATestSuite) TestWindowEqualToLength() {
	closes := []float64{2, 4, 6}
	values, err := ExponentialMovingAverage(seriesFromCloses(closes), 3)
	suite.Require().NoError(err)
	suite.Equal(2, values.FirstDefined())
	suite.InDelta(4.0, values[2].Unwrap(), 1e-12)
}

func (suite *EMATestSuite) TestLengthAndUndefinedPrefix() {
	closes := randomWalk(7, 200)
	for _, window := range []int{1, 2, 5, 20, 50, 200} {
		values, err := ExponentialMovingAverage(seriesFromCloses(closes), window)
		suite.Require().NoError(err)
		suite.Len(values, len(closes))
		suite.Equal(window-1, values.FirstDefined(), "window %d", window)

		for i := window - 1; i < len(values); i++ {
			v := values[i].Unwrap()
			suite.False(math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
}

func (suite *EMATestSuite) TestInvalidWindow() {
	series := seriesFromCloses([]float64{1, 2, 3})

	_, err := ExponentialMovingAverage(series, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = ExponentialMovingAverage(series, 4)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = ExponentialMovingAverage(seriesFromCloses(nil), 1)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *EMATestSuite) TestDoesNotMutateInput() {
	series := seriesFromCloses([]float64{3, 1, 2})
	before := series.Closes()

	_, err := ExponentialMovingAverage(series, 2)
	suite.Require().NoError(err)
	suite.Equal(before, series.Closes())
}

func (suite *EMATestSuite) TestMatchesTalib() {
	closes := randomWalk(42, 500)

	for _, window := range []int{5, 14, 20, 50} {
		values, err := ExponentialMovingAverage(seriesFromCloses(closes), window)
		suite.Require().NoError(err)

		reference := talib.Ema(closes, window)
		for i := window - 1; i < len(closes); i++ {
			suite.InDelta(reference[i], values[i].Unwrap(), 1e-8, "window %d index %d", window, i)
		}
	}
}
