package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type EMAUnitTestSuite struct {
	suite.Suite
}

func TestEMAUnitSuite(t *testing.T) {
	suite.Run(t, new(EMAUnitTestSuite))
}

func (suite *EMAUnitTestSuite) TestNewEMA() {
	ema := NewEMA()
	suite.NotNil(ema)

	// Cast to *EMA to check default values
	emaImpl := ema.(*EMA)
	suite.Equal(20, emaImpl.Period())
}

func (suite *EMAUnitTestSuite) TestName() {
	ema := NewEMA()
	suite.Equal(types.IndicatorTypeEMA, ema.Name())
}

func (suite *EMAUnitTestSuite) TestConfigValid() {
	ema := NewEMA()
	emaImpl := ema.(*EMA)

	err := ema.Config(10)
	suite.NoError(err)
	suite.Equal(10, emaImpl.Period())
}

func (suite *EMAUnitTestSuite) TestConfigInvalidParamCount() {
	ema := NewEMA()

	// No params
	err := ema.Config()
	suite.Error(err)
	suite.Contains(err.Error(), "expects 1 parameter")

	// Too many params
	err = ema.Config(10, 20)
	suite.Error(err)
}

func (suite *EMAUnitTestSuite) TestConfigInvalidPeriodType() {
	ema := NewEMA()
	err := ema.Config("invalid")
	suite.Error(err)
	suite.Contains(err.Error(), "invalid type for period")
}

func (suite *EMAUnitTestSuite) TestConfigInvalidPeriodValue() {
	ema := NewEMA()

	err := ema.Config(0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	suite.Contains(err.Error(), "must be a positive integer")

	err = ema.Config(-5)
	suite.Error(err)
}

func (suite *EMAUnitTestSuite) TestComputeUsesConfiguredPeriod() {
	ema := NewEMA()
	suite.Require().NoError(ema.Config(3))

	values, err := ema.Compute(seriesFromCloses([]float64{1, 2, 3, 4}))
	suite.Require().NoError(err)
	suite.Equal(2, values.FirstDefined())
}
