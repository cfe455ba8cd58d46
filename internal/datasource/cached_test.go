package datasource

import (
	"context"
	stderrors "errors"
	"os"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CachedSourceTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	upstream *mocks.MockBarSource
	cache    *CachedSource
	now      time.Time
	series   types.BarSeries
}

func TestCachedSourceSuite(t *testing.T) {
	suite.Run(t, new(CachedSourceTestSuite))
}

func (suite *CachedSourceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.upstream = mocks.NewMockBarSource(suite.ctrl)
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	config := mocks.DefaultConfig()
	config.Symbol = "BTC-USD"
	config.Count = 30

	series, err := mocks.NewDataGenerator(1).GenerateSeries(config)
	suite.Require().NoError(err)
	suite.series = series

	cache, err := NewCachedSource(suite.upstream, suite.T().TempDir(), WithClock(func() time.Time { return suite.now }))
	suite.Require().NoError(err)
	suite.cache = cache
}

func (suite *CachedSourceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *CachedSourceTestSuite) fetch() (types.BarSeries, error) {
	return suite.cache.Fetch(context.Background(), "BTC-USD", types.Period6Months, types.Interval4Hours)
}

func (suite *CachedSourceTestSuite) expectUpstream(times int) {
	suite.upstream.EXPECT().
		Fetch(gomock.Any(), "BTC-USD", types.Period6Months, types.Interval4Hours).
		Return(suite.series, nil).
		Times(times)
}

func (suite *CachedSourceTestSuite) TestFreshSnapshotIsServed() {
	suite.expectUpstream(1)

	first, err := suite.fetch()
	suite.Require().NoError(err)
	suite.Equal(suite.series.Len(), first.Len())

	_, err = os.Stat(suite.cache.SnapshotPath("BTC-USD", types.Period6Months, types.Interval4Hours))
	suite.Require().NoError(err)

	suite.now = suite.now.Add(9 * time.Minute)

	second, err := suite.fetch()
	suite.Require().NoError(err)
	suite.Equal("BTC-USD", second.Symbol())
	suite.Equal(suite.series.Closes(), second.Closes())

	for i := 0; i < second.Len(); i++ {
		suite.True(suite.series.At(i).Time.Equal(second.At(i).Time))
	}
}

func (suite *CachedSourceTestSuite) TestExpiredSnapshotIsRefreshed() {
	suite.expectUpstream(2)

	_, err := suite.fetch()
	suite.Require().NoError(err)

	suite.now = suite.now.Add(DefaultCacheMaxAge)

	_, err = suite.fetch()
	suite.Require().NoError(err)
}

func (suite *CachedSourceTestSuite) TestCustomMaxAge() {
	cache, err := NewCachedSource(suite.upstream, suite.T().TempDir(),
		WithClock(func() time.Time { return suite.now }),
		WithMaxAge(time.Hour),
	)
	suite.Require().NoError(err)

	suite.expectUpstream(1)

	for i := 0; i < 3; i++ {
		_, err = cache.Fetch(context.Background(), "BTC-USD", types.Period6Months, types.Interval4Hours)
		suite.Require().NoError(err)

		suite.now = suite.now.Add(20 * time.Minute)
	}
}

func (suite *CachedSourceTestSuite) TestUpstreamErrorIsNotCached() {
	cause := errors.New(errors.ErrCodeDataUnavailable, "provider down")

	gomock.InOrder(
		suite.upstream.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(types.BarSeries{}, cause),
		suite.upstream.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(suite.series, nil),
	)

	_, err := suite.fetch()
	suite.True(errors.HasCode(err, errors.ErrCodeDataUnavailable))
	suite.True(stderrors.Is(err, cause))

	series, err := suite.fetch()
	suite.Require().NoError(err)
	suite.Equal(suite.series.Len(), series.Len())
}

func (suite *CachedSourceTestSuite) TestEmptyResultIsNotCached() {
	empty, err := types.NewBarSeries("BTC-USD", nil)
	suite.Require().NoError(err)

	suite.upstream.EXPECT().
		Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(empty, nil).
		Times(2)

	for i := 0; i < 2; i++ {
		series, err := suite.fetch()
		suite.Require().NoError(err)
		suite.True(series.IsEmpty())
	}
}

func (suite *CachedSourceTestSuite) TestInvalidate() {
	suite.expectUpstream(2)

	_, err := suite.fetch()
	suite.Require().NoError(err)

	suite.Require().NoError(suite.cache.Invalidate("BTC-USD", types.Period6Months, types.Interval4Hours))
	suite.NoError(suite.cache.Invalidate("BTC-USD", types.Period6Months, types.Interval4Hours))

	_, err = suite.fetch()
	suite.Require().NoError(err)
}

func (suite *CachedSourceTestSuite) TestNilUpstream() {
	_, err := NewCachedSource(nil, suite.T().TempDir())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
