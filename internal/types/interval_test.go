package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type IntervalTestSuite struct {
	suite.Suite
}

func TestIntervalSuite(t *testing.T) {
	suite.Run(t, new(IntervalTestSuite))
}

func (suite *IntervalTestSuite) TestPeriodValid() {
	for _, p := range AllPeriods {
		suite.True(p.Valid(), p)
	}

	suite.False(Period("1wk").Valid())
	suite.False(Period("").Valid())
}

func (suite *IntervalTestSuite) TestPeriodSince() {
	now := time.Date(2024, 7, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period Period
		want   time.Time
	}{
		{Period1Month, now.AddDate(0, -1, 0)},
		{Period3Months, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{Period6Months, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)},
		{Period1Year, time.Date(2023, 7, 31, 12, 0, 0, 0, time.UTC)},
		{Period2Years, time.Date(2022, 7, 31, 12, 0, 0, 0, time.UTC)},
		{Period5Years, time.Date(2019, 7, 31, 12, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		got, err := tc.period.Since(now)
		suite.NoError(err)
		suite.Equal(tc.want, got, tc.period)
	}

	_, err := Period("10y").Since(now)
	suite.Error(err)
}

func (suite *IntervalTestSuite) TestIntervalDuration() {
	d, err := Interval4Hours.Duration()
	suite.NoError(err)
	suite.Equal(4*time.Hour, d)

	d, err = Interval1Week.Duration()
	suite.NoError(err)
	suite.Equal(168*time.Hour, d)

	_, err = Interval("1m").Duration()
	suite.Error(err)
}

func (suite *IntervalTestSuite) TestIntervalValidAndDaily() {
	for _, i := range AllIntervals {
		suite.True(i.Valid())
	}

	suite.False(Interval("1w").Valid())
	suite.True(Interval1Day.IsDaily())
	suite.False(Interval1Hour.IsDaily())
	suite.False(Interval1Week.IsDaily())
}
