package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type SignalTestSuite struct {
	suite.Suite
}

func TestSignalSuite(t *testing.T) {
	suite.Run(t, new(SignalTestSuite))
}

func (suite *SignalTestSuite) TestSignalValues() {
	suite.Equal(Signal(1), SignalLong)
	suite.Equal(Signal(0), SignalFlat)
	suite.Equal(Signal(-1), SignalShort)
	suite.Equal(-1.0, SignalShort.Float64())
}

func (suite *SignalTestSuite) TestValid() {
	suite.True(SignalLong.Valid())
	suite.True(SignalFlat.Valid())
	suite.True(SignalShort.Valid())
	suite.False(Signal(2).Valid())
}

func (suite *SignalTestSuite) TestString() {
	suite.Equal("long", SignalLong.String())
	suite.Equal("flat", SignalFlat.String())
	suite.Equal("short", SignalShort.String())
	suite.Equal("signal(3)", Signal(3).String())
}

func (suite *SignalTestSuite) TestSignalFromSign() {
	suite.Equal(SignalLong, SignalFromSign(2))
	suite.Equal(SignalShort, SignalFromSign(-3))
	suite.Equal(SignalFlat, SignalFromSign(0))
}

func (suite *SignalTestSuite) TestParseSignal() {
	for _, s := range []Signal{SignalLong, SignalFlat, SignalShort} {
		parsed, err := ParseSignal(s.String())
		suite.NoError(err)
		suite.Equal(s, parsed)
	}

	parsed, err := ParseSignal("-1")
	suite.NoError(err)
	suite.Equal(SignalShort, parsed)

	_, err = ParseSignal("buy")
	suite.Error(err)
}
