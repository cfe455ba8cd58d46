package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeNoData, "no data available for %s", "BTC-USD")
	suite.Equal(ErrCodeNoData, err.Code)
	suite.Equal("no data available for BTC-USD", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeDataUnavailable, "failed to fetch bars", cause)
	suite.Equal(ErrCodeDataUnavailable, err.Code)
	suite.Equal("failed to fetch bars", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("timeout")
	err := Wrapf(ErrCodeDataUnavailable, cause, "failed to fetch %s", "AAPL")
	suite.Equal("failed to fetch AAPL", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, "data unavailable", cause)
	suite.Equal("[201] data unavailable: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeQueryFailed, "query failed", cause)
	suite.Equal(cause, err.Unwrap())
	suite.Nil(New(ErrCodeInvalidParameter, "x").Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeEmptySeries, GetCode(New(ErrCodeEmptySeries, "need 2 bars")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeInvalidParameter, "window must be >= 1")
	err := Wrap(ErrCodeInvalidConfiguration, "invalid config", cause)
	suite.Equal(ErrCodeInvalidConfiguration, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCodeWalksChain() {
	cause := New(ErrCodeInvalidParameter, "window must be >= 1")
	err := Wrap(ErrCodeInvalidConfiguration, "invalid config", cause)
	suite.True(HasCode(err, ErrCodeInvalidConfiguration))
	suite.True(HasCode(err, ErrCodeInvalidParameter))
	suite.False(HasCode(err, ErrCodeNoData))

	wrapped := fmt.Errorf("run failed: %w", err)
	suite.True(HasCode(wrapped, ErrCodeInvalidParameter))
	suite.False(HasCode(nil, ErrCodeInvalidParameter))
	suite.False(HasCode(errors.New("plain"), ErrCodeUnknown))
}

func (suite *ErrorTestSuite) TestIsAndAs() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, "data unavailable", cause)
	suite.True(Is(err, cause))

	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeDataUnavailable, argoErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(204), ErrCodeNoData)
	suite.Equal(ErrorCode(400), ErrCodeNoStrategySelected)
	suite.Equal(ErrorCode(600), ErrCodeEmptySeries)
	suite.Equal(ErrorCode(800), ErrCodeCallbackFailed)
}

func (suite *ErrorTestSuite) TestErrorCodeString() {
	suite.Equal("NoStrategySelected", ErrCodeNoStrategySelected.String())
	suite.Equal("EmptySeries", ErrCodeEmptySeries.String())
	suite.Equal("Unknown", ErrorCode(9999).String())
}
