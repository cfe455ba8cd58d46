package events

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	name  string
	calls *[]string
	err   error
	panic bool
}

func (r *recorder) Update(event Event) error {
	*r.calls = append(*r.calls, r.name+":"+string(event.Type))
	if r.panic {
		panic("boom")
	}

	return r.err
}

type valueObserver struct {
	tags []string
}

func (v valueObserver) Update(Event) error {
	return nil
}

type namedObserver struct {
	name string
}

func (n namedObserver) Update(Event) error {
	return nil
}

type BusTestSuite struct {
	suite.Suite
	bus   *Bus
	calls []string
	logs  *observer.ObservedLogs
	event Event
}

func TestBusSuite(t *testing.T) {
	suite.Run(t, new(BusTestSuite))
}

func (suite *BusTestSuite) SetupTest() {
	core, logs := observer.New(zapcore.DebugLevel)
	suite.logs = logs
	suite.bus = NewBus(&logger.Logger{Logger: zap.New(core)})
	suite.calls = nil
	suite.event = NewStartedEvent("run-1", time.Unix(0, 0), RunInfo{
		Symbol:   "BTC-USD",
		Period:   types.Period6Months,
		Interval: types.Interval4Hours,
	})
}

func (suite *BusTestSuite) newRecorder(name string) *recorder {
	return &recorder{name: name, calls: &suite.calls}
}

func (suite *BusTestSuite) TestPublishInSubscriptionOrder() {
	suite.Require().NoError(suite.bus.Subscribe(suite.newRecorder("a")))
	suite.Require().NoError(suite.bus.Subscribe(suite.newRecorder("b")))
	suite.Require().NoError(suite.bus.Subscribe(suite.newRecorder("c")))

	suite.bus.Publish(suite.event)

	suite.Equal([]string{"a:started", "b:started", "c:started"}, suite.calls)
}

func (suite *BusTestSuite) TestSubscribeTwiceIsNoop() {
	a := suite.newRecorder("a")
	suite.Require().NoError(suite.bus.Subscribe(a))
	suite.Require().NoError(suite.bus.Subscribe(a))
	suite.Equal(1, suite.bus.Len())

	suite.bus.Publish(suite.event)
	suite.Equal([]string{"a:started"}, suite.calls)
}

func (suite *BusTestSuite) TestUnsubscribe() {
	a := suite.newRecorder("a")
	b := suite.newRecorder("b")
	suite.Require().NoError(suite.bus.Subscribe(a))
	suite.Require().NoError(suite.bus.Subscribe(b))

	suite.bus.Unsubscribe(a)
	suite.bus.Unsubscribe(a)
	suite.bus.Unsubscribe(suite.newRecorder("never-subscribed"))
	suite.Equal(1, suite.bus.Len())

	suite.bus.Publish(suite.event)
	suite.Equal([]string{"b:started"}, suite.calls)
}

func (suite *BusTestSuite) TestFailingObserverIsIsolated() {
	failing := suite.newRecorder("failing")
	failing.err = stderrors.New("disk full")

	suite.Require().NoError(suite.bus.Subscribe(failing))
	suite.Require().NoError(suite.bus.Subscribe(suite.newRecorder("next")))

	suite.NotPanics(func() { suite.bus.Publish(suite.event) })
	suite.Equal([]string{"failing:started", "next:started"}, suite.calls)

	warnings := suite.logs.FilterMessage("Event observer failed").All()
	suite.Require().Len(warnings, 1)
	suite.Equal(zapcore.WarnLevel, warnings[0].Level)
	suite.Equal("run-1", warnings[0].ContextMap()["run_id"])
}

func (suite *BusTestSuite) TestPanickingObserverIsIsolated() {
	panicking := suite.newRecorder("panicking")
	panicking.panic = true

	suite.Require().NoError(suite.bus.Subscribe(panicking))
	suite.Require().NoError(suite.bus.Subscribe(suite.newRecorder("next")))

	suite.NotPanics(func() { suite.bus.Publish(suite.event) })
	suite.Equal([]string{"panicking:started", "next:started"}, suite.calls)
	suite.Equal(1, suite.logs.FilterMessage("Event observer failed").Len())
}

func (suite *BusTestSuite) TestSubscribeRejectsInvalidObservers() {
	err := suite.bus.Subscribe(nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	err = suite.bus.Subscribe(valueObserver{tags: []string{"x"}})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	suite.Equal(0, suite.bus.Len())

	suite.NotPanics(func() { suite.bus.Unsubscribe(valueObserver{}) })
}

func (suite *BusTestSuite) TestValueObserversAreRejected() {
	err := suite.bus.Subscribe(namedObserver{name: "audit"})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	suite.Equal(0, suite.bus.Len())

	suite.NotPanics(func() { suite.bus.Unsubscribe(namedObserver{name: "audit"}) })
}

func (suite *BusTestSuite) TestEqualPointerObserversStayDistinct() {
	first := &namedObserver{name: "audit"}
	second := &namedObserver{name: "audit"}

	suite.Require().NoError(suite.bus.Subscribe(first))
	suite.Require().NoError(suite.bus.Subscribe(second))
	suite.Equal(2, suite.bus.Len())

	suite.bus.Unsubscribe(first)
	suite.Equal(1, suite.bus.Len())

	suite.bus.Unsubscribe(first)
	suite.Equal(1, suite.bus.Len())
}

func (suite *BusTestSuite) TestPublishWithoutObservers() {
	suite.NotPanics(func() { suite.bus.Publish(suite.event) })
}

func (suite *BusTestSuite) TestNilLoggerDefaultsToNop() {
	bus := NewBus(nil)
	failing := suite.newRecorder("failing")
	failing.err = stderrors.New("x")
	suite.Require().NoError(bus.Subscribe(failing))

	suite.NotPanics(func() { bus.Publish(suite.event) })
}
