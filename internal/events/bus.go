package events

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// Bus is a synchronous one-to-many event dispatcher.
// Observers are notified in subscription order. Membership is a set keyed by pointer identity,
// so only pointer observers are accepted and two distinct observers with equal fields stay distinct.
type Bus struct {
	mu        sync.RWMutex
	observers []Observer
	log       *logger.Logger
}

// NewBus creates an empty bus. A nil logger discards failure logs.
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Bus{
		observers: nil,
		log:       log,
	}
}

// Subscribe adds the observer. Subscribing an existing member is a no-op.
func (b *Bus) Subscribe(observer Observer) error {
	if observer == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "observer must not be nil")
	}

	if !isPointer(observer) {
		return errors.Newf(errors.ErrCodeInvalidParameter, "observer of type %T must be a pointer", observer)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.indexOf(observer) >= 0 {
		return nil
	}

	b.observers = append(b.observers, observer)

	return nil
}

// Unsubscribe removes the observer. Removing a non-member is a no-op.
func (b *Bus) Unsubscribe(observer Observer) {
	if observer == nil || !isPointer(observer) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(observer)
	if i < 0 {
		return
	}

	observers := make([]Observer, 0, len(b.observers)-1)
	observers = append(observers, b.observers[:i]...)
	b.observers = append(observers, b.observers[i+1:]...)
}

func isPointer(observer Observer) bool {
	return reflect.TypeOf(observer).Kind() == reflect.Pointer
}

// Len returns the number of subscribed observers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.observers)
}

// Publish delivers the event to every observer in subscription order.
// Observer errors and panics are logged and swallowed.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	observers := b.observers
	b.mu.RUnlock()

	for _, observer := range observers {
		if err := b.notify(observer, event); err != nil {
			b.log.Warn("Event observer failed",
				zap.String("event", string(event.Type)),
				zap.String("run_id", event.RunID),
				zap.String("observer", fmt.Sprintf("%T", observer)),
				zap.Error(err),
			)
		}
	}
}

func (b *Bus) notify(observer Observer, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeCallbackFailed, "observer panicked: %v", r)
		}
	}()

	if updateErr := observer.Update(event); updateErr != nil {
		return errors.Wrap(errors.ErrCodeCallbackFailed, "observer returned an error", updateErr)
	}

	return nil
}

// indexOf must be called with the lock held.
func (b *Bus) indexOf(observer Observer) int {
	for i, o := range b.observers {
		if o == observer {
			return i
		}
	}

	return -1
}
