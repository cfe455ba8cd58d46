package types

import (
	"fmt"
	"strings"
)

// Signal is the traded direction for one bar.
type Signal int8

const (
	// SignalShort tells the strategy to hold a short position
	SignalShort Signal = -1
	// SignalFlat tells the strategy to hold no position
	SignalFlat Signal = 0
	// SignalLong tells the strategy to hold a long position
	SignalLong Signal = 1
)

// Float64 returns the numeric value of the signal (+1, 0, -1).
func (s Signal) Float64() float64 {
	return float64(s)
}

// Valid reports whether s is one of Long, Flat or Short.
func (s Signal) Valid() bool {
	return s == SignalLong || s == SignalFlat || s == SignalShort
}

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "long"
	case SignalShort:
		return "short"
	case SignalFlat:
		return "flat"
	default:
		return fmt.Sprintf("signal(%d)", int8(s))
	}
}

// SignalFromSign maps the sign of v to a Signal.
func SignalFromSign(v int) Signal {
	switch {
	case v > 0:
		return SignalLong
	case v < 0:
		return SignalShort
	default:
		return SignalFlat
	}
}

// ParseSignal accepts the names produced by String as well as "1", "0" and "-1".
func ParseSignal(s string) (Signal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "1", "+1":
		return SignalLong, nil
	case "short", "-1":
		return SignalShort, nil
	case "flat", "0":
		return SignalFlat, nil
	default:
		return SignalFlat, fmt.Errorf("unknown signal %q", s)
	}
}
