package zone

import (
	"time"

	"github.com/rs/zerolog"
)

// RefreshInterval is how often displayed times are recomputed.
const RefreshInterval = 60 * time.Second

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Used by tests and snapshots.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// Engine binds the zone helpers to a clock and a logger. Failures are
// recoverable: they are logged and a neutral value is returned so a single
// bad identifier never blanks the whole display.
type Engine struct {
	Clock Clock
	Log   zerolog.Logger

	// Layout overrides the clock layout used by LocalTime.
	Layout string
}

func NewEngine(clock Clock, log zerolog.Logger) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{Clock: clock, Log: log}
}

func (e *Engine) Now() time.Time { return e.Clock.Now() }

// Offset is the logged, zero-on-error form of the package-level Offset.
func (e *Engine) Offset(target, reference string) float64 {
	if reference == "" {
		return 0
	}
	h, err := Offset(target, reference, e.Now())
	if err != nil {
		e.Log.Warn().Err(err).Str("target", target).Str("reference", reference).Msg("offset unavailable")
		return 0
	}
	return h
}

// LocalTime returns the clock text for tz, or "--:--" when tz does not resolve.
func (e *Engine) LocalTime(tz string) string {
	layout := e.Layout
	if layout == "" {
		layout = ClockLayout
	}
	s, err := FormatLocal(tz, e.Now(), layout)
	if err != nil {
		e.Log.Warn().Err(err).Str("timezone", tz).Msg("local time unavailable")
		return "--:--"
	}
	return s
}
