package congestion

import "github.com/quic-go/qcc/internal/monotime"

// Clock abstracts reading the current time for code that drives the core
// from a live clock, such as cmd/ccdemo. Algorithms and the controller
// never call it: every timestamp they use arrives as a method parameter.
type Clock interface {
	Now() monotime.Time
}

// DefaultClock reads the real monotonic clock.
type DefaultClock struct{}

// Now implements Clock.
func (DefaultClock) Now() monotime.Time { return monotime.Now() }
