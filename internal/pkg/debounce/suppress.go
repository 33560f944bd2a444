package debounce

import (
	"time"

	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// Suppressor rate-limits scene triggers: once a trigger is allowed, further
// triggers are denied until the interval has passed. Used both for manual
// presses and for fired-scene events derived from sinfo changes.
type Suppressor struct {
	clk      clock.Clock
	interval time.Duration

	last    time.Time
	hasLast bool
}

func NewSuppressor(clk clock.Clock, interval time.Duration) *Suppressor {
	return &Suppressor{clk: clk, interval: interval}
}

// Allow reports whether a trigger may fire now, and if so consumes it.
func (s *Suppressor) Allow() bool {
	if s.hasLast && s.clk.Since(s.last) < s.interval {
		return false
	}
	s.last = s.clk.Now()
	s.hasLast = true
	return true
}
