package debounce

import (
	"time"

	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// Confirm is the adopt-after-stable policy used per climate attribute: a
// polled value replaces the adopted one only once it has been observed
// unchanged for at least the window. A manual write adopts immediately.
type Confirm[T comparable] struct {
	clk    clock.Clock
	window time.Duration

	adopted   T
	candidate T
	since     time.Time
}

func NewConfirm[T comparable](clk clock.Clock, window time.Duration, initial T) *Confirm[T] {
	return &Confirm[T]{
		clk:       clk,
		window:    window,
		adopted:   initial,
		candidate: initial,
		since:     clk.Now(),
	}
}

// Observe feeds one polled value. A changed value resets the stability
// timer; a value stable for >= window is adopted.
func (c *Confirm[T]) Observe(v T) {
	if c.candidate != v {
		c.candidate = v
		c.since = c.clk.Now()
		return
	}
	if c.clk.Since(c.since) >= c.window {
		c.adopted = v
	}
}

// Set adopts a value directly, for local manual writes.
func (c *Confirm[T]) Set(v T) {
	c.adopted = v
	c.candidate = v
	c.since = c.clk.Now()
}

// Value returns the currently adopted value.
func (c *Confirm[T]) Value() T { return c.adopted }
