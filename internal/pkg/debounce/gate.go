// Package debounce holds the reconciliation policies that decide whether a
// freshly polled remote value or a recently written local value is shown.
// Two deliberately distinct policies exist: Gate protects a recent manual
// write for a fixed window, Confirm adopts a polled value only after it has
// been stable for a window. They grew separately per entity kind and are
// kept separate on purpose.
package debounce

import (
	"time"

	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// Gate is the protect-recent-manual-write policy. After NoteManual, Value
// returns the locally written value until the window lapses; remote
// observations are recorded throughout and surface once it does.
type Gate[T any] struct {
	clk    clock.Clock
	window time.Duration

	remote     T
	hasRemote  bool
	local      T
	lastManual time.Time
	hasManual  bool
}

func NewGate[T any](clk clock.Clock, window time.Duration) *Gate[T] {
	return &Gate[T]{clk: clk, window: window}
}

// ObserveRemote records the latest polled value. Never discarded, merely
// held back while a manual write is being protected.
func (g *Gate[T]) ObserveRemote(v T) {
	g.remote = v
	g.hasRemote = true
}

// NoteManual records a successful local control and starts the window.
func (g *Gate[T]) NoteManual(v T) {
	g.local = v
	g.lastManual = g.clk.Now()
	g.hasManual = true
}

// Value resolves what is displayed right now.
func (g *Gate[T]) Value() T {
	if g.hasManual && g.clk.Since(g.lastManual) < g.window {
		return g.local
	}
	if g.hasRemote {
		return g.remote
	}
	return g.local
}
