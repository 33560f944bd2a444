package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anicoll/pugoing-integration/pkg/clock"
)

func TestGateProtectsManualWrite(t *testing.T) {
	clk := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	gate := NewGate[bool](clk, 5*time.Second)

	gate.ObserveRemote(false)
	assert.False(t, gate.Value())

	gate.NoteManual(true)
	assert.True(t, gate.Value())

	// stale poll 3s later still reports off: manual write wins
	clk.Advance(3 * time.Second)
	gate.ObserveRemote(false)
	assert.True(t, gate.Value())

	// window lapsed at 6s, the remote value surfaces
	clk.Advance(3 * time.Second)
	assert.False(t, gate.Value())
}

func TestGateRemoteObservedDuringWindowIsNotLost(t *testing.T) {
	clk := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	gate := NewGate[int](clk, 5*time.Second)

	gate.NoteManual(50)
	clk.Advance(2 * time.Second)
	gate.ObserveRemote(80)
	assert.Equal(t, 50, gate.Value())

	clk.Advance(4 * time.Second)
	assert.Equal(t, 80, gate.Value())
}

func TestGateWithoutObservations(t *testing.T) {
	clk := clock.NewMock(time.Now())
	gate := NewGate[bool](clk, 5*time.Second)
	assert.False(t, gate.Value())
}

func TestConfirmAdoptsAfterStability(t *testing.T) {
	clk := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	confirm := NewConfirm(clk, 10*time.Second, "cool")

	confirm.Observe("heat")
	assert.Equal(t, "cool", confirm.Value())

	clk.Advance(5 * time.Second)
	confirm.Observe("heat")
	assert.Equal(t, "cool", confirm.Value())

	clk.Advance(5 * time.Second)
	confirm.Observe("heat")
	assert.Equal(t, "heat", confirm.Value())
}

func TestConfirmFlappingValueNeverAdopted(t *testing.T) {
	clk := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	confirm := NewConfirm(clk, 10*time.Second, 25)

	for i := 0; i < 10; i++ {
		clk.Advance(8 * time.Second)
		confirm.Observe(26)
		clk.Advance(8 * time.Second)
		confirm.Observe(27)
	}
	assert.Equal(t, 25, confirm.Value())
}

func TestConfirmSetAdoptsImmediately(t *testing.T) {
	clk := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	confirm := NewConfirm(clk, 10*time.Second, 25)

	confirm.Set(22)
	assert.Equal(t, 22, confirm.Value())

	// a single stale poll does not revert the manual value
	confirm.Observe(25)
	assert.Equal(t, 22, confirm.Value())
}

func TestSuppressor(t *testing.T) {
	clk := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sup := NewSuppressor(clk, 10*time.Second)

	assert.True(t, sup.Allow())
	assert.False(t, sup.Allow())

	clk.Advance(9 * time.Second)
	assert.False(t, sup.Allow())

	clk.Advance(1 * time.Second)
	assert.True(t, sup.Allow())
	assert.False(t, sup.Allow())
}
