package bridge

import (
	"context"
	"time"

	"github.com/anicoll/pugoing-integration/internal/pkg/codec"
	"github.com/anicoll/pugoing-integration/internal/pkg/debounce"
	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// Breaker is the circuit-breaker switch view. Unlike lamps, a breaker's
// dinfo is the exact marker rather than a prefixed phrase.
type Breaker struct {
	client   Controller
	meta     *publisher.DeviceMeta
	sn       string
	gate     *debounce.Gate[bool]
	readings codec.BreakerReadings
	hasRead  bool
	online   bool
}

func newBreaker(client Controller, clk clock.Clock, window time.Duration, dev pugoing.Device) *Breaker {
	return &Breaker{
		client: client,
		meta:   deviceMeta(componentSwitch, dev),
		sn:     dev.SN,
		gate:   debounce.NewGate[bool](clk, window),
	}
}

func (b *Breaker) Meta() *publisher.DeviceMeta { return b.meta }

func (b *Breaker) Observe(dev pugoing.Device) {
	b.online = dev.Online
	b.gate.ObserveRemote(codec.BreakerOn(dev.Dinfo))
	b.readings, b.hasRead = codec.DecodeBreakerReadings(dev.Dcap)
}

func (b *Breaker) State() publisher.State {
	attrs := map[string]string{
		"availability": availability(b.online),
	}
	if b.hasRead {
		attrs["voltage"] = b.readings.Voltage
		attrs["current"] = b.readings.Current
		attrs["temperature"] = b.readings.Temperature
	}
	return publisher.State{
		DeviceID:   b.meta.ID,
		Component:  b.meta.Component,
		Value:      onOff(b.gate.Value()),
		Attributes: attrs,
	}
}

func (b *Breaker) Control(ctx context.Context, on bool) error {
	if err := b.client.SetBreakerState(ctx, b.meta.ID, b.sn, on); err != nil {
		return err
	}
	b.gate.NoteManual(on)
	return nil
}

func (b *Breaker) Mark(on bool) { b.gate.NoteManual(on) }
