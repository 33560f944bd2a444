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

const (
	componentLight        = "light"
	componentSwitch       = "switch"
	componentCover        = "cover"
	componentClimate      = "climate"
	componentSensor       = "sensor"
	componentBinarySensor = "binary_sensor"
	componentButton       = "button"

	stateOn  = "ON"
	stateOff = "OFF"
)

func onOff(on bool) string {
	if on {
		return stateOn
	}
	return stateOff
}

func deviceMeta(component string, dev pugoing.Device) *publisher.DeviceMeta {
	return &publisher.DeviceMeta{
		ID:        dev.Yid,
		Name:      dev.Name(),
		Model:     dev.Dpanel,
		Area:      dev.Dloca,
		SN:        dev.SN,
		Component: component,
	}
}

func availability(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

// Lamp is the plain on/off light view. Polled dinfo flows through a
// manual-write gate so a fresh local toggle is not reverted by a stale
// poll.
type Lamp struct {
	client Controller
	meta   *publisher.DeviceMeta
	sn     string
	gate   *debounce.Gate[bool]
	online bool
}

func newLamp(client Controller, clk clock.Clock, window time.Duration, dev pugoing.Device) *Lamp {
	return &Lamp{
		client: client,
		meta:   deviceMeta(componentLight, dev),
		sn:     dev.SN,
		gate:   debounce.NewGate[bool](clk, window),
	}
}

func (l *Lamp) Meta() *publisher.DeviceMeta { return l.meta }

func (l *Lamp) Observe(dev pugoing.Device) {
	l.online = dev.Online
	l.gate.ObserveRemote(codec.LampOn(dev.Dinfo))
}

func (l *Lamp) State() publisher.State {
	return publisher.State{
		DeviceID:  l.meta.ID,
		Component: l.meta.Component,
		Value:     onOff(l.gate.Value()),
		Attributes: map[string]string{
			"availability": availability(l.online),
		},
	}
}

func (l *Lamp) Control(ctx context.Context, on bool) error {
	if err := l.client.SetLampState(ctx, l.meta.ID, l.sn, on); err != nil {
		return err
	}
	l.gate.NoteManual(on)
	return nil
}

func (l *Lamp) Mark(on bool) { l.gate.NoteManual(on) }
