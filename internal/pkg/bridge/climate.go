package bridge

import (
	"context"
	"strconv"
	"time"

	"github.com/anicoll/pugoing-integration/internal/pkg/codec"
	"github.com/anicoll/pugoing-integration/internal/pkg/debounce"
	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// Climate is the VRV panel view. VRV panels report attribute changes with
// noticeable lag, so each attribute goes through its own adopt-after-stable
// confirm rather than the manual-window gate the simpler entities use.
type Climate struct {
	client Controller
	meta   *publisher.DeviceMeta
	sn     string

	power *debounce.Confirm[bool]
	mode  *debounce.Confirm[codec.HVACMode]
	fan   *debounce.Confirm[codec.FanSpeed]
	temp  *debounce.Confirm[int]

	roomTemp *int
	online   bool
}

func newClimate(client Controller, clk clock.Clock, window time.Duration, dev pugoing.Device) *Climate {
	initial := codec.DecodeClimate(dev.Dcap)
	return &Climate{
		client: client,
		meta:   deviceMeta(componentClimate, dev),
		sn:     dev.SN,
		power:  debounce.NewConfirm(clk, window, initial.On),
		mode:   debounce.NewConfirm(clk, window, initial.Mode),
		fan:    debounce.NewConfirm(clk, window, initial.Fan),
		temp:   debounce.NewConfirm(clk, window, initial.TargetTemp),
	}
}

func (c *Climate) Meta() *publisher.DeviceMeta { return c.meta }

func (c *Climate) Observe(dev pugoing.Device) {
	c.online = dev.Online
	state := codec.DecodeClimate(dev.Dcap)
	c.power.Observe(state.On)
	c.mode.Observe(state.Mode)
	c.fan.Observe(state.Fan)
	c.temp.Observe(state.TargetTemp)
	// Ambient readings are trusted as-is, there is nothing local to protect.
	c.roomTemp = state.RoomTemp
}

func (c *Climate) State() publisher.State {
	mode := codec.HVACOff
	if c.power.Value() {
		mode = c.mode.Value()
	}
	attrs := map[string]string{
		"availability": availability(c.online),
		"fan_mode":     string(c.fan.Value()),
		"temperature":  strconv.Itoa(c.temp.Value()),
	}
	if c.roomTemp != nil {
		attrs["current_temperature"] = strconv.Itoa(*c.roomTemp)
	}
	return publisher.State{
		DeviceID:   c.meta.ID,
		Component:  c.meta.Component,
		Value:      string(mode),
		Attributes: attrs,
	}
}

// Apply sends a climate intent and adopts the expectation immediately so
// the UI does not flap while the panel catches up.
func (c *Climate) Apply(ctx context.Context, intent pugoing.VRVIntent) error {
	if err := c.client.SetVRVState(ctx, c.meta.ID, c.sn, intent); err != nil {
		return err
	}
	if intent.Power != nil {
		c.power.Set(*intent.Power)
	}
	switch intent.Mode {
	case "cool":
		c.mode.Set(codec.HVACCool)
	case "heat":
		c.mode.Set(codec.HVACHeat)
	case "dry":
		c.mode.Set(codec.HVACDry)
	case "fan_only":
		c.mode.Set(codec.HVACFanOnly)
	}
	switch intent.FanMode {
	case "high":
		c.fan.Set(codec.FanHigh)
	case "medium":
		c.fan.Set(codec.FanMedium)
	case "low":
		c.fan.Set(codec.FanLow)
	}
	if intent.Temperature != nil {
		c.temp.Set(*intent.Temperature)
	}
	return nil
}

func (c *Climate) Control(ctx context.Context, on bool) error {
	return c.Apply(ctx, pugoing.VRVIntent{Power: &on})
}

func (c *Climate) Mark(on bool) { c.power.Set(on) }
