package bridge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/pugoing-integration/internal/pkg/codec"
	"github.com/anicoll/pugoing-integration/internal/pkg/debounce"
	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// RGBCWLamp is the full-color dimmer view. A malformed dnlp blob fails
// soft: the previous decoded state is kept and the frame is skipped.
type RGBCWLamp struct {
	client Controller
	meta   *publisher.DeviceMeta
	sn     string
	gate   *debounce.Gate[codec.RGBCWState]
	minK   int
	maxK   int
	online bool
}

func newRGBCWLamp(client Controller, clk clock.Clock, window time.Duration, minK, maxK int, dev pugoing.Device) *RGBCWLamp {
	return &RGBCWLamp{
		client: client,
		meta:   deviceMeta(componentLight, dev),
		sn:     dev.SN,
		gate:   debounce.NewGate[codec.RGBCWState](clk, window),
		minK:   minK,
		maxK:   maxK,
	}
}

func (r *RGBCWLamp) Meta() *publisher.DeviceMeta { return r.meta }

func (r *RGBCWLamp) Observe(dev pugoing.Device) {
	r.online = dev.Online
	state, err := codec.DecodeRGBCW(dev.Dnlp, r.minK, r.maxK)
	if err != nil {
		zap.L().Debug("skipping malformed rgbcw frame",
			zap.String("yid", r.meta.ID), zap.String("dnlp", dev.Dnlp), zap.Error(err))
		return
	}
	r.gate.ObserveRemote(state)
}

func (r *RGBCWLamp) State() publisher.State {
	st := r.gate.Value()
	mode := "white"
	if st.Mode == codec.RGBCWModeColor {
		mode = "color"
	}
	return publisher.State{
		DeviceID:  r.meta.ID,
		Component: r.meta.Component,
		Value:     onOff(st.On),
		Attributes: map[string]string{
			"availability":      availability(r.online),
			"brightness":        strconv.Itoa(st.Brightness),
			"color_temp_kelvin": strconv.Itoa(st.ColorTempKelvin),
			"color_mode":        mode,
			"rgb":               fmt.Sprintf("%02X%02X%02X", st.R, st.G, st.B),
		},
	}
}

// Apply sends a dimmer intent and, on success, folds the expectation into
// the displayed state for the manual window.
func (r *RGBCWLamp) Apply(ctx context.Context, intent pugoing.DimmerIntent) error {
	if err := r.client.SetDimmerState(ctx, r.meta.ID, r.sn, intent); err != nil {
		return err
	}
	r.gate.NoteManual(r.expect(intent))
	return nil
}

func (r *RGBCWLamp) Control(ctx context.Context, on bool) error {
	return r.Apply(ctx, pugoing.DimmerIntent{On: &on})
}

func (r *RGBCWLamp) Mark(on bool) {
	st := r.gate.Value()
	st.On = on
	r.gate.NoteManual(st)
}

// expect projects what the device will report once the intent lands.
func (r *RGBCWLamp) expect(intent pugoing.DimmerIntent) codec.RGBCWState {
	st := r.gate.Value()
	if intent.On != nil {
		st.On = *intent.On
	}
	if intent.Brightness != nil {
		st.Brightness = int(float64(*intent.Brightness)/100*255 + 0.5)
	}
	if intent.ColorTemp != nil && *intent.ColorTemp >= r.minK {
		st.ColorTempKelvin = *intent.ColorTemp
		st.Mode = codec.RGBCWModeWhite
	}
	if intent.RGBHex != nil {
		if rgb, err := strconv.ParseUint(*intent.RGBHex, 16, 32); err == nil {
			st.R = int(rgb >> 16 & 0xFF)
			st.G = int(rgb >> 8 & 0xFF)
			st.B = int(rgb & 0xFF)
			st.Mode = codec.RGBCWModeColor
		}
	}
	return st
}
