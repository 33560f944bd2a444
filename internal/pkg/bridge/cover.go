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

// coverState carries the last resolved curtain position. Known is false
// until a parseable dinfo has been seen.
type coverState struct {
	Position int
	Known    bool
}

// Curtain is the positional cover view.
type Curtain struct {
	client Controller
	meta   *publisher.DeviceMeta
	sn     string
	gate   *debounce.Gate[coverState]
	online bool
}

func newCurtain(client Controller, clk clock.Clock, window time.Duration, dev pugoing.Device) *Curtain {
	return &Curtain{
		client: client,
		meta:   deviceMeta(componentCover, dev),
		sn:     dev.SN,
		gate:   debounce.NewGate[coverState](clk, window),
	}
}

func (c *Curtain) Meta() *publisher.DeviceMeta { return c.meta }

func (c *Curtain) Observe(dev pugoing.Device) {
	c.online = dev.Online
	pos, ok := codec.CurtainPosition(dev.Dinfo)
	c.gate.ObserveRemote(coverState{Position: pos, Known: ok})
}

func (c *Curtain) State() publisher.State {
	st := c.gate.Value()
	value := "unknown"
	position := ""
	if st.Known {
		position = strconv.Itoa(st.Position)
		if st.Position > 0 {
			value = "open"
		} else {
			value = "closed"
		}
	}
	return publisher.State{
		DeviceID:  c.meta.ID,
		Component: c.meta.Component,
		Value:     value,
		Attributes: map[string]string{
			"availability": availability(c.online),
			"position":     position,
		},
	}
}

// Control maps on to fully open and off to fully closed.
func (c *Curtain) Control(ctx context.Context, on bool) error {
	action := "close"
	position := 0
	if on {
		action = "open"
		position = 100
	}
	if err := c.client.SetCurtainState(ctx, c.meta.ID, c.sn, pugoing.CurtainIntent{Action: action}); err != nil {
		return err
	}
	c.gate.NoteManual(coverState{Position: position, Known: true})
	return nil
}

// SetPosition drives the curtain to an explicit 0-100 target.
func (c *Curtain) SetPosition(ctx context.Context, pos int) error {
	if err := c.client.SetCurtainState(ctx, c.meta.ID, c.sn, pugoing.CurtainIntent{Position: &pos}); err != nil {
		return err
	}
	c.gate.NoteManual(coverState{Position: pos, Known: true})
	return nil
}

// Stop halts movement; the next poll reports where the curtain settled.
func (c *Curtain) Stop(ctx context.Context) error {
	return c.client.SetCurtainState(ctx, c.meta.ID, c.sn, pugoing.CurtainIntent{Action: "stop"})
}

func (c *Curtain) Mark(on bool) {
	position := 0
	if on {
		position = 100
	}
	c.gate.NoteManual(coverState{Position: position, Known: true})
}
