package bridge

import (
	"strconv"

	"github.com/anicoll/pugoing-integration/internal/pkg/codec"
	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
)

// Butler is the intelligent butler panel view: ambient temperature,
// humidity and illuminance from the dcap token string. Read-only, no
// debounce needed.
type Butler struct {
	meta   *publisher.DeviceMeta
	caps   map[string]string
	online bool
}

func newButler(dev pugoing.Device) *Butler {
	return &Butler{
		meta: deviceMeta(componentSensor, dev),
		caps: map[string]string{},
	}
}

func (b *Butler) Meta() *publisher.DeviceMeta { return b.meta }

func (b *Butler) Observe(dev pugoing.Device) {
	b.online = dev.Online
	b.caps = map[string]string{}
	for _, key := range []string{"tem", "hum", "lum"} {
		if v, ok := codec.CapabilityInt(dev.Dcap, key); ok {
			b.caps[key] = strconv.Itoa(v)
		}
	}
}

func (b *Butler) State() publisher.State {
	attrs := map[string]string{
		"availability": availability(b.online),
	}
	if v, ok := b.caps["hum"]; ok {
		attrs["humidity"] = v
	}
	if v, ok := b.caps["lum"]; ok {
		attrs["illuminance"] = v
	}
	value := ""
	if v, ok := b.caps["tem"]; ok {
		value = v
	}
	return publisher.State{
		DeviceID:   b.meta.ID,
		Component:  b.meta.Component,
		Value:      value,
		Attributes: attrs,
	}
}

// HumanSensor is the presence binary sensor view.
type HumanSensor struct {
	meta    *publisher.DeviceMeta
	present bool
	online  bool
}

func newHumanSensor(dev pugoing.Device) *HumanSensor {
	return &HumanSensor{meta: deviceMeta(componentBinarySensor, dev)}
}

func (h *HumanSensor) Meta() *publisher.DeviceMeta { return h.meta }

func (h *HumanSensor) Observe(dev pugoing.Device) {
	h.online = dev.Online
	h.present = codec.HumanPresent(dev.Dinfo)
}

func (h *HumanSensor) State() publisher.State {
	return publisher.State{
		DeviceID:  h.meta.ID,
		Component: h.meta.Component,
		Value:     onOff(h.present),
		Attributes: map[string]string{
			"availability": availability(h.online),
		},
	}
}
