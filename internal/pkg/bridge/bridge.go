// Package bridge maintains the entity views derived from topology
// snapshots: it creates and retires views as devices appear and
// disappear, feeds polled state through the debounce policies, and hands
// the resolved states to the publisher.
package bridge

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/pugoing-integration/internal/pkg/config"
	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// Controller is the slice of the cloud client the entity views control
// devices through.
type Controller interface {
	SetLampState(ctx context.Context, yid, sn string, on bool) error
	SetBreakerState(ctx context.Context, yid, sn string, on bool) error
	SetDimmerState(ctx context.Context, yid, sn string, intent pugoing.DimmerIntent) error
	SetCurtainState(ctx context.Context, yid, sn string, intent pugoing.CurtainIntent) error
	SetVRVState(ctx context.Context, yid, sn string, intent pugoing.VRVIntent) error
	RunScene(ctx context.Context, sn, sid string) error
}

// Switchable is the least common denominator the HTTP surface drives:
// Control issues the cloud command, Mark only adjusts the displayed state.
type Switchable interface {
	Control(ctx context.Context, on bool) error
	Mark(on bool)
}

// entityView is one device's bridge-side representation.
type entityView interface {
	Meta() *publisher.DeviceMeta
	Observe(dev pugoing.Device)
	State() publisher.State
}

type Bridge struct {
	client   Controller
	clk      clock.Clock
	debounce *config.DebounceConfig
	minK     int
	maxK     int
	logger   *zap.Logger

	mu     sync.Mutex
	views  map[string]entityView
	scenes map[string]*SceneButton

	onButlerAdded   func(yid string)
	onButlerRemoved func(yid string)
}

func New(client Controller, clk clock.Clock, cfg *config.Config, logger *zap.Logger) *Bridge {
	return &Bridge{
		client:   client,
		clk:      clk,
		debounce: cfg.Debounce,
		minK:     cfg.PuGoing.MinKelvin,
		maxK:     cfg.PuGoing.MaxKelvin,
		logger:   logger,
		views:    make(map[string]entityView),
		scenes:   make(map[string]*SceneButton),
	}
}

// OnButlerChange installs hooks fired when an intelligent butler panel
// enters or leaves the topology, used to wire the assist voice bridge.
func (b *Bridge) OnButlerChange(added, removed func(yid string)) {
	b.onButlerAdded = added
	b.onButlerRemoved = removed
}

// Apply reconciles the entity views against one topology snapshot and
// publishes the resulting states. New devices are registered, vanished
// devices retired, and scene firings surfaced as events.
func (b *Bridge) Apply(ctx context.Context, snap *pugoing.Snapshot) {
	b.mu.Lock()
	states := make([]publisher.State, 0, len(b.views))
	seen := make(map[string]struct{})

	for kind, devices := range snap.DevicesByKind {
		for _, dev := range devices {
			view, ok := b.views[dev.Yid]
			if !ok {
				view = b.newView(kind, dev)
				if view == nil {
					continue
				}
				b.views[dev.Yid] = view
				publisher.RegisterDevice(view.Meta())
				if kind == pugoing.KindButler && b.onButlerAdded != nil {
					b.onButlerAdded(dev.Yid)
				}
				b.logger.Info("entity added",
					zap.String("yid", dev.Yid),
					zap.String("kind", kind.String()),
					zap.String("name", dev.Name()))
			}
			seen[dev.Yid] = struct{}{}
			view.Observe(dev)
			states = append(states, view.State())
		}
	}

	for yid, view := range b.views {
		if _, ok := seen[yid]; ok {
			continue
		}
		publisher.RemoveDevice(view.Meta())
		delete(b.views, yid)
		if view.Meta().Component == componentSensor && b.onButlerRemoved != nil {
			b.onButlerRemoved(yid)
		}
		b.logger.Info("entity removed", zap.String("yid", yid))
	}

	states = append(states, b.applyScenes(snap)...)
	b.mu.Unlock()

	publisher.Publish(ctx, states)
}

func (b *Bridge) applyScenes(snap *pugoing.Snapshot) []publisher.State {
	states := make([]publisher.State, 0)
	seen := make(map[string]struct{})

	for sn, scenes := range snap.ScenesBySN {
		for _, sc := range scenes {
			btn, ok := b.scenes[sc.Sid]
			if !ok {
				btn = newSceneButton(b.client, b.clk, b.debounce.SceneButton, sn, sc)
				b.scenes[sc.Sid] = btn
				publisher.RegisterDevice(btn.Meta())
				b.logger.Info("scene added", zap.String("sid", sc.Sid), zap.String("name", sc.Sna))
			}
			seen[sc.Sid] = struct{}{}
			if btn.Observe(sc) {
				b.logger.Info("scene fired", zap.String("sid", sc.Sid), zap.String("name", sc.Sna))
				states = append(states, btn.FiredState())
			}
		}
	}

	for sid, btn := range b.scenes {
		if _, ok := seen[sid]; ok {
			continue
		}
		publisher.RemoveDevice(btn.Meta())
		delete(b.scenes, sid)
		b.logger.Info("scene removed", zap.String("sid", sid))
	}
	return states
}

func (b *Bridge) newView(kind pugoing.DeviceKind, dev pugoing.Device) entityView {
	switch kind {
	case pugoing.KindLamp:
		return newLamp(b.client, b.clk, b.debounce.Lamp, dev)
	case pugoing.KindLampRGBCW:
		return newRGBCWLamp(b.client, b.clk, b.debounce.RGBCW, b.minK, b.maxK, dev)
	case pugoing.KindCurtain:
		return newCurtain(b.client, b.clk, b.debounce.Curtain, dev)
	case pugoing.KindBreaker:
		return newBreaker(b.client, b.clk, b.debounce.Breaker, dev)
	case pugoing.KindVRV:
		return newClimate(b.client, b.clk, b.debounce.ClimateConfirm, dev)
	case pugoing.KindButler:
		return newButler(dev)
	case pugoing.KindHumanSensor:
		return newHumanSensor(dev)
	default:
		b.logger.Debug("ignoring device of unknown kind",
			zap.String("yid", dev.Yid), zap.String("dpanel", dev.Dpanel))
		return nil
	}
}

// Device looks up a switchable entity view by yid.
func (b *Bridge) Device(yid string) (Switchable, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	view, ok := b.views[yid]
	if !ok {
		return nil, false
	}
	sw, ok := view.(Switchable)
	return sw, ok
}

// Scene looks up a scene button by sid.
func (b *Bridge) Scene(sid string) (*SceneButton, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	btn, ok := b.scenes[sid]
	return btn, ok
}
