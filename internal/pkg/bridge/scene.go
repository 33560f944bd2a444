package bridge

import (
	"context"
	"time"

	"github.com/anicoll/pugoing-integration/internal/pkg/debounce"
	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// manualMarkerLayout matches the sinfo stamp the backend writes after a
// scene execution, e.g. "06/21 18:30 手动".
const manualMarkerLayout = "01/02 15:04"

// SceneButton exposes one scene as a stateless button plus a fired event.
// A changed sinfo between polls means somebody (wall panel, app, us) ran
// the scene; the suppressor keeps rapid repeats from storming the event
// bus.
type SceneButton struct {
	client Controller
	meta   *publisher.DeviceMeta
	clk    clock.Clock
	sn     string
	sid    string

	suppressor *debounce.Suppressor
	lastSinfo  string
	seeded     bool
}

func newSceneButton(client Controller, clk clock.Clock, interval time.Duration, sn string, sc pugoing.Scene) *SceneButton {
	return &SceneButton{
		client: client,
		meta: &publisher.DeviceMeta{
			ID:        sc.Sid,
			Name:      sc.Sna,
			Model:     "Scene",
			Area:      sc.Room,
			SN:        sn,
			Component: componentButton,
		},
		clk:        clk,
		sn:         sn,
		sid:        sc.Sid,
		suppressor: debounce.NewSuppressor(clk, interval),
	}
}

func (s *SceneButton) Meta() *publisher.DeviceMeta { return s.meta }

// Observe feeds one polled scene record and reports whether a firing
// should be surfaced. The first observation only seeds the baseline.
func (s *SceneButton) Observe(sc pugoing.Scene) bool {
	if !s.seeded {
		s.lastSinfo = sc.Sinfo
		s.seeded = true
		return false
	}
	if sc.Sinfo == s.lastSinfo {
		return false
	}
	s.lastSinfo = sc.Sinfo
	return s.suppressor.Allow()
}

// Press runs the scene and stamps the local baseline with the manual
// marker so the backend's own sinfo update does not re-fire the event.
func (s *SceneButton) Press(ctx context.Context) error {
	if err := s.client.RunScene(ctx, s.sn, s.sid); err != nil {
		return err
	}
	s.lastSinfo = s.clk.Now().Format(manualMarkerLayout) + " 手动"
	s.seeded = true
	s.suppressor.Allow()
	return nil
}

// FiredState is the event payload published when a firing is surfaced.
// The sinfo attribute changes per firing, which keeps the publisher's
// change suppression from eating consecutive events.
func (s *SceneButton) FiredState() publisher.State {
	return publisher.State{
		DeviceID:  s.meta.ID,
		Component: s.meta.Component,
		Value:     "triggered",
		Attributes: map[string]string{
			"sinfo": s.lastSinfo,
			"scene": s.meta.Name,
		},
	}
}
