package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/pugoing-integration/internal/pkg/bridge"
	"github.com/anicoll/pugoing-integration/internal/pkg/config"
	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// stubController only records lamp switches and scene runs; everything
// else succeeds silently.
type stubController struct {
	lampCalls  []bool
	sceneRuns  []string
	lampErr    error
	dimmerErr  error
	curtainErr error
}

func (s *stubController) SetLampState(_ context.Context, _, _ string, on bool) error {
	if s.lampErr != nil {
		return s.lampErr
	}
	s.lampCalls = append(s.lampCalls, on)
	return nil
}

func (s *stubController) SetBreakerState(context.Context, string, string, bool) error { return nil }

func (s *stubController) SetDimmerState(context.Context, string, string, pugoing.DimmerIntent) error {
	return s.dimmerErr
}

func (s *stubController) SetCurtainState(context.Context, string, string, pugoing.CurtainIntent) error {
	return s.curtainErr
}

func (s *stubController) SetVRVState(context.Context, string, string, pugoing.VRVIntent) error {
	return nil
}

func (s *stubController) RunScene(_ context.Context, _, sid string) error {
	s.sceneRuns = append(s.sceneRuns, sid)
	return nil
}

func newTestServer(t *testing.T, ctrl bridge.Controller) (*httptest.Server, *bridge.Bridge) {
	t.Helper()
	publisher.Reset()
	t.Cleanup(publisher.Reset)

	cfg := &config.Config{
		PuGoing: &config.PuGoingConfig{MinKelvin: 2000, MaxKelvin: 6500},
		Debounce: &config.DebounceConfig{
			Lamp: 5 * time.Second, RGBCW: 10 * time.Second, Curtain: 5 * time.Second,
			Breaker: 5 * time.Second, SceneButton: 10 * time.Second, ClimateConfirm: 10 * time.Second,
		},
	}
	b := bridge.New(ctrl, clock.New(), cfg, zaptest.NewLogger(t))
	srv := httptest.NewServer(New(b).Router())
	t.Cleanup(srv.Close)
	return srv, b
}

func seedLamp(b *bridge.Bridge) {
	b.Apply(context.Background(), &pugoing.Snapshot{
		DevicesByKind: map[pugoing.DeviceKind][]pugoing.Device{
			pugoing.KindLamp: {{Yid: "l1", SN: "A", Dpanel: "Lamp", Dname: "灯", Dinfo: "关", Online: true}},
		},
		ScenesBySN: map[string][]pugoing.Scene{
			"A": {{Sid: "s1", Sna: "回家", Sinfo: "06/01 10:00"}},
		},
	})
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	res, err := http.Post(url+"/pugoing_ha/publish", "application/json", strings.NewReader(body))
	assert.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestGetStatus(t *testing.T) {
	srv, _ := newTestServer(t, &stubController{})
	res, err := http.Get(srv.URL + "/pugoing_ha")
	assert.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestPublishControlSwitchesDevice(t *testing.T) {
	ctrl := &stubController{}
	srv, b := newTestServer(t, ctrl)
	seedLamp(b)

	res := post(t, srv.URL, `{"device_id":"l1","action":"on","act":"control"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []bool{true}, ctrl.lampCalls)
}

func TestPublishUpdateOnlyMarks(t *testing.T) {
	ctrl := &stubController{}
	srv, b := newTestServer(t, ctrl)
	seedLamp(b)

	res := post(t, srv.URL, `{"device_id":"l1","action":"on","act":"update"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, ctrl.lampCalls, "update must not reach the cloud")
}

func TestPublishPressRunsScene(t *testing.T) {
	ctrl := &stubController{}
	srv, b := newTestServer(t, ctrl)
	seedLamp(b)

	res := post(t, srv.URL, `{"device_id":"s1","action":"press","act":"control"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"s1"}, ctrl.sceneRuns)
}

func TestPublishUnknownDevice(t *testing.T) {
	srv, b := newTestServer(t, &stubController{})
	seedLamp(b)

	res := post(t, srv.URL, `{"device_id":"nope","action":"on","act":"control"}`)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPublishBadRequests(t *testing.T) {
	srv, b := newTestServer(t, &stubController{})
	seedLamp(b)

	res := post(t, srv.URL, `{"device_id":"l1","action":"on","act":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = post(t, srv.URL, `{"device_id":"l1","action":"toggle","act":"control"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = post(t, srv.URL, `not json`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestPublishUpstreamFailureIsBadGateway(t *testing.T) {
	ctrl := &stubController{lampErr: &pugoing.DeviceOfflineError{SN: "A"}}
	srv, b := newTestServer(t, ctrl)
	seedLamp(b)

	res := post(t, srv.URL, `{"device_id":"l1","action":"off","act":"control"}`)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
}
