// Package server exposes the local HTTP surface other home automations
// call into: a publish endpoint mirroring the vendor panel webhook shape
// and a health probe.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/anicoll/pugoing-integration/internal/pkg/bridge"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
)

// actions accepted on the publish endpoint.
const (
	actionOn    = "on"
	actionOff   = "off"
	actionPress = "press"

	actUpdate  = "update"
	actControl = "control"
)

type deviceBridge interface {
	Device(yid string) (bridge.Switchable, bool)
	Scene(sid string) (*bridge.SceneButton, bool)
}

type server struct {
	bridge deviceBridge
	logger *zap.Logger
}

func New(b deviceBridge) *server {
	return &server{bridge: b, logger: zap.L()}
}

func (s *server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware)
	r.Get("/pugoing_ha", s.getStatus)
	r.Post("/pugoing_ha/publish", s.postPublish)
	return r
}

// publishRequest is the webhook body: act selects whether the action is
// forwarded to the cloud ("control") or only reflected in the displayed
// state ("update").
type publishRequest struct {
	DeviceID string `json:"device_id"`
	Action   string `json:"action"`
	Act      string `json:"act"`
}

func (s *server) getStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *server) postPublish(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalPayload[publishRequest](r)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	if req.Act != actUpdate && req.Act != actControl {
		handleError(w, http.StatusBadRequest, errors.New("act must be update or control"))
		return
	}

	if req.Action == actionPress {
		s.pressScene(w, r, req)
		return
	}

	on := false
	switch req.Action {
	case actionOn:
		on = true
	case actionOff:
	default:
		handleError(w, http.StatusBadRequest, errors.New("action must be on, off or press"))
		return
	}

	device, ok := s.bridge.Device(req.DeviceID)
	if !ok {
		handleError(w, http.StatusNotFound, errors.New("unknown device "+req.DeviceID))
		return
	}

	if req.Act == actUpdate {
		device.Mark(on)
		writeSuccess(w)
		return
	}

	if err := device.Control(r.Context(), on); err != nil {
		s.logger.Error("device control failed", zap.String("device_id", req.DeviceID), zap.Error(err))
		handleError(w, statusFor(err), err)
		return
	}
	s.logger.Info("device switched", zap.String("device_id", req.DeviceID), zap.Bool("on", on))
	writeSuccess(w)
}

func (s *server) pressScene(w http.ResponseWriter, r *http.Request, req *publishRequest) {
	scene, ok := s.bridge.Scene(req.DeviceID)
	if !ok {
		handleError(w, http.StatusNotFound, errors.New("unknown scene "+req.DeviceID))
		return
	}
	if req.Act == actUpdate {
		writeSuccess(w)
		return
	}
	if err := scene.Press(r.Context()); err != nil {
		s.logger.Error("scene press failed", zap.String("device_id", req.DeviceID), zap.Error(err))
		handleError(w, statusFor(err), err)
		return
	}
	s.logger.Info("scene pressed", zap.String("device_id", req.DeviceID))
	writeSuccess(w)
}

// statusFor maps client-side validation failures to 400 and everything
// upstream to 502.
func statusFor(err error) int {
	var verr *pugoing.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func writeSuccess(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("success"))
}

func handleError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	w.Write([]byte(err.Error()))
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
