package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
)

// registerMessage is the Home Assistant MQTT discovery config payload.
type registerMessage struct {
	Tilda      string         `json:"~"`
	Name       string         `json:"name"`
	ID         string         `json:"uniq_id"`
	StateTopic string         `json:"stat_t"`
	Device     registerDevice `json:"device"`
}

type registerDevice struct {
	Name          string   `json:"name"`
	Identifiers   []string `json:"identifiers"`
	Model         string   `json:"model"`
	Manufacturer  string   `json:"manufacturer"`
	SuggestedArea string   `json:"suggested_area,omitempty"`
}

// slugIdentifier derives the topic segment shared by the discovery config
// and the state topic, so both must use the same inputs.
func slugIdentifier(component, id string) string {
	return slug.Make(fmt.Sprintf("pugoing %s %s", component, id))
}

func (s *service) Write(ctx context.Context, states []publisher.State) error {
	for _, state := range states {
		if err := s.publishState(state); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) RegisterDevice(meta *publisher.DeviceMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.configuredDevices[meta.ID]; exists {
		return nil
	}
	identifier := slugIdentifier(meta.Component, meta.ID)
	topic := fmt.Sprintf("homeassistant/%s/%s/config", meta.Component, identifier)

	payload, err := json.Marshal(defaultRegisterMsg(meta, identifier))
	if err != nil {
		return err
	}
	token := s.client.Publish(topic, 1, true, payload)
	if err := token.Error(); err != nil {
		return err
	}
	if res := token.WaitTimeout(time.Second * 5); res {
		s.configuredDevices[meta.ID] = struct{}{}
	}
	return nil
}

// RemoveDevice retracts the discovery config. Home Assistant drops an
// entity when its retained config topic is cleared.
func (s *service) RemoveDevice(meta *publisher.DeviceMeta) error {
	identifier := slugIdentifier(meta.Component, meta.ID)
	topic := fmt.Sprintf("homeassistant/%s/%s/config", meta.Component, identifier)

	token := s.client.Publish(topic, 1, true, []byte{})
	if err := token.Error(); err != nil {
		return err
	}
	token.WaitTimeout(time.Second * 5)

	s.mu.Lock()
	delete(s.configuredDevices, meta.ID)
	s.mu.Unlock()
	return nil
}

func (s *service) publishState(state publisher.State) error {
	identifier := slugIdentifier(state.Component, state.DeviceID)
	topic := fmt.Sprintf("homeassistant/%s/%s/state", state.Component, identifier)

	payload := map[string]string{
		"value": state.Value,
	}
	for k, v := range state.Attributes {
		payload[k] = v
	}
	publishData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := s.client.Publish(topic, 0, false, publishData)
	res := token.WaitTimeout(time.Second * 10)
	if res {
		return nil
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}

func defaultRegisterMsg(meta *publisher.DeviceMeta, identifier string) registerMessage {
	return registerMessage{
		Tilda:      fmt.Sprintf("homeassistant/%s/%s", meta.Component, identifier),
		Name:       meta.Name,
		ID:         identifier,
		StateTopic: "~/state",
		Device: registerDevice{
			Name:          meta.Name,
			Identifiers:   []string{identifier},
			Model:         meta.Model,
			Manufacturer:  "PuGoing",
			SuggestedArea: meta.Area,
		},
	}
}
