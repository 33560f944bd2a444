package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"

	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
)

// doneToken is a paho token that completed immediately.
type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *doneToken) Error() error { return t.err }

type publishedMsg struct {
	Topic    string
	Retained bool
	Payload  []byte
}

// fakePahoClient captures publishes and subscriptions in memory.
type fakePahoClient struct {
	mu           sync.Mutex
	published    []publishedMsg
	subscribed   map[string]paho_mqtt.MessageHandler
	publishErr   error
	connectErr   error
	unsubscribed []string
}

func newFakePahoClient() *fakePahoClient {
	return &fakePahoClient{subscribed: make(map[string]paho_mqtt.MessageHandler)}
}

func (f *fakePahoClient) IsConnected() bool      { return true }
func (f *fakePahoClient) IsConnectionOpen() bool { return true }
func (f *fakePahoClient) Connect() paho_mqtt.Token {
	return &doneToken{err: f.connectErr}
}
func (f *fakePahoClient) Disconnect(uint) {}

func (f *fakePahoClient) Publish(topic string, _ byte, retained bool, payload interface{}) paho_mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := payload.([]byte)
	f.published = append(f.published, publishedMsg{Topic: topic, Retained: retained, Payload: data})
	return &doneToken{err: f.publishErr}
}

func (f *fakePahoClient) Subscribe(topic string, _ byte, callback paho_mqtt.MessageHandler) paho_mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed[topic] = callback
	return &doneToken{}
}

func (f *fakePahoClient) SubscribeMultiple(map[string]byte, paho_mqtt.MessageHandler) paho_mqtt.Token {
	return &doneToken{}
}

func (f *fakePahoClient) Unsubscribe(topics ...string) paho_mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, topics...)
	for _, topic := range topics {
		delete(f.subscribed, topic)
	}
	return &doneToken{}
}

func (f *fakePahoClient) AddRoute(string, paho_mqtt.MessageHandler) {}
func (f *fakePahoClient) OptionsReader() paho_mqtt.ClientOptionsReader {
	return paho_mqtt.ClientOptionsReader{}
}

func (f *fakePahoClient) publishes() []publishedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMsg, len(f.published))
	copy(out, f.published)
	return out
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestRegisterDevicePublishesRetainedConfig(t *testing.T) {
	client := newFakePahoClient()
	svc := New(client)

	meta := &publisher.DeviceMeta{
		ID: "y1", Name: "客厅灯", Model: "Lamp", Area: "客厅", SN: "A", Component: "light",
	}
	assert.NoError(t, svc.RegisterDevice(meta))

	msgs := client.publishes()
	if assert.Len(t, msgs, 1) {
		assert.Equal(t, "homeassistant/light/pugoing-light-y1/config", msgs[0].Topic)
		assert.True(t, msgs[0].Retained)

		var cfg map[string]any
		assert.NoError(t, json.Unmarshal(msgs[0].Payload, &cfg))
		assert.Equal(t, "homeassistant/light/pugoing-light-y1", cfg["~"])
		assert.Equal(t, "~/state", cfg["stat_t"])
		assert.Equal(t, "客厅灯", cfg["name"])
	}

	// second registration of the same device is a no-op
	assert.NoError(t, svc.RegisterDevice(meta))
	assert.Len(t, client.publishes(), 1)
}

func TestWritePublishesStates(t *testing.T) {
	client := newFakePahoClient()
	svc := New(client)

	err := svc.Write(context.Background(), []publisher.State{
		{DeviceID: "y1", Component: "light", Value: "ON", Attributes: map[string]string{"brightness": "128"}},
	})
	assert.NoError(t, err)

	msgs := client.publishes()
	if assert.Len(t, msgs, 1) {
		assert.Equal(t, "homeassistant/light/pugoing-light-y1/state", msgs[0].Topic)
		assert.False(t, msgs[0].Retained)

		var payload map[string]string
		assert.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
		assert.Equal(t, "ON", payload["value"])
		assert.Equal(t, "128", payload["brightness"])
	}
}

func TestRemoveDeviceRetractsConfig(t *testing.T) {
	client := newFakePahoClient()
	svc := New(client)

	meta := &publisher.DeviceMeta{ID: "y1", Name: "灯", Model: "Lamp", Component: "light"}
	assert.NoError(t, svc.RegisterDevice(meta))
	assert.NoError(t, svc.RemoveDevice(meta))

	msgs := client.publishes()
	if assert.Len(t, msgs, 2) {
		assert.Equal(t, "homeassistant/light/pugoing-light-y1/config", msgs[1].Topic)
		assert.True(t, msgs[1].Retained)
		assert.Empty(t, msgs[1].Payload)
	}

	// registration works again after removal
	assert.NoError(t, svc.RegisterDevice(meta))
	assert.Len(t, client.publishes(), 3)
}

func TestConnectErrorSurfaces(t *testing.T) {
	client := newFakePahoClient()
	client.connectErr = errors.New("broker unreachable")
	svc := New(client)
	assert.Error(t, svc.Connect())
}

func TestAssistBridgeRoundTrip(t *testing.T) {
	client := newFakePahoClient()
	assist := NewAssistBridge(client, func(_ context.Context, text string) (string, error) {
		assert.Equal(t, "打开客厅灯", text)
		return "好的", nil
	})

	assert.NoError(t, assist.SubscribeButler("xq1"))
	handler := client.subscribed["/ha/xq1"]
	if !assert.NotNil(t, handler) {
		return
	}

	handler(client, &fakeMessage{topic: "/ha/xq1", payload: []byte(`{"text":"打开客厅灯"}`)})

	assert.Eventually(t, func() bool {
		for _, msg := range client.publishes() {
			if msg.Topic == "ha/xq1/response" {
				var resp map[string]any
				if err := json.Unmarshal(msg.Payload, &resp); err != nil {
					return false
				}
				return resp["ok"] == true && resp["speech"] == "好的"
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestAssistBridgeHandlerError(t *testing.T) {
	client := newFakePahoClient()
	assist := NewAssistBridge(client, func(context.Context, string) (string, error) {
		return "", errors.New("device offline")
	})

	assert.NoError(t, assist.SubscribeButler("xq1"))
	client.subscribed["/ha/xq1"](client, &fakeMessage{topic: "/ha/xq1", payload: []byte("关灯")})

	assert.Eventually(t, func() bool {
		for _, msg := range client.publishes() {
			if msg.Topic == "ha/xq1/response" {
				var resp map[string]any
				if err := json.Unmarshal(msg.Payload, &resp); err != nil {
					return false
				}
				return resp["ok"] == false && resp["error"] == "device offline"
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestAssistBridgeSubscribeIdempotent(t *testing.T) {
	client := newFakePahoClient()
	assist := NewAssistBridge(client, nil)

	assert.NoError(t, assist.SubscribeButler("xq1"))
	assert.NoError(t, assist.SubscribeButler("xq1"))
	assert.Len(t, client.subscribed, 1)

	assert.NoError(t, assist.UnsubscribeButler("xq1"))
	assert.Empty(t, client.subscribed)
	assert.Equal(t, []string{"/ha/xq1"}, client.unsubscribed)
}
