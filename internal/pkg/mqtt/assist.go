package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConverseFunc turns one voice utterance into a spoken reply.
type ConverseFunc func(ctx context.Context, text string) (string, error)

// AssistBridge relays voice requests from intelligent butler panels. Each
// butler publishes utterances on /ha/<xqid> and listens for the reply on
// ha/<xqid>/response.
type AssistBridge struct {
	client  paho_mqtt.Client
	handler ConverseFunc
	timeout time.Duration

	mu         sync.Mutex
	subscribed map[string]struct{}
}

type assistRequest struct {
	Text string `json:"text"`
}

type assistResponse struct {
	ID          string `json:"id"`
	OK          bool   `json:"ok"`
	Speech      string `json:"speech,omitempty"`
	IntentInput string `json:"intent_input,omitempty"`
	Error       string `json:"error,omitempty"`
}

func NewAssistBridge(client paho_mqtt.Client, handler ConverseFunc) *AssistBridge {
	return &AssistBridge{
		client:     client,
		handler:    handler,
		timeout:    time.Second * 30,
		subscribed: make(map[string]struct{}),
	}
}

// SubscribeButler starts relaying for one butler panel. Idempotent.
func (a *AssistBridge) SubscribeButler(xqid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.subscribed[xqid]; ok {
		return nil
	}
	topic := "/ha/" + xqid
	token := a.client.Subscribe(topic, 0, a.onMessage)
	token.WaitTimeout(time.Second * 5)
	if err := token.Error(); err != nil {
		return err
	}
	a.subscribed[xqid] = struct{}{}
	zap.L().Info("assist bridge listening", zap.String("xqid", xqid))
	return nil
}

// UnsubscribeButler stops relaying for a butler that left the topology.
func (a *AssistBridge) UnsubscribeButler(xqid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.subscribed[xqid]; !ok {
		return nil
	}
	token := a.client.Unsubscribe("/ha/" + xqid)
	token.WaitTimeout(time.Second * 5)
	if err := token.Error(); err != nil {
		return err
	}
	delete(a.subscribed, xqid)
	return nil
}

func (a *AssistBridge) onMessage(_ paho_mqtt.Client, msg paho_mqtt.Message) {
	xqid := strings.TrimPrefix(msg.Topic(), "/ha/")
	text := requestText(msg.Payload())
	if text == "" {
		zap.L().Warn("assist request without text", zap.String("xqid", xqid))
		return
	}
	// Paho delivers messages on its own goroutine; the conversation round
	// trip must not block it.
	go a.converse(xqid, text)
}

func (a *AssistBridge) converse(xqid, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	resp := assistResponse{ID: uuid.NewString(), OK: true, IntentInput: text}
	speech, err := a.handler(ctx, text)
	if err != nil {
		zap.L().Error("assist conversation failed", zap.String("xqid", xqid), zap.Error(err))
		resp.OK = false
		resp.Error = err.Error()
	}
	resp.Speech = speech

	payload, err := json.Marshal(resp)
	if err != nil {
		zap.L().Error("failed to marshal assist response", zap.Error(err))
		return
	}
	token := a.client.Publish("ha/"+xqid+"/response", 0, false, payload)
	token.WaitTimeout(time.Second * 10)
	if err := token.Error(); err != nil {
		zap.L().Error("failed to publish assist response", zap.String("xqid", xqid), zap.Error(err))
	}
}

// requestText accepts either a JSON {"text": ...} envelope or a raw
// utterance string.
func requestText(payload []byte) string {
	var req assistRequest
	if err := json.Unmarshal(payload, &req); err == nil && req.Text != "" {
		return req.Text
	}
	return strings.TrimSpace(string(payload))
}
