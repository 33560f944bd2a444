package pugoing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Per-call timeouts. Bulk list endpoints get longer because the vendor
// backend walks its own device tree server-side.
const (
	controlTimeout = 10 * time.Second
	listTimeout    = 15 * time.Second
)

const gaHTTPBase = "http://ga-bp1cljdupfvjxc2b3eytg.aliyunga0019.com"

// endpoints holds the resolved URL per remote operation.
type endpoints struct {
	login              string
	fetchSNList        string
	fetchSNAndRoomList string
	fetchDevicesByRoom string
	controlDevice      string
	fetchDeviceByYid   string
	fetchScenesBySN    string
	executeScene       string
}

func endpointsForBase(base string) endpoints {
	return endpoints{
		login:              base + "/Manage/Index/login",
		fetchSNList:        base + "/Manage/device/listsys",
		fetchSNAndRoomList: base + "/Manage/room/rooms",
		fetchDevicesByRoom: base + "/Manage/room/finddevbyroom",
		controlDevice:      base + "/Manage/device/plataction",
		fetchDeviceByYid:   base + "/Manage/device/devbyyid",
		fetchScenesBySN:    base + "/Manage/Scene/listsys",
		executeScene:       base + "/Manage/Scene/scaction",
	}
}

func endpointsFor(environment, baseURL string) endpoints {
	if baseURL != "" {
		return endpointsForBase(baseURL)
	}
	if environment == "international" {
		return endpointsForBase(gaHTTPBase)
	}
	return endpointsForBase("http://wx.xq.cspugoing.com")
}

// withToken places the token where the configured API version expects it:
// "next" uses a Bearer header, the legacy API wants it in the request body.
func (c *Client) withToken(req *http.Request, body map[string]any, token string) map[string]any {
	if c.cfg.APIVersion == "next" {
		req.Header.Set("Authorization", "Bearer "+token)
		return body
	}
	if body == nil {
		body = map[string]any{}
	}
	body["token"] = token
	return body
}

// post issues one vendor call and decodes the {ack, data, msg} envelope.
// ack==0 is classified against the two recognized vendor error strings;
// anything else, including transport and decode failures, becomes a
// CommunicationError.
func (c *Client) post(ctx context.Context, url string, body map[string]any, token string, timeout time.Duration) (*envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if body == nil {
		body = map[string]any{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, &CommunicationError{Message: "build request", Cause: err}
	}
	if token != "" {
		body = c.withToken(req, body, token)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &CommunicationError{Message: "encode request", Cause: err}
	}
	req.Body = io.NopCloser(bytes.NewReader(payload))
	req.ContentLength = int64(len(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &CommunicationError{Message: "request failed", Cause: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &CommunicationError{Message: fmt.Sprintf("unexpected status %d", res.StatusCode)}
	}

	env := envelope{}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, &CommunicationError{Message: "decode response", Cause: err}
	}

	if env.Ack != 1 {
		sn, _ := body["sn"].(string)
		switch env.Msg {
		case msgHostOffline:
			return nil, &DeviceOfflineError{SN: sn}
		case msgNoPermission:
			return nil, &NoPermissionError{SN: sn}
		default:
			return nil, &CommunicationError{Message: env.Msg}
		}
	}
	return &env, nil
}

func decodeData[T any](env *envelope) (T, error) {
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &CommunicationError{Message: "decode envelope data", Cause: err}
	}
	return out, nil
}
