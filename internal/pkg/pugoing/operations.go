package pugoing

import (
	"context"

	"go.uber.org/zap"
)

// ListHosts returns every gateway visible to the account.
func (c *Client) ListHosts(ctx context.Context) ([]Host, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	env, err := c.post(ctx, c.urls.fetchSNList, nil, c.token, listTimeout)
	if err != nil {
		return nil, err
	}
	data, err := decodeData[listData[Host]](env)
	if err != nil {
		return nil, err
	}
	return data.List, nil
}

// ListHostsAndRooms returns the full host→room topology.
func (c *Client) ListHostsAndRooms(ctx context.Context) ([]HostRooms, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	env, err := c.post(ctx, c.urls.fetchSNAndRoomList, nil, c.token, listTimeout)
	if err != nil {
		return nil, err
	}
	data, err := decodeData[listData[HostRooms]](env)
	if err != nil {
		return nil, err
	}
	return data.List, nil
}

// ListDevicesInRoom returns all devices in one room of one host, each
// tagged with the host SN.
func (c *Client) ListDevicesInRoom(ctx context.Context, sn, roomName string) ([]Device, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	env, err := c.post(ctx, c.urls.fetchDevicesByRoom, map[string]any{
		"sn":       sn,
		"roomname": roomName,
	}, c.token, listTimeout)
	if err != nil {
		return nil, err
	}
	data, err := decodeData[listData[Device]](env)
	if err != nil {
		return nil, err
	}
	for i := range data.List {
		data.List[i].SN = sn
	}
	return data.List, nil
}

// ListScenes returns the scene list of one host.
func (c *Client) ListScenes(ctx context.Context, sn string) ([]Scene, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	env, err := c.post(ctx, c.urls.fetchScenesBySN, map[string]any{"sn": sn}, c.token, listTimeout)
	if err != nil {
		return nil, err
	}
	data, err := decodeData[listData[Scene]](env)
	if err != nil {
		return nil, err
	}
	return data.List, nil
}

// FetchDevice queries a single device by yid.
func (c *Client) FetchDevice(ctx context.Context, sn, yid string) (Device, error) {
	if err := c.ensureToken(ctx); err != nil {
		return Device{}, err
	}
	env, err := c.post(ctx, c.urls.fetchDeviceByYid, map[string]any{
		"sn":  sn,
		"yid": yid,
	}, c.token, listTimeout)
	if err != nil {
		return Device{}, err
	}
	data, err := decodeData[ackInfoData](env)
	if err != nil {
		return Device{}, err
	}
	if len(data.AckInfo) == 0 {
		return Device{}, &CommunicationError{Message: "empty ackinfo for device " + yid}
	}
	dev := data.AckInfo[0]
	dev.SN = sn
	return dev, nil
}

// controlDevice is the raw plataction call. Fire and forget per call: no
// idempotency key, no retry; the backend applies the last command it sees.
func (c *Client) controlDevice(ctx context.Context, sn string, key Dkey, yid string, digv *string) error {
	body := map[string]any{
		"sn":   sn,
		"fm":   "uip",
		"dvcm": "",
		"dkey": key.String(),
		"yid":  yid,
	}
	if digv != nil {
		body["digv"] = *digv
	}
	c.logger.Debug("control device",
		zap.String("yid", yid),
		zap.String("dkey", key.String()),
		zap.Stringp("digv", digv),
	)
	_, err := c.post(ctx, c.urls.controlDevice, body, c.token, controlTimeout)
	return err
}

// RunScene executes a scene on a host. Unlike the listing paths, offline
// and permission errors propagate to the caller: there is no aggregation
// to fall back on for a control operation.
func (c *Client) RunScene(ctx context.Context, sn, sid string) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}
	if _, err := c.post(ctx, c.urls.executeScene, map[string]any{
		"sn":  sn,
		"sid": sid,
	}, c.token, controlTimeout); err != nil {
		return err
	}
	c.logger.Info("executed scene", zap.String("sn", sn), zap.String("sid", sid))
	return nil
}
