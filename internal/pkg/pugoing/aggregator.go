package pugoing

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PollAll walks the full topology: one hosts+rooms fetch, one scene list
// per host, one device list per (host, room). A failing scene or room
// fetch is logged and its contribution omitted; only the topology fetch
// itself can fail the poll. Strictly sequential, one request at a time.
func (c *Client) PollAll(ctx context.Context) (*Snapshot, error) {
	hosts, err := c.ListHostsAndRooms(ctx)
	if err != nil {
		return nil, err
	}

	snap := newSnapshot(c.token)
	for _, host := range hosts {
		scenes, err := c.ListScenes(ctx, host.SN)
		if err != nil {
			c.logger.Error("scene fetch failed, skipping host scenes",
				zap.String("sn", host.SN), zap.Error(err))
		} else if len(scenes) > 0 {
			snap.ScenesBySN[host.SN] = scenes
		}

		for _, room := range host.Rooms {
			devices, err := c.ListDevicesInRoom(ctx, host.SN, room.Name)
			if err != nil {
				c.logger.Error("room fetch failed, skipping room",
					zap.String("sn", host.SN), zap.String("room", room.Name), zap.Error(err))
				continue
			}
			snap.addDevices(devices)
		}
	}

	c.logger.Debug("poll complete",
		zap.Int("hosts", len(hosts)),
		zap.Int("kinds", len(snap.DevicesByKind)),
		zap.Int("scene_hosts", len(snap.ScenesBySN)),
	)
	return snap, nil
}

// PollAllConcurrent is the fan-out variant: per-room device fetches run in
// parallel per host. Failure semantics match PollAll — one room's failure
// never aborts the batch — but discovery order within a kind bucket is no
// longer deterministic across rooms.
func (c *Client) PollAllConcurrent(ctx context.Context) (*Snapshot, error) {
	hosts, err := c.ListHostsAndRooms(ctx)
	if err != nil {
		return nil, err
	}

	snap := newSnapshot(c.token)
	var mu sync.Mutex

	for _, host := range hosts {
		scenes, err := c.ListScenes(ctx, host.SN)
		if err != nil {
			c.logger.Error("scene fetch failed, skipping host scenes",
				zap.String("sn", host.SN), zap.Error(err))
		} else if len(scenes) > 0 {
			snap.ScenesBySN[host.SN] = scenes
		}

		eg, egCtx := errgroup.WithContext(ctx)
		for _, room := range host.Rooms {
			room := room
			eg.Go(func() error {
				devices, err := c.ListDevicesInRoom(egCtx, host.SN, room.Name)
				if err != nil {
					c.logger.Error("room fetch failed, skipping room",
						zap.String("sn", host.SN), zap.String("room", room.Name), zap.Error(err))
					return nil
				}
				mu.Lock()
				snap.addDevices(devices)
				mu.Unlock()
				return nil
			})
		}
		_ = eg.Wait()
	}
	return snap, nil
}

func newSnapshot(token string) *Snapshot {
	return &Snapshot{
		DevicesByKind: make(map[DeviceKind][]Device),
		ScenesBySN:    make(map[string][]Scene),
		Token:         token,
	}
}

// addDevices buckets devices by kind, concatenating in discovery order.
// Duplicate yids across rooms are a vendor data-quality assumption we do
// not dedup against.
func (s *Snapshot) addDevices(devices []Device) {
	grouped := lo.GroupBy(devices, func(d Device) DeviceKind { return d.Kind() })
	for kind, devs := range grouped {
		s.DevicesByKind[kind] = append(s.DevicesByKind[kind], devs...)
	}
}
