package pugoing

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anicoll/pugoing-integration/pkg/clock"
)

func stubTopology(f *fakeVendor) {
	f.stub("/Manage/room/rooms", func(map[string]any) (int, string) {
		return http.StatusOK, `{"ack":1,"data":{"list":[
			{"sn":"A","room":[{"name":"客厅"}]},
			{"sn":"B","room":[{"name":"卧室"}]},
			{"sn":"C","room":[{"name":"书房"}]}
		]}}`
	})
	f.stub("/Manage/room/finddevbyroom", func(body map[string]any) (int, string) {
		sn, _ := body["sn"].(string)
		return http.StatusOK, fmt.Sprintf(
			`{"ack":1,"data":{"list":[{"yid":"lamp-%s","dpanel":"Lamp","dname":"灯","dinfo":"开","online":true}]}}`, sn)
	})
	f.stub("/Manage/Scene/listsys", func(body map[string]any) (int, string) {
		sn, _ := body["sn"].(string)
		return http.StatusOK, fmt.Sprintf(
			`{"ack":1,"data":{"list":[{"sid":"scene-%s","sna":"回家","sinfo":"06/01 10:00"}]}}`, sn)
	})
}

func TestPollAllHappyPath(t *testing.T) {
	f := newFakeVendor(t)
	stubTopology(f)
	c := newTestClient(t, f, clock.NewMock(time.Now()))

	snap, err := c.PollAll(context.Background())
	assert.NoError(t, err)

	lamps := snap.DevicesByKind[KindLamp]
	assert.Len(t, lamps, 3)
	// devices are tagged with the host SN they were fetched through
	sns := []string{}
	for _, d := range lamps {
		sns = append(sns, d.SN)
	}
	assert.ElementsMatch(t, []string{"A", "B", "C"}, sns)

	assert.Len(t, snap.ScenesBySN, 3)
	assert.Equal(t, "scene-B", snap.ScenesBySN["B"][0].Sid)
	assert.Equal(t, "tok-1", snap.Token)
}

func TestPollAllSkipsHostWithFailingScenes(t *testing.T) {
	f := newFakeVendor(t)
	stubTopology(f)
	f.stub("/Manage/Scene/listsys", func(body map[string]any) (int, string) {
		if body["sn"] == "B" {
			return http.StatusOK, `{"ack":0,"msg":"主机不在线"}`
		}
		sn, _ := body["sn"].(string)
		return http.StatusOK, fmt.Sprintf(
			`{"ack":1,"data":{"list":[{"sid":"scene-%s","sna":"回家","sinfo":"06/01 10:00"}]}}`, sn)
	})
	c := newTestClient(t, f, clock.NewMock(time.Now()))

	snap, err := c.PollAll(context.Background())
	assert.NoError(t, err)

	// hosts A and C contribute scenes, host B is skipped but its devices stay
	assert.Len(t, snap.ScenesBySN, 2)
	assert.Contains(t, snap.ScenesBySN, "A")
	assert.Contains(t, snap.ScenesBySN, "C")
	assert.NotContains(t, snap.ScenesBySN, "B")
	assert.Len(t, snap.DevicesByKind[KindLamp], 3)
}

func TestPollAllSkipsFailingRoom(t *testing.T) {
	f := newFakeVendor(t)
	f.stub("/Manage/room/rooms", func(map[string]any) (int, string) {
		return http.StatusOK, `{"ack":1,"data":{"list":[{"sn":"A","room":[{"name":"客厅"},{"name":"卧室"}]}]}}`
	})
	f.stub("/Manage/room/finddevbyroom", func(body map[string]any) (int, string) {
		if body["roomname"] == "客厅" {
			return http.StatusInternalServerError, "boom"
		}
		return http.StatusOK, `{"ack":1,"data":{"list":[{"yid":"lamp-1","dpanel":"Lamp","dname":"灯","dinfo":"开","online":true}]}}`
	})
	c := newTestClient(t, f, clock.NewMock(time.Now()))

	snap, err := c.PollAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, snap.DevicesByKind[KindLamp], 1)
	assert.Equal(t, "lamp-1", snap.DevicesByKind[KindLamp][0].Yid)
}

func TestPollAllTopologyFailureFailsPoll(t *testing.T) {
	f := newFakeVendor(t)
	f.stub("/Manage/room/rooms", func(map[string]any) (int, string) {
		return http.StatusInternalServerError, "boom"
	})
	c := newTestClient(t, f, clock.NewMock(time.Now()))

	_, err := c.PollAll(context.Background())
	var commErr *CommunicationError
	assert.ErrorAs(t, err, &commErr)
}

func TestPollAllConcurrentMatchesSequential(t *testing.T) {
	f := newFakeVendor(t)
	stubTopology(f)
	c := newTestClient(t, f, clock.NewMock(time.Now()))

	snap, err := c.PollAllConcurrent(context.Background())
	assert.NoError(t, err)
	assert.Len(t, snap.DevicesByKind[KindLamp], 3)
	assert.Len(t, snap.ScenesBySN, 3)
}

func TestSnapshotDeviceLookup(t *testing.T) {
	snap := newSnapshot("tok")
	snap.addDevices([]Device{
		{Yid: "y1", Dpanel: "Lamp"},
		{Yid: "y2", Dpanel: "Breaker"},
		{Yid: "y3", Dpanel: "LampBri"},
	})

	dev, ok := snap.Device(KindLamp, "y3")
	assert.True(t, ok)
	assert.Equal(t, "y3", dev.Yid)

	_, ok = snap.Device(KindBreaker, "y1")
	assert.False(t, ok)

	// kind buckets group both Lamp and LampBri panels together
	assert.Len(t, snap.DevicesByKind[KindLamp], 2)
	assert.Len(t, snap.DevicesByKind[KindBreaker], 1)
}
