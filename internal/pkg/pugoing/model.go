package pugoing

import "encoding/json"

// envelope is the vendor response wrapper shared by every endpoint.
// ack==1 means success; on failure msg carries the vendor error text.
type envelope struct {
	Ack  int             `json:"ack"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type listData[T any] struct {
	List []T `json:"list"`
}

type tokenData struct {
	Token string `json:"token"`
}

type ackInfoData struct {
	AckInfo []Device `json:"ackinfo"`
}

// Device is one vendor device record. Identity is Yid, globally unique
// across hosts; records are recreated wholesale on every poll cycle.
type Device struct {
	Yid    string `json:"yid"`
	SN     string `json:"sn"`
	Dpanel string `json:"dpanel"`
	Dname  string `json:"dname"`
	Danam  string `json:"danam"`
	Dloca  string `json:"dloca"`
	Dinfo  string `json:"dinfo"`
	Dcap   string `json:"dcap"`
	Dnlp   string `json:"dnlp"`
	Online bool   `json:"online"`
}

// Name prefers the alias field over the device name, matching the breaker
// panel's display behaviour.
func (d Device) Name() string {
	if d.Danam != "" {
		return d.Danam
	}
	return d.Dname
}

// Kind derives the device's bucket from its dpanel tag.
func (d Device) Kind() DeviceKind { return KindOf(d.Dpanel) }

// Scene is one vendor scene record, scoped to a host. A change in Sinfo
// between polls signals the scene fired since the last poll.
type Scene struct {
	Sid   string `json:"sid"`
	Sna   string `json:"sna"`
	Sinfo string `json:"sinfo"`
	Room  string `json:"room"`
}

// Host is one gateway entry from the host list endpoint.
type Host struct {
	SN   string `json:"sn"`
	Name string `json:"name"`
}

// Room is used only as a query key for per-room device fetches.
type Room struct {
	Name string `json:"name"`
}

// HostRooms is one gateway with its room topology.
type HostRooms struct {
	SN    string `json:"sn"`
	Rooms []Room `json:"room"`
}

// Snapshot is the atomic unit handed to consumers. It fully replaces the
// previous snapshot; consumers diff old vs new yid/sid sets themselves.
type Snapshot struct {
	DevicesByKind map[DeviceKind][]Device
	ScenesBySN    map[string][]Scene
	Token         string
}

// Device returns the record for yid within the given kind bucket.
func (s *Snapshot) Device(kind DeviceKind, yid string) (Device, bool) {
	for _, d := range s.DevicesByKind[kind] {
		if d.Yid == yid {
			return d, true
		}
	}
	return Device{}, false
}
