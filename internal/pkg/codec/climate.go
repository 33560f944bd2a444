package codec

import (
	"strconv"
	"strings"
)

type HVACMode string

const (
	HVACOff     HVACMode = "off"
	HVACHeat    HVACMode = "heat"
	HVACCool    HVACMode = "cool"
	HVACDry     HVACMode = "dry"
	HVACFanOnly HVACMode = "fan_only"
)

type FanSpeed string

const (
	FanLow    FanSpeed = "low"
	FanMedium FanSpeed = "medium"
	FanHigh   FanSpeed = "high"
)

// ClimateState is the decoded dcap of a VRV temperature-control panel.
// RoomTemp is nil when the panel did not report an rtem token.
type ClimateState struct {
	On         bool
	Mode       HVACMode
	Fan        FanSpeed
	TargetTemp int
	RoomTemp   *int
}

// ParseCapabilities splits a ";"-joined dcap string of key:value tokens
// into a map. Tokens without a colon are dropped.
func ParseCapabilities(dcap string) map[string]string {
	caps := make(map[string]string)
	for _, part := range strings.Split(dcap, ";") {
		if k, v, ok := strings.Cut(part, ":"); ok {
			caps[k] = v
		}
	}
	return caps
}

// DecodeClimate parses a VRV dcap such as "power:01;mod:02;tem:24;ws:01".
// Unrecognized or absent tokens fall back to off / medium / 25.
func DecodeClimate(dcap string) ClimateState {
	caps := ParseCapabilities(dcap)

	state := ClimateState{
		On:         caps["power"] == "01",
		Mode:       HVACOff,
		Fan:        FanMedium,
		TargetTemp: 25,
	}

	if state.On {
		switch caps["mod"] {
		case "01":
			state.Mode = HVACHeat
		case "02":
			state.Mode = HVACCool
		case "03":
			state.Mode = HVACDry
		case "04":
			state.Mode = HVACFanOnly
		}
	}

	switch caps["ws"] {
	case "01":
		state.Fan = FanLow
	case "02":
		state.Fan = FanMedium
	case "03", "04":
		state.Fan = FanHigh
	}

	if t, err := strconv.Atoi(caps["tem"]); err == nil {
		state.TargetTemp = t
	}
	if rt, err := strconv.Atoi(caps["rtem"]); err == nil {
		state.RoomTemp = &rt
	}
	return state
}

// CapabilityInt reads one integer token from a dcap string, e.g. the
// tem/hum/lum readings of an IntelligentButler panel.
func CapabilityInt(dcap, key string) (int, bool) {
	v, ok := ParseCapabilities(dcap)[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
