package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const rgbcwPrefix = "RGBCW:"

// RGBCW lamp modes as reported in the second byte of the payload.
type RGBCWMode int

const (
	RGBCWModeUnknown RGBCWMode = iota
	RGBCWModeWhite             // brightness + colour temperature
	RGBCWModeColor             // RGB
)

// RGBCWState is the decoded dnlp payload of a dimmable colour lamp.
// Brightness and channels are rescaled from the vendor's 0-100 range to
// 0-255; colour temperature is mapped linearly onto [MinKelvin,MaxKelvin].
type RGBCWState struct {
	On              bool
	Mode            RGBCWMode
	Brightness      int // 0-255
	ColorTempKelvin int
	R, G, B         int // 0-255 each
}

// DecodeRGBCW parses a "RGBCW:"-prefixed payload of 14 hex characters:
// power, mode, brightness, colour temperature, red, green, blue — one byte
// each, all on the vendor's 0-100 scale except power/mode. Malformed
// payloads return an error so callers can keep their previous state.
func DecodeRGBCW(dnlp string, minKelvin, maxKelvin int) (RGBCWState, error) {
	if !strings.HasPrefix(dnlp, rgbcwPrefix) {
		return RGBCWState{}, fmt.Errorf("rgbcw: missing %q prefix", rgbcwPrefix)
	}
	data := dnlp[len(rgbcwPrefix):]
	if len(data) < 14 {
		return RGBCWState{}, fmt.Errorf("rgbcw: payload too short (%d chars)", len(data))
	}

	fields := make([]int, 7)
	for i := range fields {
		v, err := strconv.ParseUint(data[i*2:i*2+2], 16, 8)
		if err != nil {
			return RGBCWState{}, fmt.Errorf("rgbcw: field %d not hex: %w", i, err)
		}
		fields[i] = int(v)
	}

	state := RGBCWState{
		On:              fields[0] == 0x03,
		Brightness:      vendorPctTo255(fields[2]),
		ColorTempKelvin: minKelvin + (maxKelvin-minKelvin)*fields[3]/100,
		R:               vendorPctTo255(fields[4]),
		G:               vendorPctTo255(fields[5]),
		B:               vendorPctTo255(fields[6]),
	}
	switch fields[1] {
	case 0x03:
		state.Mode = RGBCWModeWhite
	case 0x04:
		state.Mode = RGBCWModeColor
	}
	return state, nil
}

// vendorPctTo255 rescales the vendor's 0-100 channel range to 0-255.
func vendorPctTo255(v int) int {
	return int(math.Round(float64(v) / 100 * 255))
}
