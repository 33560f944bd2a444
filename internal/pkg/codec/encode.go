package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EncodeBrightness maps a 0-100 percentage onto the vendor's 0-254 scale.
func EncodeBrightness(pct int) (string, error) {
	if pct < 0 || pct > 100 {
		return "", fmt.Errorf("brightness %d out of range 0-100", pct)
	}
	return strconv.Itoa(int(math.Round(float64(pct) * 2.54))), nil
}

// EncodeColorTemp accepts either a Kelvin value in [2000,6500] or a
// percentage in [0,100]; the two ranges do not overlap so the magnitude
// disambiguates. Anything outside both ranges is rejected.
func EncodeColorTemp(v int) (string, error) {
	switch {
	case v >= 2000 && v <= 6500:
		return strconv.Itoa(int(math.Round(float64(v-153) / 3.47))), nil
	case v >= 0 && v <= 100:
		return strconv.Itoa(int(math.Round(float64(v)*3.47 + 153))), nil
	default:
		return "", fmt.Errorf("color temp %d outside Kelvin range 2000-6500 and percentage range 0-100", v)
	}
}

// NormalizeRGBHex validates a 6-character hex colour and uppercases it.
func NormalizeRGBHex(s string) (string, error) {
	if len(s) != 6 {
		return "", fmt.Errorf("rgb %q must be exactly 6 hex characters", s)
	}
	if _, err := strconv.ParseUint(s, 16, 32); err != nil {
		return "", fmt.Errorf("rgb %q is not hex", s)
	}
	return strings.ToUpper(s), nil
}

// EncodeVRVTemperature validates the 16-30 target range; the caller
// concatenates the result into the VRV_T<n> command key.
func EncodeVRVTemperature(t int) (string, error) {
	if t < 16 || t > 30 {
		return "", fmt.Errorf("vrv temperature %d out of range 16-30", t)
	}
	return strconv.Itoa(t), nil
}
