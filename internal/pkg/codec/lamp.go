// Package codec translates vendor wire formats (dinfo summaries, dcap
// capability strings, dnlp hex payloads) into normalized values, and
// encodes control intents into vendor command values.
package codec

import "strings"

// Vendor dinfo markers. Lamps and breakers report the same character but
// are compared differently: lamps prefix-match (dinfo may carry a trailing
// brightness suffix), breakers require the whole string.
const (
	markerOn       = "开"
	markerOpened   = "打开"
	markerClosed   = "关闭"
	markerPresence = "有人"
)

// LampOn reports whether a lamp's dinfo summary indicates power on.
func LampOn(dinfo string) bool {
	return strings.HasPrefix(dinfo, markerOn)
}

// BreakerOn reports whether a breaker's dinfo indicates the circuit is
// closed. Whole-string equality, not a prefix check.
func BreakerOn(dinfo string) bool {
	return dinfo == markerOn
}

// HumanPresent reports whether a presence sensor's dinfo indicates
// occupancy.
func HumanPresent(dinfo string) bool {
	return strings.Contains(dinfo, markerPresence)
}
