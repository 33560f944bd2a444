package codec

import "strings"

// BreakerReadings holds the electrical telemetry a breaker panel reports.
type BreakerReadings struct {
	Voltage     string
	Current     string
	Temperature string
}

// DecodeBreakerReadings extracts voltage, current and temperature from a
// breaker dcap string. Unlike the key:value dcap of other panels, breakers
// report ";"-separated positional fields: voltage at index 3, current at 4,
// temperature at 6. Short or empty strings report ok=false.
func DecodeBreakerReadings(dcap string) (BreakerReadings, bool) {
	if dcap == "" {
		return BreakerReadings{}, false
	}
	fields := strings.Split(dcap, ";")
	if len(fields) < 7 {
		return BreakerReadings{}, false
	}
	return BreakerReadings{
		Voltage:     fields[3],
		Current:     fields[4],
		Temperature: fields[6],
	}, true
}
