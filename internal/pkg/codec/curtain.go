package codec

import (
	"strconv"
	"strings"
)

// CurtainPosition parses a curtain dinfo summary into a 0-100 position.
// "打开65%" yields 65, "关闭" yields exactly 0, anything else reports
// unknown via ok=false.
func CurtainPosition(dinfo string) (pos int, ok bool) {
	if strings.Contains(dinfo, markerOpened) && strings.Contains(dinfo, "%") {
		rest := dinfo[strings.Index(dinfo, markerOpened)+len(markerOpened):]
		rest = strings.TrimSuffix(strings.TrimSpace(rest), "%")
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	if strings.Contains(dinfo, markerClosed) {
		return 0, true
	}
	return 0, false
}
