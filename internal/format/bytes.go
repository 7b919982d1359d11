// Package format provides pure display-formatting helpers.
package format

import (
	"strconv"
	"strings"
)

var byteUnits = [...]string{"Bytes", "KB", "MB", "GB", "TB"}

// Bytes renders a byte count using binary (1024-based) units, picking the
// largest unit whose scaled value is >= 1 and rounding to two decimal places
// with trailing zeros trimmed. Zero (and any non-positive count) is always
// "0 Bytes". Deterministic and I/O free; the dashboard display tests depend
// on the exact output.
func Bytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}

	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + " " + byteUnits[unit]
}
