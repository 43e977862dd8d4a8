package treewalk

import (
	"math"
	"strconv"
	"strings"
)

// formatNumber renders a float64 the way `print` does, matching the
// bytecode VM's Value.String() exactly so both evaluators print the
// same program identically.
func formatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if f == math.Trunc(f) && !strings.ContainsAny(s, "eE") {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}
