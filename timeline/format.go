// Package timeline implements the pure geometry of a chaptered video timeline:
// time labels, chapter lookup, pointer-to-time mapping and tooltip placement.
package timeline

import (
	"fmt"
	"math"

	"github.com/scrubline/scrubline/util"
)

// FormatTime renders seconds as MM:SS. Both fields are floored; minutes are
// padded to two digits only while they are below 10.
func FormatTime(seconds float64) string {
	if !util.Finite(seconds) || seconds < 0 {
		seconds = 0
	}

	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
