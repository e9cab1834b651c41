//go:build !thermf32

package temperature

import (
	"math"
	"strconv"
)

// Float is the scalar type for magnitudes and bounds. The default
// build uses float64; build with -tags thermf32 to shrink it to
// float32 for small targets.
type Float = float64

// Largest and most negative finite magnitudes at this width.
const (
	maxFloat Float = math.MaxFloat64
	minFloat Float = -math.MaxFloat64
)

// ftoa renders v at this build's precision.
func ftoa(v Float, format byte, prec int) string {
	return strconv.FormatFloat(v, format, prec, 64)
}
