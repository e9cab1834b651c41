//go:build thermf32

package temperature

import (
	"math"
	"strconv"
)

// Float is the scalar type for magnitudes and bounds. This build uses
// float32, trading precision for space on small targets.
type Float = float32

// Largest and most negative finite magnitudes at this width.
const (
	maxFloat Float = math.MaxFloat32
	minFloat Float = -math.MaxFloat32
)

// ftoa renders v at this build's precision.
func ftoa(v Float, format byte, prec int) string {
	return strconv.FormatFloat(float64(v), format, prec, 32)
}
