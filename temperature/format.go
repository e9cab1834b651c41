package temperature

import "strings"

// FormatFixed renders v with exactly five fractional digits, truncated
// toward zero rather than rounded: FormatFixed(4.06) == "4.05999".
// This is the fixed-width form used by GoString and by column-aligned
// instrument logs.
func FormatFixed(v Float) string {
	switch {
	case isNaN(v):
		return "NaN"
	case isInf(v, 1):
		return "Inf"
	case isInf(v, -1):
		return "-Inf"
	case trunc(v) == v:
		// integral, including magnitudes beyond fractional resolution
		return ftoa(v, 'f', 0) + ".00000"
	}
	digits := ftoa(trunc(v*1e5), 'f', 0)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	if len(digits) < 6 {
		digits = strings.Repeat("0", 6-len(digits)) + digits
	}
	out := digits[:len(digits)-5] + "." + digits[len(digits)-5:]
	if neg {
		return "-" + out
	}
	return out
}
