// Package temperature provides unit-tagged temperature values with
// conversion, arithmetic, and classification, plus a bounds-checked
// wrapper for guarding instrument setpoints.
package temperature

import (
	"fmt"
	"math"
	"strings"
)

type (
	// Celsius is a temperature in C
	Celsius Float

	// Kelvin is a temperature in K
	Kelvin Float

	// Fahrenheit is a temperature in deg F
	Fahrenheit Float
)

// Absolute zero on each scale. Validity comparisons are strict; a
// value exactly at absolute zero is valid.
const (
	AbsZeroF Fahrenheit = -459.67
	AbsZeroC Celsius    = -273.15
	AbsZeroK Kelvin     = 0
)

// C2F converts a temp in Celsius to Fahrenheit
func C2F(c Celsius) Fahrenheit {
	return Fahrenheit(c*1.8 + 32)
}

// C2K converts a temp in Celsius to Kelvin
func C2K(c Celsius) Kelvin {
	return Kelvin(c + 273.15)
}

// K2C converts a temp in Kelvin to Celsius
func K2C(k Kelvin) Celsius {
	return Celsius(k - 273.15)
}

// K2F converts a temp in Kelvin to Fahrenheit
func K2F(k Kelvin) Fahrenheit {
	return C2F(K2C(k))
}

// F2C converts a temp in Fahrenheit to Celsius
func F2C(f Fahrenheit) Celsius {
	return Celsius((f - 32) / 1.8)
}

// F2K converts a temp in Fahrenheit to Kelvin
func F2K(f Fahrenheit) Kelvin {
	c := F2C(f)
	return C2K(c)
}

// Unit enumerates the supported temperature scales.
type Unit int

const (
	// UnitFahrenheit tags magnitudes in degrees Fahrenheit.
	UnitFahrenheit Unit = iota

	// UnitCelsius tags magnitudes in degrees Celsius.
	UnitCelsius

	// UnitKelvin tags magnitudes in Kelvin.
	UnitKelvin
)

func (u Unit) String() string {
	switch u {
	case UnitFahrenheit:
		return "Fahrenheit"
	case UnitCelsius:
		return "Celsius"
	case UnitKelvin:
		return "Kelvin"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// ParseUnit maps a scale name or single-letter abbreviation to its
// Unit, case insensitively.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "f", "fahrenheit":
		return UnitFahrenheit, nil
	case "c", "celsius":
		return UnitCelsius, nil
	case "k", "kelvin":
		return UnitKelvin, nil
	default:
		return 0, fmt.Errorf("unknown temperature unit %q", s)
	}
}

// T is a temperature magnitude tagged with the scale it is expressed
// in. The zero value is 0 deg F.
type T struct {
	unit Unit
	mag  Float
}

// F wraps a magnitude in degrees Fahrenheit.
func F(v Float) T { return T{UnitFahrenheit, v} }

// C wraps a magnitude in degrees Celsius.
func C(v Float) T { return T{UnitCelsius, v} }

// K wraps a magnitude in Kelvin.
func K(v Float) T { return T{UnitKelvin, v} }

// New builds a temperature from an explicit unit tag.
func New(u Unit, v Float) T { return T{u, v} }

// Unit reports the scale the magnitude is expressed in.
func (t T) Unit() Unit { return t.unit }

// Inner returns the bare magnitude, shedding the unit tag.
func (t T) Inner() Float { return t.mag }

// ToFahrenheit re-expresses the temperature in degrees Fahrenheit.
// Converting to the unit already held returns the value unchanged.
func (t T) ToFahrenheit() T {
	switch t.unit {
	case UnitCelsius:
		return T{UnitFahrenheit, Float(C2F(Celsius(t.mag)))}
	case UnitKelvin:
		return T{UnitFahrenheit, Float(K2F(Kelvin(t.mag)))}
	default:
		return t
	}
}

// ToCelsius re-expresses the temperature in degrees Celsius.
func (t T) ToCelsius() T {
	switch t.unit {
	case UnitFahrenheit:
		return T{UnitCelsius, Float(F2C(Fahrenheit(t.mag)))}
	case UnitKelvin:
		return T{UnitCelsius, Float(K2C(Kelvin(t.mag)))}
	default:
		return t
	}
}

// ToKelvin re-expresses the temperature in Kelvin.
func (t T) ToKelvin() T {
	switch t.unit {
	case UnitFahrenheit:
		return T{UnitKelvin, Float(F2K(Fahrenheit(t.mag)))}
	case UnitCelsius:
		return T{UnitKelvin, Float(C2K(Celsius(t.mag)))}
	default:
		return t
	}
}

// To re-expresses the temperature in the given unit.
func (t T) To(u Unit) T {
	switch u {
	case UnitFahrenheit:
		return t.ToFahrenheit()
	case UnitCelsius:
		return t.ToCelsius()
	case UnitKelvin:
		return t.ToKelvin()
	default:
		return t
	}
}

// IsNaN reports whether the magnitude is NaN.
func (t T) IsNaN() bool { return isNaN(t.mag) }

// IsBelowAbsZero reports whether the magnitude sits strictly below
// absolute zero on its own scale. No conversion is performed.
func (t T) IsBelowAbsZero() bool {
	switch t.unit {
	case UnitFahrenheit:
		return t.mag < Float(AbsZeroF)
	case UnitCelsius:
		return t.mag < Float(AbsZeroC)
	default:
		return t.mag < Float(AbsZeroK)
	}
}

// Add sums two temperatures. The right-hand side is converted to the
// receiver's unit first and the result keeps the receiver's unit.
func (t T) Add(o T) T {
	return T{t.unit, t.mag + o.To(t.unit).mag}
}

// Sub subtracts o from t after converting o to t's unit.
func (t T) Sub(o T) T {
	return T{t.unit, t.mag - o.To(t.unit).mag}
}

// Mul scales the magnitude, leaving the unit alone.
func (t T) Mul(scalar Float) T { return T{t.unit, t.mag * scalar} }

// Div divides the magnitude by scalar. A zero scalar yields the IEEE
// result; Checked.Div rejects it instead.
func (t T) Div(scalar Float) T { return T{t.unit, t.mag / scalar} }

// String renders the bare magnitude.
func (t T) String() string { return ftoa(t.mag, 'g', -1) }

// GoString renders the tagged form printed by %#v, with the magnitude
// at fixed width, e.g. Temperature::Celsius(21.50000).
func (t T) GoString() string {
	return "Temperature::" + t.unit.String() + "(" + FormatFixed(t.mag) + ")"
}

// width-independent float helpers; conversion through float64 is exact
// for every float32 argument

func inf(sign int) Float { return Float(math.Inf(sign)) }

func isNaN(v Float) bool { return math.IsNaN(float64(v)) }

func isInf(v Float, sign int) bool { return math.IsInf(float64(v), sign) }

func trunc(v Float) Float { return Float(math.Trunc(float64(v))) }
