package temperature

import (
	"math"
	"testing"
)

const eps = 1e-6

func approx(a, b Float) bool {
	return math.Abs(float64(a-b)) <= eps
}

// checkTriple asserts that the three representations of one physical
// temperature convert onto each other. Arguments are ordered
// (Fahrenheit, Celsius, Kelvin).
func checkTriple(t *testing.T, f, c, k Float) {
	conversions := []struct {
		name string
		got  Float
		want Float
	}{
		{"C->F", C(c).ToFahrenheit().Inner(), f},
		{"K->F", K(k).ToFahrenheit().Inner(), f},
		{"F->F", F(f).ToFahrenheit().Inner(), f},
		{"F->C", F(f).ToCelsius().Inner(), c},
		{"K->C", K(k).ToCelsius().Inner(), c},
		{"C->C", C(c).ToCelsius().Inner(), c},
		{"F->K", F(f).ToKelvin().Inner(), k},
		{"C->K", C(c).ToKelvin().Inner(), k},
		{"K->K", K(k).ToKelvin().Inner(), k},
	}
	for _, conv := range conversions {
		if !approx(conv.got, conv.want) {
			t.Errorf("%s: expected %v got %v", conv.name, conv.want, conv.got)
		}
	}
}

func TestSurfaceOfSun(t *testing.T) {
	checkTriple(t, 9941.0, 5505.0, 5778.15)
}

func TestWaterBoils(t *testing.T) {
	checkTriple(t, 212.0, 100.0, 373.15)
}

func TestWaterFreezes(t *testing.T) {
	checkTriple(t, 32.0, 0.0, 273.15)
}

func TestZeroesDiffer(t *testing.T) {
	// zero on one scale is not zero on another
	if approx(C(0).ToFahrenheit().Inner(), 0) {
		t.Error("0 C converted to 0 F")
	}
	if approx(K(0).ToCelsius().Inner(), 0) {
		t.Error("0 K converted to 0 C")
	}
	if approx(F(0).ToKelvin().Inner(), 0) {
		t.Error("0 F converted to 0 K")
	}
}

func TestSelfConversionIsIdentity(t *testing.T) {
	temp := C(42.13)
	if got := temp.ToCelsius(); got != temp {
		t.Errorf("expected %v got %v", temp, got)
	}
	if got := temp.To(UnitCelsius); got != temp {
		t.Errorf("expected %v got %v", temp, got)
	}
}

func TestTypedConversions(t *testing.T) {
	if got := C2F(100); !approx(Float(got), 212) {
		t.Errorf("expected 212 got %v", got)
	}
	if got := K2F(273.15); !approx(Float(got), 32) {
		t.Errorf("expected 32 got %v", got)
	}
	if got := F2K(32); !approx(Float(got), 273.15) {
		t.Errorf("expected 273.15 got %v", got)
	}
	if got := F2C(-40); !approx(Float(got), -40) {
		t.Errorf("expected -40 got %v", got)
	}
}

func TestAddSameUnit(t *testing.T) {
	got := C(20).Add(C(1.5))
	if got.Unit() != UnitCelsius {
		t.Errorf("expected Celsius result, got %v", got.Unit())
	}
	if !approx(got.Inner(), 21.5) {
		t.Errorf("expected 21.5 got %v", got.Inner())
	}
}

func TestAddConvertsRightHandSide(t *testing.T) {
	// 212 F is 100 C
	got := C(0).Add(F(212))
	if got.Unit() != UnitCelsius {
		t.Errorf("expected Celsius result, got %v", got.Unit())
	}
	if !approx(got.Inner(), 100) {
		t.Errorf("expected 100 got %v", got.Inner())
	}
}

func TestSubConvertsRightHandSide(t *testing.T) {
	got := F(212).Sub(C(100))
	if got.Unit() != UnitFahrenheit {
		t.Errorf("expected Fahrenheit result, got %v", got.Unit())
	}
	if !approx(got.Inner(), 0) {
		t.Errorf("expected 0 got %v", got.Inner())
	}
}

func TestMulDiv(t *testing.T) {
	got := K(100).Mul(2.5)
	if !approx(got.Inner(), 250) {
		t.Errorf("expected 250 got %v", got.Inner())
	}
	got = got.Div(2.5)
	if !approx(got.Inner(), 100) {
		t.Errorf("expected 100 got %v", got.Inner())
	}
}

func TestDivByZeroUnchecked(t *testing.T) {
	got := C(1).Div(0)
	if !isInf(got.Inner(), 1) {
		t.Errorf("expected +Inf got %v", got.Inner())
	}
}

func TestIsBelowAbsZeroBoundaries(t *testing.T) {
	valid := []T{K(0), C(-273.15), F(-459.67), K(0.2), C(21.5)}
	for _, temp := range valid {
		if temp.IsBelowAbsZero() {
			t.Errorf("%#v flagged below absolute zero", temp)
		}
	}
	invalid := []T{K(-0.1), C(-273.17), F(-459.70), K(inf(-1))}
	for _, temp := range invalid {
		if !temp.IsBelowAbsZero() {
			t.Errorf("%#v not flagged below absolute zero", temp)
		}
	}
}

func TestIsNaN(t *testing.T) {
	if !C(Float(math.NaN())).IsNaN() {
		t.Error("NaN magnitude not detected")
	}
	if C(0).IsNaN() {
		t.Error("zero flagged as NaN")
	}
}

func TestParseUnit(t *testing.T) {
	inputs := []string{"f", "Fahrenheit", "c", "CELSIUS", "k", "kelvin"}
	expected := []Unit{UnitFahrenheit, UnitFahrenheit, UnitCelsius, UnitCelsius, UnitKelvin, UnitKelvin}
	for i := 0; i < len(inputs); i++ {
		u, err := ParseUnit(inputs[i])
		if err != nil {
			t.Errorf("%s: unexpected error %v", inputs[i], err)
		}
		if u != expected[i] {
			t.Errorf("%s: expected %v got %v", inputs[i], expected[i], u)
		}
	}
	if _, err := ParseUnit("rankine"); err == nil {
		t.Error("expected error for an unsupported unit")
	}
}

func TestUnitString(t *testing.T) {
	if UnitKelvin.String() != "Kelvin" {
		t.Errorf("expected Kelvin got %s", UnitKelvin.String())
	}
	if Unit(42).String() != "Unit(42)" {
		t.Errorf("expected Unit(42) got %s", Unit(42).String())
	}
}

func TestStringForms(t *testing.T) {
	temp := C(21.5)
	if s := temp.String(); s != "21.5" {
		t.Errorf("expected 21.5 got %s", s)
	}
	if s := temp.GoString(); s != "Temperature::Celsius(21.50000)" {
		t.Errorf("expected Temperature::Celsius(21.50000) got %s", s)
	}
}
