package temperature

// Bounds is an inclusive magnitude interval. The interval is always
// read in the same unit as the temperature it constrains.
type Bounds struct {
	Lower Float
	Upper Float
}

// DefaultBounds returns the unconstrained interval [-Inf, +Inf].
func DefaultBounds() Bounds {
	return Bounds{Lower: inf(-1), Upper: inf(1)}
}

// Unconstrained reports whether both ends of the interval are open.
func (b Bounds) Unconstrained() bool {
	return isInf(b.Lower, -1) && isInf(b.Upper, 1)
}

// Contains reports whether v falls inside the interval.
func (b Bounds) Contains(v Float) bool {
	return v >= b.Lower && v <= b.Upper
}

// SetLower replaces the lower bound. A candidate above the upper bound
// or below the most negative finite magnitude is rejected and the
// interval left untouched.
func (b *Bounds) SetLower(v Float) error {
	if v > b.Upper {
		return &BoundError{Value: v, High: true}
	}
	if v < minFloat {
		return &BoundError{Value: v}
	}
	b.Lower = v
	return nil
}

// SetUpper replaces the upper bound. A candidate below the lower bound
// or above the largest finite magnitude is rejected and the interval
// left untouched.
func (b *Bounds) SetUpper(v Float) error {
	if v < b.Lower {
		return &BoundError{Value: v}
	}
	if v > maxFloat {
		return &BoundError{Value: v, High: true}
	}
	b.Upper = v
	return nil
}

// convert re-expresses finite bounds in another unit. Infinite ends
// pass through with their sign untouched; a same-unit or fully open
// interval is returned as is.
func (b Bounds) convert(from, to Unit) Bounds {
	if from == to || b.Unconstrained() {
		return b
	}
	out := b
	if !isInf(b.Lower, 0) {
		out.Lower = New(from, b.Lower).To(to).Inner()
	}
	if !isInf(b.Upper, 0) {
		out.Upper = New(from, b.Upper).To(to).Inner()
	}
	return out
}

// Checked pairs a temperature with a validity interval and refuses any
// mutation that would leave it. The zero value is not useful; build
// one with NewChecked.
type Checked struct {
	temp   T
	bounds Bounds
}

// NewChecked wraps t with the unconstrained default bounds. NaN
// magnitudes, magnitudes below absolute zero, and magnitudes outside
// the finite range are rejected.
func NewChecked(t T) (Checked, error) {
	switch {
	case t.IsBelowAbsZero():
		return Checked{}, &BelowAbsoluteZeroError{Value: t.mag}
	case t.IsNaN():
		return Checked{}, ErrNaN
	case t.mag > maxFloat:
		return Checked{}, &OutOfBoundsError{Value: t.mag, Reason: ReasonTooHigh}
	case t.mag < minFloat:
		return Checked{}, &OutOfBoundsError{Value: t.mag, Reason: ReasonTooLow}
	}
	return Checked{temp: t, bounds: DefaultBounds()}, nil
}

// check validates a candidate against absolute zero, NaN, and the
// current bounds, in that order.
func (c *Checked) check(t T) error {
	if t.IsBelowAbsZero() {
		return &BelowAbsoluteZeroError{Value: t.mag}
	}
	if t.IsNaN() {
		return ErrNaN
	}
	if t.mag > c.bounds.Upper {
		return &OutOfBoundsError{Value: t.mag, Reason: ReasonTooHigh}
	}
	if t.mag < c.bounds.Lower {
		return &OutOfBoundsError{Value: t.mag, Reason: ReasonTooLow}
	}
	return nil
}

// SetTemperature validates t against the current bounds and commits it
// on success. Magnitudes are compared as given; a caller holding a
// value in another unit converts it first.
func (c *Checked) SetTemperature(t T) error {
	if err := c.check(t); err != nil {
		return err
	}
	c.temp = t
	return nil
}

// Unchecked returns the inner temperature, shedding the bounds.
func (c Checked) Unchecked() T { return c.temp }

// Inner returns the bare magnitude.
func (c Checked) Inner() Float { return c.temp.mag }

// Unit reports the scale the temperature and its bounds are expressed
// in.
func (c Checked) Unit() Unit { return c.temp.unit }

// Bounds returns the interval ends as temperatures tagged with the
// current unit.
func (c Checked) Bounds() (lower, upper T) {
	return T{c.temp.unit, c.bounds.Lower}, T{c.temp.unit, c.bounds.Upper}
}

// To re-expresses the temperature and its bounds in the given unit and
// returns the converted copy. The receiver is not modified.
func (c Checked) To(u Unit) (Checked, error) {
	out := c
	out.bounds = c.bounds.convert(c.temp.unit, u)
	out.temp = c.temp.To(u)
	return out, nil
}

// ToFahrenheit re-expresses the temperature and bounds in deg F.
func (c Checked) ToFahrenheit() (Checked, error) { return c.To(UnitFahrenheit) }

// ToCelsius re-expresses the temperature and bounds in deg C.
func (c Checked) ToCelsius() (Checked, error) { return c.To(UnitCelsius) }

// ToKelvin re-expresses the temperature and bounds in K.
func (c Checked) ToKelvin() (Checked, error) { return c.To(UnitKelvin) }

// Add shifts the temperature by o, converted to the current unit, if
// the result stays valid.
func (c *Checked) Add(o T) error {
	return c.SetTemperature(c.temp.Add(o))
}

// Sub shifts the temperature by -o, converted to the current unit, if
// the result stays valid.
func (c *Checked) Sub(o T) error {
	return c.SetTemperature(c.temp.Sub(o))
}

// Mul scales the magnitude if the result stays valid.
func (c *Checked) Mul(scalar Float) error {
	return c.SetTemperature(c.temp.Mul(scalar))
}

// Div divides the magnitude if the result stays valid. A scalar of
// exactly zero is rejected with ErrDivisionByZero before dividing.
func (c *Checked) Div(scalar Float) error {
	if scalar == 0 {
		return ErrDivisionByZero
	}
	return c.SetTemperature(c.temp.Div(scalar))
}

// SetLowerBound narrows or widens the valid interval from below. The
// held temperature is not re-validated against the new interval.
func (c *Checked) SetLowerBound(v Float) error {
	return c.bounds.SetLower(v)
}

// SetUpperBound narrows or widens the valid interval from above. The
// held temperature is not re-validated against the new interval.
func (c *Checked) SetUpperBound(v Float) error {
	return c.bounds.SetUpper(v)
}

// SetBounds replaces both ends of the interval, lower first. Either
// rejection leaves the interval fully untouched.
func (c *Checked) SetBounds(lower, upper Float) error {
	b := c.bounds
	if err := b.SetLower(lower); err != nil {
		return err
	}
	if err := b.SetUpper(upper); err != nil {
		return err
	}
	c.bounds = b
	return nil
}

// String renders the bare magnitude.
func (c Checked) String() string { return c.temp.String() }

// GoString renders the tagged form printed by %#v.
func (c Checked) GoString() string { return c.temp.GoString() }
