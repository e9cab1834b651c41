// Package chamber provides a simulated thermal chamber. It stands in
// for real hardware in development, tests, and dry runs of control
// software.
package chamber

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/nasa-jpl/gotherm/temperature"
)

const (
	// defaultTimeConstant is the 1/e relaxation time of a mid-size
	// environmental chamber with the air handler running
	defaultTimeConstant = time.Minute

	ambient = 21.5 // C

	chamberFloor   = -70.0 // C, air handler limits of a typical chamber
	chamberCeiling = 180.0
)

func randN1to1() float64 {
	return rand.Float64()*2 - 1 // [0,1] => [0,2] => [-1,1]
}

// Chamber is a simulated thermal chamber. The air relaxes toward the
// setpoint exponentially, the way a real chamber approaches
// temperature. Setpoints run through a validated temperature, so
// commands below absolute zero or outside the chamber's bounds are
// rejected the same way a real controller would refuse them.
//
// The zero value is not usable; construct with New.
type Chamber struct {
	mu sync.Mutex

	air temperature.Checked

	setpoint temperature.T

	// TimeConstant is the 1/e relaxation time toward the setpoint
	TimeConstant time.Duration

	// Noise is the amplitude of uniform sensor noise applied to
	// temperature reads, in the chamber's current unit
	Noise float64

	last time.Time
}

// New returns a Chamber idling at ambient with the air handler limits
// of a typical environmental chamber, -70 C to +180 C.
func New() (*Chamber, error) {
	air, err := temperature.NewChecked(temperature.C(ambient))
	if err != nil {
		return nil, err
	}
	if err := air.SetBounds(chamberFloor, chamberCeiling); err != nil {
		return nil, err
	}
	return &Chamber{
		air:          air,
		setpoint:     temperature.C(ambient),
		TimeConstant: defaultTimeConstant,
		last:         time.Now()}, nil
}

// step relaxes the air toward the setpoint over dt. The caller must
// hold mu.
func (c *Chamber) step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	unit := c.air.Unit()
	cur := c.air.Inner()
	set := c.setpoint.To(unit).Inner()
	frac := 1 - math.Exp(-dt.Seconds()/c.TimeConstant.Seconds())
	next := cur + (set-cur)*temperature.Float(frac)
	// a convex combination of two in-bounds values cannot escape the
	// bounds, so the commit never fails
	c.air.SetTemperature(temperature.New(unit, next))
}

// advance steps the simulation up to the wall clock. The caller must
// hold mu.
func (c *Chamber) advance() {
	now := time.Now()
	c.step(now.Sub(c.last))
	c.last = now
}

// Step advances the simulation by dt without reference to the wall
// clock, for callers that want deterministic trajectories.
func (c *Chamber) Step(dt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step(dt)
	c.last = time.Now()
}

// GetTemperature returns the simulated air temperature in Celsius
func (c *Chamber) GetTemperature() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	t := c.air.Unchecked().ToCelsius().Inner()
	return float64(t) + randN1to1()*c.Noise, nil
}

// GetTemperatureSetpoint returns the setpoint in Celsius
func (c *Chamber) GetTemperatureSetpoint() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.setpoint.ToCelsius().Inner()), nil
}

// SetTemperatureSetpoint commands a new setpoint in Celsius. The
// command is validated against the chamber's bounds and rejected with
// the validation error if it falls outside them.
func (c *Chamber) SetTemperatureSetpoint(f float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	cmd := temperature.C(temperature.Float(f)).To(c.air.Unit())
	probe := c.air
	if err := probe.SetTemperature(cmd); err != nil {
		return err
	}
	c.setpoint = cmd
	return nil
}

// GetBounds returns the chamber's bounds in Celsius
func (c *Chamber) GetBounds() (temperature.Bounds, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lo, hi := c.air.Bounds()
	return temperature.Bounds{
		Lower: lo.ToCelsius().Inner(),
		Upper: hi.ToCelsius().Inner()}, nil
}

// SetBounds replaces the chamber's bounds, given in Celsius. Crossed
// bounds are rejected and leave the previous pair in place.
func (c *Chamber) SetBounds(lower, upper float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	unit := c.air.Unit()
	lo := temperature.C(temperature.Float(lower)).To(unit).Inner()
	hi := temperature.C(temperature.Float(upper)).To(unit).Inner()
	return c.air.SetBounds(lo, hi)
}

// GetUnits returns the chamber's display unit
func (c *Chamber) GetUnits() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.air.Unit().String(), nil
}

// SetUnits re-expresses the chamber in the named unit, converting the
// air temperature, the setpoint, and the bounds together
func (c *Chamber) SetUnits(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, err := temperature.ParseUnit(s)
	if err != nil {
		return err
	}
	conv, err := c.air.To(u)
	if err != nil {
		return err
	}
	c.air = conv
	c.setpoint = c.setpoint.To(u)
	return nil
}
