// Package thermal exposes an HTTP interface to thermal controllers
package thermal

import (
	"encoding/json"
	"errors"
	"go/types"
	"net/http"

	"github.com/nasa-jpl/gotherm/generichttp"
	"github.com/nasa-jpl/gotherm/temperature"
)

// Controller is an interface to a thermal controller with a single channel
type Controller interface {
	// GetTemperatureSetpoint gets the temperature setpoint in Celsius
	GetTemperatureSetpoint() (float64, error)

	// SetTemperatureSetpoint sets the temperature setpoint in Celsius
	SetTemperatureSetpoint(float64) error

	// GetTemperature gets the temperature in Celsius
	GetTemperature() (float64, error)
}

// BoundedController is a Controller whose setpoint is guarded by
// validated bounds and which can re-express itself in another unit
type BoundedController interface {
	Controller

	// GetBounds returns the bounds on the setpoint in Celsius
	GetBounds() (temperature.Bounds, error)

	// SetBounds replaces the bounds on the setpoint, in Celsius
	SetBounds(lower, upper float64) error

	// GetUnits returns the controller's display unit
	GetUnits() (string, error)

	// SetUnits changes the controller's display unit
	SetUnits(string) error
}

// BoundsT is a struct with Lower and Upper fields, used for JSON IO.
// JSON has no infinity literal, so the HTTP surface only speaks
// finite bounds.
type BoundsT struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// statusFor maps validation rejections from the temperature package
// to 400 and everything else to 500
func statusFor(err error) int {
	var (
		oob *temperature.OutOfBoundsError
		baz *temperature.BelowAbsoluteZeroError
		bnd *temperature.BoundError
	)
	if errors.As(err, &oob) || errors.As(err, &baz) || errors.As(err, &bnd) ||
		errors.Is(err, temperature.ErrNaN) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GetTemperature returns an HTTP handler func that returns the temperature over HTTP
func GetTemperature(c Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := c.GetTemperature()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := generichttp.HumanPayload{T: types.Float64, Float: t}
		hp.EncodeAndRespond(w, r)
	}
}

// GetTemperatureSetpoint returns the temperature setpoint as JSON over HTTP
func GetTemperatureSetpoint(c Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setpt, err := c.GetTemperatureSetpoint()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := generichttp.HumanPayload{T: types.Float64, Float: setpt}
		hp.EncodeAndRespond(w, r)
	}
}

// SetTemperatureSetpoint returns an HTTP handler func that sets the
// temperature setpoint. A setpoint the controller rejects as invalid
// comes back as 400 with the rejection in the body.
func SetTemperatureSetpoint(c Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := generichttp.FloatT{}
		err := json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := c.SetTemperatureSetpoint(f.F64); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetBounds returns an HTTP handler func that returns the setpoint
// bounds over HTTP
func GetBounds(c BoundedController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := c.GetBounds()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		out := BoundsT{Lower: float64(b.Lower), Upper: float64(b.Upper)}
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// SetBounds returns an HTTP handler func that replaces the setpoint
// bounds. Crossed or otherwise invalid bounds come back as 400.
func SetBounds(c BoundedController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := BoundsT{}
		err := json.NewDecoder(r.Body).Decode(&b)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := c.SetBounds(b.Lower, b.Upper); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// SetUnits returns an HTTP handler func that changes the controller's
// display unit. Unit names that do not parse come back as 400.
func SetUnits(c BoundedController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := generichttp.StrT{}
		err := json.NewDecoder(r.Body).Decode(&s)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, err := temperature.ParseUnit(s.Str); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := c.SetUnits(s.Str); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPController wraps a Controller in a route table
type HTTPController struct {
	ctl Controller

	routes generichttp.RouteTable
}

// NewHTTPController returns an HTTPController with routes populated.
// Controllers which also satisfy BoundedController get bound and unit
// routes on top of the basic three.
func NewHTTPController(c Controller) HTTPController {
	h := HTTPController{ctl: c, routes: generichttp.RouteTable{}}
	rt := h.routes
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/temperature"}] = GetTemperature(c)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/temperature-setpoint"}] = GetTemperatureSetpoint(c)
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/temperature-setpoint"}] = SetTemperatureSetpoint(c)
	if b, ok := c.(BoundedController); ok {
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/bounds"}] = GetBounds(b)
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/bounds"}] = SetBounds(b)
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/units"}] = generichttp.GetString(b.GetUnits)
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/units"}] = SetUnits(b)
	}
	return h
}

// RT makes HTTPController a generichttp.HTTPer
func (h HTTPController) RT() generichttp.RouteTable {
	return h.routes
}
