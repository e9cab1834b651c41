package rtd

import (
	"net/http"

	"github.com/nasa-jpl/gotherm/generichttp"
)

// HTTPWrapper provides HTTP bindings on top of the underlying sensor
type HTTPWrapper struct {
	// Sensor is the underlying sensor that is wrapped
	*Sensor

	routes generichttp.RouteTable
}

// NewHTTPWrapper returns a new HTTP wrapper with the route table
// pre-configured
func NewHTTPWrapper(s *Sensor) HTTPWrapper {
	w := HTTPWrapper{Sensor: s}
	w.routes = generichttp.RouteTable{
		generichttp.MethodPath{Method: http.MethodGet, Path: "/temperature"}: generichttp.GetFloat(s.Temperature),
		generichttp.MethodPath{Method: http.MethodGet, Path: "/units"}: generichttp.GetString(func() (string, error) {
			return s.TempUnit.String(), nil
		})}
	return w
}

// RT satisfies generichttp.HTTPer
func (h HTTPWrapper) RT() generichttp.RouteTable {
	return h.routes
}
