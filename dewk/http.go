package dewk

import (
	"encoding/json"
	"net/http"

	"github.com/nasa-jpl/gotherm/generichttp"
)

// MarshalJSON renders the reading with the temperature magnitude,
// its unit, and the humidity as a flat object
func (re Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Temp  float64 `json:"temp"`
		Units string  `json:"units"`
		RH    float64 `json:"rh"`
	}{
		Temp:  float64(re.Temp.Inner()),
		Units: re.Temp.Unit().String(),
		RH:    re.RH})
}

// EncodeAndRespond writes the reading to w as JSON
func (re Reading) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(re); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

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
		generichttp.MethodPath{Method: http.MethodGet, Path: "/read"}:        w.HTTPRead,
		generichttp.MethodPath{Method: http.MethodGet, Path: "/temperature"}: generichttp.GetFloat(s.Temperature),
		generichttp.MethodPath{Method: http.MethodGet, Path: "/humidity"}:    generichttp.GetFloat(s.Humidity)}
	return w
}

// RT satisfies generichttp.HTTPer
func (h HTTPWrapper) RT() generichttp.RouteTable {
	return h.routes
}

// HTTPRead reads the meter and sends the temperature, its units, and
// the humidity back as JSON
func (h HTTPWrapper) HTTPRead(w http.ResponseWriter, r *http.Request) {
	re, err := h.Sensor.Read()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	re.EncodeAndRespond(w, r)
}
