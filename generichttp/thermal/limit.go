package thermal

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/nasa-jpl/gotherm/generichttp"
	"github.com/nasa-jpl/gotherm/temperature"
)

var errLimited = errors.New("requested setpoint violates software limits, aborted")

// LimitMiddleware imposes server-side limits on setpoint commands.
// These sit on top of whatever bounds the controller itself enforces,
// so an operator can fence a device more tightly than its own
// validation would.
type LimitMiddleware struct {
	// Limits are the server-imposed bounds on the setpoint, in the
	// same unit the controller's HTTP surface speaks
	Limits temperature.Bounds
}

// Check verifies if a setpoint command would violate the limits, and
// if it does, responds with StatusBadRequest before the device is
// touched; otherwise, flows control to the next handler
func (l *LimitMiddleware) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, "temperature-setpoint") {
			next.ServeHTTP(w, r)
			return
		}
		// downstream functions want the body too...
		// read it all here, then "paste" it back with ioutil
		bodyContent, _ := ioutil.ReadAll(r.Body)
		defer r.Body.Close()
		r.Body = ioutil.NopCloser(bytes.NewBuffer(bodyContent))
		f := generichttp.FloatT{}
		if err := json.Unmarshal(bodyContent, &f); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !l.Limits.Contains(temperature.Float(f.F64)) {
			http.Error(w, errLimited.Error(), http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Inject places a /limits route on the table of the HTTPer
func (l LimitMiddleware) Inject(h generichttp.HTTPer) {
	h.RT()[generichttp.MethodPath{Method: http.MethodGet, Path: "/limits"}] = Limits(l)
}

// Limits returns an HTTP handler func that returns the server-side
// limits on the setpoint
func Limits(l LimitMiddleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		out := BoundsT{Lower: float64(l.Limits.Lower), Upper: float64(l.Limits.Upper)}
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
