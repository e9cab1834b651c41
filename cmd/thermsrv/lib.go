package main

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-yaml/yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nasa-jpl/gotherm/chamber"
	"github.com/nasa-jpl/gotherm/dewk"
	"github.com/nasa-jpl/gotherm/generichttp"
	"github.com/nasa-jpl/gotherm/generichttp/locker"
	"github.com/nasa-jpl/gotherm/generichttp/thermal"
	"github.com/nasa-jpl/gotherm/rtd"
	"github.com/nasa-jpl/gotherm/temperature"
)

// Minmax holds a min and max value
type Minmax struct {
	Min float64 `yaml:"Min"`
	Max float64 `yaml:"Max"`
}

// NodeSetup holds the typical triplet of args for a New<device> call.
// Serial is not always used, and need not be populated in the config file
// if not used.
type NodeSetup struct {
	// Addr holds the network or filesystem address of the remote device,
	// e.g. 192.168.100.123:10001 for a device connected to a terminal
	// server, or /dev/ttyS4 for an RS232 device on a serial cable
	Addr string `yaml:"Addr"`

	// Endpoint is the final "directory" to put the node's routes under
	// ex. Endpoint="/omc/chamber" produces routes of
	// /omc/chamber/temperature, etc.
	Endpoint string `yaml:"Endpoint"`

	// Serial determines if the connection is serial/RS232 (True) or TCP (False)
	Serial bool `yaml:"Serial"`

	// Type is the "type" of the node, e.g. chamber
	Type string `yaml:"Type"`

	// Args holds any arguments to pass into the constructor for the node
	Args map[string]interface{} `yaml:"Args"`
}

// Config is a struct that holds the initialization parameters for the
// server's nodes.  It is to be populated by an unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	Mock bool `yaml:"Mock"`

	// Nodes is the list of nodes to set up
	Nodes []NodeSetup `yaml:"Nodes"`
}

// LoadYaml converts a (path to a) yaml file into a Config struct
func LoadYaml(path string) (Config, error) {
	cfg := Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	err = yaml.NewDecoder(f).Decode(&cfg)
	return cfg, err
}

// asFloat unboxes yaml numbers, which arrive as int when the config
// omits the decimal point
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// stringKeyed normalizes the two map shapes yaml decoders produce:
// koanf hands over string keys, go-yaml hands over interface keys
func stringKeyed(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	}
	return nil, false
}

// minmaxFromArgs digs a Minmax out of a node's Args under key.
/* the values are encoded as:
Args:
	Limits:
		Min: -20
		Max: 120

So, this translates to Go:
Args -> map[string]interface
Limits -> map[string]interface
Min/Max -> float64 (or int, see asFloat)
*/
func minmaxFromArgs(args map[string]interface{}, key string) (Minmax, bool) {
	if args == nil || args[key] == nil {
		return Minmax{}, false
	}
	raw, ok := stringKeyed(args[key])
	if !ok {
		return Minmax{}, false
	}
	mm := Minmax{}
	found := false
	if min, ok := raw["Min"]; ok {
		if f, ok := asFloat(min); ok {
			mm.Min = f
			found = true
		}
	}
	if max, ok := raw["Max"]; ok {
		if f, ok := asFloat(max); ok {
			mm.Max = f
			found = true
		}
	}
	return mm, found
}

// unitFromArgs reads a temperature unit out of a node's Args,
// defaulting to Celsius
func unitFromArgs(args map[string]interface{}) temperature.Unit {
	if args == nil || args["Units"] == nil {
		return temperature.UnitCelsius
	}
	s, ok := args["Units"].(string)
	if !ok {
		log.Fatal("Units argument must be a string")
	}
	u, err := temperature.ParseUnit(s)
	if err != nil {
		log.Fatal(err)
	}
	return u
}

// BuildMux builds the root router from the config: one submux per
// node, each wrapped with a lock, chamber nodes additionally wrapped
// with setpoint limits.  The mux serves two special routes: /endpoints,
// which returns the graph of all node routes as JSON, and /metrics,
// which exports every node's temperature for prometheus.
func BuildMux(c Config) chi.Router {
	// make the root handler
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}
	probes := map[string]func() (float64, error){}

	// for every node specified, build a submux
	for _, node := range c.Nodes {
		var (
			httper generichttp.HTTPer
			mids   []func(http.Handler) http.Handler
		)
		typ := strings.ToLower(node.Type)
		switch typ {

		case "chamber", "sim":
			cham, err := chamber.New()
			if err != nil {
				log.Fatal(err)
			}
			if b, ok := minmaxFromArgs(node.Args, "Bounds"); ok {
				if err := cham.SetBounds(b.Min, b.Max); err != nil {
					log.Fatal(err)
				}
			}
			httper = thermal.NewHTTPController(cham)
			if l, ok := minmaxFromArgs(node.Args, "Limits"); ok {
				limiter := thermal.LimitMiddleware{Limits: temperature.Bounds{
					Lower: temperature.Float(l.Min),
					Upper: temperature.Float(l.Max)}}
				mids = append(mids, limiter.Check)
				limiter.Inject(httper)
			}
			probes[node.Endpoint] = cham.GetTemperature

		case "fluke", "dewk":
			if c.Mock {
				log.Fatal("fluke dewk mock interface is not implemented; use a chamber node")
			}
			s := dewk.NewSensor(node.Addr, node.Serial)
			s.TempUnit = unitFromArgs(node.Args)
			httper = dewk.NewHTTPWrapper(s)
			probes[node.Endpoint] = s.Temperature

		case "rtd", "pt100":
			if c.Mock {
				log.Fatal("rtd mock interface is not implemented; use a chamber node")
			}
			slave := 1.0
			if node.Args != nil && node.Args["SlaveID"] != nil {
				f, ok := asFloat(node.Args["SlaveID"])
				if !ok {
					log.Fatal("SlaveID argument must be a number")
				}
				slave = f
			}
			s := rtd.NewSensor(node.Addr, byte(slave), node.Serial)
			s.TempUnit = unitFromArgs(node.Args)
			httper = rtd.NewHTTPWrapper(s)
			probes[node.Endpoint] = s.Temperature

		default:
			log.Fatal("type ", typ, " not understood")
		}

		// prepare the URL, "omc/chamber" => "/omc/chamber"
		hndlS := generichttp.SubMuxSanitize(node.Endpoint)

		// add the endpoints to the graph
		supergraph[hndlS] = httper.RT().Endpoints()

		// add a lock interface for this node
		lock := locker.New()
		locker.Inject(httper, lock)

		// bind to the mux
		r := chi.NewRouter()
		r.Use(mids...)
		r.Use(lock.Check)
		httper.RT().Bind(r)
		root.Mount(hndlS, r)
	}
	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	root.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(buildRegistry(probes), promhttp.HandlerOpts{}))
	return root
}

// buildRegistry registers one temperature gauge per node.  A node
// that cannot be read exports NaN, which prometheus drops on scrape.
func buildRegistry(probes map[string]func() (float64, error)) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	for name, probe := range probes {
		probe := probe
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Subsystem:   "lab",
				Name:        "node_temperature_celsius",
				Help:        "Current temperature reported by the node.",
				ConstLabels: prometheus.Labels{"node": name},
			},
			func() float64 {
				f, err := probe()
				if err != nil {
					return math.NaN()
				}
				return f
			}))
	}
	return reg
}
