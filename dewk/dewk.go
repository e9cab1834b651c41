// Package dewk talks to Fluke DewK 1620a thermo-hygrometers over TCP
// or serial and tags their readings with the unit the meter reports.
package dewk

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/time/rate"

	"github.com/nasa-jpl/gotherm/comm"
	"github.com/nasa-jpl/gotherm/temperature"
)

// these meters communicate on port 10001.  They talk in raw TCP.
// sending read? spits back data looking like 21.4,46.5,0,0\r
// commas separate values.  Channels are all concat'd
const defaultPort = "10001"

// the meter ignores commands that arrive faster than about ten per
// second, so polls are paced below that
const commandsPerSecond = 10

// Reading holds one channel-1 sample from the meter. Temp carries the
// unit the meter is configured to report; RH is percent relative
// humidity.
type Reading struct {
	Temp temperature.T

	RH float64
}

// ParseReading converts a raw channel-1 reply looking like
// 21.4,46.5,0,0\r into a Reading tagged with unit
func ParseReading(buf []byte, unit temperature.Unit) (Reading, error) {
	str := strings.TrimRight(string(buf), "\r\n")
	pieces := strings.SplitN(str, ",", 3) // 3 pieces leaves the trailing trash in the last one
	if len(pieces) < 2 {
		return Reading{}, fmt.Errorf("dewk reply %q is missing temperature and humidity fields", str)
	}
	numeric := make([]float64, 2)
	for i, v := range pieces[:2] {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Reading{}, err
		}
		numeric[i] = f
	}
	return Reading{
		Temp: temperature.New(unit, temperature.Float(numeric[0])),
		RH:   numeric[1]}, nil
}

func makeSerConf(addr string) *serial.Config {
	return &serial.Config{
		Name:        addr,
		Baud:        9600,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 3 * time.Second}
}

// Sensor talks to a DewK 1620a over a connection pool
type Sensor struct {
	pool *comm.Pool

	pace *rate.Limiter

	// TempUnit is the unit the meter's channel is configured to
	// report; readings are tagged with it
	TempUnit temperature.Unit

	serial bool

	timeout time.Duration
}

// NewSensor returns a Sensor ready to poll a DewK at addr. TCP
// addresses without a port get the meter's default appended; serial
// addresses name the port device.
func NewSensor(addr string, useSerial bool) *Sensor {
	var maker comm.CreationFunc
	if useSerial {
		maker = comm.SerialConnMaker(makeSerConf(addr))
	} else {
		if !strings.Contains(addr, ":") {
			addr = addr + ":" + defaultPort
		}
		maker = comm.BackingOffTCPConnMaker(addr, 3*time.Second)
	}
	return &Sensor{
		pool:     comm.NewPool(1, time.Hour, maker),
		pace:     rate.NewLimiter(rate.Limit(commandsPerSecond), 1),
		TempUnit: temperature.UnitCelsius,
		serial:   useSerial,
		timeout:  3 * time.Second}
}

// Read polls the meter's first channel for temperature and humidity
func (s *Sensor) Read() (Reading, error) {
	err := s.pace.Wait(context.Background())
	if err != nil {
		return Reading{}, err
	}
	conn, err := s.pool.Get()
	if err != nil {
		return Reading{}, err
	}
	defer func() { s.pool.ReturnWithError(conn, err) }()
	wrap := comm.NewTerminator(conn, '\r', '\n')
	if !s.serial {
		wrap, err = comm.NewTimeout(wrap, s.timeout)
		if err != nil {
			return Reading{}, err
		}
	}
	if _, err = wrap.Write([]byte("read?")); err != nil {
		return Reading{}, err
	}
	buf := make([]byte, 64)
	var n int
	n, err = wrap.Read(buf)
	if err != nil {
		return Reading{}, err
	}
	return ParseReading(buf[:n], s.TempUnit)
}

// Temperature reads the meter and returns the temperature alone,
// in Celsius
func (s *Sensor) Temperature() (float64, error) {
	re, err := s.Read()
	if err != nil {
		return 0, err
	}
	return float64(re.Temp.ToCelsius().Inner()), nil
}

// Humidity reads the meter and returns the relative humidity in
// percent
func (s *Sensor) Humidity() (float64, error) {
	re, err := s.Read()
	if err != nil {
		return 0, err
	}
	return re.RH, nil
}
