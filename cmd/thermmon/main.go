// thermmon watches a thermal node from the terminal.  It polls the
// node at a fixed cadence, keeps the latest reading on a spinner line,
// and optionally appends the history to a CSV file for later plotting.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/theckman/yacspin"

	"github.com/nasa-jpl/gotherm/chamber"
	"github.com/nasa-jpl/gotherm/dewk"
	"github.com/nasa-jpl/gotherm/rtd"
	"github.com/nasa-jpl/gotherm/temperature"
)

func usage() {
	fmt.Println(`thermmon watches a thermal node from the terminal.

usage:
  thermmon sim  [period] [csv]
  thermmon dewk <addr> [period] [csv]
  thermmon rtd  <addr> [period] [csv]

sim polls a simulated chamber and needs no hardware.  period is parsed
like 500ms or 2s and defaults to 1s.  If a csv path is given, each
reading is appended to it as "time,celsius".`)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return
	}
	kind := strings.ToLower(args[0])
	rest := args[1:]

	var (
		probe func() (float64, error)
		label string
	)
	switch kind {
	case "sim", "chamber":
		cham, err := chamber.New()
		if err != nil {
			log.Fatal(err)
		}
		// a perfectly still line is indistinguishable from a hung one
		cham.Noise = 0.05
		probe = cham.GetTemperature
		label = "sim"
	case "dewk", "fluke":
		if len(rest) == 0 {
			usage()
			log.Fatal("dewk requires an address")
		}
		s := dewk.NewSensor(rest[0], false)
		probe = s.Temperature
		label = rest[0]
		rest = rest[1:]
	case "rtd", "pt100":
		if len(rest) == 0 {
			usage()
			log.Fatal("rtd requires an address")
		}
		s := rtd.NewSensor(rest[0], 1, false)
		probe = s.Temperature
		label = rest[0]
		rest = rest[1:]
	default:
		usage()
		log.Fatal("node type ", kind, " not understood")
	}

	period := time.Second
	if len(rest) > 0 {
		var err error
		period, err = time.ParseDuration(rest[0])
		if err != nil {
			log.Fatal(err)
		}
		rest = rest[1:]
	}

	var rec *csv.Writer
	if len(rest) > 0 {
		f, err := os.OpenFile(rest[0], os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		rec = csv.NewWriter(f)
	}

	spin, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[59],
		Suffix:            " " + label,
		SuffixAutoColon:   true,
		Message:           "connecting",
		StopFailCharacter: "✗",
		StopFailColors:    []string{"fgRed"}})
	if err != nil {
		log.Fatal(err)
	}
	if err := spin.Start(); err != nil {
		log.Fatal(err)
	}

	first := true
	for {
		temp, err := probe()
		switch {
		case err != nil && first:
			// never got a single reading; the address or wiring is wrong
			spin.StopFailMessage(err.Error())
			spin.StopFail()
			os.Exit(1)
		case err != nil:
			spin.Message("read failed: " + err.Error())
		default:
			first = false
			spin.Message(temperature.FormatFixed(temperature.Float(temp)) + " C")
			if rec != nil {
				rec.Write([]string{
					time.Now().Format(time.RFC3339),
					temperature.FormatFixed(temperature.Float(temp))})
				rec.Flush()
				if err := rec.Error(); err != nil {
					spin.StopFailMessage(err.Error())
					spin.StopFail()
					os.Exit(1)
				}
			}
		}
		time.Sleep(period)
	}
}
