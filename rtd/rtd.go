// Package rtd reads PT100/RTD temperature transmitters that speak
// Modbus RTU, either directly over RS-485 or through a serial-to-
// ethernet bridge.
package rtd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/snksoft/crc"
	"github.com/tarm/serial"

	"github.com/nasa-jpl/gotherm/comm"
	"github.com/nasa-jpl/gotherm/temperature"
)

const (
	// fnReadInputRegisters is the Modbus function code the
	// transmitters serve temperature from
	fnReadInputRegisters = 0x04

	// exceptionFlag is set on the function code of an exception reply
	exceptionFlag = 0x80

	// tempRegister is the input register holding the temperature on
	// the common transmitter boxes
	tempRegister = 0x0000
)

// ErrBadCRC is generated when the trailer on a reply does not match
// its body
var ErrBadCRC = errors.New("crc mismatch on modbus reply")

// crcTable carries the CRC-16/Modbus parameters. The trailer rides
// the wire low byte first.
var crcTable = crc.NewTable(&crc.Parameters{
	Width:      16,
	Polynomial: 0x8005,
	ReflectIn:  true,
	ReflectOut: true,
	Init:       0xFFFF,
	FinalXor:   0x0000})

var exceptions = map[byte]string{
	1: "illegal function",
	2: "illegal data address",
	3: "illegal data value",
	4: "device failure",
}

// crcHelper computes the two-byte CRC value in a concurrent safe way and one line
func crcHelper(buf []byte) []byte {
	crcUint := crcTable.InitCrc()
	crcUint = crcTable.UpdateCrc(crcUint, buf)
	crcBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(crcBytes, crcTable.CRC16(crcUint))
	return crcBytes
}

// readInputRegisters frames a read-input-registers request
func readInputRegisters(slave byte, register, count uint16) []byte {
	out := make([]byte, 6, 8)
	out[0] = slave
	out[1] = fnReadInputRegisters
	binary.BigEndian.PutUint16(out[2:4], register)
	binary.BigEndian.PutUint16(out[4:6], count)
	return append(out, crcHelper(out)...)
}

// decodeResponse validates a reply frame and returns its data bytes
func decodeResponse(slave byte, resp []byte) ([]byte, error) {
	if len(resp) < 5 {
		return nil, fmt.Errorf("modbus frame % x too short", resp)
	}
	body := resp[:len(resp)-2]
	trailer := resp[len(resp)-2:]
	if !bytes.Equal(trailer, crcHelper(body)) {
		return nil, ErrBadCRC
	}
	if resp[0] != slave {
		return nil, fmt.Errorf("reply from bus address %d, wanted %d", resp[0], slave)
	}
	fn := resp[1]
	if fn == fnReadInputRegisters|exceptionFlag {
		code := resp[2]
		if s, ok := exceptions[code]; ok {
			return nil, fmt.Errorf("modbus exception %d: %s", code, s)
		}
		return nil, fmt.Errorf("modbus exception %d", code)
	}
	if fn != fnReadInputRegisters {
		return nil, fmt.Errorf("unexpected function code %d", fn)
	}
	count := int(resp[2])
	data := resp[3 : len(resp)-2]
	if len(data) != count {
		return nil, fmt.Errorf("byte count %d does not match payload length %d", count, len(data))
	}
	return data, nil
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

// Sensor reads a PT100 transmitter at a Modbus bus address
type Sensor struct {
	pool *comm.Pool

	// SlaveID is the transmitter's bus address
	SlaveID byte

	// TempUnit is the unit the transmitter is configured to report;
	// readings are tagged with it
	TempUnit temperature.Unit

	// Register is the input register holding the temperature
	Register uint16

	serialPort bool

	timeout time.Duration
}

// NewSensor returns a Sensor for the transmitter at addr and the
// given bus address. Transmitters ship reporting Celsius tenths from
// register zero; the fields on Sensor adjust that.
func NewSensor(addr string, slave byte, useSerial bool) *Sensor {
	var maker comm.CreationFunc
	if useSerial {
		maker = comm.SerialConnMaker(makeSerConf(addr))
	} else {
		maker = comm.BackingOffTCPConnMaker(addr, 3*time.Second)
	}
	return &Sensor{
		pool:       comm.NewPool(1, time.Hour, maker),
		SlaveID:    slave,
		TempUnit:   temperature.UnitCelsius,
		Register:   tempRegister,
		serialPort: useSerial,
		timeout:    3 * time.Second}
}

// Read polls the transmitter and returns its temperature, tagged with
// the transmitter's configured unit. The register holds signed tenths
// of a degree.
func (s *Sensor) Read() (temperature.T, error) {
	var zero temperature.T
	req := readInputRegisters(s.SlaveID, s.Register, 1)
	conn, err := s.pool.Get()
	if err != nil {
		return zero, err
	}
	defer func() { s.pool.ReturnWithError(conn, err) }()
	wrap := io.ReadWriter(conn)
	if !s.serialPort {
		wrap, err = comm.NewTimeout(conn, s.timeout)
		if err != nil {
			return zero, err
		}
	}
	if _, err = wrap.Write(req); err != nil {
		return zero, err
	}
	buf := make([]byte, 32)
	var n int
	n, err = wrap.Read(buf)
	if err != nil {
		return zero, err
	}
	var data []byte
	data, err = decodeResponse(s.SlaveID, buf[:n])
	if err != nil {
		return zero, err
	}
	if len(data) < 2 {
		err = fmt.Errorf("modbus payload % x too short for a register", data)
		return zero, err
	}
	raw := int16(binary.BigEndian.Uint16(data[:2]))
	return temperature.New(s.TempUnit, temperature.Float(raw)/10), nil
}

// Temperature reads the transmitter and returns the temperature in
// Celsius
func (s *Sensor) Temperature() (float64, error) {
	t, err := s.Read()
	if err != nil {
		return 0, err
	}
	return float64(t.ToCelsius().Inner()), nil
}
