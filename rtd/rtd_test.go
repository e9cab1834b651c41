package rtd

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/nasa-jpl/gotherm/temperature"
)

// frameReply appends the CRC trailer to a reply body
func frameReply(body ...byte) []byte {
	return append(body, crcHelper(body)...)
}

// fakeBridge starts a TCP server standing in for a serial-to-ethernet
// bridge: every 8-byte request gets the canned reply.
func fakeBridge(t *testing.T, reply []byte) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("could not listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				req := make([]byte, 8)
				for {
					if _, err := io.ReadFull(c, req); err != nil {
						c.Close()
						return
					}
					c.Write(reply)
				}
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func TestRequestFrame(t *testing.T) {
	// known vector: read one input register at zero from bus address
	// one
	want := []byte{0x01, 0x04, 0x00, 0x00, 0x00, 0x01, 0x31, 0xCA}
	got := readInputRegisters(1, 0, 1)
	if !bytes.Equal(got, want) {
		t.Errorf("expected % x got % x", want, got)
	}
}

func TestDecodeResponse(t *testing.T) {
	resp := frameReply(0x01, 0x04, 0x02, 0x00, 0xDD)
	data, err := decodeResponse(1, resp)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x00, 0xDD}) {
		t.Errorf("expected 00 dd, got % x", data)
	}
}

func TestDecodeRejectsBadCRC(t *testing.T) {
	resp := frameReply(0x01, 0x04, 0x02, 0x00, 0xDD)
	resp[len(resp)-1] ^= 0xFF
	if _, err := decodeResponse(1, resp); !errors.Is(err, ErrBadCRC) {
		t.Errorf("expected ErrBadCRC, got %v", err)
	}
}

func TestDecodeRejectsWrongAddress(t *testing.T) {
	resp := frameReply(0x02, 0x04, 0x02, 0x00, 0xDD)
	_, err := decodeResponse(1, resp)
	if err == nil || !strings.Contains(err.Error(), "bus address") {
		t.Errorf("expected bus address rejection, got %v", err)
	}
}

func TestDecodeSurfacesExceptions(t *testing.T) {
	resp := frameReply(0x01, 0x84, 0x02)
	_, err := decodeResponse(1, resp)
	if err == nil || !strings.Contains(err.Error(), "illegal data address") {
		t.Errorf("expected illegal data address, got %v", err)
	}
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	if _, err := decodeResponse(1, []byte{0x01, 0x04}); err == nil {
		t.Error("expected short frame to be rejected")
	}
}

func TestDecodeRejectsCountMismatch(t *testing.T) {
	resp := frameReply(0x01, 0x04, 0x04, 0x00, 0xDD)
	_, err := decodeResponse(1, resp)
	if err == nil || !strings.Contains(err.Error(), "byte count") {
		t.Errorf("expected byte count rejection, got %v", err)
	}
}

func TestSensorReadsThroughBridge(t *testing.T) {
	addr := fakeBridge(t, frameReply(0x01, 0x04, 0x02, 0x00, 0xDD))
	s := NewSensor(addr, 1, false)
	tt, err := s.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if tt.Unit() != temperature.UnitCelsius {
		t.Errorf("expected Celsius tag, got %v", tt.Unit())
	}
	if float64(tt.Inner()) != 22.1 {
		t.Errorf("expected 22.1, got %v", tt.Inner())
	}
}

func TestSensorScalesNegativeRegisters(t *testing.T) {
	// -200 tenths = 0xFF38
	addr := fakeBridge(t, frameReply(0x01, 0x04, 0x02, 0xFF, 0x38))
	s := NewSensor(addr, 1, false)
	tt, err := s.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if float64(tt.Inner()) != -20.0 {
		t.Errorf("expected -20.0, got %v", tt.Inner())
	}
}

func TestSensorHonorsConfiguredUnit(t *testing.T) {
	addr := fakeBridge(t, frameReply(0x01, 0x04, 0x02, 0x00, 0xDD))
	s := NewSensor(addr, 1, false)
	s.TempUnit = temperature.UnitFahrenheit
	tt, err := s.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if tt.Unit() != temperature.UnitFahrenheit {
		t.Errorf("expected Fahrenheit tag, got %v", tt.Unit())
	}
	c, err := s.Temperature()
	if err != nil {
		t.Fatal(err)
	}
	// 22.1 F is -5.5 C
	if d := c - (-5.5); d > 1e-9 || d < -1e-9 {
		t.Errorf("expected -5.5 C, got %v", c)
	}
}

func TestSensorSurfacesBusExceptions(t *testing.T) {
	addr := fakeBridge(t, frameReply(0x01, 0x84, 0x02))
	s := NewSensor(addr, 1, false)
	if _, err := s.Read(); err == nil || !strings.Contains(err.Error(), "illegal data address") {
		t.Errorf("expected illegal data address, got %v", err)
	}
}
