/*Package comm provides connection plumbing for lab instruments.

Drivers in this module hold a Pool of lazily opened connections and
lease one per transaction:

	conn, err := p.Get()
	if err != nil {
		return err
	}
	defer func() { p.ReturnWithError(conn, err) }()

Wrap the leased connection with NewTerminator for instruments that
frame messages with terminator bytes, and NewTimeout for network
connections that should not block forever.
*/
package comm

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/tarm/serial"
)

var (
	// ErrTerminatorNotFound is generated when the termination byte is not
	// found in a response
	ErrTerminatorNotFound = errors.New("termination byte not found")

	// ErrNoDeadline is generated when a connection that cannot carry
	// deadlines is wrapped with NewTimeout
	ErrNoDeadline = errors.New("connection does not support deadlines")
)

// CreationFunc is a function which returns a new "connection" to something
// a closure should be used to encapsulate the variables and functions needed
type CreationFunc func() (io.ReadWriteCloser, error)

// SerialConnMaker returns a CreationFunc that opens the serial port
// described by conf.
func SerialConnMaker(conf *serial.Config) CreationFunc {
	return func() (io.ReadWriteCloser, error) {
		return serial.OpenPort(conf)
	}
}

// BackingOffTCPConnMaker returns a CreationFunc that dials addr with
// exponential backoff. Instruments with embedded network stacks drop
// connections when thrashed, so a fresh dial retries gently before
// giving up.
func BackingOffTCPConnMaker(addr string, timeout time.Duration) CreationFunc {
	return func() (io.ReadWriteCloser, error) {
		var conn net.Conn
		op := func() error {
			var err error
			conn, err = net.DialTimeout("tcp", addr, timeout)
			return err
		}
		err := backoff.Retry(op, &backoff.ExponentialBackOff{
			InitialInterval:     25 * time.Millisecond,
			RandomizationFactor: 0,
			Multiplier:          2,
			MaxInterval:         1 * time.Second,
			MaxElapsedTime:      3 * time.Second,
			Clock:               backoff.SystemClock})
		if err != nil {
			return nil, fmt.Errorf("could not connect to %s: %w", addr, err)
		}
		return conn, nil
	}
}

// Terminator frames a stream: writes get the Tx terminator appended
// and reads consume through the Rx terminator, which is stripped.
type Terminator struct {
	rw     io.ReadWriter
	rxTerm byte
	txTerm byte
}

// NewTerminator wraps rw with terminator framing.
func NewTerminator(rw io.ReadWriter, rxTerm, txTerm byte) io.ReadWriter {
	return &Terminator{rw: rw, rxTerm: rxTerm, txTerm: txTerm}
}

func (t *Terminator) Write(p []byte) (int, error) {
	buf := make([]byte, len(p)+1)
	copy(buf, p)
	buf[len(p)] = t.txTerm
	n, err := t.rw.Write(buf)
	if n > len(p) {
		n = len(p)
	}
	return n, err
}

// Read creeps through the stream one byte at a time, the way slow
// instruments emit replies, and stops at the Rx terminator. If p
// fills without seeing the terminator, ErrTerminatorNotFound is
// returned alongside the bytes read.
func (t *Terminator) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := t.rw.Read(p[n : n+1])
		n += m
		if err != nil {
			return n, err
		}
		if m > 0 && p[n-1] == t.rxTerm {
			return n - 1, nil
		}
	}
	return n, ErrTerminatorNotFound
}

// SetDeadline passes through to the underlying connection so a
// Timeout can wrap a Terminator.
func (t *Terminator) SetDeadline(dl time.Time) error {
	if d, ok := t.rw.(deadliner); ok {
		return d.SetDeadline(dl)
	}
	return ErrNoDeadline
}

// deadliner is the subset of net.Conn needed to refresh deadlines.
type deadliner interface {
	SetDeadline(time.Time) error
}

// Timeout refreshes the connection deadline before every read and
// write.
type Timeout struct {
	rw  io.ReadWriter
	d   deadliner
	dur time.Duration
}

// NewTimeout wraps rw with deadline refreshes. It errors if rw cannot
// carry a deadline; serial ports configure their timeout at open
// instead.
func NewTimeout(rw io.ReadWriter, dur time.Duration) (io.ReadWriter, error) {
	d, ok := rw.(deadliner)
	if !ok {
		return nil, ErrNoDeadline
	}
	return &Timeout{rw: rw, d: d, dur: dur}, nil
}

func (t *Timeout) Read(p []byte) (int, error) {
	if err := t.d.SetDeadline(time.Now().Add(t.dur)); err != nil {
		return 0, err
	}
	return t.rw.Read(p)
}

func (t *Timeout) Write(p []byte) (int, error) {
	if err := t.d.SetDeadline(time.Now().Add(t.dur)); err != nil {
		return 0, err
	}
	return t.rw.Write(p)
}
