package comm

import (
	"io"
	"sync"
	"time"
)

// Pool holds connections to a single device. Connections are opened
// lazily with the pool's maker, reused across transactions, and closed
// after the pool sits fully idle for the reclaim interval. Instruments
// that only accept one client get a pool of size one, which then
// doubles as a transaction lock.
//
// Pool is safe for concurrent use.
type Pool struct {
	timeout time.Duration

	// conns buffers the idle connections
	conns chan io.ReadWriteCloser

	// slots holds one token per open connection, idle or leased
	slots chan struct{}

	timer *time.Timer

	maker CreationFunc

	reclaiming bool

	mu sync.Mutex
}

// NewPool creates a new Pool which can hold up to size connections,
// closing them after the pool sits fully idle for the reclaim
// interval.
func NewPool(size int, reclaim time.Duration, maker CreationFunc) *Pool {
	timer := time.NewTimer(reclaim)
	timer.Stop() // nothing to reclaim until a connection comes back
	return &Pool{
		timeout: reclaim,
		conns:   make(chan io.ReadWriteCloser, size),
		slots:   make(chan struct{}, size),
		timer:   timer,
		maker:   maker}
}

// Get retrieves a connection from the pool, opening a fresh one if the
// pool is below capacity. If every connection is leased out, Get
// blocks until one comes back with Put or a slot is freed by Destroy.
func (p *Pool) Get() (io.ReadWriter, error) {
	p.mu.Lock()
	p.timer.Stop()
	p.mu.Unlock()
	// fast path: an idle connection is waiting
	select {
	case conn := <-p.conns:
		return conn, nil
	default:
	}
	select {
	case conn := <-p.conns:
		return conn, nil
	case p.slots <- struct{}{}:
		conn, err := p.maker()
		if err != nil {
			<-p.slots
			return nil, err
		}
		return conn, nil
	}
}

// Put returns a connection to the pool for reuse. Only hand back
// connections that came from Get on the same pool.
func (p *Pool) Put(rw io.ReadWriter) {
	rwc := rw.(io.ReadWriteCloser)
	p.conns <- rwc
	p.mu.Lock()
	if len(p.conns) == len(p.slots) {
		// fully idle; start the countdown to reclaim
		p.timer.Reset(p.timeout)
		p.startReclaim()
	}
	p.mu.Unlock()
}

// Destroy closes a connection instead of returning it to the pool.
// Use it when the device has gotten into a bad state and the next
// transaction should start from a clean dial.
func (p *Pool) Destroy(rw io.ReadWriter) {
	rwc := rw.(io.ReadWriteCloser)
	rwc.Close()
	<-p.slots
}

// ReturnWithError sends the connection back with Put when err is nil
// and Destroys it otherwise. It is built to be deferred with a named
// error return:
//
//	defer func() { p.ReturnWithError(conn, err) }()
func (p *Pool) ReturnWithError(rw io.ReadWriter, err error) {
	if rw == nil {
		return
	}
	if err != nil {
		p.Destroy(rw)
		return
	}
	p.Put(rw)
}

// Size returns the number of idle connections sitting in the pool.
func (p *Pool) Size() int {
	return len(p.conns)
}

// Active returns the number of connections currently leased out.
func (p *Pool) Active() int {
	return len(p.slots) - len(p.conns)
}

// startReclaim arms the idle reaper if it is not already waiting.
// The caller must hold mu.
func (p *Pool) startReclaim() {
	if p.reclaiming {
		return
	}
	p.reclaiming = true
	go func() {
		<-p.timer.C
		p.mu.Lock()
		defer p.mu.Unlock()
		p.reclaiming = false
		if len(p.conns) != len(p.slots) {
			// a connection went back out while we slept
			return
		}
		for {
			select {
			case conn := <-p.conns:
				conn.Close()
				<-p.slots
			default:
				return
			}
		}
	}()
}
