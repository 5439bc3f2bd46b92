// serial.go - serial transport abstraction over the receipt printer's
// diagnostic link.
//
// Grounded on the pack's other_examples/Daedaluz-goserial reference for the
// shape of a Linux serial port binding; the concrete dependency wired here
// is go.bug.st/serial, whose Mode/Open API is a closer match for a single
// portable Port interface than hand-rolled termios ioctls.

package printmech

import (
	"errors"
	"sync"
	"time"

	"go.bug.st/serial"
)

// SerialMode is the fixed line configuration for the printer's diagnostic
// link.
var SerialMode = serial.Mode{
	BaudRate: 230400,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

// SerialPort is the transport the analyser loop reads and writes. Tests
// substitute fakeSerialPort; the CLI wires OpenSerialPort.
type SerialPort interface {
	// ReadAvailable returns whatever bytes are currently buffered without
	// blocking for more. It returns a nil/empty slice, not an error, when
	// nothing is available.
	ReadAvailable() ([]byte, error)
	Write(p []byte) (int, error)
	Close() error
}

type realSerialPort struct {
	port serial.Port
}

// OpenSerialPort opens name at the printer's fixed baud/framing and wraps it
// with a short read timeout so ReadAvailable never blocks for long.
func OpenSerialPort(name string) (SerialPort, error) {
	port, err := serial.Open(name, &SerialMode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(10 * time.Millisecond); err != nil {
		_ = port.Close()
		return nil, err
	}
	return &realSerialPort{port: port}, nil
}

func (r *realSerialPort) ReadAvailable() ([]byte, error) {
	buf := make([]byte, 4096)
	n, err := r.port.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (r *realSerialPort) Write(p []byte) (int, error) {
	return r.port.Write(p)
}

func (r *realSerialPort) Close() error {
	return r.port.Close()
}

// fakeSerialPort is an in-memory SerialPort for tests: bytes queued via
// Feed become visible to ReadAvailable, and writes are recorded for
// assertions. A mutex guards state since tests feed/inspect it from a
// different goroutine than the one the worker reads/writes it from.
type fakeSerialPort struct {
	mu      sync.Mutex
	inbound []byte
	written [][]byte
	closed  bool
}

func newFakeSerialPort() *fakeSerialPort {
	return &fakeSerialPort{}
}

// Feed queues bytes as if received over the wire.
func (f *fakeSerialPort) Feed(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = append(f.inbound, b...)
}

func (f *fakeSerialPort) pendingInbound() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inbound)
}

func (f *fakeSerialPort) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

func (f *fakeSerialPort) writtenAt(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written[i]
}

func (f *fakeSerialPort) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSerialPort) ReadAvailable() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.New("printmech: read from closed fake serial port")
	}
	if len(f.inbound) == 0 {
		return nil, nil
	}
	out := f.inbound
	f.inbound = nil
	return out, nil
}

func (f *fakeSerialPort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errors.New("printmech: write to closed fake serial port")
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	f.written = append(f.written, cp)
	return len(p), nil
}

func (f *fakeSerialPort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
