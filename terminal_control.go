// terminal_control.go - interactive raw-mode stdin control of a running
// worker.
//
// Grounded directly on terminal_host.go: MakeRaw/Restore
// bracket a non-blocking read loop in its own goroutine, translating
// keystrokes instead of routing them to an emulated MMIO device.

package printmech

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// TerminalControl reads raw stdin in its own goroutine and maps keystrokes
// to worker requests.
type TerminalControl struct {
	server  *Server
	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once

	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

// NewTerminalControl wires keystrokes on stdin to requests on server.
func NewTerminalControl(server *Server) *TerminalControl {
	return &TerminalControl{
		server: server,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Keymap: interactive single-key bindings.
const (
	keyPaperIn     = 'i'
	keyPaperOut    = 'o'
	keyPlatenIn    = 'I'
	keyPlatenOut   = 'O'
	keyRecordStart = 'r'
	keyRecordStop  = 's'
	keyQuit        = 'q'
)

// Start puts stdin into raw, non-blocking mode and begins routing
// keystrokes. Call Stop to restore the terminal.
func (c *TerminalControl) Start() {
	c.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(c.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_control: failed to set raw mode: %v\n", err)
		close(c.done)
		return
	}
	c.oldTermState = oldState

	if err := syscall.SetNonblock(c.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_control: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(c.fd, c.oldTermState)
		c.oldTermState = nil
		close(c.done)
		return
	}
	c.nonblockSet = true

	go func() {
		defer close(c.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-c.stopCh:
				return
			default:
			}

			n, err := syscall.Read(c.fd, buf)
			if n > 0 {
				if c.route(buf[0]) {
					return
				}
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

// route dispatches one keystroke to a worker request. It reports whether
// the control loop should stop (the quit key was pressed).
func (c *TerminalControl) route(b byte) bool {
	switch b {
	case keyPaperIn:
		c.server.SetPaperIn()
	case keyPaperOut:
		c.server.SetPaperOut()
	case keyPlatenIn:
		c.server.SetPlatenIn()
	case keyPlatenOut:
		c.server.SetPlatenOut()
	case keyRecordStart:
		c.server.RecordingStart()
	case keyRecordStop:
		c.server.RecordingStop()
	case keyQuit:
		c.server.Exit()
		return true
	}
	return false
}

// Stop terminates the reading goroutine and restores stdin to blocking,
// cooked mode.
func (c *TerminalControl) Stop() {
	c.stopped.Do(func() {
		close(c.stopCh)
	})
	<-c.done
	if c.nonblockSet {
		_ = syscall.SetNonblock(c.fd, false)
		c.nonblockSet = false
	}
	if c.oldTermState != nil {
		_ = term.Restore(c.fd, c.oldTermState)
		c.oldTermState = nil
	}
}
