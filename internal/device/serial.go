package device

import (
	"bufio"
	"errors"
	"fmt"
	"sync"
	"time"

	serial "go.bug.st/serial"
)

// ErrReadTimeout is returned by ReadLine when no line arrived in time.
var ErrReadTimeout = errors.New("serial read timeout")

// ErrClosed is returned once the device has been closed.
var ErrClosed = errors.New("serial device closed")

// SerialDevice implements Device on a go.bug.st/serial port. A single
// reader goroutine owns the buffered reader, so a timed-out ReadLine never
// loses the line it was waiting for; the line is delivered to the next call.
type SerialDevice struct {
	port  serial.Port
	lines chan readResult
	done  chan struct{}
	once  sync.Once
	wmu   sync.Mutex
}

type readResult struct {
	line string
	err  error
}

// NewSerialDevice opens a serial device with the given path and baudrate
// and starts its reader goroutine.
func NewSerialDevice(dev string, baud int) (*SerialDevice, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", dev, err)
	}
	s := &SerialDevice{
		port:  p,
		lines: make(chan readResult, 16),
		done:  make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *SerialDevice) readLoop() {
	r := bufio.NewReader(s.port)
	for {
		line, err := r.ReadString('\n')
		select {
		case s.lines <- readResult{line: line, err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			// transient error: back off before retrying the port
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// ReadLine returns the next line from the port. With timeout <= 0 it blocks
// until a line arrives or the device is closed.
func (s *SerialDevice) ReadLine(timeout time.Duration) (string, error) {
	if timeout <= 0 {
		select {
		case res := <-s.lines:
			return res.line, res.err
		case <-s.done:
			return "", ErrClosed
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case res := <-s.lines:
		return res.line, res.err
	case <-s.done:
		return "", ErrClosed
	case <-t.C:
		return "", ErrReadTimeout
	}
}

// Write writes p to the port in a single call. Concurrent writers are
// serialized so frames are never interleaved on the wire.
func (s *SerialDevice) Write(p []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if _, err := s.port.Write(p); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

// WriteLine writes s followed by '\n'.
func (s *SerialDevice) WriteLine(line string) error {
	return s.Write(append([]byte(line), '\n'))
}

// Close stops the reader goroutine and closes the underlying port.
func (s *SerialDevice) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.port.Close()
	})
	return err
}
