package controller

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"RoboPilot/internal/device"
	"RoboPilot/internal/syncx"
)

// Inbound flow-control codes from the controller.
const (
	lineCompleted = "0" // previous state completed, controller ready for the next
	lineStarting  = "1" // current state starting, informational
)

// Link owns the serial channel to the motor controller. It keeps an
// unbounded outbound queue and releases the next frame only when the
// controller reports the previous state completed, so at most one command
// is on the wire at any time. Inbound lines that are not flow control are
// delivered in order on Lines().
type Link struct {
	dev      device.Device
	pending  *syncx.Queue[StateCommand]
	lines    chan string
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewLink wraps an open serial device. Start must be called before the
// link processes inbound traffic.
func NewLink(dev device.Device) *Link {
	return &Link{
		dev:      dev,
		pending:  syncx.NewQueue[StateCommand](),
		lines:    make(chan string, 64),
		interval: 50 * time.Millisecond,
		stop:     make(chan struct{}),
	}
}

// Start launches the background receive loop.
func (l *Link) Start() {
	l.wg.Add(1)
	go l.recvLoop()
}

// Stop signals the receive loop, waits for it to confirm exit, then closes
// the device.
func (l *Link) Stop() {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	l.wg.Wait()
	if err := l.dev.Close(); err != nil {
		log.Printf("warning: close controller device: %v", err)
	}
}

// Enqueue queues cmd for transmission. It never blocks the producer; the
// frame goes out when the controller next reports itself idle.
func (l *Link) Enqueue(cmd StateCommand) {
	l.pending.Put(cmd)
}

// Pending reports the number of commands awaiting transmission.
func (l *Link) Pending() int { return l.pending.Len() }

// Lines delivers controller lines that are not flow-control codes, in
// arrival order. The acknowledgment worker consumes this channel.
func (l *Link) Lines() <-chan string { return l.lines }

// recvLoop polls the device at a short fixed interval, checking the stop
// signal between reads. Read errors are logged and skipped.
func (l *Link) recvLoop() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stop:
			return
		default:
		}

		line, err := l.dev.ReadLine(l.interval)
		if err != nil {
			if errors.Is(err, device.ErrReadTimeout) {
				continue
			}
			if errors.Is(err, device.ErrClosed) {
				return
			}
			log.Printf("controller read error: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		switch line = strings.TrimSpace(line); line {
		case "":
		case lineCompleted:
			l.sendNext()
		case lineStarting:
			log.Printf("controller: state starting")
		default:
			// never drop: a lost ACK would strand the movement lock.
			// Block until the consumer catches up or the link stops.
			select {
			case l.lines <- line:
			case <-l.stop:
				return
			}
		}
	}
}

// sendNext pops the next pending command, if any, and writes its frame in a
// single call.
func (l *Link) sendNext() {
	cmd, ok := l.pending.TryGet()
	if !ok {
		return
	}
	frame, err := cmd.Frame()
	if err != nil {
		log.Printf("warning: dropped unencodable command: %v", err)
		return
	}
	if err := l.dev.Write(frame); err != nil {
		log.Printf("controller write error: %v", err)
		return
	}
	log.Printf("controller: sent %q", strings.TrimRight(string(frame), " "))
}
