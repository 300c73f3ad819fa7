package controller

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoboPilot/internal/device"
)

// fakeDevice is a scripted serial device. Lines pushed with feed are
// delivered to ReadLine in order; frames written by the link are recorded.
type fakeDevice struct {
	mu     sync.Mutex
	inbox  chan string
	writes []string
	closed bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{inbox: make(chan string, 128)}
}

func (f *fakeDevice) feed(line string) { f.inbox <- line }

func (f *fakeDevice) ReadLine(timeout time.Duration) (string, error) {
	select {
	case line := <-f.inbox:
		return line, nil
	case <-time.After(timeout):
		return "", device.ErrReadTimeout
	}
}

func (f *fakeDevice) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, string(p))
	return nil
}

func (f *fakeDevice) WriteLine(s string) error { return f.Write([]byte(s + "\n")) }

func (f *fakeDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeDevice) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	copy(out, f.writes)
	return out
}

func (f *fakeDevice) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func waitWrites(t *testing.T, dev *fakeDevice, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool { return len(dev.written()) == n },
		2*time.Second, 5*time.Millisecond)
	return dev.written()
}

func TestLinkFlowControlFIFO(t *testing.T) {
	dev := newFakeDevice()
	link := NewLink(dev)
	link.Start()
	defer link.Stop()

	link.Enqueue(Directive("FW10"))
	link.Enqueue(Directive("FR00"))
	link.Enqueue(Directive("BW05"))

	// nothing may go out before the controller reports idle
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, dev.written())

	dev.feed("0")
	writes := waitWrites(t, dev, 1)
	assert.Equal(t, "FW10 0 0 0", strings.TrimRight(writes[0], " "))

	// second command must wait for the next completion
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, dev.written(), 1)

	dev.feed("0")
	writes = waitWrites(t, dev, 2)
	assert.Equal(t, "FR00 0 0 0", strings.TrimRight(writes[1], " "))

	dev.feed("0")
	writes = waitWrites(t, dev, 3)
	assert.Equal(t, "BW05 0 0 0", strings.TrimRight(writes[2], " "))

	for _, w := range writes {
		assert.Len(t, w, FrameSize)
	}
}

func TestLinkCompletedWithEmptyQueue(t *testing.T) {
	dev := newFakeDevice()
	link := NewLink(dev)
	link.Start()
	defer link.Stop()

	dev.feed("0")
	dev.feed("0")
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, dev.written(), "idle completions must be no-ops")
}

func TestLinkStartingLineIsInformational(t *testing.T) {
	dev := newFakeDevice()
	link := NewLink(dev)
	link.Start()
	defer link.Stop()

	link.Enqueue(Directive("FW10"))
	dev.feed("1")
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, dev.written(), "a starting line must not trigger a send")
}

func TestLinkForwardsUnrecognizedLines(t *testing.T) {
	dev := newFakeDevice()
	link := NewLink(dev)
	link.Start()
	defer link.Stop()

	dev.feed("ACK")
	dev.feed("DEBUG gyro drift 0.02")

	select {
	case line := <-link.Lines():
		assert.Equal(t, "ACK", line)
	case <-time.After(2 * time.Second):
		t.Fatal("ACK line not forwarded")
	}
	select {
	case line := <-link.Lines():
		assert.Equal(t, "DEBUG gyro drift 0.02", line)
	case <-time.After(2 * time.Second):
		t.Fatal("debug line not forwarded")
	}
}

func TestLinkBackpressureNoLineLoss(t *testing.T) {
	dev := newFakeDevice()
	link := NewLink(dev)
	link.Start()
	defer link.Stop()

	// well past the channel capacity: a slow consumer must stall the
	// receive loop, never cost it a line
	const n = 80
	for i := 0; i < n; i++ {
		dev.feed(fmt.Sprintf("ACK %d", i))
	}

	for i := 0; i < n; i++ {
		select {
		case line := <-link.Lines():
			assert.Equal(t, fmt.Sprintf("ACK %d", i), line)
		case <-time.After(2 * time.Second):
			t.Fatalf("line %d never arrived", i)
		}
	}
}

func TestLinkStopUnblocksStalledForward(t *testing.T) {
	dev := newFakeDevice()
	link := NewLink(dev)
	link.Start()

	// fill the forward channel with nobody consuming
	for i := 0; i < 70; i++ {
		dev.feed(fmt.Sprintf("ACK %d", i))
	}
	time.Sleep(100 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		link.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung on a stalled consumer")
	}
	assert.True(t, dev.isClosed())
}

func TestLinkStopClosesDevice(t *testing.T) {
	dev := newFakeDevice()
	link := NewLink(dev)
	link.Start()

	link.Stop()
	assert.True(t, dev.isClosed(), "device must be closed after the loop exits")
}
