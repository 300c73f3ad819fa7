// Package device defines a line-oriented interface for serial communication
// channels and its implementation on physical ports via go.bug.st/serial.
package device

import "time"

// Device is an abstract serial channel. The controller link reads inbound
// lines and writes fixed-width frames through this interface, which keeps
// the protocol layer testable without hardware.
type Device interface {
	// ReadLine returns the next line terminated by '\n'. If timeout > 0 it
	// returns ErrReadTimeout when no full line arrived within the window.
	ReadLine(timeout time.Duration) (string, error)

	// Write writes p to the device in a single call.
	Write(p []byte) error

	// WriteLine writes s followed by '\n'.
	WriteLine(s string) error

	// Close closes the device and releases underlying resources.
	Close() error
}
