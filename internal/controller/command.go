// Package controller implements the serial protocol to the motor controller:
// fixed-width state-command frames, acknowledgment-gated flow control and a
// background receive loop that classifies inbound lines.
package controller

import (
	"fmt"
	"strconv"
	"strings"
)

// FrameSize is the fixed width of every outbound frame, in bytes.
const FrameSize = 30

// StateCommand is one motor directive with its speed, parameter and scale.
// At most one StateCommand is outstanding on the wire at any time.
type StateCommand struct {
	Code       string
	MotorSpeed int
	Param      float64
	Scale      float64
}

// ResetGyro is the gyroscope reset issued before a path run starts. The
// controller answers it with the first acknowledgment of the run.
func ResetGyro() StateCommand {
	return StateCommand{Code: "RS00"}
}

// Directive wraps a bare path directive with zeroed auxiliary parameters.
// Fine-grained turn parameterization goes through StateCommand directly.
func Directive(code string) StateCommand {
	return StateCommand{Code: code}
}

// Frame renders the command as a fixed 30-byte space-padded ASCII frame:
// "<code> <speed> <param> <scale>". Commands that render wider than the
// frame are rejected.
func (c StateCommand) Frame() ([]byte, error) {
	text := fmt.Sprintf("%s %d %s %s",
		c.Code, c.MotorSpeed, formatFloat(c.Param), formatFloat(c.Scale))
	if len(text) > FrameSize {
		return nil, fmt.Errorf("command %q renders to %d bytes, frame limit is %d",
			c.Code, len(text), FrameSize)
	}
	frame := []byte(text + strings.Repeat(" ", FrameSize-len(text)))
	return frame, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// directivePrefixes lists every code family the controller firmware accepts:
// straight movement, turns in all four quadrants, action/capture codes, the
// distance probe, stops and resets.
var directivePrefixes = []string{
	"FS", "BS", "FW", "BW", "FL", "FR", "BL", "BR", "TL", "TR",
	"A", "C", "DT", "STOP", "ZZ", "RS",
}

// IsControllerDirective reports whether cmd is destined for the motor
// controller rather than handled elsewhere in the pipeline.
func IsControllerDirective(cmd string) bool {
	for _, p := range directivePrefixes {
		if strings.HasPrefix(cmd, p) {
			return true
		}
	}
	return false
}
