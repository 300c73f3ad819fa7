package core

import (
	"context"
	"errors"
	"log"
	"strings"

	"RoboPilot/internal/model"
	"RoboPilot/internal/syncx"
)

// ackPrefix marks controller acknowledgment lines.
const ackPrefix = "ACK"

// ackState tracks the reset handshake with the controller.
type ackState int

const (
	// awaitingResetAck is the initial state: the next ACK answers the gyro
	// reset and must not release the movement lock.
	awaitingResetAck ackState = iota
	ackNormal
)

// ackWorker consumes controller lines, releasing the movement lock on each
// acknowledgment and publishing the pose reached. The first ACK of a run
// answers the gyro reset and is consumed without a release.
func (o *Orchestrator) ackWorker(ctx context.Context) {
	state := awaitingResetAck
	for {
		var line string
		select {
		case <-ctx.Done():
			return
		case line = <-o.link.Lines():
		}

		if !strings.HasPrefix(line, ackPrefix) {
			log.Printf("warning: ignored controller line %q", line)
			continue
		}

		if state == awaitingResetAck {
			state = ackNormal
			log.Printf("[core] reset acknowledged by controller")
			continue
		}

		if err := o.movement.Release(); err != nil {
			if errors.Is(err, syncx.ErrNotHeld) {
				log.Printf("warning: acknowledgment with no movement in flight")
			}
		}

		loc, ok := o.expected.TryGet()
		if !ok {
			log.Printf("warning: no expected location for acknowledgment")
			continue
		}
		o.setLocation(loc)
		log.Printf("[core] location: x=%d y=%d d=%d", loc.X, loc.Y, loc.D)
		o.appOut.Put(model.LocationUpdate(loc))
	}
}
