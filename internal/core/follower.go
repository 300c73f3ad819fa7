package core

import (
	"context"
	"log"

	"RoboPilot/internal/controller"
)

// commandFollower executes queued directives one at a time. For each
// directive it waits for the start gate, acquires the movement lock and,
// for controller directives, forwards a zero-parameter state command. It
// never releases the lock itself: the acknowledgment worker does, once the
// controller confirms the movement physically completed. That hand-off is
// what keeps exactly one command in flight.
func (o *Orchestrator) commandFollower(ctx context.Context) {
	for {
		cmd, err := o.commands.Get(ctx)
		if err != nil {
			return
		}
		if err := o.startGate.Wait(ctx); err != nil {
			return
		}
		if err := o.movement.Acquire(ctx); err != nil {
			return
		}

		if controller.IsControllerDirective(cmd) {
			o.link.Enqueue(controller.Directive(cmd))
			continue
		}
		log.Printf("warning: unknown directive %q, not forwarded", cmd)
	}
}
