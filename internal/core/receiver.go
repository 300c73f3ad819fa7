package core

import (
	"context"
	"log"
	"time"

	"RoboPilot/internal/controller"
	"RoboPilot/internal/model"
)

// recvApp ingests envelopes from the app and routes them into the pipeline.
// A transport failure raises the dropped flag and the loop carries on; the
// supervisor decides when to replace this worker.
func (o *Orchestrator) recvApp(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := o.app.Recv()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			log.Printf("[core] app receive failed: %v", err)
			o.appDropped.Set()
			time.Sleep(100 * time.Millisecond)
			continue
		}

		in, err := model.ParseInbound(data)
		if err != nil {
			log.Printf("warning: bad app message: %v", err)
			continue
		}
		switch m := in.(type) {
		case model.InboundAction:
			o.actions.Put(m.Action)
			log.Printf("[core] action queued: %T", m.Action)
		case model.InboundControl:
			o.handleControl(ctx, m.Value)
		}
	}
}

// handleControl processes a control directive. "start" opens the start gate
// once the preconditions hold: the planner must answer and commands must be
// queued.
func (o *Orchestrator) handleControl(ctx context.Context, value string) {
	if value != model.ControlStart {
		log.Printf("warning: unknown control value %q", value)
		return
	}
	if !o.plan.Reachable(ctx) {
		log.Printf("[core] planner is down, start command aborted")
		o.appOut.Put(model.Error("Planner is down, start command aborted."))
		return
	}
	if o.commands.Empty() {
		log.Printf("warning: command queue is empty, start refused")
		o.appOut.Put(model.Error("Command queue is empty, did you set obstacles?"))
		return
	}

	// gyro reset first; its acknowledgment arms the movement pipeline
	o.link.Enqueue(controller.ResetGyro())
	o.startGate.Open()
	log.Printf("[core] start received, following path")
	o.appOut.Put(model.Info("Starting robot on path!"))
	o.appOut.Put(model.Status("running"))
}
