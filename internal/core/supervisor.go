package core

import (
	"context"
	"log"

	"RoboPilot/internal/model"
)

// superviseApp is the only automatic recovery path in the system. It blocks
// on the dropped flag; each trigger terminates the current send/receive
// pair, waits for confirmed exit, re-establishes the app transport, spawns
// a fresh pair and clears the flag. The controller link deliberately has no
// analogous recovery.
func (o *Orchestrator) superviseApp(ctx context.Context) {
	log.Printf("[core] reconnection supervisor watching")
	for {
		if err := o.appDropped.Wait(ctx); err != nil {
			// shutting down: take the current pair with us
			o.appCancel()
			o.app.Disconnect()
			o.appWG.Wait()
			return
		}
		log.Printf("[core] app link is down, restarting app workers")

		o.appCancel()
		o.app.Disconnect()
		o.appWG.Wait()

		if err := o.app.Connect(ctx); err != nil {
			// cancelled while waiting for the app to come back
			return
		}
		o.appCancel, o.appWG = o.startAppWorkers(ctx)

		o.appOut.Put(model.Info("You are reconnected!"))
		o.appOut.Put(model.Mode("path"))
		o.appDropped.Clear()
		log.Printf("[core] app workers restarted")
	}
}
