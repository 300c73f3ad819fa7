package core

import (
	"context"
	"log"
)

// sendApp drains the outbound queue into the app link. A failed send raises
// the dropped flag; the message itself is not requeued.
func (o *Orchestrator) sendApp(ctx context.Context) {
	for {
		msg, err := o.appOut.Get(ctx)
		if err != nil {
			return
		}
		if err := o.app.Send(msg); err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			log.Printf("[core] app send failed: %v", err)
			o.appDropped.Set()
		}
	}
}
