package core

import (
	"context"
	"log"
	"sort"

	"RoboPilot/internal/model"
)

// actionWorker executes queued PiActions: obstacle layouts go to the path
// planner, snap and stitch rounds go to the recognition side. Results are
// opaque at this layer and only logged or forwarded.
func (o *Orchestrator) actionWorker(ctx context.Context) {
	for {
		action, err := o.actions.Get(ctx)
		if err != nil {
			return
		}
		switch a := action.(type) {
		case model.ObstaclesAction:
			o.handleObstacles(ctx, a)
		case model.SnapAction:
			result, err := o.plan.Snap(ctx, a.ObstacleID, a.Signal)
			if err != nil {
				log.Printf("[core] snap failed: %v", err)
				continue
			}
			log.Printf("[core] snap result for obstacle %d: %s", a.ObstacleID, result)
		case model.StitchAction:
			result, err := o.plan.Stitch(ctx)
			if err != nil {
				log.Printf("[core] stitch failed: %v", err)
				continue
			}
			log.Printf("[core] stitch done: %s", result)
		default:
			log.Printf("warning: unhandled action %T", action)
		}
	}
}

// handleObstacles merges the reported layout into the obstacle map (last
// write wins per id) and asks the planner for a path. Returned directives
// feed the command queue; expected poses feed the location queue in the
// same order, skipping the start pose the robot already occupies.
func (o *Orchestrator) handleObstacles(ctx context.Context, a model.ObstaclesAction) {
	o.mu.Lock()
	for _, obs := range a.Obstacles {
		o.obstacles[obs.ID] = obs
	}
	layout := make([]model.Obstacle, 0, len(o.obstacles))
	for _, obs := range o.obstacles {
		layout = append(layout, obs)
	}
	o.mu.Unlock()
	sort.Slice(layout, func(i, j int) bool { return layout[i].ID < layout[j].ID })

	resp, err := o.plan.RequestPath(ctx, layout)
	if err != nil {
		log.Printf("[core] path request failed: %v", err)
		o.appOut.Put(model.Error("Path request failed, please retry."))
		return
	}
	if resp.Error != "" {
		log.Printf("[core] planner error: %s", resp.Error)
		o.appOut.Put(model.Error("Planner rejected the obstacle layout."))
		return
	}

	for _, cmd := range resp.Data.Commands {
		o.commands.Put(cmd)
	}
	for i, loc := range resp.Data.Path {
		if i == 0 {
			continue
		}
		o.expected.Put(loc)
	}
	log.Printf("[core] %d commands planned for %d obstacles",
		len(resp.Data.Commands), len(layout))
	o.appOut.Put(model.Info("Commands and path received, ready to start!"))
}

// ObstacleCount reports how many distinct obstacle ids are known.
func (o *Orchestrator) ObstacleCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.obstacles)
}
