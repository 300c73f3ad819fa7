// Package core contains the orchestrator runtime: the worker pipeline
// between the remote control app, the external path planner and the motor
// controller. Workers communicate only through shared queues, a movement
// semaphore and edge-triggered flags created once at startup.
package core

import (
	"context"
	"fmt"
	"log"
	"sync"

	"RoboPilot/internal/controller"
	"RoboPilot/internal/model"
	"RoboPilot/internal/planner"
	"RoboPilot/internal/syncx"
)

// AppLink abstracts the transport to the remote control application.
type AppLink interface {
	// Connect blocks until the app establishes a connection.
	Connect(ctx context.Context) error
	// Recv returns the next inbound payload, blocking.
	Recv() ([]byte, error)
	// Send writes one outbound message.
	Send(msg model.AndroidMessage) error
	// Disconnect tears down the active connection.
	Disconnect()
}

// Planner abstracts the external path-planning/recognition service.
type Planner interface {
	Reachable(ctx context.Context) bool
	RequestPath(ctx context.Context, obstacles []model.Obstacle) (*planner.PathResponse, error)
	Snap(ctx context.Context, obstacleID int, signal string) (string, error)
	Stitch(ctx context.Context) (string, error)
}

// Orchestrator owns every queue, lock and worker of the robot pipeline.
// All shared primitives are created once in New and live until Stop.
type Orchestrator struct {
	app  AppLink
	link *controller.Link
	plan Planner

	appOut   *syncx.Queue[model.AndroidMessage] // messages to send to the app
	actions  *syncx.Queue[model.PiAction]       // tasks for the action worker
	commands *syncx.Queue[string]               // directives for the follower
	expected *syncx.Queue[model.Location]       // pose expected after each movement

	movement   *syncx.Semaphore // one in-flight controller command
	startGate  *syncx.Gate      // opened once by control "start"
	appDropped *syncx.Event     // edge trigger for the reconnection supervisor

	mu        sync.Mutex
	obstacles map[int]model.Obstacle // written only by the action worker
	location  model.Location         // written only by the ack worker
	hasLoc    bool

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// current app worker generation, owned by the supervisor after Start
	appCancel context.CancelFunc
	appWG     *sync.WaitGroup
}

// New wires an orchestrator from its collaborators. Start launches it.
func New(app AppLink, link *controller.Link, plan Planner) *Orchestrator {
	return &Orchestrator{
		app:        app,
		link:       link,
		plan:       plan,
		appOut:     syncx.NewQueue[model.AndroidMessage](),
		actions:    syncx.NewQueue[model.PiAction](),
		commands:   syncx.NewQueue[string](),
		expected:   syncx.NewQueue[model.Location](),
		movement:   syncx.NewSemaphore(),
		startGate:  syncx.NewGate(),
		appDropped: syncx.NewEvent(),
		obstacles:  make(map[int]model.Obstacle),
	}
}

// Start connects the app, launches the controller link and every worker,
// then returns with the pipeline live. The caller stops it with Stop.
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if err := o.app.Connect(ctx); err != nil {
		return fmt.Errorf("app link connect: %w", err)
	}
	o.appOut.Put(model.Info("You are connected to the robot!"))

	if !o.plan.Reachable(ctx) {
		log.Printf("warning: planner service not reachable at startup")
	}

	o.link.Start()

	o.wg.Add(3)
	go func() { defer o.wg.Done(); o.ackWorker(ctx) }()
	go func() { defer o.wg.Done(); o.commandFollower(ctx) }()
	go func() { defer o.wg.Done(); o.actionWorker(ctx) }()

	o.appCancel, o.appWG = o.startAppWorkers(ctx)

	o.wg.Add(1)
	go func() { defer o.wg.Done(); o.superviseApp(ctx) }()

	o.appOut.Put(model.Info("Robot is ready!"))
	o.appOut.Put(model.Mode("path"))
	log.Printf("[core] workers started")
	return nil
}

// Stop cancels every worker, waits for them and shuts the controller link
// down. The app transport itself is closed by the caller.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.app.Disconnect()
	o.wg.Wait()
	o.link.Stop()
	log.Printf("[core] stopped")
}

// startAppWorkers spawns one send/receive pair bound to a fresh context so
// the supervisor can terminate exactly that generation.
func (o *Orchestrator) startAppWorkers(parent context.Context) (context.CancelFunc, *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); o.recvApp(ctx) }()
	go func() { defer wg.Done(); o.sendApp(ctx) }()
	return cancel, &wg
}

func (o *Orchestrator) setLocation(loc model.Location) {
	o.mu.Lock()
	o.location = loc
	o.hasLoc = true
	o.mu.Unlock()
}

// Location returns the most recently acknowledged robot pose.
func (o *Orchestrator) Location() (model.Location, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.location, o.hasLoc
}
