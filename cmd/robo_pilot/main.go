// Package main is the RoboPilot entrypoint. It loads the configuration,
// opens the serial channel to the motor controller, binds the app link and
// runs the orchestrator until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"RoboPilot/internal/android"
	"RoboPilot/internal/controller"
	"RoboPilot/internal/core"
	"RoboPilot/internal/device"
	"RoboPilot/internal/model"
	"RoboPilot/internal/planner"
	"RoboPilot/internal/util"
)

func main() {
	util.SetupLogger()

	cfgPath := flag.String("c", "configs/config.yml", "path to configuration file")
	flag.Parse()

	cfg, err := model.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("[main] using config: %s", *cfgPath)

	dev, err := device.NewSerialDevice(cfg.Serial.Device, cfg.Serial.Baud)
	if err != nil {
		log.Fatalf("open controller serial: %v", err)
	}
	link := controller.NewLink(dev)

	app, err := android.NewLink(cfg.Android.Addr)
	if err != nil {
		log.Fatalf("bind app link: %v", err)
	}

	plan := planner.NewClient(cfg.Planner.BaseURL())

	orch := core.New(app, link, plan)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf("[main] waiting for the app to connect on %s", app.Addr())
	if err := orch.Start(ctx); err != nil {
		log.Fatalf("start orchestrator: %v", err)
	}
	log.Printf("[main] running (serial=%s planner=%s)", cfg.Serial.Device, cfg.Planner.BaseURL())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down...")
	cancel()
	orch.Stop()
	app.Close()
	log.Println("[main] stopped cleanly")
}
