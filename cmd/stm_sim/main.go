// Motor-controller simulator: reads fixed 30-byte command frames from a
// serial device and replies with the start/ack/complete line sequence a
// real controller produces. Pair it with the orchestrator over a
// util.SocatManager pty pair when no hardware is attached.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	serial "go.bug.st/serial"

	"RoboPilot/internal/controller"
	"RoboPilot/internal/util"
)

func main() {
	util.SetupLogger()

	dev := flag.String("dev", "/dev/ttyV1", "serial device to serve")
	peer := flag.String("peer", "", "create a virtual pty pair and expose this path as the orchestrator end")
	baud := flag.Int("baud", 115200, "baud rate")
	delay := flag.Int("delay", 500, "ms between state start and acknowledgment")
	flag.Parse()

	if *peer != "" {
		socat := util.NewSocatManager()
		if err := socat.CreatePair(*dev, *peer); err != nil {
			log.Fatalf("create virtual serial pair: %v", err)
		}
		defer socat.Cleanup()
		// give socat a moment to create the pty links
		time.Sleep(300 * time.Millisecond)
	}

	port, err := serial.Open(*dev, &serial.Mode{BaudRate: *baud})
	if err != nil {
		log.Fatalf("open serial: %v", err)
	}
	defer func() {
		if cerr := port.Close(); cerr != nil {
			log.Printf("warning: close serial err: %v", cerr)
		}
	}()
	if err := port.SetReadTimeout(500 * time.Millisecond); err != nil {
		log.Fatalf("set read timeout: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	log.Printf("[stm-sim] serving %s (baud %d)", *dev, *baud)

	writeLine := func(s string) {
		if _, err := port.Write([]byte(s + "\n")); err != nil {
			log.Printf("[stm-sim] write err: %v", err)
		}
	}

	// announce idle so the link releases its first queued frame
	writeLine("0")

	frame := make([]byte, 0, controller.FrameSize)
	buf := make([]byte, controller.FrameSize)
	for {
		select {
		case <-stop:
			log.Println("[stm-sim] stopping")
			return
		default:
		}

		n, err := port.Read(buf)
		if err != nil {
			log.Printf("[stm-sim] read err: %v", err)
			time.Sleep(200 * time.Millisecond)
			continue
		}
		if n == 0 {
			// idle: repeat the ready line so a frame queued between polls
			// is not stranded waiting for the next completion
			if len(frame) == 0 {
				writeLine("0")
			}
			continue
		}

		frame = append(frame, buf[:n]...)
		for len(frame) >= controller.FrameSize {
			cmd := strings.TrimSpace(string(frame[:controller.FrameSize]))
			frame = append(frame[:0], frame[controller.FrameSize:]...)
			log.Printf("[stm-sim] frame: %q", cmd)

			writeLine("1")
			time.Sleep(time.Duration(*delay) * time.Millisecond)
			writeLine("ACK")
			writeLine("0")
		}
	}
}
