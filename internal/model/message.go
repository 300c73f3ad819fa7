// Package model defines the shared message and configuration structures for RoboPilot.
package model

import (
	"encoding/json"
	"fmt"
)

// Category tags an app-link envelope. The wire format is a JSON object
// {"cat": <category>, "value": <payload>} in both directions.
type Category string

const (
	// Outbound categories (orchestrator -> app).
	CatInfo     Category = "info"
	CatError    Category = "error"
	CatMode     Category = "mode"
	CatStatus   Category = "status"
	CatLocation Category = "location"

	// Inbound categories (app -> orchestrator).
	CatObstacles Category = "obstacles"
	CatControl   Category = "control"
	CatSnap      Category = "snap"
	CatStitch    Category = "stitch"
)

// ControlStart is the control value that opens the start gate.
const ControlStart = "start"

// AndroidMessage is one outbound envelope sent over the app link.
type AndroidMessage struct {
	Cat   Category `json:"cat"`
	Value any      `json:"value"`
}

// Info builds an informational message for the app.
func Info(text string) AndroidMessage { return AndroidMessage{Cat: CatInfo, Value: text} }

// Error builds a user-facing error message for the app.
func Error(text string) AndroidMessage { return AndroidMessage{Cat: CatError, Value: text} }

// Mode reports the robot's operating mode to the app.
func Mode(mode string) AndroidMessage { return AndroidMessage{Cat: CatMode, Value: mode} }

// Status reports the run status (e.g. "running") to the app.
func Status(status string) AndroidMessage { return AndroidMessage{Cat: CatStatus, Value: status} }

// LocationUpdate reports the robot pose after an acknowledged movement.
func LocationUpdate(loc Location) AndroidMessage {
	return AndroidMessage{Cat: CatLocation, Value: loc}
}

// Location is the robot pose on the arena grid.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
	D int `json:"d"`
}

// Obstacle is a positioned object reported by the app and consumed by the
// external path planner. Direction is the facing of the obstacle's image side.
type Obstacle struct {
	ID        int    `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Direction int    `json:"d"`
	Signal    string `json:"signal,omitempty"`
}

// PiAction is an internal task derived from an inbound app command that
// requires orchestration. Exactly one variant exists per task kind.
type PiAction interface{ piAction() }

// ObstaclesAction carries a fresh obstacle layout destined for the planner.
type ObstaclesAction struct {
	Obstacles []Obstacle
}

// SnapAction requests a capture/recognition round for one obstacle face.
type SnapAction struct {
	ObstacleID int
	Signal     string
}

// StitchAction requests the recognition side to stitch collected images.
type StitchAction struct{}

func (ObstaclesAction) piAction() {}
func (SnapAction) piAction()      {}
func (StitchAction) piAction()    {}

// Inbound is a validated app -> orchestrator message.
type Inbound interface{ inbound() }

// InboundControl is a control directive such as "start".
type InboundControl struct {
	Value string
}

// InboundAction wraps a PiAction parsed straight from the envelope.
type InboundAction struct {
	Action PiAction
}

func (InboundControl) inbound() {}
func (InboundAction) inbound()  {}

// envelope mirrors the raw app wire format.
type envelope struct {
	Cat   Category        `json:"cat"`
	Value json.RawMessage `json:"value"`
}

// ParseInbound validates an app envelope and returns the corresponding
// Inbound variant. Unknown categories and malformed payloads are errors.
func ParseInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Cat {
	case CatControl:
		var v string
		if err := json.Unmarshal(env.Value, &v); err != nil {
			return nil, fmt.Errorf("decode control value: %w", err)
		}
		return InboundControl{Value: v}, nil
	case CatObstacles:
		var v struct {
			Obstacles []Obstacle `json:"obstacles"`
		}
		if err := json.Unmarshal(env.Value, &v); err != nil {
			return nil, fmt.Errorf("decode obstacles value: %w", err)
		}
		return InboundAction{Action: ObstaclesAction{Obstacles: v.Obstacles}}, nil
	case CatSnap:
		var v struct {
			ID     int    `json:"id"`
			Signal string `json:"signal"`
		}
		if err := json.Unmarshal(env.Value, &v); err != nil {
			return nil, fmt.Errorf("decode snap value: %w", err)
		}
		return InboundAction{Action: SnapAction{ObstacleID: v.ID, Signal: v.Signal}}, nil
	case CatStitch:
		return InboundAction{Action: StitchAction{}}, nil
	default:
		return nil, fmt.Errorf("unknown category %q", env.Cat)
	}
}
