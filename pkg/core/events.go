// pkg/core/events.go
package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies gameplay events forwarded to the spectator.
type EventType string

const (
	EventHint       EventType = "HINT"
	EventGoal       EventType = "GOAL"
	EventDodgeObj   EventType = "DODGE_OBJ"
	EventCheckpoint EventType = "CHECKPOINT"
	EventDodgeFail  EventType = "DODGE_FAIL"
)

// GameState is the scoreboard snapshot attached to every event.
type GameState struct {
	Minutes        int `json:"minutes"`
	Seconds        int `json:"seconds"`
	NumCheckpoints int `json:"num_checkpoints"`
	Score          int `json:"score"`
}

// Clock formats the elapsed time as mm:ss.
func (g GameState) Clock() string {
	return fmt.Sprintf("%02d:%02d", g.Minutes, g.Seconds)
}

// GameEvent is something that happened during a play session.
type GameEvent struct {
	SessionID uuid.UUID
	Time      time.Time
	Type      EventType
	Position  Position3D
	Delta     int // score change caused by this event
	State     GameState
}

// PlayMode selects how the player is guided along the path.
type PlayMode string

const (
	ModeStatic PlayMode = "static" // hints visible, score by distance to the curve
	ModeMoving PlayMode = "moving" // follow an object walking the curve
)

// Session is one play-through of a scenario.
type Session struct {
	ID        uuid.UUID
	Scenario  string
	Mode      PlayMode
	StartTime time.Time
	EndTime   time.Time
	Final     GameState
}

// PoseSample is a timestamped player pose used for telemetry and trail scoring.
type PoseSample struct {
	Time time.Time
	Pose Pose
}
