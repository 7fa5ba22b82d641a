package streaming

import (
	"encoding/json"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/pkg/core"
)

// Message type constants matching the spectator protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeGameEvent    = "game_event"
	TypePlayerPose   = "player_pose"
	TypeScenario     = "scenario"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload announces a new play-through.
type StartSessionPayload struct {
	SessionID string        `json:"sessionId"`
	Scenario  string        `json:"scenario"`
	Mode      core.PlayMode `json:"mode"`
}

// GameEventPayload mirrors the event message the spectator app renders.
type GameEventPayload struct {
	SessionID string          `json:"sessionId"`
	Type      core.EventType  `json:"type"`
	Position  core.Position3D `json:"position"`
	Delta     int             `json:"delta"`
	State     core.GameState  `json:"state"`
}

// PlayerPosePayload is a fire-and-forget pose update.
type PlayerPosePayload struct {
	SessionID string          `json:"sessionId"`
	Position  core.Position3D `json:"position"`
	Rotation  core.Rotation3D `json:"rotation"`
}

// EndSessionPayload closes a play-through with its final state.
type EndSessionPayload struct {
	SessionID string         `json:"sessionId"`
	Final     core.GameState `json:"final"`
}

// ScenarioPayload publishes a saved layout so the spectator can draw it.
type ScenarioPayload struct {
	Name    string                    `json:"name"`
	Anchors []anchorfile.AnchorRecord `json:"anchors"`
}
