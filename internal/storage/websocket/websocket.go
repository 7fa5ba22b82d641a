// Package websocket streams play sessions to a spectator over WebSocket.
// Scenarios are published but cannot be read back.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/internal/storage"
	"github.com/wheelpath/engine/pkg/core"
	"github.com/wheelpath/engine/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
	Logger *slog.Logger
}

// Backend implements storage.Backend and storage.PoseRecorder.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config) *Backend {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("backend", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the spectator server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the spectator server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope pushes the message to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// SaveScenario publishes the layout.
func (b *Backend) SaveScenario(ctx context.Context, name string, recs []anchorfile.AnchorRecord) error {
	return b.sendEnvelope(streaming.TypeScenario, streaming.ScenarioPayload{Name: name, Anchors: recs})
}

func (b *Backend) LoadScenario(ctx context.Context, name string) ([]anchorfile.AnchorRecord, error) {
	return nil, fmt.Errorf("load scenario: %w", storage.ErrUnsupported)
}

func (b *Backend) ListScenarios(ctx context.Context) ([]string, error) {
	return nil, fmt.Errorf("list scenarios: %w", storage.ErrUnsupported)
}

// StartSession announces the session and waits for the server ack. The
// message is kept for replay after a reconnect.
func (b *Backend) StartSession(ctx context.Context, s *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{
		SessionID: s.ID.String(),
		Scenario:  s.Scenario,
		Mode:      s.Mode,
	})
	if err != nil {
		return err
	}
	b.conn.setSessionMsg(data)
	return b.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends the final state and waits for the server ack.
func (b *Backend) EndSession(ctx context.Context, s *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeEndSession, streaming.EndSessionPayload{
		SessionID: s.ID.String(),
		Final:     s.Final,
	})
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndSession, ackTimeout)
	b.conn.setSessionMsg(nil)
	return err
}

func (b *Backend) RecordGameEvent(ctx context.Context, e core.GameEvent) error {
	return b.sendEnvelope(streaming.TypeGameEvent, streaming.GameEventPayload{
		SessionID: e.SessionID.String(),
		Type:      e.Type,
		Position:  e.Position,
		Delta:     e.Delta,
		State:     e.State,
	})
}

func (b *Backend) RecordPose(ctx context.Context, sessionID string, sample core.PoseSample) error {
	return b.sendEnvelope(streaming.TypePlayerPose, streaming.PlayerPosePayload{
		SessionID: sessionID,
		Position:  sample.Pose.Position,
		Rotation:  sample.Pose.Rotation,
	})
}
