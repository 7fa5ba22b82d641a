// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/internal/model"
	"github.com/wheelpath/engine/pkg/core"
)

// RecordToAnchor converts an anchor record to its row. ordinal keeps the
// record's position within the scenario.
func RecordToAnchor(ordinal int, rec anchorfile.AnchorRecord) (model.ScenarioAnchor, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return model.ScenarioAnchor{}, fmt.Errorf("failed to marshal anchor %q: %w", rec.Name, err)
	}
	return model.ScenarioAnchor{
		Ordinal: ordinal,
		Name:    rec.Name,
		CloudID: rec.ID,
		Objects: len(rec.ListAnchorObjects),
		Record:  datatypes.JSON(data),
	}, nil
}

// AnchorToRecord decodes the stored record of a row.
func AnchorToRecord(row model.ScenarioAnchor) (anchorfile.AnchorRecord, error) {
	var rec anchorfile.AnchorRecord
	if err := json.Unmarshal(row.Record, &rec); err != nil {
		return rec, fmt.Errorf("%w: anchor row %d: %v", anchorfile.ErrMalformedRecord, row.ID, err)
	}
	return rec, nil
}

// CoreToSession converts a core.Session to a GORM model.PlaySession.
func CoreToSession(s core.Session) model.PlaySession {
	return model.PlaySession{
		ID:             s.ID.String(),
		Scenario:       s.Scenario,
		Mode:           string(s.Mode),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		Minutes:        s.Final.Minutes,
		Seconds:        s.Final.Seconds,
		NumCheckpoints: s.Final.NumCheckpoints,
		Score:          s.Final.Score,
	}
}

// SessionToCore converts a GORM model.PlaySession back to core.Session.
func SessionToCore(s model.PlaySession) (core.Session, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return core.Session{}, fmt.Errorf("invalid session id %q: %w", s.ID, err)
	}
	return core.Session{
		ID:        id,
		Scenario:  s.Scenario,
		Mode:      core.PlayMode(s.Mode),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Final: core.GameState{
			Minutes:        s.Minutes,
			Seconds:        s.Seconds,
			NumCheckpoints: s.NumCheckpoints,
			Score:          s.Score,
		},
	}, nil
}

// CoreToGameEvent converts a core.GameEvent to a GORM model.GameEvent.
func CoreToGameEvent(e core.GameEvent) model.GameEvent {
	state, _ := json.Marshal(e.State)
	return model.GameEvent{
		SessionID: e.SessionID.String(),
		Time:      e.Time,
		Type:      string(e.Type),
		X:         e.Position.X,
		Y:         e.Position.Y,
		Z:         e.Position.Z,
		Delta:     e.Delta,
		State:     datatypes.JSON(state),
	}
}

// GameEventToCore converts a GORM model.GameEvent back to core.GameEvent.
// A row without a readable state keeps a zero state.
func GameEventToCore(e model.GameEvent) core.GameEvent {
	out := core.GameEvent{
		Time:     e.Time,
		Type:     core.EventType(e.Type),
		Position: core.Position3D{X: e.X, Y: e.Y, Z: e.Z},
		Delta:    e.Delta,
	}
	out.SessionID, _ = uuid.Parse(e.SessionID)
	if len(e.State) > 0 {
		_ = json.Unmarshal(e.State, &out.State)
	}
	return out
}

// CoreToPoseSample converts a player pose sample to a GORM model.PoseSample.
func CoreToPoseSample(sessionID string, p core.PoseSample) model.PoseSample {
	return model.PoseSample{
		SessionID: sessionID,
		Time:      p.Time,
		X:         p.Pose.Position.X,
		Y:         p.Pose.Position.Y,
		Z:         p.Pose.Position.Z,
		Pitch:     p.Pose.Rotation.Pitch,
		Yaw:       p.Pose.Rotation.Yaw,
		Roll:      p.Pose.Rotation.Roll,
	}
}

// PoseSampleToCore converts a GORM model.PoseSample back to core.PoseSample.
func PoseSampleToCore(p model.PoseSample) core.PoseSample {
	return core.PoseSample{
		Time: p.Time,
		Pose: core.Pose{
			Position: core.Position3D{X: p.X, Y: p.Y, Z: p.Z},
			Rotation: core.Rotation3D{Pitch: p.Pitch, Yaw: p.Yaw, Roll: p.Roll},
		},
	}
}
