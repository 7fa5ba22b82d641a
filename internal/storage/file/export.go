package filestorage

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SessionExport is the root JSON structure of an exported play session
type SessionExport struct {
	SessionID      string      `json:"sessionId"`
	Scenario       string      `json:"scenario"`
	Mode           string      `json:"mode"`
	StartTime      time.Time   `json:"startTime"`
	EndTime        time.Time   `json:"endTime"`
	Score          int         `json:"score"`
	NumCheckpoints int         `json:"numCheckpoints"`
	Duration       string      `json:"duration"`
	Events         []EventJSON `json:"events"`
}

// EventJSON is one game event as the spectator renders it
type EventJSON struct {
	Time     time.Time  `json:"time"`
	Type     string     `json:"type"`
	Position [3]float64 `json:"position"`
	Delta    int        `json:"delta"`
	Score    int        `json:"score"`
	Clock    string     `json:"clock"`
}

// exportSession writes the session to OutputDir/sessions
func (b *Backend) exportSession(rec *SessionRecord) error {
	export := buildExport(rec)

	name := fileSafe(rec.Session.Scenario)
	timestamp := rec.Session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}

	dir := filepath.Join(b.cfg.OutputDir, "sessions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}
	outputPath := filepath.Join(dir, filename)

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func buildExport(rec *SessionRecord) SessionExport {
	s := rec.Session
	export := SessionExport{
		SessionID:      s.ID.String(),
		Scenario:       s.Scenario,
		Mode:           string(s.Mode),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		Score:          s.Final.Score,
		NumCheckpoints: s.Final.NumCheckpoints,
		Duration:       s.Final.Clock(),
		Events:         make([]EventJSON, 0, len(rec.Events)),
	}
	for _, e := range rec.Events {
		export.Events = append(export.Events, EventJSON{
			Time:     e.Time,
			Type:     string(e.Type),
			Position: [3]float64{e.Position.X, e.Position.Y, e.Position.Z},
			Delta:    e.Delta,
			Score:    e.State.Score,
			Clock:    e.State.Clock(),
		})
	}
	return export
}

func writeJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
