// Package filestorage keeps scenarios as append-concatenated anchor JSON
// files in one directory and exports finished play sessions next to them.
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/internal/config"
	"github.com/wheelpath/engine/internal/storage"
	"github.com/wheelpath/engine/pkg/core"
)

const scenarioExt = ".json"

// SessionRecord groups a session with the events it produced
type SessionRecord struct {
	Session core.Session
	Events  []core.GameEvent
}

// Backend stores scenarios on disk and buffers sessions in memory until
// they end.
type Backend struct {
	cfg config.FileConfig

	sessions       map[uuid.UUID]*SessionRecord
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new file backend
func New(cfg config.FileConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		sessions: make(map[uuid.UUID]*SessionRecord),
	}
}

// Init makes sure the scenario directory exists
func (b *Backend) Init() error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// ScenarioPath returns the file a scenario name is stored in.
func (b *Backend) ScenarioPath(name string) string {
	return filepath.Join(b.cfg.OutputDir, fileSafe(name)+scenarioExt)
}

// SaveScenario replaces the scenario file with recs, each stamped with name.
func (b *Backend) SaveScenario(ctx context.Context, name string, recs []anchorfile.AnchorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.ScenarioPath(name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to replace scenario %q: %w", name, err)
	}
	stamped := make([]anchorfile.AnchorRecord, len(recs))
	for i, rec := range recs {
		rec.Scenario = name
		stamped[i] = rec
	}
	return anchorfile.AppendFile(path, stamped...)
}

// LoadScenario decodes a scenario file and keeps the records of that
// scenario. Records without a scenario name are kept.
func (b *Backend) LoadScenario(ctx context.Context, name string) ([]anchorfile.AnchorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	recs, err := anchorfile.ReadFile(b.ScenarioPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", storage.ErrScenarioNotFound, name)
	}
	kept := recs[:0]
	for _, rec := range recs {
		if rec.Scenario == "" || rec.Scenario == name {
			kept = append(kept, rec)
		}
	}
	return kept, err
}

// ListScenarios returns the names of every scenario file, sorted.
func (b *Backend) ListScenarios(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), scenarioExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), scenarioExt))
	}
	sort.Strings(names)
	return names, nil
}

// StartSession begins buffering a play session
func (b *Backend) StartSession(ctx context.Context, s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[s.ID] = &SessionRecord{Session: *s}
	return nil
}

// RecordGameEvent appends an event to its session. Events of unknown
// sessions are dropped.
func (b *Backend) RecordGameEvent(ctx context.Context, e core.GameEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.sessions[e.SessionID]
	if !ok {
		return nil
	}
	rec.Events = append(rec.Events, e)
	return nil
}

// EndSession exports the session and forgets it
func (b *Backend) EndSession(ctx context.Context, s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.sessions[s.ID]
	if !ok {
		return fmt.Errorf("unknown session %s", s.ID)
	}
	rec.Session = *s
	delete(b.sessions, s.ID)
	return b.exportSession(rec)
}

// GetSession returns a copy of a running session's record.
func (b *Backend) GetSession(id uuid.UUID) (SessionRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.sessions[id]
	if !ok {
		return SessionRecord{}, false
	}
	cp := *rec
	cp.Events = append([]core.GameEvent(nil), rec.Events...)
	return cp, true
}

// GetExportedFilePath returns the path of the last session export.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

func fileSafe(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	return strings.ReplaceAll(name, string(filepath.Separator), "_")
}
