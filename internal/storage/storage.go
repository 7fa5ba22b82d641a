// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/pkg/core"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	// ErrUnsupported is returned by backends that only stream and cannot
	// give scenarios back.
	ErrUnsupported = errors.New("operation not supported by backend")
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Scenarios
	SaveScenario(ctx context.Context, name string, recs []anchorfile.AnchorRecord) error
	LoadScenario(ctx context.Context, name string) ([]anchorfile.AnchorRecord, error)
	ListScenarios(ctx context.Context) ([]string, error)

	// Play sessions
	StartSession(ctx context.Context, s *core.Session) error
	EndSession(ctx context.Context, s *core.Session) error
	RecordGameEvent(ctx context.Context, e core.GameEvent) error
}

// PoseRecorder is an optional interface for backends that accept the
// player's pose stream during play.
type PoseRecorder interface {
	RecordPose(ctx context.Context, sessionID string, sample core.PoseSample) error
}
