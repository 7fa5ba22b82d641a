// Package gormstorage implements the storage.Backend interface on top of GORM.
// Scenarios are written synchronously; game events and pose samples go
// through internal queues drained by a background writer.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/internal/database"
	"github.com/wheelpath/engine/internal/logging"
	"github.com/wheelpath/engine/internal/model"
	"github.com/wheelpath/engine/internal/model/convert"
	"github.com/wheelpath/engine/internal/queue"
	"github.com/wheelpath/engine/internal/storage"
	"github.com/wheelpath/engine/pkg/core"
)

// DefaultFlushInterval is how often the writer drains the queues.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	GameEvents  *queue.Inbox[model.GameEvent]
	PoseSamples *queue.Inbox[model.PoseSample]
}

func newQueues() *queues {
	return &queues{
		GameEvents:  queue.New[model.GameEvent](),
		PoseSamples: queue.New[model.PoseSample](),
	}
}

// Backend implements storage.Backend with GORM.
type Backend struct {
	deps     Dependencies
	queues   *queues
	stopChan chan struct{}
	wg       sync.WaitGroup
	flushMu  sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("no database connection")
	}
	b.deps.LogManager.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.startDBWriter()
	return nil
}

// Close stops the writer and flushes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
		b.stopChan = nil
	}
	if b.deps.DB == nil {
		return nil
	}
	return b.Flush()
}

// SaveScenario replaces every anchor of the named scenario.
func (b *Backend) SaveScenario(ctx context.Context, name string, recs []anchorfile.AnchorRecord) error {
	rows := make([]model.ScenarioAnchor, 0, len(recs))
	for i, rec := range recs {
		row, err := convert.RecordToAnchor(i, rec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scenario := model.Scenario{Name: name}
		if err := tx.Where(model.Scenario{Name: name}).FirstOrCreate(&scenario).Error; err != nil {
			return fmt.Errorf("failed to get or insert scenario %q: %w", name, err)
		}
		if err := tx.Where("scenario_id = ?", scenario.ID).Delete(&model.ScenarioAnchor{}).Error; err != nil {
			return fmt.Errorf("failed to clear scenario %q: %w", name, err)
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ScenarioID = scenario.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert anchors of %q: %w", name, err)
		}
		return nil
	})
}

// LoadScenario returns the records of a scenario in their saved order.
func (b *Backend) LoadScenario(ctx context.Context, name string) ([]anchorfile.AnchorRecord, error) {
	db := b.deps.DB.WithContext(ctx)

	var scenario model.Scenario
	err := db.Where("name = ?", name).First(&scenario).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", storage.ErrScenarioNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scenario %q: %w", name, err)
	}

	var rows []model.ScenarioAnchor
	if err := db.Where("scenario_id = ?", scenario.ID).Order("ordinal").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load anchors of %q: %w", name, err)
	}

	recs := make([]anchorfile.AnchorRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := convert.AnchorToRecord(row)
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ListScenarios returns every scenario name, sorted.
func (b *Backend) ListScenarios(ctx context.Context) ([]string, error) {
	var names []string
	if err := b.deps.DB.WithContext(ctx).Model(&model.Scenario{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return names, nil
}

// StartSession inserts the session synchronously so queued events always
// have a parent row.
func (b *Backend) StartSession(ctx context.Context, s *core.Session) error {
	row := convert.CoreToSession(*s)
	if err := b.deps.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// EndSession flushes the session's queued rows and stores the final state.
func (b *Backend) EndSession(ctx context.Context, s *core.Session) error {
	if err := b.Flush(); err != nil {
		return err
	}
	row := convert.CoreToSession(*s)
	err := b.deps.DB.WithContext(ctx).Model(&model.PlaySession{ID: row.ID}).Updates(map[string]any{
		"end_time":        row.EndTime,
		"minutes":         row.Minutes,
		"seconds":         row.Seconds,
		"num_checkpoints": row.NumCheckpoints,
		"score":           row.Score,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// RecordGameEvent converts and queues a game event.
func (b *Backend) RecordGameEvent(ctx context.Context, e core.GameEvent) error {
	b.queues.GameEvents.Push(convert.CoreToGameEvent(e))
	return nil
}

// RecordPose converts and queues a pose sample.
func (b *Backend) RecordPose(ctx context.Context, sessionID string, sample core.PoseSample) error {
	b.queues.PoseSamples.Push(convert.CoreToPoseSample(sessionID, sample))
	return nil
}

// Sessions returns the stored sessions of a scenario, newest first.
func (b *Backend) Sessions(ctx context.Context, scenario string) ([]core.Session, error) {
	var rows []model.PlaySession
	if err := b.deps.DB.WithContext(ctx).Where("scenario = ?", scenario).Order("start_time desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	out := make([]core.Session, 0, len(rows))
	for _, row := range rows {
		s, err := convert.SessionToCore(row)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

// GameEvents returns the events of a session in time order.
func (b *Backend) GameEvents(ctx context.Context, sessionID string) ([]core.GameEvent, error) {
	var rows []model.GameEvent
	if err := b.deps.DB.WithContext(ctx).Where("session_id = ?", sessionID).Order("time, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load game events: %w", err)
	}
	out := make([]core.GameEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert.GameEventToCore(row))
	}
	return out, nil
}

// Flush writes all queued rows now.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	log := b.deps.LogManager.WriteLog
	return errors.Join(
		writeQueue(b.deps.DB, b.queues.GameEvents, "game events", log),
		writeQueue(b.deps.DB, b.queues.PoseSamples, "pose samples", log),
	)
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed batches are pushed back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Inbox[T], name string, log func(string, string, string)) error {
	items := q.Drain()
	if len(items) == 0 {
		return nil
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return tx.Commit().Error
}

// startDBWriter starts the background goroutine that periodically drains queues into the DB.
func (b *Backend) startDBWriter() {
	ticker := time.NewTicker(b.deps.FlushInterval)
	stop := b.stopChan
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = b.Flush()
			}
		}
	}()
}
