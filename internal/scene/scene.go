// Package scene owns the placed objects and anchors of one authoring or
// gameplay session and keeps the sampled path in step with them.
package scene

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/internal/path"
	"github.com/wheelpath/engine/internal/queue"
	"github.com/wheelpath/engine/pkg/core"
)

var (
	ErrUnknownObject  = errors.New("unknown object")
	ErrUnknownAnchor  = errors.New("unknown anchor")
	ErrTooManyAnchors = errors.New("anchor limit reached")
	ErrNotPathPoint   = errors.New("object is not a path point")
)

// DefaultMaxAnchors caps anchors per scenario.
const DefaultMaxAnchors = 20

// Config tunes a scene.
type Config struct {
	Path          path.Config
	ChangeEpsilon float64
	MaxAnchors    int
}

// Creator hosts a new anchor in the AR subsystem and returns its cloud id.
type Creator interface {
	CreateAnchor(ctx context.Context, pose core.Pose) (string, error)
}

// Resolver resolves a persisted anchor id to its current world pose. It may
// block for a long time and may never succeed.
type Resolver interface {
	ResolveAnchor(ctx context.Context, id string) (core.Pose, error)
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scene) { s.log = l }
}

// WithMeter records rebuild and resolution counters on m.
func WithMeter(m metric.Meter) Option {
	return func(s *Scene) { s.meter = m }
}

// WithCreator hosts anchors through c when they are placed.
func WithCreator(c Creator) Option {
	return func(s *Scene) { s.creator = c }
}

// Scene is driven from a single frame loop. Only anchor resolution runs on
// other goroutines, and its results are applied in Update.
type Scene struct {
	cfg     Config
	log     *slog.Logger
	meter   metric.Meter
	creator Creator

	objects map[uuid.UUID]*core.PlacedObject
	order   []uuid.UUID
	anchors map[uuid.UUID]*core.Anchor
	aOrder  []uuid.UUID
	hostOf  map[uuid.UUID]uuid.UUID

	start      core.Pose
	startDirty bool

	classifier path.Classifier
	detector   path.ChangeDetector
	builder    *path.Builder
	curve      *path.Curve

	inbox      *queue.Inbox[resolution]
	generation uint64
	pending    int

	rebuilds metric.Int64Counter
	resolved metric.Int64Counter
	failed   metric.Int64Counter
}

// New creates an empty scene with the start reference at the origin.
func New(cfg Config, opts ...Option) *Scene {
	if cfg.MaxAnchors <= 0 {
		cfg.MaxAnchors = DefaultMaxAnchors
	}
	s := &Scene{
		cfg:      cfg,
		log:      slog.Default(),
		meter:    noop.Meter{},
		objects:  make(map[uuid.UUID]*core.PlacedObject),
		anchors:  make(map[uuid.UUID]*core.Anchor),
		hostOf:   make(map[uuid.UUID]uuid.UUID),
		detector: path.ChangeDetector{Epsilon: cfg.ChangeEpsilon},
		builder:  path.NewBuilder(cfg.Path),
		curve:    &path.Curve{},
		inbox:    queue.New[resolution](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rebuilds, _ = s.meter.Int64Counter("wheelpath.curve.rebuilds",
		metric.WithDescription("Number of times the path curve was regenerated"))
	s.resolved, _ = s.meter.Int64Counter("wheelpath.anchors.resolved",
		metric.WithDescription("Anchors resolved and instantiated"))
	s.failed, _ = s.meter.Int64Counter("wheelpath.anchors.failed",
		metric.WithDescription("Anchors whose resolution failed"))
	return s
}

// SetStart moves the start reference the curve begins at.
func (s *Scene) SetStart(p core.Pose) {
	s.start = p
	s.startDirty = true
}

// Start returns the start reference pose.
func (s *Scene) Start() core.Pose {
	return s.start
}

// Objects returns the placed objects in placement order.
func (s *Scene) Objects() []*core.PlacedObject {
	out := make([]*core.PlacedObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out
}

// Object looks up a placed object.
func (s *Scene) Object(id uuid.UUID) (*core.PlacedObject, bool) {
	o, ok := s.objects[id]
	return o, ok
}

// Anchors returns the anchors in placement order.
func (s *Scene) Anchors() []*core.Anchor {
	out := make([]*core.Anchor, 0, len(s.aOrder))
	for _, id := range s.aOrder {
		out = append(out, s.anchors[id])
	}
	return out
}

// Curve is the most recently built path.
func (s *Scene) Curve() *path.Curve {
	return s.curve
}

// Goals returns the goals seen by the last rebuild.
func (s *Scene) Goals() []*core.PlacedObject {
	return s.classifier.Goals
}

// Place adds an object. Goals and arrows are appended to the end of the path.
func (s *Scene) Place(kind core.ObjectKind, pose core.Pose) *core.PlacedObject {
	o := &core.PlacedObject{
		ID:    uuid.New(),
		Kind:  kind,
		Pose:  pose,
		Scale: core.UnitScale,
	}
	if kind.IsPathPoint() {
		o.SequenceID = s.pathCount() + 1
	}
	s.add(o)
	s.log.Debug("Placed object", "id", o.ID, "name", o.Name())
	return o
}

func (s *Scene) add(o *core.PlacedObject) {
	s.objects[o.ID] = o
	s.order = append(s.order, o.ID)
}

// Remove deletes an object and closes the gap in the path sequence.
func (s *Scene) Remove(id uuid.UUID) error {
	o, ok := s.objects[id]
	if !ok {
		return ErrUnknownObject
	}
	if o.Kind.IsPathPoint() {
		s.closeGap(o.SequenceID)
	}
	delete(s.objects, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if aid, ok := s.hostOf[id]; ok {
		if a, ok := s.anchors[aid]; ok {
			a.Hosted = removeID(a.Hosted, id)
		}
		delete(s.hostOf, id)
	}
	return nil
}

// PlaceAnchor adds an anchor at pose, hosting it through the Creator when set.
func (s *Scene) PlaceAnchor(ctx context.Context, pose core.Pose) (*core.Anchor, error) {
	if len(s.anchors) >= s.cfg.MaxAnchors {
		return nil, ErrTooManyAnchors
	}
	a := &core.Anchor{ID: uuid.New(), Pose: pose, Scale: core.UnitScale}
	if s.creator != nil {
		cloudID, err := s.creator.CreateAnchor(ctx, pose)
		if err != nil {
			return nil, err
		}
		a.CloudID = cloudID
	}
	s.addAnchor(a)
	s.startDirty = true
	return a, nil
}

func (s *Scene) addAnchor(a *core.Anchor) {
	s.anchors[a.ID] = a
	s.aOrder = append(s.aOrder, a.ID)
}

// RemoveAnchor deletes an anchor; its objects are re-associated on the next rebuild.
func (s *Scene) RemoveAnchor(id uuid.UUID) error {
	a, ok := s.anchors[id]
	if !ok {
		return ErrUnknownAnchor
	}
	for _, oid := range a.Hosted {
		delete(s.hostOf, oid)
	}
	delete(s.anchors, id)
	s.aOrder = removeID(s.aOrder, id)
	s.startDirty = true
	return nil
}

// HostOf returns the anchor hosting an object.
func (s *Scene) HostOf(id uuid.UUID) (*core.Anchor, bool) {
	aid, ok := s.hostOf[id]
	if !ok {
		return nil, false
	}
	a, ok := s.anchors[aid]
	return a, ok
}

// Update is the frame tick: it applies finished anchor resolutions, then
// rebuilds the curve if the objects changed. It reports whether it rebuilt.
func (s *Scene) Update(ctx context.Context) bool {
	s.applyResolutions(ctx)

	objs := s.Objects()
	changed := s.detector.Changed(objs)
	if !changed && !s.startDirty {
		return false
	}
	s.startDirty = false

	s.classifier.Classify(objs)
	s.curve = s.builder.Build(s.start.Position, s.classifier.Goals, s.classifier.Controls)
	s.associate()
	s.rebuilds.Add(ctx, 1)
	s.log.Debug("Rebuilt path",
		"goals", len(s.classifier.Goals),
		"controls", len(s.classifier.Controls),
		"samples", len(s.curve.Samples))
	return true
}

// Reset drops every object and anchor. Resolutions still in flight finish
// harmlessly and are discarded.
func (s *Scene) Reset() {
	s.generation++
	s.pending = 0
	s.inbox.Clear()
	clear(s.objects)
	clear(s.anchors)
	clear(s.hostOf)
	s.order = s.order[:0]
	s.aOrder = s.aOrder[:0]
	s.detector.Reset()
	s.classifier.Classify(nil)
	s.curve = &path.Curve{PerSegment: s.builder.Config().SamplesPerSegment}
	s.startDirty = false
}

// Records expresses every anchor and its hosted objects for persistence.
// Objects are re-associated first so each is stored against its nearest anchor.
func (s *Scene) Records(scenario string) []anchorfile.AnchorRecord {
	s.associate()
	recs := make([]anchorfile.AnchorRecord, 0, len(s.aOrder))
	for i, a := range s.Anchors() {
		hosted := make([]*core.PlacedObject, 0, len(a.Hosted))
		for _, oid := range a.Hosted {
			hosted = append(hosted, s.objects[oid])
		}
		recs = append(recs, anchorfile.FromAnchor(i, scenario, a, s.start, hosted))
	}
	if len(s.aOrder) == 0 && len(s.order) > 0 {
		s.log.Warn("No anchors placed, objects are not saved", "objects", len(s.order))
	}
	return recs
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
