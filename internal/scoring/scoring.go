// Package scoring turns player movement and collisions into game events.
package scoring

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/wheelpath/engine/internal/geo"
	"github.com/wheelpath/engine/internal/path"
	"github.com/wheelpath/engine/pkg/core"
)

// Config holds the scoring rules.
type Config struct {
	CheckpointScore  int     // awarded per goal in static mode before penalties
	SamplePenalty    int     // maximum penalty per curve sample
	DodgePenalty     int     // subtracted when a dodge object is hit
	OffRouteDistance float64 // metres from the road before the player is off route
	FollowOffset     float64 // distance kept from the moving object that still counts as following
	FollowScale      float64 // multiplier of the mean follow ratio in moving mode
}

// DefaultConfig matches the shipped game.
func DefaultConfig() Config {
	return Config{
		CheckpointScore:  500,
		SamplePenalty:    10,
		DodgePenalty:     100,
		OffRouteDistance: 1.0,
		FollowOffset:     0.4,
		FollowScale:      10,
	}
}

// EventSink receives every game event. Storage backends implement it.
type EventSink interface {
	RecordGameEvent(ctx context.Context, e core.GameEvent) error
}

// Session scores one play-through of a scenario.
type Session struct {
	cfg   Config
	info  core.Session
	curve *path.Curve
	road  geom.LineString
	goals []*core.PlacedObject
	sink  EventSink
	log   *slog.Logger
	now   func() time.Time

	next   int // index into goals of the next checkpoint
	trail  []core.Position3D
	follow []float64
	state  core.GameState
}

// NewSession starts scoring against curve. goals are sorted by sequence id.
func NewSession(cfg Config, scenario string, mode core.PlayMode, curve *path.Curve, goals []*core.PlacedObject, sink EventSink, log *slog.Logger) *Session {
	ordered := make([]*core.PlacedObject, len(goals))
	copy(ordered, goals)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SequenceID < ordered[j].SequenceID })
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		cfg:   cfg,
		curve: curve,
		road:  geo.GroundLine(curve.Road),
		goals: ordered,
		sink:  sink,
		log:   log,
		now:   time.Now,
	}
	s.info = core.Session{ID: uuid.New(), Scenario: scenario, Mode: mode, StartTime: s.now()}
	return s
}

// Info describes the session; Final is filled once Finished.
func (s *Session) Info() core.Session {
	info := s.info
	info.Final = s.State()
	return info
}

// State returns the scoreboard with the elapsed time.
func (s *Session) State() core.GameState {
	st := s.state
	elapsed := s.now().Sub(s.info.StartTime)
	st.Minutes = int(elapsed / time.Minute)
	st.Seconds = int((elapsed % time.Minute) / time.Second)
	return st
}

// Finished reports whether every goal has been reached.
func (s *Session) Finished() bool {
	return s.next >= len(s.goals)
}

// Announce emits the placement of the path objects the spectator should draw.
func (s *Session) Announce(ctx context.Context, objs []*core.PlacedObject) {
	for _, o := range objs {
		var typ core.EventType
		switch o.Kind {
		case core.KindGoal:
			typ = core.EventGoal
		case core.KindArrow:
			if s.info.Mode != core.ModeStatic {
				continue
			}
			typ = core.EventHint
		case core.KindDodge:
			typ = core.EventDodgeObj
		default:
			continue
		}
		s.emit(ctx, typ, o.Pose.Position, 0)
	}
}

// RecordPose stores a player position. In moving mode the follow ratio to the
// moving object is sampled too.
func (s *Session) RecordPose(player core.Pose, moving *core.Pose) {
	s.trail = append(s.trail, player.Position)
	if s.info.Mode != core.ModeMoving || moving == nil {
		return
	}
	d := player.Position.PlanarDistance(moving.Position) - s.cfg.FollowOffset
	switch {
	case d >= 1:
		s.follow = append(s.follow, 0)
	case d <= 0:
		s.follow = append(s.follow, 1)
	default:
		s.follow = append(s.follow, 1-d)
	}
}

// OffRoute reports the ground distance from the road and whether it exceeds
// the configured limit. With no road the player is never off route.
func (s *Session) OffRoute(p core.Position3D) (float64, bool) {
	d, ok := geo.DistanceToLine(s.road, p)
	if !ok {
		return 0, false
	}
	return d, d > s.cfg.OffRouteDistance
}

// Collide handles the player touching a scene object.
func (s *Session) Collide(ctx context.Context, o *core.PlacedObject) {
	switch o.Kind {
	case core.KindGoal:
		s.checkpoint(ctx, o)
	case core.KindDodge:
		s.state.Score -= s.cfg.DodgePenalty
		s.emit(ctx, core.EventDodgeFail, o.Pose.Position, -s.cfg.DodgePenalty)
	case core.KindArrow, core.KindBarrier, core.KindCone, core.KindSpotlight, core.KindStop:
	}
}

func (s *Session) checkpoint(ctx context.Context, o *core.PlacedObject) {
	if s.Finished() || s.goals[s.next].ID != o.ID {
		return
	}
	var delta int
	if s.info.Mode == core.ModeMoving {
		delta = int(mean(s.follow) * s.cfg.FollowScale)
	} else {
		delta = s.cfg.CheckpointScore - s.segmentPenalty(s.next)
	}
	s.next++
	s.state.NumCheckpoints++
	s.state.Score += delta
	s.trail = s.trail[:0]
	s.follow = s.follow[:0]
	s.emit(ctx, core.EventCheckpoint, o.Pose.Position, delta)
}

// segmentPenalty charges every sample of segment j by how far the closest
// recorded player position was, in tenths of a metre.
func (s *Session) segmentPenalty(j int) int {
	penalty := 0
	for _, sample := range s.curve.Segment(j) {
		d := math.Inf(1)
		for _, p := range s.trail {
			d = math.Min(d, sample.PlanarDistance(p))
		}
		tenths := math.Round(d * 10)
		if tenths >= 10 {
			penalty += s.cfg.SamplePenalty
		} else {
			penalty += int(tenths)
		}
	}
	return penalty
}

func (s *Session) emit(ctx context.Context, typ core.EventType, pos core.Position3D, delta int) {
	ev := core.GameEvent{
		SessionID: s.info.ID,
		Time:      s.now(),
		Type:      typ,
		Position:  pos,
		Delta:     delta,
		State:     s.State(),
	}
	if s.sink == nil {
		return
	}
	if err := s.sink.RecordGameEvent(ctx, ev); err != nil {
		s.log.Warn("Failed to record game event", "type", typ, "error", err)
	}
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
