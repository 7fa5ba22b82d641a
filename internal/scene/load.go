package scene

import (
	"context"

	"github.com/google/uuid"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/pkg/core"
)

type resolution struct {
	generation uint64
	record     anchorfile.AnchorRecord
	pose       core.Pose
	err        error
}

// Load replaces the scene with the anchors of a scenario. With a nil resolver
// each anchor pose is synthesized from the start reference; otherwise every
// anchor is resolved on its own goroutine. Objects appear in the Update that
// follows their anchor's resolution, and anchors that fail to resolve are
// skipped.
func (s *Scene) Load(ctx context.Context, recs []anchorfile.AnchorRecord, r Resolver) {
	s.Reset()
	gen := s.generation
	s.pending = len(recs)
	for _, rec := range recs {
		if r == nil {
			s.inbox.Push(resolution{generation: gen, record: rec, pose: rec.SynthesizePose(s.start)})
			continue
		}
		go func(rec anchorfile.AnchorRecord) {
			pose, err := r.ResolveAnchor(ctx, rec.ID)
			s.inbox.Push(resolution{generation: gen, record: rec, pose: pose, err: err})
		}(rec)
	}
}

// Pending is the number of anchors of the current load still unresolved.
func (s *Scene) Pending() int {
	return s.pending
}

// Settle runs Update until every pending anchor has resolved or failed, or ctx ends.
// It is meant for headless callers that have no frame loop.
func (s *Scene) Settle(ctx context.Context) error {
	for {
		s.Update(ctx)
		if s.pending == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.inbox.Ready():
		}
	}
}

func (s *Scene) applyResolutions(ctx context.Context) {
	current := false
	defer func() {
		// stored ids may have gaps; once the whole load is in, close them
		if current && s.pending == 0 {
			s.renumberPath()
		}
	}()
	for _, res := range s.inbox.Drain() {
		if res.generation != s.generation {
			s.log.Debug("Dropping stale anchor resolution", "anchor", res.record.Name)
			continue
		}
		current = true
		s.pending--
		if res.err != nil {
			s.failed.Add(ctx, 1)
			s.log.Warn("Anchor resolution failed, skipping its objects",
				"anchor", res.record.Name, "id", res.record.ID, "error", res.err)
			continue
		}
		s.instantiate(res.record, res.pose)
		s.resolved.Add(ctx, 1)
	}
}

func (s *Scene) instantiate(rec anchorfile.AnchorRecord, pose core.Pose) {
	if len(s.anchors) >= s.cfg.MaxAnchors {
		s.log.Warn("Anchor limit reached, skipping", "anchor", rec.Name)
		return
	}
	objs, err := rec.Objects(pose)
	if err != nil {
		s.log.Warn("Skipping malformed objects", "anchor", rec.Name, "error", err)
	}
	a := &core.Anchor{ID: uuid.New(), CloudID: rec.ID, Pose: pose, Scale: rec.AnchorInfo.Scale()}
	s.addAnchor(a)
	for _, o := range objs {
		s.add(o)
		s.hostOf[o.ID] = a.ID
		a.Hosted = append(a.Hosted, o.ID)
	}
	s.startDirty = true
	s.log.Info("Anchor resolved", "anchor", rec.Name, "objects", len(objs))
}
