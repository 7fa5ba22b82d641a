package scene

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/pkg/core"
)

// authored builds a scene with two anchors and returns its records.
func authored(t *testing.T) (*Scene, []anchorfile.AnchorRecord) {
	t.Helper()
	ctx := context.Background()
	s := New(Config{})
	s.SetStart(core.Pose{Position: core.Position3D{X: 1, Z: 1}, Rotation: core.Rotation3D{Yaw: 15}})
	_, err := s.PlaceAnchor(ctx, core.Pose{Position: core.Position3D{X: 0, Z: 3}, Rotation: core.Rotation3D{Yaw: 40}})
	require.NoError(t, err)
	_, err = s.PlaceAnchor(ctx, core.Pose{Position: core.Position3D{X: 0, Z: 12}, Rotation: core.Rotation3D{Yaw: 200}})
	require.NoError(t, err)
	s.Place(core.KindGoal, at(0, 0, 4))
	s.Place(core.KindArrow, at(1, 0, 7))
	s.Place(core.KindGoal, at(0, 0, 11))
	s.Place(core.KindDodge, at(-1, 0, 13))
	s.Update(ctx)
	return s, s.Records("park")
}

func TestRecords(t *testing.T) {
	_, recs := authored(t)
	require.Len(t, recs, 2)
	assert.Equal(t, "CloudAnchor0", recs[0].Name)
	assert.Len(t, recs[0].ListAnchorObjects, 2)
	assert.Len(t, recs[1].ListAnchorObjects, 2)
	assert.Equal(t, "park", recs[1].Scenario)
}

func TestLoad_SynthesizedRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, recs := authored(t)

	dst := New(Config{})
	dst.SetStart(src.Start())
	dst.Load(ctx, recs, nil)
	assert.Equal(t, 2, dst.Pending())
	require.NoError(t, dst.Settle(ctx))

	want := src.PathPoints()
	got := dst.PathPoints()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Kind, got[i].Kind)
		assert.Equal(t, want[i].SequenceID, got[i].SequenceID)
		assert.InDelta(t, 0.0, want[i].Pose.Position.Distance(got[i].Pose.Position), 1e-6)
	}
	assert.Len(t, dst.Objects(), 4)
	assert.Len(t, dst.Anchors(), 2)
	assert.Equal(t, len(src.Curve().Samples), len(dst.Curve().Samples))
}

type mapResolver struct {
	mu    sync.Mutex
	poses map[string]core.Pose
	gate  chan struct{}
}

func (m *mapResolver) ResolveAnchor(ctx context.Context, id string) (core.Pose, error) {
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return core.Pose{}, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.poses[id]
	if !ok {
		return core.Pose{}, errors.New("anchor not found")
	}
	return p, nil
}

func TestLoad_ResolverFailureSkipsAnchor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, recs := authored(t)

	r := &mapResolver{poses: map[string]core.Pose{
		recs[0].ID: {Position: core.Position3D{X: 100, Z: 100}, Rotation: core.Rotation3D{Yaw: 90}},
	}}
	s := New(Config{})
	s.Load(ctx, recs, r)
	require.NoError(t, s.Settle(ctx))

	assert.Equal(t, 0, s.Pending())
	require.Len(t, s.Anchors(), 1)
	assert.Len(t, s.Objects(), len(recs[0].ListAnchorObjects))
	for _, o := range s.Objects() {
		assert.Greater(t, o.Pose.Position.X, 90.0, "objects placed around the resolved anchor")
	}
}

func TestLoad_NothingAppearsBeforeResolution(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, recs := authored(t)

	gate := make(chan struct{})
	r := &mapResolver{gate: gate, poses: map[string]core.Pose{recs[0].ID: {}, recs[1].ID: {}}}
	s := New(Config{})
	s.Load(ctx, recs, r)

	s.Update(ctx)
	assert.Empty(t, s.Objects())
	assert.Equal(t, 2, s.Pending())

	close(gate)
	require.NoError(t, s.Settle(ctx))
	assert.Len(t, s.Objects(), 4)
}

func TestLoad_ResetDropsLateResolutions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, recs := authored(t)

	gate := make(chan struct{})
	r := &mapResolver{gate: gate, poses: map[string]core.Pose{recs[0].ID: {}, recs[1].ID: {}}}
	s := New(Config{})
	s.Load(ctx, recs, r)
	s.Reset()
	close(gate)

	// wait for both goroutines to deliver
	deadline := time.After(2 * time.Second)
	for s.inbox.Len() < 2 {
		select {
		case <-s.inbox.Ready():
		case <-deadline:
			t.Fatal("resolutions never arrived")
		}
	}
	s.Update(ctx)
	assert.Empty(t, s.Objects())
	assert.Empty(t, s.Anchors())
}

func TestSettle_ContextCancelled(t *testing.T) {
	_, recs := authored(t)
	ctx, cancel := context.WithCancel(context.Background())
	gate := make(chan struct{})
	t.Cleanup(func() { close(gate) })
	r := &mapResolver{gate: gate}

	s := New(Config{})
	s.Load(context.Background(), recs, r)
	cancel()
	assert.ErrorIs(t, s.Settle(ctx), context.Canceled)
}

func TestLoad_ClosesStoredSequenceGaps(t *testing.T) {
	ctx := context.Background()
	recs := []anchorfile.AnchorRecord{
		{Name: "CloudAnchor0", ID: "id0", ListAnchorObjects: []anchorfile.ObjectRecord{
			{PrefabName: "Goal", Z: 6, BezierNumber: 3},
			{PrefabName: "Cone", X: 1, Z: 1},
		}},
		{Name: "CloudAnchor1", ID: "id1", AnchorInfo: anchorfile.AnchorInfo{AnchorZ: 1}, ListAnchorObjects: []anchorfile.ObjectRecord{
			{PrefabName: "Goal", Z: 1, BezierNumber: 1},
		}},
	}
	s := New(Config{})
	s.Load(ctx, recs, nil)
	require.NoError(t, s.Settle(ctx))

	pts := s.PathPoints()
	require.Len(t, pts, 2)
	assert.Equal(t, []int{1, 2}, sequences(s))
	assert.InDelta(t, 2.0, pts[0].Pose.Position.Z, 1e-9, "stored order is kept")
	assert.InDelta(t, 6.0, pts[1].Pose.Position.Z, 1e-9)

	g := s.Place(core.KindGoal, at(0, 0, 9))
	assert.Equal(t, 3, g.SequenceID)
	assert.Equal(t, []int{1, 2, 3}, sequences(s))

	for _, o := range s.Objects() {
		if o.Kind == core.KindCone {
			assert.Zero(t, o.SequenceID)
		}
	}
}
