package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelpath/engine/internal/path"
	"github.com/wheelpath/engine/pkg/core"
)

func at(x, y, z float64) core.Pose {
	return core.Pose{Position: core.Position3D{X: x, Y: y, Z: z}}
}

func TestPlace_AssignsSequence(t *testing.T) {
	s := New(Config{})
	g1 := s.Place(core.KindGoal, at(0, 0, 4))
	cone := s.Place(core.KindCone, at(1, 0, 1))
	a := s.Place(core.KindArrow, at(1, 0, 5))
	g2 := s.Place(core.KindGoal, at(0, 0, 8))

	assert.Equal(t, 1, g1.SequenceID)
	assert.Equal(t, 0, cone.SequenceID)
	assert.Equal(t, 2, a.SequenceID)
	assert.Equal(t, 3, g2.SequenceID)
	assert.Equal(t, core.UnitScale, cone.Scale)
	assert.Len(t, s.Objects(), 4)
}

func TestRemove_ClosesGap(t *testing.T) {
	s := New(Config{})
	g1 := s.Place(core.KindGoal, at(0, 0, 1))
	a := s.Place(core.KindArrow, at(0, 0, 2))
	g2 := s.Place(core.KindGoal, at(0, 0, 3))

	require.NoError(t, s.Remove(g1.ID))
	assert.Equal(t, 1, a.SequenceID)
	assert.Equal(t, 2, g2.SequenceID)

	_, ok := s.Object(g1.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Remove(g1.ID), ErrUnknownObject)
}

func TestUpdate_RebuildsOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})

	assert.False(t, s.Update(ctx), "empty scene")

	g := s.Place(core.KindGoal, at(0, 0, 5))
	assert.True(t, s.Update(ctx))
	assert.False(t, s.Update(ctx))
	assert.Len(t, s.Curve().Samples, path.DefaultSamplesPerSegment)

	g.Pose.Position.Z = 6
	assert.True(t, s.Update(ctx))

	s.SetStart(at(1, 0, 0))
	assert.True(t, s.Update(ctx), "start moved")
	assert.False(t, s.Update(ctx))
}

func TestUpdate_TwoGoalScenario(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	s.SetStart(at(0, 0, 0))
	goalA := s.Place(core.KindGoal, at(0, 0, 4))
	ctl := s.Place(core.KindArrow, at(1, 0, 5))
	goalB := s.Place(core.KindGoal, at(0, 0, 8))
	require.Equal(t, 2, ctl.SequenceID)

	require.True(t, s.Update(ctx))

	c := s.Curve()
	n := path.DefaultSamplesPerSegment
	require.Len(t, c.Samples, 2*n)
	assert.Less(t, c.Samples[0].Distance(core.Position3D{}), 0.1)
	assert.InDelta(t, 0.0, c.Samples[n-1].Distance(goalA.Pose.Position), 1e-9)
	assert.InDelta(t, 0.0, c.Samples[2*n-1].Distance(goalB.Pose.Position), 1e-9)
	assert.Len(t, s.Goals(), 2)
}

func TestUpdate_RemovingLastGoalClearsCurve(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	g := s.Place(core.KindGoal, at(0, 0, 5))
	s.Update(ctx)
	require.NoError(t, s.Remove(g.ID))
	assert.True(t, s.Update(ctx))
	assert.True(t, s.Curve().Empty())
}

func TestPlaceAnchor_Limit(t *testing.T) {
	ctx := context.Background()
	s := New(Config{MaxAnchors: 2})
	_, err := s.PlaceAnchor(ctx, at(0, 0, 0))
	require.NoError(t, err)
	_, err = s.PlaceAnchor(ctx, at(1, 0, 0))
	require.NoError(t, err)
	_, err = s.PlaceAnchor(ctx, at(2, 0, 0))
	assert.ErrorIs(t, err, ErrTooManyAnchors)
}

type fakeCreator struct {
	next string
	err  error
}

func (f *fakeCreator) CreateAnchor(_ context.Context, _ core.Pose) (string, error) {
	return f.next, f.err
}

func TestPlaceAnchor_Creator(t *testing.T) {
	ctx := context.Background()
	s := New(Config{}, WithCreator(&fakeCreator{next: "ua-42"}))
	a, err := s.PlaceAnchor(ctx, at(0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "ua-42", a.CloudID)

	boom := errors.New("hosting failed")
	s = New(Config{}, WithCreator(&fakeCreator{err: boom}))
	_, err = s.PlaceAnchor(ctx, at(0, 0, 0))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Anchors())
}

func TestAssociate_NearestAnchor(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	a1, _ := s.PlaceAnchor(ctx, at(0, 0, 0))
	a2, _ := s.PlaceAnchor(ctx, at(10, 0, 0))
	near1 := s.Place(core.KindCone, at(2, 0, 1))
	near2 := s.Place(core.KindGoal, at(9, 0, -1))

	s.Update(ctx)

	h, ok := s.HostOf(near1.ID)
	require.True(t, ok)
	assert.Equal(t, a1.ID, h.ID)
	h, ok = s.HostOf(near2.ID)
	require.True(t, ok)
	assert.Equal(t, a2.ID, h.ID)
	assert.Equal(t, []uuid.UUID{near1.ID}, a1.Hosted)

	// moving the object re-hosts it on the next rebuild
	near1.Pose.Position.X = 8
	s.Update(ctx)
	h, _ = s.HostOf(near1.ID)
	assert.Equal(t, a2.ID, h.ID)
	assert.Empty(t, a1.Hosted)
}

func TestRemoveAnchor(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	a, _ := s.PlaceAnchor(ctx, at(0, 0, 0))
	o := s.Place(core.KindStop, at(1, 0, 0))
	s.Update(ctx)

	require.NoError(t, s.RemoveAnchor(a.ID))
	_, ok := s.HostOf(o.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, s.RemoveAnchor(a.ID), ErrUnknownAnchor)
}

func TestRemove_DetachesFromAnchor(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	a, _ := s.PlaceAnchor(ctx, at(0, 0, 0))
	o := s.Place(core.KindCone, at(1, 0, 0))
	s.Update(ctx)
	require.Len(t, a.Hosted, 1)

	require.NoError(t, s.Remove(o.ID))
	assert.Empty(t, a.Hosted)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	_, _ = s.PlaceAnchor(ctx, at(0, 0, 0))
	s.Place(core.KindGoal, at(0, 0, 3))
	s.Update(ctx)

	s.Reset()
	assert.Empty(t, s.Objects())
	assert.Empty(t, s.Anchors())
	assert.True(t, s.Curve().Empty())
	assert.False(t, s.Update(ctx))
}
