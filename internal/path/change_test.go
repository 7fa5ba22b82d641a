package path

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wheelpath/engine/pkg/core"
)

func TestChangeDetector_Idempotent(t *testing.T) {
	objs := []*core.PlacedObject{
		obj(core.KindGoal, 1, core.Position3D{X: 1}),
		obj(core.KindArrow, 2, core.Position3D{Z: 2}),
	}
	var d ChangeDetector

	assert.True(t, d.Changed(objs))
	assert.False(t, d.Changed(objs))
	assert.False(t, d.Changed(objs))
}

func TestChangeDetector_EmptyScene(t *testing.T) {
	var d ChangeDetector
	assert.False(t, d.Changed(nil))
}

func TestChangeDetector_DetectsMutations(t *testing.T) {
	g := obj(core.KindGoal, 1, core.Position3D{X: 1})
	a := obj(core.KindArrow, 2, core.Position3D{Z: 2})
	objs := []*core.PlacedObject{g, a}

	var d ChangeDetector
	d.Changed(objs)

	g.Pose.Position.X += 1e-6
	assert.True(t, d.Changed(objs), "tiny move")
	assert.False(t, d.Changed(objs))

	a.SequenceID = 3
	assert.True(t, d.Changed(objs), "renumber")

	a.Kind = core.KindGoal
	assert.True(t, d.Changed(objs), "kind swap")

	assert.True(t, d.Changed(objs[:1]), "removal")
	assert.True(t, d.Changed(objs), "insert")

	// rotation alone does not reshape the path
	g.Pose.Rotation.Yaw = 45
	assert.False(t, d.Changed(objs))
}

func TestChangeDetector_Epsilon(t *testing.T) {
	g := obj(core.KindGoal, 1, core.Position3D{X: 1})
	objs := []*core.PlacedObject{g}
	d := ChangeDetector{Epsilon: 0.01}
	d.Changed(objs)

	g.Pose.Position.X += 0.004
	assert.False(t, d.Changed(objs))
	g.Pose.Position.X += 0.004
	assert.False(t, d.Changed(objs))
	// drift accumulates against the last reported state
	g.Pose.Position.X += 0.004
	assert.True(t, d.Changed(objs))
}

func TestChangeDetector_Reset(t *testing.T) {
	objs := []*core.PlacedObject{obj(core.KindGoal, 1, core.Position3D{})}
	var d ChangeDetector
	d.Changed(objs)
	d.Reset()
	assert.True(t, d.Changed(objs))
}
