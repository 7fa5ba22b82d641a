package path

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/wheelpath/engine/pkg/core"
)

func obj(kind core.ObjectKind, seq int, pos core.Position3D) *core.PlacedObject {
	return &core.PlacedObject{
		ID:         uuid.New(),
		Kind:       kind,
		Pose:       core.Pose{Position: pos},
		Scale:      core.UnitScale,
		SequenceID: seq,
	}
}

func TestClassifier_Partition(t *testing.T) {
	var objs []*core.PlacedObject
	for i, k := range core.AllKinds {
		objs = append(objs, obj(k, i, core.Position3D{X: float64(i)}))
	}
	objs = append(objs, obj(core.KindGoal, 9, core.Position3D{}))

	var c Classifier
	c.Classify(objs)

	assert.Len(t, c.Goals, 2)
	assert.Len(t, c.Controls, 1)
	assert.Len(t, c.Others, 5)
	assert.Equal(t, len(objs), len(c.Goals)+len(c.Controls)+len(c.Others))

	seen := map[*core.PlacedObject]int{}
	for _, list := range [][]*core.PlacedObject{c.Goals, c.Controls, c.Others} {
		for _, o := range list {
			seen[o]++
		}
	}
	for _, o := range objs {
		assert.Equal(t, 1, seen[o], "object %s", o.Name())
	}
}

func TestClassifier_ReusesLists(t *testing.T) {
	var c Classifier
	c.Classify([]*core.PlacedObject{obj(core.KindGoal, 1, core.Position3D{}), obj(core.KindArrow, 2, core.Position3D{})})
	c.Classify([]*core.PlacedObject{obj(core.KindCone, 0, core.Position3D{})})

	assert.Empty(t, c.Goals)
	assert.Empty(t, c.Controls)
	assert.Len(t, c.Others, 1)
}

func TestClassifier_SharesPointers(t *testing.T) {
	g := obj(core.KindGoal, 1, core.Position3D{})
	var c Classifier
	c.Classify([]*core.PlacedObject{g})

	g.Pose.Position.X = 42
	assert.Equal(t, 42.0, c.Goals[0].Pose.Position.X)
}

func TestClassifier_UnknownKindIsDropped(t *testing.T) {
	var c Classifier
	c.Classify([]*core.PlacedObject{
		obj(core.ObjectKind(200), 1, core.Position3D{}),
		obj(core.KindStop, 0, core.Position3D{}),
	})

	assert.Empty(t, c.Goals)
	assert.Empty(t, c.Controls)
	assert.Len(t, c.Others, 1)
	assert.Equal(t, core.KindStop, c.Others[0].Kind)
}
