package anchorfile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelpath/engine/pkg/core"
)

const eps = 1e-4

func TestFromAnchor_RoundTrip(t *testing.T) {
	start := core.Pose{Position: core.Position3D{X: 1, Y: 0, Z: -2}, Rotation: core.Rotation3D{Yaw: 30}}
	anchor := &core.Anchor{
		ID:    uuid.New(),
		Pose:  core.Pose{Position: core.Position3D{X: 5, Y: 0.2, Z: 5}, Rotation: core.Rotation3D{Pitch: 2, Yaw: 120, Roll: -1}},
		Scale: core.UnitScale,
	}
	goal := &core.PlacedObject{
		ID:         uuid.New(),
		Kind:       core.KindGoal,
		Pose:       core.Pose{Position: core.Position3D{X: 7, Y: 0, Z: 3}, Rotation: core.Rotation3D{Yaw: 200}},
		Scale:      core.Scale3D{X: 1.1, Y: 1.1, Z: 1.1},
		SequenceID: 3,
	}
	cone := &core.PlacedObject{
		ID:         uuid.New(),
		Kind:       core.KindCone,
		Pose:       core.Pose{Position: core.Position3D{X: 4, Y: 0, Z: 9}},
		Scale:      core.UnitScale,
		SequenceID: 5,
	}

	rec := FromAnchor(2, "park", anchor, start, []*core.PlacedObject{goal, cone})

	assert.Equal(t, "CloudAnchor2", rec.Name)
	assert.Equal(t, "id2", rec.ID)
	assert.Equal(t, "park", rec.Scenario)
	assert.InDelta(t, 90.0, rec.AnchorInfo.AnchorRotY, eps)
	assert.Equal(t, 2.0, rec.AnchorInfo.AnchorRotX)
	require.Len(t, rec.ListAnchorObjects, 2)
	assert.Equal(t, 3, rec.ListAnchorObjects[0].BezierNumber)
	assert.Equal(t, 0, rec.ListAnchorObjects[1].BezierNumber, "only path points carry a sequence")
	assert.Equal(t, 0, rec.ListAnchorObjects[0].PathNumber)

	pose := rec.SynthesizePose(start)
	assert.InDelta(t, anchor.Pose.Position.X, pose.Position.X, eps)
	assert.InDelta(t, anchor.Pose.Position.Y, pose.Position.Y, eps)
	assert.InDelta(t, anchor.Pose.Position.Z, pose.Position.Z, eps)
	assert.InDelta(t, anchor.Pose.Rotation.Yaw, pose.Rotation.Yaw, eps)

	objs, err := rec.Objects(pose)
	require.NoError(t, err)
	require.Len(t, objs, 2)
	for i, want := range []*core.PlacedObject{goal, cone} {
		got := objs[i]
		assert.Equal(t, want.Kind, got.Kind)
		assert.InDelta(t, want.Pose.Position.X, got.Pose.Position.X, eps)
		assert.InDelta(t, want.Pose.Position.Y, got.Pose.Position.Y, eps)
		assert.InDelta(t, want.Pose.Position.Z, got.Pose.Position.Z, eps)
		assert.InDelta(t, want.Pose.Rotation.Yaw, got.Pose.Rotation.Yaw, eps)
		assert.Equal(t, want.Scale, got.Scale)
		assert.NotEqual(t, want.ID, got.ID)
	}
	assert.Equal(t, 3, objs[0].SequenceID)
	assert.Equal(t, 0, objs[1].SequenceID)
}

func TestFromAnchor_KeepsCloudID(t *testing.T) {
	anchor := &core.Anchor{CloudID: "ua-1234", Scale: core.UnitScale}
	rec := FromAnchor(0, "s", anchor, core.Pose{}, nil)
	assert.Equal(t, "ua-1234", rec.ID)
	assert.NotNil(t, rec.ListAnchorObjects)
}

func TestObjectRecord_Yaw90Anchor(t *testing.T) {
	anchor := core.Pose{Position: core.Position3D{X: 5, Y: 0, Z: 5}, Rotation: core.Rotation3D{Yaw: 90}}
	obj, err := ObjectRecord{PrefabName: "Barrier", X: 1, ScaleX: 1, ScaleY: 1, ScaleZ: 1}.ToObject(anchor)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, obj.Pose.Position.X, eps)
	assert.InDelta(t, 0.0, obj.Pose.Position.Y, eps)
	assert.InDelta(t, 4.0, obj.Pose.Position.Z, eps)
}

func TestObjectRecord_UnknownPrefab(t *testing.T) {
	_, err := ObjectRecord{PrefabName: "Tree"}.ToObject(core.Pose{})
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.ErrorIs(t, err, core.ErrUnknownKind)
}

func TestObjectRecord_ZeroScaleDefaultsToUnit(t *testing.T) {
	obj, err := ObjectRecord{PrefabName: "Arrow(Clone)", BezierNumber: 4}.ToObject(core.Pose{})
	require.NoError(t, err)
	assert.Equal(t, core.UnitScale, obj.Scale)
	assert.Equal(t, core.KindArrow, obj.Kind)
	assert.Equal(t, 4, obj.SequenceID)
}
