package anchorfile

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wheelpath/engine/internal/geo"
	"github.com/wheelpath/engine/pkg/core"
)

// AnchorName is the persisted name of the i-th anchor.
func AnchorName(i int) string {
	return fmt.Sprintf("CloudAnchor%d", i)
}

// PlaceholderID stands in for a cloud id when anchors are replayed from file.
func PlaceholderID(i int) string {
	return fmt.Sprintf("id%d", i)
}

// FromAnchor builds the record of the i-th anchor. The anchor pose is stored
// relative to the start reference and each object relative to the anchor.
func FromAnchor(i int, scenario string, anchor *core.Anchor, start core.Pose, hosted []*core.PlacedObject) AnchorRecord {
	rel := geo.PoseToAnchor(anchor.Pose, start)
	rec := AnchorRecord{
		Name:     AnchorName(i),
		Scenario: scenario,
		ID:       anchor.CloudID,
		AnchorInfo: AnchorInfo{
			AnchorX:      rel.Position.X,
			AnchorY:      rel.Position.Y,
			AnchorZ:      rel.Position.Z,
			AnchorRotX:   anchor.Pose.Rotation.Pitch,
			AnchorRotY:   rel.Rotation.Yaw,
			AnchorRotZ:   anchor.Pose.Rotation.Roll,
			AnchorScaleX: anchor.Scale.X,
			AnchorScaleY: anchor.Scale.Y,
			AnchorScaleZ: anchor.Scale.Z,
		},
		ListAnchorObjects: make([]ObjectRecord, 0, len(hosted)),
	}
	if rec.ID == "" {
		rec.ID = PlaceholderID(i)
	}
	for _, o := range hosted {
		rec.ListAnchorObjects = append(rec.ListAnchorObjects, FromObject(o, anchor.Pose))
	}
	return rec
}

// FromObject expresses a placed object relative to the anchor pose.
func FromObject(o *core.PlacedObject, anchor core.Pose) ObjectRecord {
	local := geo.PoseToAnchor(o.Pose, anchor)
	r := ObjectRecord{
		PrefabName: o.Kind.String(),
		X:          local.Position.X,
		Y:          local.Position.Y,
		Z:          local.Position.Z,
		Rotation:   local.Rotation.Yaw,
		RotationX:  local.Rotation.Pitch,
		RotationZ:  local.Rotation.Roll,
		ScaleX:     o.Scale.X,
		ScaleY:     o.Scale.Y,
		ScaleZ:     o.Scale.Z,
	}
	if o.Kind.IsPathPoint() {
		r.BezierNumber = o.SequenceID
	}
	return r
}

// LocalPose is the anchor pose relative to the start reference.
func (i AnchorInfo) LocalPose() core.Pose {
	return core.Pose{
		Position: core.Position3D{X: i.AnchorX, Y: i.AnchorY, Z: i.AnchorZ},
		Rotation: core.Rotation3D{Pitch: i.AnchorRotX, Yaw: i.AnchorRotY, Roll: i.AnchorRotZ},
	}
}

// Scale returns the persisted anchor scale, defaulting to unit scale.
func (i AnchorInfo) Scale() core.Scale3D {
	s := core.Scale3D{X: i.AnchorScaleX, Y: i.AnchorScaleY, Z: i.AnchorScaleZ}
	if s == (core.Scale3D{}) {
		return core.UnitScale
	}
	return s
}

// SynthesizePose reconstructs the anchor's world pose from the start reference
// when no AR resolution is available.
func (r *AnchorRecord) SynthesizePose(start core.Pose) core.Pose {
	return geo.PoseFromAnchor(r.AnchorInfo.LocalPose(), start)
}

// ToObject places an object record in the world using the anchor's resolved pose.
func (o ObjectRecord) ToObject(anchor core.Pose) (*core.PlacedObject, error) {
	kind, err := core.ParseObjectKind(o.PrefabName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	local := core.Pose{
		Position: core.Position3D{X: o.X, Y: o.Y, Z: o.Z},
		Rotation: core.Rotation3D{Pitch: o.RotationX, Yaw: o.Rotation, Roll: o.RotationZ},
	}
	obj := &core.PlacedObject{
		ID:    uuid.New(),
		Kind:  kind,
		Pose:  geo.PoseFromAnchor(local, anchor),
		Scale: core.Scale3D{X: o.ScaleX, Y: o.ScaleY, Z: o.ScaleZ},
	}
	if obj.Scale == (core.Scale3D{}) {
		obj.Scale = core.UnitScale
	}
	if kind.IsPathPoint() {
		obj.SequenceID = o.BezierNumber
	}
	return obj, nil
}

// Objects reconstructs every hosted object of the record.
func (r *AnchorRecord) Objects(anchor core.Pose) ([]*core.PlacedObject, error) {
	out := make([]*core.PlacedObject, 0, len(r.ListAnchorObjects))
	for i, rec := range r.ListAnchorObjects {
		obj, err := rec.ToObject(anchor)
		if err != nil {
			return out, fmt.Errorf("anchor %s object %d: %w", r.Name, i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}
