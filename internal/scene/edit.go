package scene

import (
	"github.com/google/uuid"

	"github.com/wheelpath/engine/internal/geo"
	"github.com/wheelpath/engine/pkg/core"
)

// Step sizes of the manual edit panel.
const (
	TranslateStep = 0.1 // metres
	RotateStep    = 1.0 // degrees
	ScaleUp       = 1.1
	ScaleDown     = 0.9
)

// Axis selects a local axis for step translation.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (s *Scene) lookup(id uuid.UUID) (*core.PlacedObject, error) {
	o, ok := s.objects[id]
	if !ok {
		return nil, ErrUnknownObject
	}
	return o, nil
}

// Nudge moves an object one step along its own local axis; dir is +1 or -1.
func (s *Scene) Nudge(id uuid.UUID, axis Axis, dir int) error {
	o, err := s.lookup(id)
	if err != nil {
		return err
	}
	step := TranslateStep * float64(sign(dir))
	var local core.Position3D
	switch axis {
	case AxisX:
		local.X = step
	case AxisY:
		local.Y = step
	case AxisZ:
		local.Z = step
	}
	o.Pose.Position = o.Pose.Position.Add(geo.ToWorld(local, o.Pose.Rotation.Yaw))
	return nil
}

// Turn rotates an object one degree about the vertical axis.
func (s *Scene) Turn(id uuid.UUID, dir int) error {
	o, err := s.lookup(id)
	if err != nil {
		return err
	}
	o.Pose.Rotation.Yaw += RotateStep * float64(sign(dir))
	return nil
}

// Grow scales an object by ScaleUp, or by ScaleDown when dir is negative.
func (s *Scene) Grow(id uuid.UUID, dir int) error {
	o, err := s.lookup(id)
	if err != nil {
		return err
	}
	if dir < 0 {
		o.Scale = o.Scale.Mul(ScaleDown)
	} else {
		o.Scale = o.Scale.Mul(ScaleUp)
	}
	return nil
}

// frame is the pose the edit panel expresses values in: the hosting anchor,
// or the world when the object has none.
func (s *Scene) frame(id uuid.UUID) core.Pose {
	if a, ok := s.HostOf(id); ok {
		return a.Pose
	}
	return core.Pose{}
}

// SetRelativePosition places an object at an anchor-relative position.
func (s *Scene) SetRelativePosition(id uuid.UUID, local core.Position3D) error {
	o, err := s.lookup(id)
	if err != nil {
		return err
	}
	anchor := s.frame(id)
	o.Pose.Position = anchor.Position.Add(geo.ToWorld(local, anchor.Rotation.Yaw))
	return nil
}

// SetRelativeYaw sets an object's yaw relative to its anchor.
func (s *Scene) SetRelativeYaw(id uuid.UUID, yaw float64) error {
	o, err := s.lookup(id)
	if err != nil {
		return err
	}
	o.Pose.Rotation.Yaw = yaw + s.frame(id).Rotation.Yaw
	return nil
}

// SetScale applies a uniform scale.
func (s *Scene) SetScale(id uuid.UUID, f float64) error {
	o, err := s.lookup(id)
	if err != nil {
		return err
	}
	o.Scale = core.Scale3D{X: f, Y: f, Z: f}
	return nil
}

// Readout is what the manual edit panel displays for an object.
type Readout struct {
	Name     string
	Position core.Position3D // anchor-relative
	Yaw      float64         // anchor-relative, wrapped to [0,360)
	Scale    core.Scale3D
	Sequence int
}

// Readout expresses an object relative to its hosting anchor.
func (s *Scene) Readout(id uuid.UUID) (Readout, error) {
	o, err := s.lookup(id)
	if err != nil {
		return Readout{}, err
	}
	local := geo.PoseToAnchor(o.Pose, s.frame(id))
	return Readout{
		Name:     o.Name(),
		Position: local.Position,
		Yaw:      geo.Wrap360(local.Rotation.Yaw),
		Scale:    o.Scale,
		Sequence: o.SequenceID,
	}, nil
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
