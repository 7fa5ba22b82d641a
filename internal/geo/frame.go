package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/wheelpath/engine/pkg/core"
)

// Objects are persisted relative to the anchor that hosts them. Only the yaw
// of the anchor enters the rotation; Y passes through and object pitch/roll
// are carried unchanged.

// localMatrix rotates world vectors by -yaw about the vertical axis:
//
//	| cos  0 -sin |
//	|  0   1   0  |
//	| sin  0  cos |
func localMatrix(yawDeg float64) mgl64.Mat3 {
	return mgl64.Rotate3DY(-mgl64.DegToRad(yawDeg))
}

func worldMatrix(yawDeg float64) mgl64.Mat3 {
	return mgl64.Rotate3DY(mgl64.DegToRad(yawDeg))
}

// ToLocal expresses v in the frame rotated by yawDeg. Angles are not normalised.
func ToLocal(v core.Position3D, yawDeg float64) core.Position3D {
	r := localMatrix(yawDeg).Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return core.Position3D{X: r[0], Y: r[1], Z: r[2]}
}

// ToWorld is the inverse of ToLocal.
func ToWorld(v core.Position3D, yawDeg float64) core.Position3D {
	r := worldMatrix(yawDeg).Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return core.Position3D{X: r[0], Y: r[1], Z: r[2]}
}

// PoseToAnchor expresses a world pose relative to the anchor pose.
func PoseToAnchor(world, anchor core.Pose) core.Pose {
	return core.Pose{
		Position: ToLocal(world.Position.Sub(anchor.Position), anchor.Rotation.Yaw),
		Rotation: core.Rotation3D{
			Pitch: world.Rotation.Pitch,
			Yaw:   world.Rotation.Yaw - anchor.Rotation.Yaw,
			Roll:  world.Rotation.Roll,
		},
	}
}

// PoseFromAnchor reconstructs the world pose of an anchor-relative pose once the
// anchor's world pose is known.
func PoseFromAnchor(local, anchor core.Pose) core.Pose {
	return core.Pose{
		Position: anchor.Position.Add(ToWorld(local.Position, anchor.Rotation.Yaw)),
		Rotation: core.Rotation3D{
			Pitch: local.Rotation.Pitch,
			Yaw:   local.Rotation.Yaw + anchor.Rotation.Yaw,
			Roll:  local.Rotation.Roll,
		},
	}
}

// Wrap360 maps an angle into [0,360) for display.
func Wrap360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}
