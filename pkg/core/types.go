// pkg/core/types.go
package core

import "math"

// Position3D is a point in the engine's left-handed world space (Y up).
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"` // forward
}

// Add returns p+q.
func (p Position3D) Add(q Position3D) Position3D {
	return Position3D{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p-q.
func (p Position3D) Sub(q Position3D) Position3D {
	return Position3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Scale returns p*f.
func (p Position3D) Scale(f float64) Position3D {
	return Position3D{X: p.X * f, Y: p.Y * f, Z: p.Z * f}
}

// Distance returns the euclidean distance between p and q.
func (p Position3D) Distance(q Position3D) float64 {
	d := p.Sub(q)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// PlanarDistance ignores the vertical axis.
func (p Position3D) PlanarDistance(q Position3D) float64 {
	return math.Hypot(p.X-q.X, p.Z-q.Z)
}

// Rotation3D holds euler angles in degrees. Yaw turns about the vertical axis.
type Rotation3D struct {
	Pitch float64 `json:"pitch"` // about X
	Yaw   float64 `json:"yaw"`   // about Y
	Roll  float64 `json:"roll"`  // about Z
}

// Scale3D is a non-uniform local scale.
type Scale3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// UnitScale is the scale of a freshly placed object.
var UnitScale = Scale3D{X: 1, Y: 1, Z: 1}

// Mul scales every axis by f.
func (s Scale3D) Mul(f float64) Scale3D {
	return Scale3D{X: s.X * f, Y: s.Y * f, Z: s.Z * f}
}

// Pose is a world position with orientation.
type Pose struct {
	Position Position3D `json:"position"`
	Rotation Rotation3D `json:"rotation"`
}
