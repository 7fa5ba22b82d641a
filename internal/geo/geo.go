package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/wheelpath/engine/pkg/core"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position3DFromString parses a "x,z" or "x,y,z" string into a core.Position3D.
// The two component form keeps the object on the ground plane.
func Position3DFromString(coords string) (core.Position3D, error) {
	split := strings.Split(coords, ",")
	if len(split) < 2 || len(split) > 3 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	vals := make([]float64, len(split))
	for i, s := range split {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
		vals[i] = v
	}
	if len(vals) == 2 {
		return core.Position3D{X: vals[0], Z: vals[1]}, nil
	}
	return core.Position3D{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// Vec converts a position to an r3 vector.
func Vec(p core.Position3D) r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// FromVec converts an r3 vector back to a position.
func FromVec(v r3.Vector) core.Position3D {
	return core.Position3D{X: v.X, Y: v.Y, Z: v.Z}
}
