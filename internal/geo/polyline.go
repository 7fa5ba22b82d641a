package geo

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/wheelpath/engine/pkg/core"
)

// GroundLine projects points onto the ground plane (X,Z) as a geom.LineString.
// Fewer than two points give an empty line.
func GroundLine(points []core.Position3D) geom.LineString {
	if len(points) < 2 {
		return geom.LineString{}
	}
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Z)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}

// DistanceToLine returns the ground-plane distance from p to the line.
// ok is false when the line is empty.
func DistanceToLine(line geom.LineString, p core.Position3D) (dist float64, ok bool) {
	pt := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Z}, Type: geom.DimXY})
	return geom.Distance(line.AsGeometry(), pt.AsGeometry())
}

// PathLength sums the 3D distances between consecutive points.
func PathLength(points []core.Position3D) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Vec(points[i]).Sub(Vec(points[i-1])).Norm()
	}
	return total
}

// ParseTrail parses a JSON array of coordinates into positions.
// Input format: "[[x1,y1,z1],[x2,y2,z2],...]"; two-element entries lie on the ground.
func ParseTrail(input string) ([]core.Position3D, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse trail JSON: %w", err)
	}

	trail := make([]core.Position3D, len(coords))
	for i, c := range coords {
		switch len(c) {
		case 2:
			trail[i] = core.Position3D{X: c[0], Z: c[1]}
		case 3:
			trail[i] = core.Position3D{X: c[0], Y: c[1], Z: c[2]}
		default:
			return nil, fmt.Errorf("coordinate %d has %d values", i, len(c))
		}
	}
	return trail, nil
}
