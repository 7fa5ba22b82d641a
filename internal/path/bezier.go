package path

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/wheelpath/engine/internal/geo"
	"github.com/wheelpath/engine/pkg/core"
)

// BezierPoint evaluates the degree len(ctrl)-1 Bézier curve at t using the
// explicit Bernstein sum. An empty control list yields the origin.
func BezierPoint(ctrl []core.Position3D, t float64) core.Position3D {
	n := len(ctrl) - 1
	var sum r3.Vector
	for k, p := range ctrl {
		b := Binomial(n, k) * math.Pow(1-t, float64(n-k)) * math.Pow(t, float64(k))
		sum = sum.Add(geo.Vec(p).Mul(b))
	}
	return geo.FromVec(sum)
}

// SampleSegment appends samples t=i/samples for i=1..samples.
func SampleSegment(dst []core.Position3D, ctrl []core.Position3D, samples int) []core.Position3D {
	for i := 1; i <= samples; i++ {
		dst = append(dst, BezierPoint(ctrl, float64(i)/float64(samples)))
	}
	return dst
}
