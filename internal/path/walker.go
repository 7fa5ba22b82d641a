package path

import (
	"math"

	"github.com/wheelpath/engine/pkg/core"
)

// Walker moves an object along the curve samples at a speed proportional to
// the length of the segment being walked: every sample step of segment j is
// split into round(SegmentLength(j)*Stretch) sub-steps.
type Walker struct {
	curve   *Curve
	stretch float64
	lengths []float64

	idx   int // current sample
	sub   int // sub-step within idx -> idx+1
	steps int
	pose  core.Pose
}

// NewWalker places the walker on the first sample. Stretch is 1 on desktop
// and 2 on phone scale scenes.
func NewWalker(c *Curve, stretch float64) *Walker {
	w := &Walker{curve: c, stretch: stretch}
	if c.Empty() {
		return w
	}
	w.lengths = make([]float64, c.Segments())
	for j := range w.lengths {
		w.lengths[j] = c.SegmentLength(j)
	}
	w.pose.Position = c.Samples[0]
	if len(c.Samples) > 1 {
		w.pose.Rotation.Yaw = heading(c.Samples[0], c.Samples[1])
	}
	w.steps = w.stepsAt(0)
	return w
}

// Pose is the walker's current pose.
func (w *Walker) Pose() core.Pose {
	return w.pose
}

// Done reports whether the last sample has been reached.
func (w *Walker) Done() bool {
	return w.curve.Empty() || w.idx >= len(w.curve.Samples)-1
}

// Sample returns the index of the last sample passed.
func (w *Walker) Sample() int {
	return w.idx
}

// Advance performs velocity sub-steps and returns the new pose.
func (w *Walker) Advance(velocity int) core.Pose {
	for i := 0; i < velocity && !w.Done(); i++ {
		w.step()
	}
	return w.pose
}

func (w *Walker) step() {
	s := w.curve.Samples
	a, b := s[w.idx], s[w.idx+1]
	w.sub++
	f := float64(w.sub) / float64(w.steps)
	w.pose.Position = a.Add(b.Sub(a).Scale(f))
	w.pose.Rotation.Yaw = heading(a, b)
	if w.sub >= w.steps {
		w.idx++
		w.sub = 0
		w.steps = w.stepsAt(w.idx)
	}
}

func (w *Walker) stepsAt(i int) int {
	n := int(math.Round(w.lengths[w.curve.SegmentOf(i)] * w.stretch))
	if n < 1 {
		return 1
	}
	return n
}

// heading is the yaw in degrees facing from a to b, 0 along +Z.
func heading(a, b core.Position3D) float64 {
	return math.Atan2(b.X-a.X, b.Z-a.Z) * 180 / math.Pi
}
