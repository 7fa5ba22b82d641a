package path

import (
	"sort"

	"github.com/wheelpath/engine/internal/geo"
	"github.com/wheelpath/engine/pkg/core"
)

// DefaultSamplesPerSegment matches the authored line resolution.
const DefaultSamplesPerSegment = 50

// DefaultRoadOffset lowers the road band just under the path line.
const DefaultRoadOffset = 0.01

// Config tunes curve generation.
type Config struct {
	SamplesPerSegment int
	RoadOffset        float64
}

// Curve is the sampled path. Samples and Road have the same length,
// Segments()*PerSegment.
type Curve struct {
	Samples    []core.Position3D
	Road       []core.Position3D
	PerSegment int
}

// Segments returns the number of goal-to-goal segments.
func (c *Curve) Segments() int {
	if c == nil || c.PerSegment == 0 {
		return 0
	}
	return len(c.Samples) / c.PerSegment
}

// Segment returns the samples of segment j, or nil when j is out of range.
func (c *Curve) Segment(j int) []core.Position3D {
	if j < 0 || j >= c.Segments() {
		return nil
	}
	return c.Samples[j*c.PerSegment : (j+1)*c.PerSegment]
}

// SegmentLength is the polyline length through the samples of segment j.
func (c *Curve) SegmentLength(j int) float64 {
	return geo.PathLength(c.Segment(j))
}

// SegmentOf returns the segment that sample i belongs to.
func (c *Curve) SegmentOf(i int) int {
	if c.PerSegment == 0 {
		return 0
	}
	return i / c.PerSegment
}

// Empty reports whether there is nothing to draw.
func (c *Curve) Empty() bool {
	return c == nil || len(c.Samples) == 0
}

// Builder regenerates the curve from the current goals and controls.
type Builder struct {
	cfg Config
}

// NewBuilder defaults a non-positive sample count. RoadOffset is taken as
// given; zero keeps the road on the path line.
func NewBuilder(cfg Config) *Builder {
	if cfg.SamplesPerSegment <= 0 {
		cfg.SamplesPerSegment = DefaultSamplesPerSegment
	}
	return &Builder{cfg: cfg}
}

// Config returns the effective configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build samples one Bézier segment per goal. Segment 0 starts at the start
// reference (sequence id 0) lifted to the first goal's height; segment j starts
// at goal j-1. Controls shape a segment when their id lies strictly between the
// segment's end ids. Goals are ordered by sequence id here.
func (b *Builder) Build(start core.Position3D, goals, controls []*core.PlacedObject) *Curve {
	n := b.cfg.SamplesPerSegment
	c := &Curve{PerSegment: n}
	if len(goals) == 0 {
		return c
	}

	ordered := make([]*core.PlacedObject, len(goals))
	copy(ordered, goals)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SequenceID < ordered[j].SequenceID })

	sortedCtrl := make([]*core.PlacedObject, len(controls))
	copy(sortedCtrl, controls)
	sort.SliceStable(sortedCtrl, func(i, j int) bool { return sortedCtrl[i].SequenceID < sortedCtrl[j].SequenceID })

	c.Samples = make([]core.Position3D, 0, len(ordered)*n)
	from := start
	from.Y = ordered[0].Pose.Position.Y
	fromID := 0
	pts := make([]core.Position3D, 0, 8)
	for _, goal := range ordered {
		pts = append(pts[:0], from)
		for _, ctl := range sortedCtrl {
			if ctl.SequenceID > fromID && ctl.SequenceID < goal.SequenceID {
				pts = append(pts, ctl.Pose.Position)
			}
		}
		pts = append(pts, goal.Pose.Position)
		c.Samples = SampleSegment(c.Samples, pts, n)

		from = goal.Pose.Position
		fromID = goal.SequenceID
	}

	c.Road = make([]core.Position3D, len(c.Samples))
	for i, p := range c.Samples {
		p.Y -= b.cfg.RoadOffset
		c.Road[i] = p
	}
	return c
}
