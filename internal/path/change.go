package path

import (
	"math"

	"github.com/wheelpath/engine/pkg/core"
)

type shadowEntry struct {
	pos  core.Position3D
	name string
}

// ChangeDetector is a cheap per-frame dirty check over object positions and names.
// With Epsilon 0 positions are compared exactly.
type ChangeDetector struct {
	Epsilon float64
	shadow  []shadowEntry
}

// Changed reports whether objs differs from the last observed state. The shadow
// list is refreshed only when a change is reported.
func (d *ChangeDetector) Changed(objs []*core.PlacedObject) bool {
	if len(objs) == len(d.shadow) {
		same := true
		for i, o := range objs {
			if o.Name() != d.shadow[i].name || !d.near(o.Pose.Position, d.shadow[i].pos) {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}
	d.shadow = d.shadow[:0]
	for _, o := range objs {
		d.shadow = append(d.shadow, shadowEntry{pos: o.Pose.Position, name: o.Name()})
	}
	return true
}

// Reset forgets the shadow list so the next non-empty poll reports a change.
func (d *ChangeDetector) Reset() {
	d.shadow = d.shadow[:0]
}

func (d *ChangeDetector) near(a, b core.Position3D) bool {
	if d.Epsilon <= 0 {
		return a == b
	}
	return math.Abs(a.X-b.X) <= d.Epsilon &&
		math.Abs(a.Y-b.Y) <= d.Epsilon &&
		math.Abs(a.Z-b.Z) <= d.Epsilon
}
