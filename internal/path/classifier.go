package path

import "github.com/wheelpath/engine/pkg/core"

// Classifier partitions placed objects into curve endpoints, curve shapers and
// everything else. The slices are owned and reused between calls.
type Classifier struct {
	Goals    []*core.PlacedObject
	Controls []*core.PlacedObject
	Others   []*core.PlacedObject
}

// Classify clears the owned lists and repopulates them from objs. Kinds outside
// core.AllKinds land in no list.
func (c *Classifier) Classify(objs []*core.PlacedObject) {
	c.Goals = c.Goals[:0]
	c.Controls = c.Controls[:0]
	c.Others = c.Others[:0]
	for _, o := range objs {
		switch o.Kind {
		case core.KindGoal:
			c.Goals = append(c.Goals, o)
		case core.KindArrow:
			c.Controls = append(c.Controls, o)
		case core.KindBarrier, core.KindCone, core.KindSpotlight, core.KindStop, core.KindDodge:
			c.Others = append(c.Others, o)
		}
	}
}
