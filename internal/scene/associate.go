package scene

import (
	"math"

	"github.com/google/uuid"
)

// associate hosts every object on its nearest anchor. Ties keep the earlier anchor.
func (s *Scene) associate() {
	clear(s.hostOf)
	for _, a := range s.anchors {
		a.Hosted = a.Hosted[:0]
	}
	if len(s.aOrder) == 0 {
		return
	}
	for _, oid := range s.order {
		o := s.objects[oid]
		best := uuid.Nil
		bestDist := math.Inf(1)
		for _, aid := range s.aOrder {
			d := o.Pose.Position.Distance(s.anchors[aid].Pose.Position)
			if d < bestDist {
				best, bestDist = aid, d
			}
		}
		s.hostOf[oid] = best
		a := s.anchors[best]
		a.Hosted = append(a.Hosted, oid)
	}
}
