package scene

import (
	"sort"

	"github.com/google/uuid"

	"github.com/wheelpath/engine/pkg/core"
)

// Path points hold the contiguous sequence ids 1..N. Every operation here keeps
// that true; a finished load renumbers the stored ids in their stored order.

func (s *Scene) pathCount() int {
	n := 0
	for _, o := range s.objects {
		if o.Kind.IsPathPoint() {
			n++
		}
	}
	return n
}

// PathPoints returns goals and arrows ordered by sequence id.
func (s *Scene) PathPoints() []*core.PlacedObject {
	var pts []*core.PlacedObject
	for _, id := range s.order {
		if o := s.objects[id]; o.Kind.IsPathPoint() {
			pts = append(pts, o)
		}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].SequenceID < pts[j].SequenceID })
	return pts
}

// renumberPath reassigns 1..N keeping the current order. Equal ids keep
// placement order.
func (s *Scene) renumberPath() {
	for i, p := range s.PathPoints() {
		if p.SequenceID != i+1 {
			s.log.Debug("Renumbering path point", "object", p.Name(), "to", i+1)
			p.SequenceID = i + 1
		}
	}
}

func (s *Scene) closeGap(seq int) {
	for _, o := range s.objects {
		if o.Kind.IsPathPoint() && o.SequenceID > seq {
			o.SequenceID--
		}
	}
}

// Renumber moves a path point to sequence id k, shifting the points in between
// by one toward the vacated id. k is clamped to 1..N.
func (s *Scene) Renumber(id uuid.UUID, k int) error {
	o, ok := s.objects[id]
	if !ok {
		return ErrUnknownObject
	}
	if !o.Kind.IsPathPoint() {
		return ErrNotPathPoint
	}
	n := s.pathCount()
	k = max(1, min(k, n))
	old := o.SequenceID
	for _, p := range s.objects {
		if p == o || !p.Kind.IsPathPoint() {
			continue
		}
		switch {
		case k < old && p.SequenceID >= k && p.SequenceID < old:
			p.SequenceID++
		case k > old && p.SequenceID > old && p.SequenceID <= k:
			p.SequenceID--
		}
	}
	o.SequenceID = k
	return nil
}

// StepSequence swaps a path point with its neighbour in direction dir (+1/-1).
func (s *Scene) StepSequence(id uuid.UUID, dir int) error {
	o, ok := s.objects[id]
	if !ok {
		return ErrUnknownObject
	}
	if dir > 0 {
		dir = 1
	} else {
		dir = -1
	}
	return s.Renumber(id, o.SequenceID+dir)
}

// ChangeKind swaps an object's prefab in place. Leaving the path closes the gap,
// joining it appends at the end.
func (s *Scene) ChangeKind(id uuid.UUID, kind core.ObjectKind) error {
	o, ok := s.objects[id]
	if !ok {
		return ErrUnknownObject
	}
	switch {
	case o.Kind.IsPathPoint() && !kind.IsPathPoint():
		s.closeGap(o.SequenceID)
		o.SequenceID = 0
	case !o.Kind.IsPathPoint() && kind.IsPathPoint():
		o.SequenceID = s.pathCount() + 1
	}
	o.Kind = kind
	return nil
}
