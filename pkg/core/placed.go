package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownKind is returned when a prefab name does not map to an ObjectKind.
var ErrUnknownKind = errors.New("unknown object kind")

// ObjectKind is the closed set of virtual objects a researcher can place.
type ObjectKind uint8

const (
	KindArrow ObjectKind = iota // hint, shapes the curve between goals
	KindGoal
	KindBarrier
	KindCone
	KindSpotlight
	KindStop
	KindDodge
)

var kindNames = [...]string{
	KindArrow:     "Arrow",
	KindGoal:      "Goal",
	KindBarrier:   "Barrier",
	KindCone:      "Cone",
	KindSpotlight: "Spotlight",
	KindStop:      "Stop",
	KindDodge:     "Dodge",
}

// AllKinds lists every kind in prefab order.
var AllKinds = []ObjectKind{KindArrow, KindGoal, KindBarrier, KindCone, KindSpotlight, KindStop, KindDodge}

func (k ObjectKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ObjectKind(%d)", k)
}

// ParseObjectKind accepts the persisted prefab names. "Hint" is an alias of Arrow,
// and a trailing "(Clone)" suffix left by instantiation is ignored.
func ParseObjectKind(s string) (ObjectKind, error) {
	name := strings.TrimSpace(strings.TrimSuffix(s, "(Clone)"))
	if strings.EqualFold(name, "Hint") {
		return KindArrow, nil
	}
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return ObjectKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// IsPathPoint reports whether objects of this kind carry a sequence id on the path.
func (k ObjectKind) IsPathPoint() bool {
	return k == KindGoal || k == KindArrow
}

// IsControl reports whether the kind shapes the curve without being an endpoint.
func (k ObjectKind) IsControl() bool {
	return k == KindArrow
}

// PlacedObject is a virtual object placed in the scene.
// SequenceID orders goals and controls along the path; 0 means unset or start marker.
type PlacedObject struct {
	ID         uuid.UUID
	Kind       ObjectKind
	Pose       Pose
	Scale      Scale3D
	SequenceID int
}

// Name identifies the object for change detection and UI readouts, e.g. "Goal#3".
func (o *PlacedObject) Name() string {
	if o.Kind.IsPathPoint() {
		return fmt.Sprintf("%s#%d", o.Kind, o.SequenceID)
	}
	return o.Kind.String()
}

// Anchor is a spatial reference pose that hosts placed objects.
// CloudID is empty when no cloud resolution is used.
type Anchor struct {
	ID      uuid.UUID
	CloudID string
	Pose    Pose
	Scale   Scale3D
	Hosted  []uuid.UUID
}

// VisibleIn reports whether objects of this kind are drawn during play.
// Stop and Spotlight are authoring aids; hints only guide static mode.
func (k ObjectKind) VisibleIn(mode PlayMode) bool {
	switch k {
	case KindStop, KindSpotlight:
		return false
	case KindArrow:
		return mode == ModeStatic
	default:
		return true
	}
}
