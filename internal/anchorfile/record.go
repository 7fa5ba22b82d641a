// Package anchorfile reads and writes scenario files: one JSON object per
// anchor, appended back to back without an enclosing array.
package anchorfile

// ObjectRecord is a hosted object's pose relative to its anchor.
type ObjectRecord struct {
	PrefabName   string  `json:"Prefab_name"`
	X            float64 `json:"X"`
	Y            float64 `json:"Y"`
	Z            float64 `json:"Z"`
	Rotation     float64 `json:"Rotation"` // yaw relative to the anchor
	RotationX    float64 `json:"Rotation_X,omitempty"`
	RotationZ    float64 `json:"Rotation_Z,omitempty"`
	ScaleX       float64 `json:"Scale_X"`
	ScaleY       float64 `json:"Scale_Y"`
	ScaleZ       float64 `json:"Scale_Z"`
	PathNumber   int     `json:"PathNumber"`
	BezierNumber int     `json:"BezierNumber"`
}

// AnchorInfo is the anchor pose relative to the scenario's start reference.
type AnchorInfo struct {
	AnchorX      float64 `json:"anchorX"`
	AnchorY      float64 `json:"anchorY"`
	AnchorZ      float64 `json:"anchorZ"`
	AnchorRotX   float64 `json:"anchorRotX"`
	AnchorRotY   float64 `json:"anchorRotY"`
	AnchorRotZ   float64 `json:"anchorRotZ"`
	AnchorScaleX float64 `json:"anchorScaleX"`
	AnchorScaleY float64 `json:"anchorScaleY"`
	AnchorScaleZ float64 `json:"anchorScaleZ"`
}

// AnchorRecord is one persisted anchor with its hosted objects.
type AnchorRecord struct {
	Name              string         `json:"Name"`
	Scenario          string         `json:"Scenario"`
	ID                string         `json:"Id"`
	ListAnchorObjects []ObjectRecord `json:"ListAnchorObjects"`
	AnchorInfo        AnchorInfo     `json:"anchorInfo"`
}
