package geo

import (
	"encoding/json"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/wheelpath/engine/pkg/core"
)

// Origin pins the scene's local metres to a WGS84 location so a scenario can be
// shown on a map. X grows east, Z grows north.
type Origin struct {
	Longitude float64
	Latitude  float64
}

// earthRadius is the WGS84 semi-major axis, the sphere Web Mercator uses.
const earthRadius = 6378137.0

// LonLat converts a local position to longitude/latitude. Northing is an arc
// along the meridian. Easting is applied in Web Mercator at the target
// latitude, where the map stretches distances by 1/cos(lat).
func (o Origin) LonLat(p core.Position3D) (lon, lat float64) {
	lat = o.Latitude + p.Z/earthRadius*180/math.Pi
	epsg := wgs84.EPSG()
	x, y, _ := epsg.Transform(4326, 3857)(o.Longitude, lat, 0)
	k := 1 / math.Cos(lat*math.Pi/180)
	lon, _, _ = epsg.Transform(3857, 4326)(x+p.X*k, y, 0)
	return lon, lat
}

func (o Origin) point(p core.Position3D) geom.Point {
	lon, lat := o.LonLat(p)
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: lon, Y: lat}, Type: geom.DimXY})
}

// FeatureCollection renders the curve and placed objects as GeoJSON.
func (o Origin) FeatureCollection(curve []core.Position3D, objects []*core.PlacedObject) ([]byte, error) {
	fc := geom.GeoJSONFeatureCollection{}
	if len(curve) >= 2 {
		flat := make([]float64, 0, len(curve)*2)
		for _, p := range curve {
			lon, lat := o.LonLat(p)
			flat = append(flat, lon, lat)
		}
		fc = append(fc, geom.GeoJSONFeature{
			Geometry:   geom.NewLineString(geom.NewSequence(flat, geom.DimXY)).AsGeometry(),
			Properties: map[string]interface{}{"kind": "path"},
		})
	}
	for _, obj := range objects {
		fc = append(fc, geom.GeoJSONFeature{
			Geometry: o.point(obj.Pose.Position).AsGeometry(),
			ID:       obj.ID.String(),
			Properties: map[string]interface{}{
				"kind":     obj.Kind.String(),
				"sequence": obj.SequenceID,
				"yaw":      obj.Pose.Rotation.Yaw,
			},
		})
	}
	return json.Marshal(fc)
}
