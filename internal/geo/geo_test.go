package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/wheelpath/engine/pkg/core"
)

func TestPosition3DFromString_ThreeComponents(t *testing.T) {
	pos, err := Position3DFromString("1.5, -2, 3.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != (core.Position3D{X: 1.5, Y: -2, Z: 3.25}) {
		t.Errorf("unexpected position %+v", pos)
	}
}

func TestPosition3DFromString_GroundPlane(t *testing.T) {
	pos, err := Position3DFromString("4,8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.X != 4 || pos.Y != 0 || pos.Z != 8 {
		t.Errorf("unexpected position %+v", pos)
	}
}

func TestPosition3DFromString_Invalid(t *testing.T) {
	for _, in := range []string{"", "1", "a,b", "1,2,3,4", "1,,2"} {
		if _, err := Position3DFromString(in); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("%q: expected ErrInvalidCoordinates, got %v", in, err)
		}
	}
}

func TestVecRoundTrip(t *testing.T) {
	p := core.Position3D{X: 1, Y: 2, Z: 3}
	if FromVec(Vec(p)) != p {
		t.Errorf("vector conversion lost data")
	}
}

func TestOrigin_LonLat(t *testing.T) {
	o := Origin{Longitude: 13.4, Latitude: 52.5}
	metresPerDegree := earthRadius * math.Pi / 180

	tests := []struct {
		name    string
		p       core.Position3D
		lon     float64
		lat     float64
		epsilon float64
	}{
		{"origin", core.Position3D{}, 13.4, 52.5, 1e-9},
		{"one degree north", core.Position3D{Z: metresPerDegree}, 13.4, 53.5, 1e-9},
		{"scene sized north", core.Position3D{Z: 30}, 13.4, 52.5 + 30/metresPerDegree, 1e-9},
		{"east shrinks with latitude", core.Position3D{X: 100}, 13.4 + 100/(metresPerDegree*math.Cos(52.5*math.Pi/180)), 52.5, 1e-7},
		{"south west", core.Position3D{X: -50, Z: -20}, 13.4 - 50/(metresPerDegree*math.Cos((52.5-20/metresPerDegree)*math.Pi/180)), 52.5 - 20/metresPerDegree, 1e-7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat := o.LonLat(tt.p)
			if math.Abs(lon-tt.lon) > tt.epsilon || math.Abs(lat-tt.lat) > tt.epsilon {
				t.Errorf("LonLat(%v) = %.9f,%.9f, want %.9f,%.9f", tt.p, lon, lat, tt.lon, tt.lat)
			}
		})
	}
}
