package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// GeoPoint is a WGS84 coordinate in map order (latitude first).
type GeoPoint struct {
	Lat float64 `json:"lat" groups:"basic,detailed"`
	Lng float64 `json:"lng" groups:"basic,detailed"`
}

// Ring is a closed boundary. The first and last points are implicitly connected.
type Ring []GeoPoint

// Polygon holds the outer boundary at index 0 followed by any holes.
// Holes are carried but never subtracted by the containment test.
type Polygon []Ring

// Outer returns the outer boundary, or nil for an empty polygon.
func (p Polygon) Outer() Ring {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

type MultiPolygon []Polygon

// Empty reports whether the geometry has no outer ring with any points.
func (m MultiPolygon) Empty() bool {
	for _, polygon := range m {
		if len(polygon.Outer()) > 0 {
			return false
		}
	}
	return true
}

var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// FromOrb converts a decoded GeoJSON geometry into map order. GeoJSON stores (lng, lat),
// this is the one place the axes are swapped.
func FromOrb(g orb.Geometry) (MultiPolygon, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		return MultiPolygon{fromOrbPolygon(geom)}, nil
	case orb.MultiPolygon:
		multiPolygon := make(MultiPolygon, 0, len(geom))
		for _, polygon := range geom {
			multiPolygon = append(multiPolygon, fromOrbPolygon(polygon))
		}
		return multiPolygon, nil
	case nil:
		return nil, ErrUnsupportedGeometry
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

func fromOrbPolygon(p orb.Polygon) Polygon {
	polygon := make(Polygon, 0, len(p))
	for _, orbRing := range p {
		ring := make(Ring, 0, len(orbRing))
		for _, point := range orbRing {
			ring = append(ring, GeoPoint{Lat: point.Lat(), Lng: point.Lon()})
		}
		polygon = append(polygon, ring)
	}
	return polygon
}
