package zones

import (
	"github.com/travigo/gbfsmap/pkg/geometry"
)

// Contains tests every polygon's outer ring, bounding box first. Holes are not
// subtracted and rings with fewer than 3 points never match.
func (z *Zone) Contains(point geometry.GeoPoint) bool {
	bounds := z.bounds
	if len(bounds) != len(z.Geometry) {
		bounds = computeBounds(z.Geometry)
	}

	for i, polygon := range z.Geometry {
		if !bounds[i].ok || !bounds[i].box.Contains(point) {
			continue
		}
		if geometry.PointInPolygon(point, polygon.Outer()) {
			return true
		}
	}

	return false
}

// FindZonesContaining returns the zones whose geometry contains point, in the order
// they appear in all. That order is the precedence order used by the Analyzer.
func FindZonesContaining(point geometry.GeoPoint, all []*Zone) []*Zone {
	var containing []*Zone
	seen := map[*Zone]bool{}

	for _, zone := range all {
		if zone == nil || seen[zone] {
			continue
		}
		if zone.Contains(point) {
			seen[zone] = true
			containing = append(containing, zone)
		}
	}

	return containing
}
