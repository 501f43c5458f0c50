package geometry

// BBox is an axis aligned bounding box in degrees.
type BBox struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

func (b BBox) Contains(point GeoPoint) bool {
	return point.Lat >= b.MinLat && point.Lat <= b.MaxLat &&
		point.Lng >= b.MinLng && point.Lng <= b.MaxLng
}

// Bounds returns the bounding box of a ring. ok is false for an empty ring.
func Bounds(ring Ring) (box BBox, ok bool) {
	if len(ring) == 0 {
		return BBox{}, false
	}

	box = BBox{MinLat: ring[0].Lat, MaxLat: ring[0].Lat, MinLng: ring[0].Lng, MaxLng: ring[0].Lng}
	for _, point := range ring[1:] {
		if point.Lat < box.MinLat {
			box.MinLat = point.Lat
		}
		if point.Lat > box.MaxLat {
			box.MaxLat = point.Lat
		}
		if point.Lng < box.MinLng {
			box.MinLng = point.Lng
		}
		if point.Lng > box.MaxLng {
			box.MaxLng = point.Lng
		}
	}

	return box, true
}

// PointInPolygon runs the even-odd ray casting test against a single ring.
// Rings with fewer than 3 points never contain anything. Points exactly on an edge
// may land either way.
func PointInPolygon(point GeoPoint, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	x := point.Lng
	y := point.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}

	return inside
}

// Centroid is the mean of the vertices of the first ring of the first polygon.
// It is a label position, not the area centroid, and every other ring is ignored.
func Centroid(mp MultiPolygon) (GeoPoint, bool) {
	if len(mp) == 0 {
		return GeoPoint{}, false
	}
	ring := mp[0].Outer()
	if len(ring) == 0 {
		return GeoPoint{}, false
	}

	var sumLat, sumLng float64
	for _, point := range ring {
		sumLat += point.Lat
		sumLng += point.Lng
	}

	count := float64(len(ring))
	return GeoPoint{Lat: sumLat / count, Lng: sumLng / count}, true
}
