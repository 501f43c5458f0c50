package stationrender

import "time"

const (
	DefaultZoomThreshold = 14.0
	DefaultDebounce      = 150 * time.Millisecond
)

type Mode int

const (
	ModeCentroid Mode = iota
	ModePolygon
)

func (m Mode) String() string {
	switch m {
	case ModeCentroid:
		return "centroid"
	case ModePolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// ModeForZoom shows virtual stations as centroid markers below the threshold and as
// their full area at or above it.
func ModeForZoom(zoom float64, threshold float64) Mode {
	if zoom < threshold {
		return ModeCentroid
	}
	return ModePolygon
}
