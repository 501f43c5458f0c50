package stationrender

import (
	"fmt"
	"strings"

	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/geometry"
)

// Derived is built at most once per item per load. Status changes after the build
// are not reflected until the next load.
type Derived struct {
	Popup    string
	Badge    *int
	Centroid geometry.GeoPoint
	Vertices geometry.MultiPolygon
}

type Item struct {
	Info   gbfs.StationInformationRecord
	Status *gbfs.StationStatusRecord

	area  geometry.MultiPolygon
	point *geometry.GeoPoint

	language string
	derived  *Derived

	element  Element
	attached bool
}

func (i *Item) Virtual() bool {
	return i.Info.IsVirtualStation
}

// Derived returns the cached derived data, building it on first use.
func (i *Item) Derived() *Derived {
	if i.derived != nil {
		return i.derived
	}

	derived := &Derived{
		Popup: buildPopup(i.Info, i.Status, i.language),
		Badge: badge(i.Status),
	}

	if i.Virtual() {
		derived.Centroid, _ = geometry.Centroid(i.area)
		derived.Vertices = copyArea(i.area)
	} else if i.point != nil {
		derived.Centroid = *i.point
	}

	i.derived = derived
	return derived
}

// HasDerived reports whether the cache has been built since the last load.
func (i *Item) HasDerived() bool {
	return i.derived != nil
}

func badge(status *gbfs.StationStatusRecord) *int {
	if status == nil {
		return nil
	}
	available := status.VehiclesAvailable()
	return &available
}

// copyArea keeps each polygon's outer ring and holes together so parts and holes
// stay distinguishable.
func copyArea(area geometry.MultiPolygon) geometry.MultiPolygon {
	polygons := make(geometry.MultiPolygon, 0, len(area))
	for _, polygon := range area {
		rings := make(geometry.Polygon, 0, len(polygon))
		for _, ring := range polygon {
			rings = append(rings, append(geometry.Ring(nil), ring...))
		}
		polygons = append(polygons, rings)
	}
	return polygons
}

func (i *Item) directive(mode Mode) Directive {
	derived := i.Derived()

	if !i.Virtual() {
		point := derived.Centroid
		return Directive{
			StationID: i.Info.StationID,
			Kind:      KindMarker,
			Point:     &point,
			Popup:     derived.Popup,
		}
	}

	directive := Directive{
		StationID: i.Info.StationID,
		Mode:      mode.String(),
		Virtual:   true,
		Popup:     derived.Popup,
	}

	switch mode {
	case ModePolygon:
		style := AreaStyle
		directive.Kind = KindArea
		directive.Polygons = derived.Vertices
		directive.Style = &style
	default:
		centroid := derived.Centroid
		directive.Kind = KindMarker
		directive.Point = &centroid
		directive.Badge = derived.Badge
	}

	return directive
}

func buildPopup(info gbfs.StationInformationRecord, status *gbfs.StationStatusRecord, language string) string {
	var popup strings.Builder

	name := info.Name.Get(language)
	if name == "" {
		name = info.StationID
	}
	popup.WriteString(name)

	if info.IsVirtualStation {
		popup.WriteString("\nVirtual station")
	}
	if info.Address != "" {
		fmt.Fprintf(&popup, "\n%s", info.Address)
	}
	if info.Capacity != nil {
		fmt.Fprintf(&popup, "\nCapacity: %d", *info.Capacity)
	}

	if status != nil {
		fmt.Fprintf(&popup, "\nVehicles available: %d", status.VehiclesAvailable())
		if status.NumDocksAvailable != nil {
			fmt.Fprintf(&popup, "\nDocks available: %d", status.DocksAvailable())
		}
		if !status.Renting() {
			popup.WriteString("\nNot renting")
		}
		if !status.Returning() {
			popup.WriteString("\nNot accepting returns")
		}
	}

	return popup.String()
}
