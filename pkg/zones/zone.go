package zones

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/geometry"
)

// VehicleTypeScope is either every vehicle type or one specific vehicle type id.
// The zero value is the "all vehicle types" scope.
type VehicleTypeScope struct {
	id       string
	specific bool
}

var AllVehicleTypes = VehicleTypeScope{}

func SpecificVehicleType(id string) VehicleTypeScope {
	return VehicleTypeScope{id: id, specific: true}
}

func (s VehicleTypeScope) IsAll() bool { return !s.specific }

// VehicleTypeID is empty for the all scope.
func (s VehicleTypeScope) VehicleTypeID() string { return s.id }

func (s VehicleTypeScope) String() string {
	if s.IsAll() {
		return "all vehicle types"
	}
	return fmt.Sprintf("vehicle type %s", s.id)
}

type Rule struct {
	VehicleTypeIDs     []string
	RideStartAllowed   bool
	RideEndAllowed     bool
	RideThroughAllowed bool
	StationParking     *bool
	MaximumSpeedKph    *float64
}

// Scopes lists the vehicle types the rule applies to. An absent or empty id list
// means the rule is universal and only the all scope is returned.
func (r Rule) Scopes() []VehicleTypeScope {
	if len(r.VehicleTypeIDs) == 0 {
		return []VehicleTypeScope{AllVehicleTypes}
	}

	scopes := make([]VehicleTypeScope, 0, len(r.VehicleTypeIDs))
	seen := map[string]bool{}
	for _, id := range r.VehicleTypeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		scopes = append(scopes, SpecificVehicleType(id))
	}
	return scopes
}

func (r Rule) ParkingRequired() bool {
	return r.StationParking != nil && *r.StationParking
}

func RuleFromGBFS(record gbfs.ZoneRuleRecord) Rule {
	return Rule{
		VehicleTypeIDs:     record.VehicleTypeIDs,
		RideStartAllowed:   record.StartAllowed(),
		RideEndAllowed:     record.EndAllowed(),
		RideThroughAllowed: record.ThroughAllowed(),
		StationParking:     record.StationParking,
		MaximumSpeedKph:    record.MaximumSpeedKph,
	}
}

// Zone is one geofencing feature. Index is its position in the loaded feed and is the
// only identity a zone has.
type Zone struct {
	Index    int
	ID       string
	Name     gbfs.LocalizedText
	Start    *time.Time
	End      *time.Time
	Rules    []Rule
	Geometry geometry.MultiPolygon

	bounds []outerBounds
}

type outerBounds struct {
	box geometry.BBox
	ok  bool
}

func NewZone(index int, name gbfs.LocalizedText, rules []Rule, area geometry.MultiPolygon) *Zone {
	zone := &Zone{
		Index:    index,
		ID:       fmt.Sprintf("zone-%d", index),
		Name:     name,
		Rules:    rules,
		Geometry: area,
	}
	zone.bounds = computeBounds(area)
	return zone
}

func computeBounds(area geometry.MultiPolygon) []outerBounds {
	bounds := make([]outerBounds, len(area))
	for i, polygon := range area {
		box, ok := geometry.Bounds(polygon.Outer())
		bounds[i] = outerBounds{box: box, ok: ok}
	}
	return bounds
}

// ActiveAt reports whether t falls inside the zone's optional time window.
func (z *Zone) ActiveAt(t time.Time) bool {
	if z.Start != nil && t.Before(*z.Start) {
		return false
	}
	if z.End != nil && t.After(*z.End) {
		return false
	}
	return true
}

// FirstRule is the rule used for the coarse statistics.
func (z *Zone) FirstRule() (Rule, bool) {
	if len(z.Rules) == 0 {
		return Rule{}, false
	}
	return z.Rules[0], true
}

// FromGBFS builds the zone collection in feed order. Features with unusable geometry
// are kept with an empty geometry so later indexes stay aligned with the feed.
func FromGBFS(data gbfs.GeofencingZonesData) []*Zone {
	zones := make([]*Zone, 0, len(data.Features))

	for index, feature := range data.Features {
		var area geometry.MultiPolygon
		if feature.Geometry != nil {
			converted, err := geometry.FromOrb(feature.Geometry)
			if err != nil {
				log.Warn().Err(err).Int("zone", index).Msg("Skipping geofencing zone geometry")
			} else {
				area = converted
			}
		}

		rules := make([]Rule, 0, len(feature.Properties.Rules))
		for _, record := range feature.Properties.Rules {
			rules = append(rules, RuleFromGBFS(record))
		}

		zone := NewZone(index, feature.Properties.Name, rules, area)
		zone.Start = feature.Properties.Start.Ptr()
		zone.End = feature.Properties.End.Ptr()

		zones = append(zones, zone)
	}

	return zones
}

func GlobalRulesFromGBFS(data gbfs.GeofencingZonesData) []Rule {
	rules := make([]Rule, 0, len(data.GlobalRules))
	for _, record := range data.GlobalRules {
		rules = append(rules, RuleFromGBFS(record))
	}
	return rules
}

// VehicleTypeIDs returns every concrete vehicle type id named by any rule, sorted.
func VehicleTypeIDs(zones []*Zone) []string {
	seen := map[string]bool{}
	for _, zone := range zones {
		for _, rule := range zone.Rules {
			for _, id := range rule.VehicleTypeIDs {
				seen[id] = true
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
