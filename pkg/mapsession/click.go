package mapsession

import (
	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/geometry"
	"github.com/travigo/gbfsmap/pkg/metrics"
	"github.com/travigo/gbfsmap/pkg/util"
	"github.com/travigo/gbfsmap/pkg/zones"
)

type VehicleTypeInfo struct {
	VehicleTypeID string
	Name          string
	FormFactor    string
	PricingPlan   *gbfs.PricingPlan
}

type ClickResult struct {
	Point    geometry.GeoPoint
	Zones    []*zones.Zone
	Analysis zones.Analysis

	// Effective is the winning rule for the requested vehicle type, nil when no zone
	// rule applies.
	Effective *zones.RankedRule

	// GlobalRules apply when the point is outside every zone.
	GlobalRules []zones.Rule

	VehicleTypes []VehicleTypeInfo
}

// Click resolves the zones containing point and ranks their rules. An empty
// vehicleTypeID resolves the rule for all vehicle types.
func (s *Session) Click(point geometry.GeoPoint, vehicleTypeID string) (*ClickResult, error) {
	snapshot := s.Snapshot()
	if snapshot == nil {
		return nil, ErrNotLoaded
	}

	candidates := snapshot.Zones
	if s.respectTimeWindows {
		now := s.now()
		candidates = append([]*zones.Zone(nil), snapshot.Zones...)
		util.InPlaceFilter(&candidates, func(zone *zones.Zone) bool {
			return zone.ActiveAt(now)
		})
	}

	containing := zones.FindZonesContaining(point, candidates)
	metrics.ZoneQueriesTotal.Inc()
	metrics.ZonesMatched.Observe(float64(len(containing)))

	result := &ClickResult{
		Point:    point,
		Zones:    containing,
		Analysis: s.analyzer.Analyze(containing),
	}

	if effective, ok := result.Analysis.Effective(vehicleTypeID); ok {
		result.Effective = &effective
	}
	if len(containing) == 0 {
		result.GlobalRules = snapshot.GlobalRules
	}

	for _, id := range zones.VehicleTypeIDs(containing) {
		result.VehicleTypes = append(result.VehicleTypes, s.vehicleTypeInfo(snapshot, id))
	}

	return result, nil
}

// vehicleTypeInfo describes a vehicle type id. Unknown ids and missing pricing plans are
// left blank.
func (s *Session) vehicleTypeInfo(snapshot *Snapshot, id string) VehicleTypeInfo {
	info := VehicleTypeInfo{VehicleTypeID: id}

	vehicleType, ok := snapshot.VehicleType(id)
	if !ok {
		return info
	}
	info.Name = vehicleType.Name.Get(s.language)
	info.FormFactor = vehicleType.FormFactor

	if plan, ok := snapshot.PricingPlan(vehicleType.DefaultPricingPlanID); ok {
		info.PricingPlan = &plan
	}

	return info
}
