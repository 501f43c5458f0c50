package routes

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/geometry"
	"github.com/travigo/gbfsmap/pkg/mapsession"
	"github.com/travigo/gbfsmap/pkg/zones"
)

type ruleView struct {
	VehicleTypeIDs     []string `json:"vehicle_type_ids,omitempty" groups:"basic"`
	AllVehicleTypes    bool     `json:"all_vehicle_types" groups:"basic" copier:"-"`
	RideStartAllowed   bool     `json:"ride_start_allowed" groups:"basic"`
	RideEndAllowed     bool     `json:"ride_end_allowed" groups:"basic"`
	RideThroughAllowed bool     `json:"ride_through_allowed" groups:"basic"`
	StationParking     *bool    `json:"station_parking,omitempty" groups:"basic"`
	MaximumSpeedKph    *float64 `json:"maximum_speed_kph,omitempty" groups:"basic"`
}

type zoneView struct {
	Index    int                   `json:"index" groups:"basic"`
	ID       string                `json:"id" groups:"basic"`
	Label    string                `json:"name" groups:"basic" copier:"-"`
	Start    *time.Time            `json:"start,omitempty" groups:"basic"`
	End      *time.Time            `json:"end,omitempty" groups:"basic"`
	Rules    []ruleView            `json:"rules" groups:"basic" copier:"-"`
	Geometry geometry.MultiPolygon `json:"geometry,omitempty" groups:"detailed"`
}

type rankedRuleView struct {
	ZoneID    string   `json:"zone_id" groups:"basic" copier:"-"`
	ZoneIndex int      `json:"zone_index" groups:"basic"`
	RuleIndex int      `json:"rule_index" groups:"basic"`
	Score     int      `json:"score" groups:"basic"`
	Rule      ruleView `json:"rule" groups:"basic" copier:"-"`
}

type scopeView struct {
	AllVehicleTypes bool             `json:"all_vehicle_types" groups:"basic"`
	VehicleTypeID   string           `json:"vehicle_type_id,omitempty" groups:"basic"`
	Rules           []rankedRuleView `json:"rules" groups:"basic"`
}

type vehicleTypeView struct {
	VehicleTypeID string   `json:"vehicle_type_id" groups:"basic"`
	Name          string   `json:"name,omitempty" groups:"basic"`
	FormFactor    string   `json:"form_factor,omitempty" groups:"basic"`
	PricingPlanID string   `json:"pricing_plan_id,omitempty" groups:"detailed" copier:"-"`
	Currency      string   `json:"currency,omitempty" groups:"detailed" copier:"-"`
	Price         *float64 `json:"price,omitempty" groups:"detailed" copier:"-"`
}

type containingView struct {
	Point        geometry.GeoPoint `json:"point" groups:"basic"`
	Zones        []zoneView        `json:"zones" groups:"basic"`
	Scopes       []scopeView       `json:"scopes" groups:"basic"`
	Effective    *rankedRuleView   `json:"effective" groups:"basic"`
	GlobalRules  []ruleView        `json:"global_rules,omitempty" groups:"basic"`
	VehicleTypes []vehicleTypeView `json:"vehicle_types" groups:"basic"`
}

func newRuleView(rule zones.Rule) (ruleView, error) {
	var view ruleView
	if err := copier.Copy(&view, &rule); err != nil {
		return view, err
	}
	view.AllVehicleTypes = len(rule.VehicleTypeIDs) == 0
	return view, nil
}

func newRuleViews(rules []zones.Rule) ([]ruleView, error) {
	views := make([]ruleView, 0, len(rules))
	for _, rule := range rules {
		view, err := newRuleView(rule)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func newZoneView(zone *zones.Zone, language string) (zoneView, error) {
	var view zoneView
	if err := copier.Copy(&view, zone); err != nil {
		return view, err
	}
	view.Label = zone.Name.Get(language)

	rules, err := newRuleViews(zone.Rules)
	if err != nil {
		return view, err
	}
	view.Rules = rules

	return view, nil
}

func newRankedRuleView(ranked zones.RankedRule) (rankedRuleView, error) {
	var view rankedRuleView
	if err := copier.Copy(&view, &ranked); err != nil {
		return view, err
	}
	view.ZoneID = ranked.Zone.ID

	rule, err := newRuleView(ranked.Rule)
	if err != nil {
		return view, err
	}
	view.Rule = rule

	return view, nil
}

func newContainingView(result *mapsession.ClickResult, language string) (*containingView, error) {
	view := &containingView{
		Point:        result.Point,
		Zones:        []zoneView{},
		Scopes:       []scopeView{},
		VehicleTypes: []vehicleTypeView{},
	}

	for _, zone := range result.Zones {
		zoneItem, err := newZoneView(zone, language)
		if err != nil {
			return nil, err
		}
		view.Zones = append(view.Zones, zoneItem)
	}

	for _, scope := range result.Analysis.Scopes() {
		scoped := scopeView{
			AllVehicleTypes: scope.IsAll(),
			VehicleTypeID:   scope.VehicleTypeID(),
		}
		for _, ranked := range result.Analysis[scope] {
			rankedView, err := newRankedRuleView(ranked)
			if err != nil {
				return nil, err
			}
			scoped.Rules = append(scoped.Rules, rankedView)
		}
		view.Scopes = append(view.Scopes, scoped)
	}

	if result.Effective != nil {
		effective, err := newRankedRuleView(*result.Effective)
		if err != nil {
			return nil, err
		}
		view.Effective = &effective
	}

	if len(result.GlobalRules) > 0 {
		globalRules, err := newRuleViews(result.GlobalRules)
		if err != nil {
			return nil, err
		}
		view.GlobalRules = globalRules
	}

	for _, vehicleType := range result.VehicleTypes {
		var typeView vehicleTypeView
		if err := copier.Copy(&typeView, &vehicleType); err != nil {
			return nil, err
		}
		if vehicleType.PricingPlan != nil {
			price := vehicleType.PricingPlan.Price
			typeView.PricingPlanID = vehicleType.PricingPlan.PlanID
			typeView.Currency = vehicleType.PricingPlan.Currency
			typeView.Price = &price
		}
		view.VehicleTypes = append(view.VehicleTypes, typeView)
	}

	return view, nil
}

type vehicleView struct {
	VehicleID     string             `json:"vehicle_id" groups:"basic" copier:"-"`
	VehicleTypeID string             `json:"vehicle_type_id,omitempty" groups:"basic"`
	StationID     string             `json:"station_id,omitempty" groups:"basic"`
	Point         *geometry.GeoPoint `json:"point,omitempty" groups:"basic" copier:"-"`
	IsReserved    bool               `json:"is_reserved" groups:"detailed"`
	IsDisabled    bool               `json:"is_disabled" groups:"detailed"`
	PricingPlanID string             `json:"pricing_plan_id,omitempty" groups:"detailed"`
}

func newVehicleView(vehicle gbfs.VehicleRecord) (vehicleView, error) {
	var view vehicleView
	if err := copier.Copy(&view, &vehicle); err != nil {
		return view, err
	}
	view.VehicleID = vehicle.ID()
	if vehicle.Lat != nil && vehicle.Lon != nil {
		view.Point = &geometry.GeoPoint{Lat: *vehicle.Lat, Lng: *vehicle.Lon}
	}
	return view, nil
}
