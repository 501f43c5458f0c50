package gbfs

type VehicleStatusData struct {
	Vehicles []VehicleRecord `json:"vehicles"`
	Bikes    []VehicleRecord `json:"bikes"`
}

// All returns vehicles from either the 3.0 or the 2.x key.
func (d VehicleStatusData) All() []VehicleRecord {
	if len(d.Vehicles) > 0 {
		return d.Vehicles
	}
	return d.Bikes
}

type VehicleRecord struct {
	VehicleID          string   `json:"vehicle_id"`
	BikeID             string   `json:"bike_id"`
	Lat                *float64 `json:"lat"`
	Lon                *float64 `json:"lon"`
	IsReserved         bool     `json:"is_reserved"`
	IsDisabled         bool     `json:"is_disabled"`
	VehicleTypeID      string   `json:"vehicle_type_id"`
	StationID          string   `json:"station_id"`
	PricingPlanID      string   `json:"pricing_plan_id"`
	CurrentRangeMeters float64  `json:"current_range_meters"`
	CurrentFuelPercent float64  `json:"current_fuel_percent"`
}

func (v VehicleRecord) ID() string {
	if v.VehicleID != "" {
		return v.VehicleID
	}
	return v.BikeID
}

type VehicleStatus = Envelope[VehicleStatusData]

type VehicleTypesData struct {
	VehicleTypes []VehicleType `json:"vehicle_types"`
}

type VehicleType struct {
	VehicleTypeID          string        `json:"vehicle_type_id"`
	FormFactor             string        `json:"form_factor"`
	PropulsionType         string        `json:"propulsion_type"`
	Name                   LocalizedText `json:"name"`
	MaxRangeMeters         float64       `json:"max_range_meters"`
	DefaultPricingPlanID   string        `json:"default_pricing_plan_id"`
	PricingPlanIDs         []string      `json:"pricing_plan_ids"`
	DefaultReserveTimeMins int           `json:"default_reserve_time"`
}

type VehicleTypes = Envelope[VehicleTypesData]

type SystemPricingPlansData struct {
	Plans []PricingPlan `json:"plans"`
}

type PricingPlan struct {
	PlanID        string           `json:"plan_id"`
	Name          LocalizedText    `json:"name"`
	Currency      string           `json:"currency"`
	Price         float64          `json:"price"`
	IsTaxable     bool             `json:"is_taxable"`
	Description   LocalizedText    `json:"description"`
	PerKmPricing  []PricingSegment `json:"per_km_pricing"`
	PerMinPricing []PricingSegment `json:"per_min_pricing"`
}

type PricingSegment struct {
	Start    int     `json:"start"`
	Rate     float64 `json:"rate"`
	Interval int     `json:"interval"`
	End      *int    `json:"end"`
}

type SystemPricingPlans = Envelope[SystemPricingPlansData]
