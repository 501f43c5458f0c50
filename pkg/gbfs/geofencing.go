package gbfs

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

type GeofencingZonesData struct {
	Features    []GeofencingZoneRecord
	GlobalRules []ZoneRuleRecord
}

// GeofencingZoneRecord keeps its position in the feed. Geometry is nil when the
// feature's geometry could not be decoded.
type GeofencingZoneRecord struct {
	Properties ZoneProperties
	Geometry   orb.Geometry
}

type ZoneProperties struct {
	Name  LocalizedText    `json:"name"`
	Start Timestamp        `json:"start"`
	End   Timestamp        `json:"end"`
	Rules []ZoneRuleRecord `json:"rules"`
}

// ZoneRuleRecord carries both the 2.x ride_allowed field and the 3.0 start/end split.
type ZoneRuleRecord struct {
	VehicleTypeIDs     []string `json:"vehicle_type_ids"`
	RideAllowed        *bool    `json:"ride_allowed"`
	RideStartAllowed   *bool    `json:"ride_start_allowed"`
	RideEndAllowed     *bool    `json:"ride_end_allowed"`
	RideThroughAllowed *bool    `json:"ride_through_allowed"`
	StationParking     *bool    `json:"station_parking"`
	MaximumSpeedKph    *float64 `json:"maximum_speed_kph"`
}

func (r ZoneRuleRecord) StartAllowed() bool {
	if r.RideStartAllowed != nil {
		return *r.RideStartAllowed
	}
	return boolOr(r.RideAllowed, true)
}

func (r ZoneRuleRecord) EndAllowed() bool {
	if r.RideEndAllowed != nil {
		return *r.RideEndAllowed
	}
	return boolOr(r.RideAllowed, true)
}

func (r ZoneRuleRecord) ThroughAllowed() bool {
	return boolOr(r.RideThroughAllowed, true)
}

// UnmarshalJSON decodes features one at a time so a single malformed feature
// does not fail the whole collection.
func (d *GeofencingZonesData) UnmarshalJSON(data []byte) error {
	var raw struct {
		GeofencingZones struct {
			Features []json.RawMessage `json:"features"`
		} `json:"geofencing_zones"`
		GlobalRules []ZoneRuleRecord `json:"global_rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.GlobalRules = raw.GlobalRules
	d.Features = make([]GeofencingZoneRecord, 0, len(raw.GeofencingZones.Features))

	for index, rawFeature := range raw.GeofencingZones.Features {
		var record GeofencingZoneRecord

		var withProperties struct {
			Properties ZoneProperties `json:"properties"`
		}
		if err := json.Unmarshal(rawFeature, &withProperties); err != nil {
			log.Warn().Err(err).Int("zone", index).Msg("Failed to decode geofencing zone properties")
		} else {
			record.Properties = withProperties.Properties
		}

		feature, err := geojson.UnmarshalFeature(rawFeature)
		if err != nil {
			log.Warn().Err(err).Int("zone", index).Msg("Failed to decode geofencing zone geometry")
		} else {
			record.Geometry = feature.Geometry
		}

		d.Features = append(d.Features, record)
	}

	return nil
}

type GeofencingZones = Envelope[GeofencingZonesData]
