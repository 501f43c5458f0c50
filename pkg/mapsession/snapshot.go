package mapsession

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/gbfsmap/pkg/feedloader"
	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/zones"
)

// Snapshot is everything derived from one successful load. It is never modified after
// it has been published.
type Snapshot struct {
	LoadID   uuid.UUID
	LoadedAt time.Time

	Discovery    *gbfs.Discovery
	Zones        []*zones.Zone
	GlobalRules  []zones.Rule
	Stations     []gbfs.StationInformationRecord
	Statuses     []gbfs.StationStatusRecord
	Vehicles     []gbfs.VehicleRecord
	VehicleTypes []gbfs.VehicleType
	PricingPlans []gbfs.PricingPlan

	// Errors holds the feeds that failed to fetch or decode for this load
	Errors []*feedloader.FeedError

	Stats zones.Stats
}

// AvailableVehicles counts free floating vehicles that are neither reserved nor disabled.
func (s *Snapshot) AvailableVehicles() int {
	available := 0
	for _, vehicle := range s.Vehicles {
		if !vehicle.IsReserved && !vehicle.IsDisabled {
			available++
		}
	}
	return available
}

func (s *Snapshot) VehicleType(id string) (gbfs.VehicleType, bool) {
	for _, vehicleType := range s.VehicleTypes {
		if vehicleType.VehicleTypeID == id {
			return vehicleType, true
		}
	}
	return gbfs.VehicleType{}, false
}

func (s *Snapshot) PricingPlan(id string) (gbfs.PricingPlan, bool) {
	for _, plan := range s.PricingPlans {
		if plan.PlanID == id {
			return plan, true
		}
	}
	return gbfs.PricingPlan{}, false
}

// decodeFeed decodes an optional feed. A missing feed is not an error.
func decodeFeed[T any](result *feedloader.Result, feed string) (*gbfs.Envelope[T], *feedloader.FeedError) {
	payload, ok := result.Payload(feed)
	if !ok {
		return nil, nil
	}

	envelope, err := gbfs.Decode[T](payload)
	if err != nil {
		log.Error().Err(err).Str("feed", feed).Msg("Failed to decode feed")
		return nil, &feedloader.FeedError{Feed: feed, Err: fmt.Errorf("decoding: %w", err)}
	}
	return envelope, nil
}

// buildSnapshot returns the decode failures separately so the report can subtract them
// from the loaded count.
func buildSnapshot(result *feedloader.Result, statsCalculator *zones.StatsCalculator) (*Snapshot, []*feedloader.FeedError) {
	snapshot := &Snapshot{
		LoadID:    uuid.New(),
		LoadedAt:  time.Now(),
		Discovery: result.Discovery,
	}
	var errs []*feedloader.FeedError

	if geofencing, err := decodeFeed[gbfs.GeofencingZonesData](result, gbfs.FeedGeofencingZones); err != nil {
		errs = append(errs, err)
	} else if geofencing != nil {
		snapshot.Zones = zones.FromGBFS(geofencing.Data)
		snapshot.GlobalRules = zones.GlobalRulesFromGBFS(geofencing.Data)
	}

	if stations, err := decodeFeed[gbfs.StationInformationData](result, gbfs.FeedStationInformation); err != nil {
		errs = append(errs, err)
	} else if stations != nil {
		snapshot.Stations = stations.Data.Stations
	}

	if statuses, err := decodeFeed[gbfs.StationStatusData](result, gbfs.FeedStationStatus); err != nil {
		errs = append(errs, err)
	} else if statuses != nil {
		snapshot.Statuses = statuses.Data.Stations
	}

	if vehicles, err := decodeFeed[gbfs.VehicleStatusData](result, gbfs.FeedVehicleStatus); err != nil {
		errs = append(errs, err)
	} else if vehicles != nil {
		snapshot.Vehicles = vehicles.Data.All()
	}

	if vehicleTypes, err := decodeFeed[gbfs.VehicleTypesData](result, gbfs.FeedVehicleTypes); err != nil {
		errs = append(errs, err)
	} else if vehicleTypes != nil {
		snapshot.VehicleTypes = vehicleTypes.Data.VehicleTypes
	}

	if pricing, err := decodeFeed[gbfs.SystemPricingPlansData](result, gbfs.FeedSystemPricingPlans); err != nil {
		errs = append(errs, err)
	} else if pricing != nil {
		snapshot.PricingPlans = pricing.Data.Plans
	}

	snapshot.Stats = statsCalculator.Calculate(snapshot.Zones)
	snapshot.Errors = append(append([]*feedloader.FeedError{}, result.Errors...), errs...)

	return snapshot, errs
}
