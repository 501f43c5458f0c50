package gbfs

import (
	"encoding/json"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/travigo/gbfsmap/pkg/geometry"
)

type StationInformationData struct {
	Stations []StationInformationRecord `json:"stations"`
}

type StationInformationRecord struct {
	StationID        string          `json:"station_id"`
	Name             LocalizedText   `json:"name"`
	ShortName        LocalizedText   `json:"short_name"`
	Lat              *float64        `json:"lat"`
	Lon              *float64        `json:"lon"`
	Address          string          `json:"address"`
	Capacity         *int            `json:"capacity"`
	IsVirtualStation bool            `json:"is_virtual_station"`
	StationArea      json.RawMessage `json:"station_area"`
}

type StationInformation = Envelope[StationInformationData]

// Area decodes station_area. A missing or malformed area yields nil and is logged.
func (s StationInformationRecord) Area() geometry.MultiPolygon {
	if len(s.StationArea) == 0 || string(s.StationArea) == "null" {
		return nil
	}

	decoded, err := geojson.UnmarshalGeometry(s.StationArea)
	if err != nil {
		log.Warn().Err(err).Str("station", s.StationID).Msg("Failed to decode station area")
		return nil
	}

	area, err := geometry.FromOrb(decoded.Geometry())
	if err != nil {
		log.Warn().Err(err).Str("station", s.StationID).Msg("Unsupported station area geometry")
		return nil
	}
	return area
}

func (s StationInformationRecord) Point() *geometry.GeoPoint {
	if s.Lat == nil || s.Lon == nil {
		return nil
	}
	return &geometry.GeoPoint{Lat: *s.Lat, Lng: *s.Lon}
}

type StationStatusData struct {
	Stations []StationStatusRecord `json:"stations"`
}

type StationStatusRecord struct {
	StationID            string    `json:"station_id"`
	NumBikesAvailable    *int      `json:"num_bikes_available"`
	NumVehiclesAvailable *int      `json:"num_vehicles_available"`
	NumDocksAvailable    *int      `json:"num_docks_available"`
	IsInstalled          *bool     `json:"is_installed"`
	IsRenting            *bool     `json:"is_renting"`
	IsReturning          *bool     `json:"is_returning"`
	LastReported         Timestamp `json:"last_reported"`
}

type StationStatus = Envelope[StationStatusData]

// VehiclesAvailable prefers the 3.0 field and falls back to the 2.x bike count.
func (s StationStatusRecord) VehiclesAvailable() int {
	if s.NumVehiclesAvailable != nil {
		return *s.NumVehiclesAvailable
	}
	if s.NumBikesAvailable != nil {
		return *s.NumBikesAvailable
	}
	return 0
}

func (s StationStatusRecord) DocksAvailable() int {
	if s.NumDocksAvailable == nil {
		return 0
	}
	return *s.NumDocksAvailable
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func (s StationStatusRecord) Installed() bool { return boolOr(s.IsInstalled, true) }
func (s StationStatusRecord) Renting() bool   { return boolOr(s.IsRenting, true) }
func (s StationStatusRecord) Returning() bool { return boolOr(s.IsReturning, true) }
