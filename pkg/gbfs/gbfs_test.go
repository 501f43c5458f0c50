package gbfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryV3(t *testing.T) {
	payload := []byte(`{
		"last_updated": "2024-05-01T10:00:00+02:00",
		"ttl": 60,
		"version": "3.0",
		"data": {"feeds": [
			{"name": "station_information", "url": "https://example.com/station_information.json"},
			{"name": "geofencing_zones", "url": "https://example.com/geofencing_zones.json"}
		]}
	}`)

	discovery, err := Decode[DiscoveryData](payload)
	require.NoError(t, err)

	url, ok := discovery.Data.FeedURL("fr", FeedGeofencingZones)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/geofencing_zones.json", url)
	assert.Equal(t, 60, discovery.TTL)
	assert.Equal(t, int64(1714550400), discovery.LastUpdated.Unix())
}

func TestDiscoveryV2Languages(t *testing.T) {
	payload := []byte(`{
		"last_updated": 1714550400,
		"ttl": 0,
		"version": "2.3",
		"data": {
			"nb": {"feeds": [{"name": "station_status", "url": "https://example.com/nb/station_status.json"}]},
			"en": {"feeds": [{"name": "station_status", "url": "https://example.com/en/station_status.json"}]}
		}
	}`)

	discovery, err := Decode[DiscoveryData](payload)
	require.NoError(t, err)

	url, _ := discovery.Data.FeedURL("nb", FeedStationStatus)
	assert.Equal(t, "https://example.com/nb/station_status.json", url)

	url, _ = discovery.Data.FeedURL("de", FeedStationStatus)
	assert.Equal(t, "https://example.com/en/station_status.json", url, "falls back to first language alphabetically")

	_, ok := discovery.Data.FeedURL("en", FeedGeofencingZones)
	assert.False(t, ok)
	assert.Equal(t, time.Unix(1714550400, 0).UTC(), discovery.LastUpdated.Time)
}

func TestLocalizedText(t *testing.T) {
	var info StationInformation
	payload := []byte(`{"data": {"stations": [
		{"station_id": "a", "name": "Plain name", "lat": 1, "lon": 2},
		{"station_id": "b", "name": [{"text": "Nom", "language": "fr"}, {"text": "Name", "language": "en"}]}
	]}}`)

	decoded, err := Decode[StationInformationData](payload)
	require.NoError(t, err)
	info = *decoded

	assert.Equal(t, "Plain name", info.Data.Stations[0].Name.Get("en"))
	assert.Equal(t, "Name", info.Data.Stations[1].Name.Get("en"))
	assert.Equal(t, "Nom", info.Data.Stations[1].Name.Get("de"))
	assert.Equal(t, "", LocalizedText(nil).Get("en"))

	require.NotNil(t, info.Data.Stations[0].Point())
	assert.Equal(t, 1.0, info.Data.Stations[0].Point().Lat)
	assert.Nil(t, info.Data.Stations[1].Point())
}

func TestStationArea(t *testing.T) {
	payload := []byte(`{"data": {"stations": [
		{"station_id": "v1", "name": "Area", "is_virtual_station": true,
		 "station_area": {"type": "MultiPolygon", "coordinates": [[[[10.0, 59.0], [10.1, 59.0], [10.1, 59.1], [10.0, 59.1], [10.0, 59.0]]]]}},
		{"station_id": "v2", "name": "Broken", "is_virtual_station": true, "station_area": {"type": "MultiPolygon", "coordinates": "nope"}},
		{"station_id": "v3", "name": "Missing", "is_virtual_station": true}
	]}}`)

	info, err := Decode[StationInformationData](payload)
	require.NoError(t, err)

	area := info.Data.Stations[0].Area()
	require.Len(t, area, 1)
	assert.Equal(t, 59.0, area[0].Outer()[0].Lat)
	assert.Equal(t, 10.0, area[0].Outer()[0].Lng)

	assert.Nil(t, info.Data.Stations[1].Area())
	assert.Nil(t, info.Data.Stations[2].Area())
}

func TestStationStatusFallbacks(t *testing.T) {
	payload := []byte(`{"data": {"stations": [
		{"station_id": "a", "num_bikes_available": 4, "num_docks_available": 6, "is_renting": false},
		{"station_id": "b", "num_vehicles_available": 7, "num_bikes_available": 1, "last_reported": "2024-05-01T08:00:00Z"},
		{"station_id": "c"}
	]}}`)

	status, err := Decode[StationStatusData](payload)
	require.NoError(t, err)

	stations := status.Data.Stations
	assert.Equal(t, 4, stations[0].VehiclesAvailable())
	assert.Equal(t, 6, stations[0].DocksAvailable())
	assert.False(t, stations[0].Renting())
	assert.True(t, stations[0].Installed())
	assert.Equal(t, 7, stations[1].VehiclesAvailable())
	assert.Equal(t, 0, stations[2].VehiclesAvailable())
	assert.NotNil(t, stations[1].LastReported.Ptr())
	assert.Nil(t, stations[2].LastReported.Ptr())
}

func TestGeofencingZonesToleratesMalformedFeature(t *testing.T) {
	payload := []byte(`{"ttl": 300, "data": {
		"geofencing_zones": {"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {"name": "Old town", "start": 1714550400,
			  "rules": [{"vehicle_type_ids": ["scooter"], "ride_allowed": false, "ride_through_allowed": true, "maximum_speed_kph": 10}]},
			 "geometry": {"type": "MultiPolygon", "coordinates": [[[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]]]}},
			{"type": "Feature", "properties": {"name": "Broken"}, "geometry": {"type": "MultiPolygon", "coordinates": 12}},
			{"type": "Feature", "properties": {"name": [{"text": "Harbour", "language": "en"}], "end": "2030-01-01T00:00:00Z",
			  "rules": [{"ride_start_allowed": true, "ride_end_allowed": false, "ride_through_allowed": false, "station_parking": true}]},
			 "geometry": {"type": "Polygon", "coordinates": [[[5, 5], [6, 5], [6, 6], [5, 5]]]}}
		]},
		"global_rules": [{"ride_start_allowed": true, "ride_end_allowed": true, "ride_through_allowed": true}]
	}}`)

	zones, err := Decode[GeofencingZonesData](payload)
	require.NoError(t, err)
	require.Len(t, zones.Data.Features, 3)

	first := zones.Data.Features[0]
	assert.Equal(t, "Old town", first.Properties.Name.Get("en"))
	assert.NotNil(t, first.Geometry)
	require.Len(t, first.Properties.Rules, 1)
	rule := first.Properties.Rules[0]
	assert.False(t, rule.StartAllowed())
	assert.False(t, rule.EndAllowed())
	assert.True(t, rule.ThroughAllowed())
	assert.Equal(t, 10.0, *rule.MaximumSpeedKph)
	assert.Equal(t, []string{"scooter"}, rule.VehicleTypeIDs)
	assert.False(t, first.Properties.Start.IsZero())

	assert.Equal(t, "Broken", zones.Data.Features[1].Properties.Name.Get("en"))
	assert.Nil(t, zones.Data.Features[1].Geometry)

	third := zones.Data.Features[2]
	assert.Equal(t, "Harbour", third.Properties.Name.Get("en"))
	assert.True(t, third.Properties.Rules[0].StartAllowed())
	assert.False(t, third.Properties.Rules[0].EndAllowed())
	assert.Equal(t, 2030, third.Properties.End.Year())

	assert.Len(t, zones.Data.GlobalRules, 1)
}
