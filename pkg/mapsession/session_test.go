package mapsession

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/gbfsmap/pkg/config"
	"github.com/travigo/gbfsmap/pkg/feedloader"
	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/geometry"
	"github.com/travigo/gbfsmap/pkg/stationrender"
	"github.com/travigo/gbfsmap/pkg/zones"
)

type sourceFunc func(ctx context.Context) (*feedloader.Result, error)

func (f sourceFunc) Load(ctx context.Context) (*feedloader.Result, error) {
	return f(ctx)
}

const (
	geofencingPayload = `{"last_updated": 1714550400, "ttl": 60, "data": {
		"geofencing_zones": {"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {"name": "Old Town", "end": "2020-01-01T00:00:00Z",
			  "rules": [{"ride_start_allowed": true, "ride_end_allowed": true, "ride_through_allowed": false}]},
			 "geometry": {"type": "MultiPolygon", "coordinates": [[[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]]]}},
			{"type": "Feature", "properties": {"name": "Park",
			  "rules": [{"vehicle_type_ids": ["scooter"], "ride_start_allowed": false, "ride_end_allowed": false, "ride_through_allowed": false, "maximum_speed_kph": 10},
			            {"ride_start_allowed": true, "ride_end_allowed": true, "ride_through_allowed": true}]},
			 "geometry": {"type": "MultiPolygon", "coordinates": [[[[1, 1], [3, 1], [3, 3], [1, 3], [1, 1]]]]}}
		]},
		"global_rules": [{"ride_start_allowed": true, "ride_end_allowed": false, "ride_through_allowed": true}]
	}}`
	stationInformationPayload = `{"last_updated": 1714550400, "ttl": 60, "data": {"stations": [
		{"station_id": "dock-1", "name": "Quay Street", "lat": 51.5, "lon": -0.1},
		{"station_id": "area-1", "name": "Harbour", "is_virtual_station": true,
		 "station_area": {"type": "MultiPolygon", "coordinates": [[[[0, 0], [2, 0], [2, 2], [0, 2]]]]}}
	]}}`
	stationStatusPayload = `{"last_updated": 1714550400, "ttl": 60, "data": {"stations": [
		{"station_id": "area-1", "num_bikes_available": 4}
	]}}`
	vehicleTypesPayload = `{"last_updated": 1714550400, "ttl": 60, "data": {"vehicle_types": [
		{"vehicle_type_id": "scooter", "form_factor": "scooter", "name": "E-Scooter", "default_pricing_plan_id": "pay-as-you-go"}
	]}}`
	pricingPayload = `{"last_updated": 1714550400, "ttl": 60, "data": {"plans": [
		{"plan_id": "pay-as-you-go", "name": "Pay as you go", "currency": "EUR", "price": 1}
	]}}`
)

func fixtureResult() *feedloader.Result {
	return &feedloader.Result{
		Requested: 6,
		Payloads: map[string][]byte{
			gbfs.FeedGeofencingZones:    []byte(geofencingPayload),
			gbfs.FeedStationInformation: []byte(stationInformationPayload),
			gbfs.FeedStationStatus:      []byte(stationStatusPayload),
			gbfs.FeedVehicleTypes:       []byte(vehicleTypesPayload),
			gbfs.FeedSystemPricingPlans: []byte(pricingPayload),
		},
		Errors: []*feedloader.FeedError{
			{Feed: gbfs.FeedVehicleStatus, URL: "https://example.com/vehicle_status.json", Err: errors.New("unexpected status 404 Not Found")},
		},
	}
}

func newTestSession(t *testing.T, source FeedSource) *Session {
	t.Helper()

	cfg := config.Default()
	cfg.Render.InitialZoom = 10
	cfg.Render.Debounce = time.Hour
	cfg.Zones.Categories = map[string]string{"scooter_rules": `"scooter" in vehicle_type_ids`}

	session, err := New(cfg, source)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return session
}

func TestReload(t *testing.T) {
	session := newTestSession(t, sourceFunc(func(ctx context.Context) (*feedloader.Result, error) {
		return fixtureResult(), nil
	}))

	report, err := session.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "5 of 6 feeds loaded", report.Summary)
	assert.Equal(t, 2, report.Zones)
	assert.Equal(t, stationrender.LoadSummary{Physical: 1, Virtual: 1}, report.Stations)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "vehicle_status")
	assert.Equal(t, 0, report.Vehicles)

	snapshot := session.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, report.LoadID, snapshot.LoadID)

	stats := session.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.SpeedLimited)
	assert.Equal(t, 1, stats.NoRide)
	assert.Equal(t, 1, stats.Custom["scooter_rules"])

	directives := session.Directives()
	require.Len(t, directives, 2)
	assert.Equal(t, stationrender.KindMarker, directives[0].Kind)
	require.NotNil(t, directives[0].Badge)
	assert.Equal(t, 4, *directives[0].Badge)
}

func TestClick(t *testing.T) {
	session := newTestSession(t, sourceFunc(func(ctx context.Context) (*feedloader.Result, error) {
		return fixtureResult(), nil
	}))

	_, err := session.Click(geometry.GeoPoint{Lat: 1, Lng: 1}, "")
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = session.Reload(context.Background())
	require.NoError(t, err)

	t.Run("overlap", func(t *testing.T) {
		result, err := session.Click(geometry.GeoPoint{Lat: 1.5, Lng: 1.5}, "scooter")
		require.NoError(t, err)

		require.Len(t, result.Zones, 2)
		assert.Equal(t, "Old Town", result.Zones[0].Name.Get("en"))
		assert.Equal(t, "Park", result.Zones[1].Name.Get("en"))

		// Old Town's universal rule (score 0) beats Park's scooter rule (score 1000)
		require.NotNil(t, result.Effective)
		assert.Equal(t, 0, result.Effective.Score)
		assert.False(t, result.Effective.Rule.RideThroughAllowed)

		universal := result.Analysis[zones.AllVehicleTypes]
		require.Len(t, universal, 2)
		assert.Equal(t, 1001, universal[1].Score)

		require.Len(t, result.VehicleTypes, 1)
		assert.Equal(t, "E-Scooter", result.VehicleTypes[0].Name)
		require.NotNil(t, result.VehicleTypes[0].PricingPlan)
		assert.Equal(t, "EUR", result.VehicleTypes[0].PricingPlan.Currency)
		assert.Nil(t, result.GlobalRules)
	})

	t.Run("single zone", func(t *testing.T) {
		result, err := session.Click(geometry.GeoPoint{Lat: 2.5, Lng: 2.5}, "scooter")
		require.NoError(t, err)

		require.Len(t, result.Zones, 1)
		require.NotNil(t, result.Effective)
		assert.Equal(t, 0, result.Effective.Score)
		assert.False(t, result.Effective.Rule.RideStartAllowed)
		assert.Equal(t, []string{"scooter"}, result.Effective.Rule.VehicleTypeIDs)
	})

	t.Run("outside", func(t *testing.T) {
		result, err := session.Click(geometry.GeoPoint{Lat: 10, Lng: 10}, "")
		require.NoError(t, err)

		assert.Empty(t, result.Zones)
		assert.Nil(t, result.Effective)
		require.Len(t, result.GlobalRules, 1)
		assert.False(t, result.GlobalRules[0].RideEndAllowed)
	})
}

func TestClickRespectsTimeWindows(t *testing.T) {
	cfg := config.Default()
	cfg.Zones.RespectTimeWindows = true

	session, err := New(cfg, sourceFunc(func(ctx context.Context) (*feedloader.Result, error) {
		return fixtureResult(), nil
	}))
	require.NoError(t, err)
	defer session.Close()

	session.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	_, err = session.Reload(context.Background())
	require.NoError(t, err)

	result, err := session.Click(geometry.GeoPoint{Lat: 1.5, Lng: 1.5}, "")
	require.NoError(t, err)

	require.Len(t, result.Zones, 1, "expired zone is ignored")
	assert.Equal(t, "Park", result.Zones[0].Name.Get("en"))
	assert.Len(t, session.Snapshot().Zones, 2, "snapshot is not filtered")
}

func TestReloadFailureKeepsPreviousState(t *testing.T) {
	fail := false
	session := newTestSession(t, sourceFunc(func(ctx context.Context) (*feedloader.Result, error) {
		if fail {
			return nil, feedloader.ErrDiscovery
		}
		return fixtureResult(), nil
	}))

	first, err := session.Reload(context.Background())
	require.NoError(t, err)
	directives := session.Directives()

	fail = true
	report, err := session.Reload(context.Background())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, feedloader.ErrDiscovery)

	assert.Equal(t, first.LoadID, session.Snapshot().LoadID)
	assert.Equal(t, directives, session.Directives())

	result, err := session.Click(geometry.GeoPoint{Lat: 1.5, Lng: 1.5}, "")
	require.NoError(t, err)
	assert.Len(t, result.Zones, 2)
}

func TestReloadKeepsStateWhenDiscoveryListsNoFeeds(t *testing.T) {
	var mu sync.Mutex
	files := map[string]string{
		"/geofencing_zones.json":    geofencingPayload,
		"/station_information.json": stationInformationPayload,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body, ok := files[r.URL.Path]
		mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	files["/gbfs.json"] = fmt.Sprintf(`{"ttl": 60, "data": {"en": {"feeds": [
		{"name": "geofencing_zones", "url": "%[1]s/geofencing_zones.json"},
		{"name": "station_information", "url": "%[1]s/station_information.json"}
	]}}}`, server.URL)

	session := newTestSession(t, feedloader.NewLoader(server.URL+"/gbfs.json", "en", 0, nil))

	first, err := session.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2 of 2 feeds loaded", first.Summary)
	directives := session.Directives()
	require.Len(t, directives, 2)

	for _, discovery := range []string{`{"error": "rate limited"}`, `{"ttl": 60, "data": {}}`} {
		mu.Lock()
		files["/gbfs.json"] = discovery
		mu.Unlock()

		report, err := session.Reload(context.Background())
		assert.Nil(t, report)
		assert.ErrorIs(t, err, feedloader.ErrDiscovery)

		assert.Equal(t, first.LoadID, session.Snapshot().LoadID)
		assert.Len(t, session.Snapshot().Zones, 2)
		assert.Equal(t, directives, session.Directives())
	}
}

func TestReloadReportsDecodeErrors(t *testing.T) {
	session := newTestSession(t, sourceFunc(func(ctx context.Context) (*feedloader.Result, error) {
		result := fixtureResult()
		result.Payloads[gbfs.FeedStationStatus] = []byte(`{"data": {"stations": "none"}}`)
		return result, nil
	}))

	report, err := session.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "4 of 6 feeds loaded", report.Summary)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[1], "station_status")

	snapshot := session.Snapshot()
	require.Len(t, snapshot.Errors, 2)
	assert.Equal(t, gbfs.FeedVehicleStatus, snapshot.Errors[0].Feed)
	assert.Equal(t, gbfs.FeedStationStatus, snapshot.Errors[1].Feed)

	directives := session.Directives()
	require.Len(t, directives, 2)
	assert.Nil(t, directives[0].Badge, "stations without status render without a badge")
}

func TestZoom(t *testing.T) {
	session := newTestSession(t, sourceFunc(func(ctx context.Context) (*feedloader.Result, error) {
		return fixtureResult(), nil
	}))

	_, err := session.Reload(context.Background())
	require.NoError(t, err)

	session.Zoom(17)
	assert.Equal(t, stationrender.ModeCentroid, session.Mode(), "waits for the quiet period")

	assert.True(t, session.FlushZoom())
	assert.Equal(t, stationrender.ModePolygon, session.Mode())

	directives := session.Directives()
	require.Len(t, directives, 2)
	assert.Equal(t, stationrender.KindArea, directives[0].Kind)
	assert.Equal(t, stationrender.KindMarker, directives[1].Kind)
}
