package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gbfsmap_feed_loads_total",
		Help: "Feed payloads loaded by feed and outcome",
	}, []string{"feed", "outcome"})
	FeedCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gbfsmap_feed_cache_hits_total",
		Help: "Feed payloads served from the cache",
	})
	ReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gbfsmap_reloads_total",
		Help: "Snapshot reloads by outcome",
	}, []string{"outcome"})
	ReloadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gbfsmap_reload_duration_ms",
		Help:    "Snapshot reload duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	ZoneQueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gbfsmap_zone_queries_total",
		Help: "Zone containment queries",
	})
	ZonesMatched = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gbfsmap_zones_matched",
		Help:    "Number of zones containing a queried point",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})
	RenderPassesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gbfsmap_render_passes_total",
		Help: "Virtual station re-render passes by target mode",
	}, []string{"mode"})
	StationsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gbfsmap_stations_skipped_total",
		Help: "Station records skipped while rendering",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(FeedLoadsTotal)
	prometheus.MustRegister(FeedCacheHitsTotal)
	prometheus.MustRegister(ReloadsTotal)
	prometheus.MustRegister(ReloadDurationMs)
	prometheus.MustRegister(ZoneQueriesTotal)
	prometheus.MustRegister(ZonesMatched)
	prometheus.MustRegister(RenderPassesTotal)
	prometheus.MustRegister(StationsSkippedTotal)
}

func Handler() http.Handler { return promhttp.Handler() }
