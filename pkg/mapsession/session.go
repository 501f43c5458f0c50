package mapsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/gbfsmap/pkg/config"
	"github.com/travigo/gbfsmap/pkg/feedloader"
	"github.com/travigo/gbfsmap/pkg/metrics"
	"github.com/travigo/gbfsmap/pkg/stationrender"
	"github.com/travigo/gbfsmap/pkg/zones"
)

var ErrNotLoaded = errors.New("no feed has been loaded yet")

type FeedSource interface {
	Load(ctx context.Context) (*feedloader.Result, error)
}

type LoadReport struct {
	LoadID    uuid.UUID                 `json:"load_id"`
	Summary   string                    `json:"summary"`
	Requested int                       `json:"requested"`
	Loaded    int                       `json:"loaded"`
	Errors    []string                  `json:"errors,omitempty"`
	Zones     int                       `json:"zones"`
	Stations  stationrender.LoadSummary `json:"stations"`
	Vehicles  int                       `json:"vehicles"`
	Available int                       `json:"vehicles_available"`
	Duration  time.Duration             `json:"duration"`
}

// Session owns the current snapshot and the station render state. Reloads replace
// both only once the new data has been loaded.
type Session struct {
	source   FeedSource
	analyzer zones.Analyzer
	stats    *zones.StatsCalculator
	render   *stationrender.Controller
	board    *stationrender.DirectiveBoard
	language string

	respectTimeWindows bool
	now                func() time.Time

	reloadMu sync.Mutex

	mu       sync.RWMutex
	snapshot *Snapshot
}

func New(cfg *config.Config, source FeedSource) (*Session, error) {
	statsCalculator, err := zones.NewStatsCalculator(cfg.Zones.Categories)
	if err != nil {
		return nil, err
	}

	board := stationrender.NewDirectiveBoard()
	state := stationrender.NewRenderState(board, cfg.Render.ZoomThreshold, cfg.Render.InitialZoom, cfg.Language)

	return &Session{
		source:             source,
		analyzer:           zones.NewAnalyzer(cfg.Zones.PrecedenceStride),
		stats:              statsCalculator,
		render:             stationrender.NewController(state, cfg.Render.Debounce, cfg.Render.InitialZoom),
		board:              board,
		language:           cfg.Language,
		respectTimeWindows: cfg.Zones.RespectTimeWindows,
		now:                time.Now,
	}, nil
}

// Reload loads the feeds and publishes a new snapshot. When the load fails outright the
// previous snapshot and rendered stations are kept.
func (s *Session) Reload(ctx context.Context) (*LoadReport, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()

	result, err := s.source.Load(ctx)
	if err != nil {
		metrics.ReloadsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("Reload failed, keeping previous data")
		return nil, fmt.Errorf("reload: %w", err)
	}

	snapshot, decodeErrors := buildSnapshot(result, s.stats)

	report := &LoadReport{
		LoadID:    snapshot.LoadID,
		Requested: result.Requested,
		Loaded:    result.Loaded() - len(decodeErrors),
		Zones:     len(snapshot.Zones),
		Vehicles:  len(snapshot.Vehicles),
		Available: snapshot.AvailableVehicles(),
	}
	report.Summary = fmt.Sprintf("%d of %d feeds loaded", report.Loaded, report.Requested)
	for _, feedErr := range snapshot.Errors {
		report.Errors = append(report.Errors, feedErr.Error())
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	report.Stations = s.render.Load(snapshot.Stations, snapshot.Statuses)
	report.Duration = time.Since(start)

	metrics.ReloadsTotal.WithLabelValues("ok").Inc()
	metrics.ReloadDurationMs.Observe(float64(report.Duration.Milliseconds()))

	log.Info().
		Str("load_id", report.LoadID.String()).
		Int("zones", report.Zones).
		Int("vehicles", report.Vehicles).
		Int("stations", report.Stations.Physical+report.Stations.Virtual).
		Int("errors", len(report.Errors)).
		Msg(report.Summary)

	return report, nil
}

func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

func (s *Session) Stats() zones.Stats {
	snapshot := s.Snapshot()
	if snapshot == nil {
		return zones.Stats{}
	}
	return snapshot.Stats
}

func (s *Session) Zoom(level float64) {
	s.render.OnZoom(level)
}

// FlushZoom applies a pending zoom without waiting for the quiet period.
func (s *Session) FlushZoom() bool {
	return s.render.Flush()
}

func (s *Session) Mode() stationrender.Mode {
	return s.render.Mode()
}

func (s *Session) Directives() []stationrender.Directive {
	return s.board.Directives()
}

func (s *Session) Language() string {
	return s.language
}

func (s *Session) Close() {
	s.render.Stop()
}
