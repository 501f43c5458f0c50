package stationrender

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/gbfsmap/pkg/gbfs"
	"github.com/travigo/gbfsmap/pkg/metrics"
)

type LoadSummary struct {
	Physical int `json:"physical"`
	Virtual  int `json:"virtual"`
	Skipped  int `json:"skipped"`
}

// RenderState tracks the display mode of virtual stations and the element each
// station currently has attached. It is not safe for concurrent use, see Controller.
type RenderState struct {
	renderer  Renderer
	threshold float64
	language  string

	mode   Mode
	items  []*Item
	passes int
}

func NewRenderState(renderer Renderer, threshold float64, initialZoom float64, language string) *RenderState {
	return &RenderState{
		renderer:  renderer,
		threshold: threshold,
		language:  language,
		mode:      ModeForZoom(initialZoom, threshold),
	}
}

func (s *RenderState) Mode() Mode { return s.mode }

// Passes counts the mode transitions that re-rendered virtual stations.
func (s *RenderState) Passes() int { return s.passes }

func (s *RenderState) Items() []*Item { return s.items }

// Load replaces every tracked station. Previous elements are detached and the derived
// caches start empty again.
func (s *RenderState) Load(stations []gbfs.StationInformationRecord, statuses []gbfs.StationStatusRecord) LoadSummary {
	s.clear()

	statusByStation := make(map[string]*gbfs.StationStatusRecord, len(statuses))
	for i := range statuses {
		statusByStation[statuses[i].StationID] = &statuses[i]
	}

	var summary LoadSummary
	for _, station := range stations {
		item := &Item{
			Info:     station,
			Status:   statusByStation[station.StationID],
			language: s.language,
		}

		if station.IsVirtualStation {
			item.area = station.Area()
			if item.area.Empty() {
				log.Warn().Str("station", station.StationID).Msg("Skipping virtual station without an area")
				metrics.StationsSkippedTotal.WithLabelValues("missing_area").Inc()
				summary.Skipped++
				continue
			}
			summary.Virtual++
		} else {
			item.point = station.Point()
			if item.point == nil {
				log.Warn().Str("station", station.StationID).Msg("Skipping station without coordinates")
				metrics.StationsSkippedTotal.WithLabelValues("missing_point").Inc()
				summary.Skipped++
				continue
			}
			summary.Physical++
		}

		s.attach(item)
		s.items = append(s.items, item)
	}

	log.Debug().
		Int("physical", summary.Physical).
		Int("virtual", summary.Virtual).
		Int("skipped", summary.Skipped).
		Str("mode", s.mode.String()).
		Msg("Loaded stations")

	return summary
}

// Apply moves virtual stations to the mode for zoom. Nothing happens when the mode is
// unchanged. Physical stations are never touched.
func (s *RenderState) Apply(zoom float64) bool {
	mode := ModeForZoom(zoom, s.threshold)
	if mode == s.mode {
		return false
	}
	s.mode = mode

	for _, item := range s.items {
		if !item.Virtual() {
			continue
		}
		s.detach(item)
		s.attach(item)
	}

	s.passes++
	metrics.RenderPassesTotal.WithLabelValues(mode.String()).Inc()
	log.Debug().Float64("zoom", zoom).Str("mode", mode.String()).Msg("Re-rendered virtual stations")

	return true
}

func (s *RenderState) attach(item *Item) {
	item.element = s.renderer.Attach(item.directive(s.mode))
	item.attached = true
}

func (s *RenderState) detach(item *Item) {
	if !item.attached {
		return
	}
	s.renderer.Detach(item.element)
	item.attached = false
}

func (s *RenderState) clear() {
	for _, item := range s.items {
		s.detach(item)
	}
	s.items = nil
}
