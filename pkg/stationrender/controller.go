package stationrender

import (
	"sync"
	"time"

	"github.com/travigo/gbfsmap/pkg/gbfs"
)

// Controller serialises zoom events, timer callbacks and loads onto one RenderState.
// Zoom events are debounced so a gesture produces a single re-render for its final
// zoom level.
type Controller struct {
	mu sync.Mutex

	state    *RenderState
	debounce time.Duration

	zoom       float64
	timer      *time.Timer
	generation uint64
}

func NewController(state *RenderState, debounce time.Duration, initialZoom float64) *Controller {
	return &Controller{
		state:    state,
		debounce: debounce,
		zoom:     initialZoom,
	}
}

// OnZoom records the latest zoom and restarts the quiet period.
func (c *Controller) OnZoom(zoom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.zoom = zoom
	c.cancelLocked()

	generation := c.generation
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(generation)
	})
}

func (c *Controller) fire(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A callback can already be running when Stop fails to cancel it
	if generation != c.generation {
		return
	}
	c.timer = nil
	c.state.Apply(c.zoom)
}

// Flush applies the latest zoom immediately, dropping any pending timer.
func (c *Controller) Flush() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	return c.state.Apply(c.zoom)
}

func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
}

func (c *Controller) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
}

func (c *Controller) Load(stations []gbfs.StationInformationRecord, statuses []gbfs.StationStatusRecord) LoadSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Load(stations, statuses)
}

func (c *Controller) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.zoom
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Mode()
}

func (c *Controller) Passes() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Passes()
}

// Pending reports whether a debounced re-render is waiting.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.timer != nil
}
