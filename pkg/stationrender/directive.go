package stationrender

import (
	"sort"
	"sync"

	"github.com/travigo/gbfsmap/pkg/geometry"
)

type Kind string

const (
	KindMarker Kind = "marker"
	KindArea   Kind = "area"
)

type Style struct {
	FillOpacity      float64 `json:"fill_opacity" groups:"detailed"`
	Weight           float64 `json:"weight" groups:"detailed"`
	HoverFillOpacity float64 `json:"hover_fill_opacity" groups:"detailed"`
	HoverWeight      float64 `json:"hover_weight" groups:"detailed"`
}

// AreaStyle is applied to virtual stations drawn as polygons. Hovering raises the
// fill and outline.
var AreaStyle = Style{
	FillOpacity:      0.2,
	Weight:           2,
	HoverFillOpacity: 0.45,
	HoverWeight:      4,
}

// Directive tells the rendering layer how to draw one station.
type Directive struct {
	StationID string                `json:"station_id" groups:"basic,detailed"`
	Kind      Kind                  `json:"kind" groups:"basic,detailed"`
	Mode      string                `json:"mode,omitempty" groups:"basic,detailed"`
	Virtual   bool                  `json:"virtual" groups:"basic,detailed"`
	Point     *geometry.GeoPoint    `json:"point,omitempty" groups:"basic,detailed"`
	Badge     *int                  `json:"badge,omitempty" groups:"basic,detailed"`
	Polygons  geometry.MultiPolygon `json:"polygons,omitempty" groups:"detailed"`
	Style     *Style                `json:"style,omitempty" groups:"detailed"`
	Popup     string                `json:"popup" groups:"detailed"`
}

// Element is the handle a Renderer gives back for an attached directive.
type Element uint64

type Renderer interface {
	Attach(directive Directive) Element
	Detach(element Element)
}

// DirectiveBoard is an in-memory Renderer holding every attached directive.
type DirectiveBoard struct {
	mu       sync.RWMutex
	next     Element
	attached map[Element]Directive
}

func NewDirectiveBoard() *DirectiveBoard {
	return &DirectiveBoard{attached: map[Element]Directive{}}
}

func (b *DirectiveBoard) Attach(directive Directive) Element {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.attached[b.next] = directive
	return b.next
}

func (b *DirectiveBoard) Detach(element Element) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.attached, element)
}

func (b *DirectiveBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.attached)
}

// Directives returns the attached directives ordered by station id.
func (b *DirectiveBoard) Directives() []Directive {
	b.mu.RLock()
	directives := make([]Directive, 0, len(b.attached))
	for _, directive := range b.attached {
		directives = append(directives, directive)
	}
	b.mu.RUnlock()

	sort.Slice(directives, func(i, j int) bool {
		if directives[i].StationID != directives[j].StationID {
			return directives[i].StationID < directives[j].StationID
		}
		return directives[i].Kind < directives[j].Kind
	})
	return directives
}
