package chartsession

import (
	"sync"

	"github.com/stockdesk/dashboard/internal/modules/periods"
)

// Model is everything a renderer needs to draw one chart.
type Model struct {
	Ticker   string           `json:"ticker"`
	Period   periods.Period   `json:"period"`
	Interval periods.Interval `json:"interval"`
	Axis     periods.Settings `json:"axis"`
	Points   []Point          `json:"points"`
	Summary  Summary          `json:"summary"`
}

// Drawable is a rendered chart resource. Exactly one live Drawable exists at
// a time; the session manager releases the old one before rendering the next.
type Drawable interface {
	Release()
}

// Renderer turns a model into a drawable chart resource.
type Renderer interface {
	Render(model Model) (Drawable, error)
}

// ModelRenderer is the default renderer for the headless pipeline: the
// "drawable" is the model itself, held for the HTTP layer to serve to the
// browser, which does the actual pixel work.
type ModelRenderer struct{}

// NewModelRenderer creates a new model renderer
func NewModelRenderer() *ModelRenderer {
	return &ModelRenderer{}
}

// Render implements Renderer.
func (r *ModelRenderer) Render(model Model) (Drawable, error) {
	return &modelDrawable{model: model}, nil
}

type modelDrawable struct {
	mu       sync.Mutex
	model    Model
	released bool
}

func (d *modelDrawable) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	d.model = Model{}
}
