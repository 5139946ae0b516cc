package gui

import (
	"sync"

	"github.com/lixenwraith/autostart/input"
)

// DrawFunc renders a view-port onto the canvas of one redraw
// Must not block and must not retain the canvas
type DrawFunc func(c *Canvas)

// InputFunc receives one input event routed to the view-port
type InputFunc func(ev input.Event)

// ViewPort is the client handle an application draws and receives input through
// Callbacks are closures; the owning application scopes whatever they capture
type ViewPort struct {
	mu      sync.Mutex
	draw    DrawFunc
	input   InputFunc
	enabled bool
	freed   bool

	// Owning gui while attached; written with both gui and view-port locks held
	gui   *Gui
	layer Layer
}

// NewViewPort allocates an enabled view-port without callbacks
func NewViewPort() *ViewPort {
	return &ViewPort{enabled: true}
}

// SetDrawCallback binds the draw callback
func (v *ViewPort) SetDrawCallback(fn DrawFunc) {
	v.mu.Lock()
	v.draw = fn
	v.mu.Unlock()
}

// SetInputCallback binds the input callback
func (v *ViewPort) SetInputCallback(fn InputFunc) {
	v.mu.Lock()
	v.input = fn
	v.mu.Unlock()
}

// SetEnabled shows or hides the view-port; hidden view-ports get neither draws nor input
func (v *ViewPort) SetEnabled(enabled bool) {
	v.mu.Lock()
	changed := v.enabled != enabled
	v.enabled = enabled
	v.mu.Unlock()

	if changed {
		v.Update()
	}
}

// Enabled reports whether the view-port is shown
func (v *ViewPort) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

// Update asks the owning gui for a redraw; no-op while detached
func (v *ViewPort) Update() {
	v.mu.Lock()
	g := v.gui
	v.mu.Unlock()

	if g != nil {
		g.requestRedraw()
	}
}

// Free releases the view-port; it must already be removed from its gui
func (v *ViewPort) Free() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.gui != nil {
		panic("gui: free of attached view-port")
	}
	v.draw = nil
	v.input = nil
	v.freed = true
}

// callbacks snapshots the callbacks and enabled flag
func (v *ViewPort) callbacks() (DrawFunc, InputFunc, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draw, v.input, v.enabled
}
