// Package gui is the windowing service.
//
// Applications allocate a ViewPort, bind draw and input callbacks, and add it to a
// Layer. The service owns the screen: all callbacks run on its single dispatch
// goroutine, serialized with AddViewPort and RemoveViewPort.
package gui

import (
	"fmt"
	"log"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/autostart/core"
	"github.com/lixenwraith/autostart/display"
	"github.com/lixenwraith/autostart/input"
	"github.com/lixenwraith/autostart/service"
)

// Name is the record name of the windowing service
const Name = "gui"

// Layer orders view-ports on screen
type Layer uint8

const (
	LayerDesktop    Layer = iota // Idle and splash content
	LayerWindow                  // Application windows
	LayerStatusBar               // Top row
	LayerFullscreen              // Covers everything, drawn alone
	layerCount
)

// Input routing priority, topmost first
var inputLayers = [...]Layer{LayerFullscreen, LayerWindow, LayerDesktop}

// Gui manages view-ports and dispatches draw and input callbacks
type Gui struct {
	screen  tcell.Screen
	resizes <-chan struct{}
	inputs  *input.Service
	sub     *input.Subscription

	// Guards layers and ongoing; held for every callback dispatch
	mu      sync.Mutex
	layers  [layerCount][]*ViewPort
	ongoing map[input.Key]*ViewPort // Receiver of the current stroke per key, nil when dropped

	redrawCh chan struct{}

	lifeMu  sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewService creates the windowing service
func NewService() *Gui {
	return &Gui{
		ongoing:  make(map[input.Key]*ViewPort),
		redrawCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Name implements service.Service
func (g *Gui) Name() string {
	return Name
}

// Dependencies implements service.Service
func (g *Gui) Dependencies() []string {
	return []string{display.Name, input.Name}
}

// Init implements service.Service
func (g *Gui) Init(h *service.Hub) error {
	d := service.MustGet[*display.Service](h, display.Name)
	g.screen = d.Screen()
	g.resizes = d.Resizes()
	g.inputs = service.MustGet[*input.Service](h, input.Name)
	return nil
}

// Start implements service.Service - subscribes to input and launches dispatch goroutine
func (g *Gui) Start() error {
	g.lifeMu.Lock()
	defer g.lifeMu.Unlock()

	if g.running {
		return nil
	}
	if g.screen == nil || g.inputs == nil {
		return fmt.Errorf("gui start: not initialized")
	}
	g.running = true

	g.sub = g.inputs.Subscribe()
	core.Go(g.loop)
	g.requestRedraw()
	return nil
}

// loop serializes input dispatch and redraws until stop signal
func (g *Gui) loop() {
	defer close(g.doneCh)

	events := g.sub.Events()
	for {
		select {
		case <-g.stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				// Input service stopped first; keep drawing
				events = nil
				continue
			}
			g.dispatch(ev)
		case <-g.resizes:
			g.screen.Sync()
			g.redraw()
		case <-g.redrawCh:
			g.redraw()
		}
	}
}

// Stop implements service.Service
func (g *Gui) Stop() error {
	g.lifeMu.Lock()
	defer g.lifeMu.Unlock()

	if !g.running {
		return nil
	}
	g.running = false
	close(g.stopCh)
	<-g.doneCh
	g.inputs.Unsubscribe(g.sub)

	if n := g.ViewPortCount(); n > 0 {
		log.Printf("gui: stopped with %d view-ports attached", n)
	}
	return nil
}

// AddViewPort attaches vp on layer and schedules a redraw
// Panics if vp is freed or already attached
func (g *Gui) AddViewPort(vp *ViewPort, layer Layer) {
	if layer >= layerCount {
		panic(fmt.Sprintf("gui: invalid layer %d", layer))
	}

	g.mu.Lock()
	vp.mu.Lock()
	if vp.freed {
		vp.mu.Unlock()
		g.mu.Unlock()
		panic("gui: add of freed view-port")
	}
	if vp.gui != nil {
		vp.mu.Unlock()
		g.mu.Unlock()
		panic("gui: view-port already attached")
	}
	vp.gui = g
	vp.layer = layer
	vp.mu.Unlock()

	g.layers[layer] = append(g.layers[layer], vp)
	g.mu.Unlock()

	g.requestRedraw()
}

// RemoveViewPort detaches vp and schedules a redraw
// No callback of vp runs after RemoveViewPort returns
// Must not be called from inside a callback
func (g *Gui) RemoveViewPort(vp *ViewPort) {
	g.mu.Lock()
	vp.mu.Lock()
	if vp.gui != g {
		vp.mu.Unlock()
		g.mu.Unlock()
		panic("gui: view-port not attached to this gui")
	}
	layer := vp.layer
	vp.gui = nil
	vp.mu.Unlock()

	ports := g.layers[layer]
	for i, p := range ports {
		if p == vp {
			g.layers[layer] = append(ports[:i], ports[i+1:]...)
			break
		}
	}

	// Rest of an ongoing stroke is dropped, not redirected
	for key, target := range g.ongoing {
		if target == vp {
			g.ongoing[key] = nil
		}
	}
	g.mu.Unlock()

	g.requestRedraw()
}

// ViewPortCount returns the number of attached view-ports across all layers
func (g *Gui) ViewPortCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, ports := range g.layers {
		n += len(ports)
	}
	return n
}

// requestRedraw schedules a redraw; pending requests coalesce
func (g *Gui) requestRedraw() {
	select {
	case g.redrawCh <- struct{}{}:
	default:
	}
}

// redraw composes all layers onto the screen
func (g *Gui) redraw() {
	g.mu.Lock()
	defer g.mu.Unlock()

	w, h := g.screen.Size()
	g.screen.Clear()

	if vp := g.top(LayerFullscreen); vp != nil {
		g.draw(vp, 0, 0, w, h)
	} else {
		if vp := g.top(LayerDesktop); vp != nil {
			g.draw(vp, 0, 0, w, h)
		}
		if vp := g.top(LayerWindow); vp != nil {
			g.draw(vp, 0, 0, w, h)
		}
		if vp := g.top(LayerStatusBar); vp != nil {
			g.draw(vp, 0, 0, w, 1)
		}
	}

	g.screen.Show()
}

// draw runs the draw callback of vp on a canvas scoped to this call
func (g *Gui) draw(vp *ViewPort, x, y, cols, rows int) {
	fn, _, _ := vp.callbacks()
	if fn == nil {
		return
	}
	c := NewCanvas(g.screen, x, y, cols, rows)
	fn(c)
	c.invalidate()
}

// dispatch routes one input event
// A stroke stays with the view-port that received its press until release
func (g *Gui) dispatch(ev input.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var target *ViewPort
	if ev.Type == input.TypePress {
		target = g.topInput()
		g.ongoing[ev.Key] = target
	} else {
		t, tracked := g.ongoing[ev.Key]
		if tracked {
			target = t
		} else {
			// Synthetic phase without a press
			target = g.topInput()
		}
		if ev.Type == input.TypeRelease {
			delete(g.ongoing, ev.Key)
		}
	}

	if target == nil {
		return
	}
	_, fn, enabled := target.callbacks()
	if fn == nil || !enabled {
		return
	}
	fn(ev)
}

// top returns the most recently added enabled view-port of layer
func (g *Gui) top(layer Layer) *ViewPort {
	ports := g.layers[layer]
	for i := len(ports) - 1; i >= 0; i-- {
		if ports[i].Enabled() {
			return ports[i]
		}
	}
	return nil
}

// topInput returns the view-port receiving new strokes
func (g *Gui) topInput() *ViewPort {
	for _, layer := range inputLayers {
		if vp := g.top(layer); vp != nil {
			return vp
		}
	}
	return nil
}
