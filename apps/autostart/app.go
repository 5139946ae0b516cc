// Package autostart is the boot-launched status application.
//
// It shows a fixed message on a fullscreen view-port and exits when BACK is
// short-pressed.
package autostart

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/autostart/gui"
	"github.com/lixenwraith/autostart/input"
	"github.com/lixenwraith/autostart/service"
)

// AppName is the name the loader knows this application by
const AppName = "Autostart Test"

// DefaultPollInterval is the cadence of the exit flag check
const DefaultPollInterval = 20 * time.Millisecond

// ExitUnavailable is returned when the gui record cannot be opened
const ExitUnavailable = 1

// State holds the run flag; it only ever goes from running to stopped
type State struct {
	running atomic.Bool
}

// NewState returns a running state
func NewState() *State {
	s := &State{}
	s.running.Store(true)
	return s
}

// Running reports whether the application should keep polling
func (s *State) Running() bool {
	return s.running.Load()
}

// HandleInput clears the flag on a BACK short press; every other event is ignored
func (s *State) HandleInput(ev input.Event) {
	if ev.Type == input.TypeShort && ev.Key == input.KeyBack {
		s.running.Store(false)
	}
}

// Render draws the static screen; output does not depend on State
func Render(c *gui.Canvas) {
	c.Clear()
	c.SetFont(gui.FontPrimary)
	c.DrawStr(8, 26, AppName)
	c.SetFont(gui.FontSecondary)
	c.DrawStr(8, 44, "Started on boot!")
	c.DrawStr(8, 60, "BACK to exit")
}

// App runs the status screen
type App struct {
	Poll time.Duration
}

// New returns an App polling at interval; non-positive selects DefaultPollInterval
func New(interval time.Duration) *App {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &App{Poll: interval}
}

// Run shows the status screen until BACK and returns the exit status
// arg is the opaque launch parameter and is unused
func (a *App) Run(hub *service.Hub, arg any) (int, error) {
	g, err := service.Open[*gui.Gui](hub, gui.Name)
	if err != nil {
		return ExitUnavailable, fmt.Errorf("autostart: %w", err)
	}

	state := NewState()
	vp := gui.NewViewPort()
	vp.SetDrawCallback(Render)
	vp.SetInputCallback(state.HandleInput)
	g.AddViewPort(vp, gui.LayerFullscreen)

	poll := a.Poll
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	for state.Running() {
		time.Sleep(poll)
	}

	g.RemoveViewPort(vp)
	vp.Free()
	if err := hub.Close(gui.Name); err != nil {
		log.Printf("autostart: close %s: %v", gui.Name, err)
	}
	return 0, nil
}
