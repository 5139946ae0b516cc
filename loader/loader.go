// Package loader keeps the application registry and launches the boot application.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/lixenwraith/autostart/gui"
	"github.com/lixenwraith/autostart/notification"
	"github.com/lixenwraith/autostart/service"
)

// Name is the record name of the loader
const Name = "loader"

var (
	ErrUnknownApp  = errors.New("unknown application")
	ErrBusy        = errors.New("an application is already running")
	ErrNoAutostart = errors.New("no autostart application configured")
)

// Entry is an application entry point: it receives the hub and an opaque
// launch parameter and returns the exit status
type Entry func(hub *service.Hub, arg any) (int, error)

// Application is a launchable application
type Application struct {
	Name  string
	Entry Entry
}

// Config holds loader settings
type Config struct {
	Autostart  string        // Application launched at boot; empty disables autostart
	StartDelay time.Duration // Splash time before launch
	Chime      bool          // Play the boot chime before launch
}

// Loader registers applications and runs them one at a time
type Loader struct {
	config Config
	hub    *service.Hub

	mu      sync.Mutex
	apps    map[string]Application
	running string
}

// NewService creates a loader
func NewService(cfg Config) *Loader {
	return &Loader{
		config: cfg,
		apps:   make(map[string]Application),
	}
}

// Name implements service.Service
func (l *Loader) Name() string {
	return Name
}

// Dependencies implements service.Service
func (l *Loader) Dependencies() []string {
	return []string{gui.Name}
}

// Init implements service.Service
func (l *Loader) Init(h *service.Hub) error {
	l.hub = h
	return nil
}

// Start implements service.Service
func (l *Loader) Start() error {
	if l.config.Autostart == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.apps[l.config.Autostart]; !ok {
		return fmt.Errorf("loader: autostart %q: %w", l.config.Autostart, ErrUnknownApp)
	}
	return nil
}

// Stop implements service.Service
func (l *Loader) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running != "" {
		log.Printf("loader: stopped while %q is running", l.running)
	}
	return nil
}

// Register adds an application to the registry
func (l *Loader) Register(app Application) error {
	if app.Name == "" {
		return fmt.Errorf("loader: register: empty application name")
	}
	if app.Entry == nil {
		return fmt.Errorf("loader: register %q: nil entry", app.Name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.apps[app.Name]; exists {
		return fmt.Errorf("loader: application already registered: %s", app.Name)
	}
	l.apps[app.Name] = app
	return nil
}

// Applications returns registered application names, sorted
func (l *Loader) Applications() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.apps))
	for name := range l.apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Running returns the name of the running application, empty when idle
func (l *Loader) Running() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Launch runs the named application on the calling goroutine and returns its status
func (l *Loader) Launch(name string, arg any) (int, error) {
	l.mu.Lock()
	app, ok := l.apps[name]
	if !ok {
		l.mu.Unlock()
		return 0, fmt.Errorf("loader: launch %q: %w", name, ErrUnknownApp)
	}
	if l.running != "" {
		running := l.running
		l.mu.Unlock()
		return 0, fmt.Errorf("loader: launch %q while %q runs: %w", name, running, ErrBusy)
	}
	l.running = name
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = ""
		l.mu.Unlock()
	}()

	log.Printf("loader: starting %q", name)
	start := time.Now()
	status, err := app.Entry(l.hub, arg)
	if err != nil {
		log.Printf("loader: %q failed after %v: status %d: %v", name, time.Since(start), status, err)
		return status, err
	}
	log.Printf("loader: %q exited after %v: status %d", name, time.Since(start), status)
	return status, nil
}

// Autostart launches the configured boot application
// During the start delay a desktop splash is shown; ctx cancels the wait
func (l *Loader) Autostart(ctx context.Context, arg any) (int, error) {
	name := l.config.Autostart
	if name == "" {
		return 0, ErrNoAutostart
	}

	if l.config.StartDelay > 0 {
		if err := l.splash(ctx, name); err != nil {
			return 0, err
		}
	}
	if l.config.Chime {
		l.chime()
	}
	return l.Launch(name, arg)
}

// splash shows a loading screen on the desktop layer for the start delay
func (l *Loader) splash(ctx context.Context, name string) error {
	g, err := service.Open[*gui.Gui](l.hub, gui.Name)
	if err != nil {
		return fmt.Errorf("loader: splash: %w", err)
	}
	defer func() {
		if err := l.hub.Close(gui.Name); err != nil {
			log.Printf("loader: %v", err)
		}
	}()

	vp := gui.NewViewPort()
	vp.SetDrawCallback(func(c *gui.Canvas) {
		c.Clear()
		c.SetFont(gui.FontPrimary)
		c.DrawStrAligned(gui.CanvasWidth/2, 28, gui.AlignCenter, gui.AlignBottom, "Loading")
		c.SetFont(gui.FontSecondary)
		c.DrawStrAligned(gui.CanvasWidth/2, 40, gui.AlignCenter, gui.AlignTop, name)
	})
	g.AddViewPort(vp, gui.LayerDesktop)
	defer func() {
		g.RemoveViewPort(vp)
		vp.Free()
	}()

	timer := time.NewTimer(l.config.StartDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// chime plays the boot sequence when the notification record is available
func (l *Loader) chime() {
	n, err := service.Open[*notification.Service](l.hub, notification.Name)
	if err != nil {
		log.Printf("loader: chime skipped: %v", err)
		return
	}
	n.Play(notification.SequenceBoot)
	if err := l.hub.Close(notification.Name); err != nil {
		log.Printf("loader: %v", err)
	}
}
