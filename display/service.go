// Package display owns the device screen.
//
// The screen is a tcell terminal screen. A single poll goroutine reads raw events
// and routes them to one consumer each: key strokes to the input service,
// resize notifications to the windowing service.
package display

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/lixenwraith/autostart/core"
	"github.com/lixenwraith/autostart/service"
)

// Name is the record name of the display service
const Name = "display"

// ErrNoTerminal is returned by Init when stdin is not attached to a terminal
var ErrNoTerminal = errors.New("stdin is not a terminal")

// Option configures a Service at construction
type Option func(*Service)

// WithScreen uses an existing screen instead of opening the controlling terminal
// The screen is initialized by the service; tests pass tcell.NewSimulationScreen
func WithScreen(screen tcell.Screen) Option {
	return func(s *Service) {
		s.screen = screen
	}
}

// Service manages screen lifecycle and raw event polling
type Service struct {
	screen   tcell.Screen
	keyCh    chan *tcell.EventKey
	resizeCh chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu          sync.Mutex
	initialized bool
	running     bool
	finalized   bool
}

// NewService creates a new display service
func NewService(opts ...Option) *Service {
	s := &Service{
		keyCh:    make(chan *tcell.EventKey, 64),
		resizeCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements service.Service
func (s *Service) Name() string {
	return Name
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// Opens the controlling terminal unless a screen was injected
func (s *Service) Init(_ *service.Hub) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if s.screen == nil {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("display init: %w", ErrNoTerminal)
		}
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("display init: %w", err)
		}
		s.screen = screen
	}

	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("display init: %w", err)
	}
	s.screen.HideCursor()
	s.screen.SetStyle(tcell.StyleDefault)
	s.screen.Clear()

	screen := s.screen
	core.SetResetHook(func() {
		screen.Fini()
		EmergencyReset(os.Stdout)
	})

	s.initialized = true
	w, h := s.screen.Size()
	log.Printf("display: initialized %dx%d", w, h)
	return nil
}

// Start implements service.Service - launches event polling goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return fmt.Errorf("display start: not initialized")
	}
	if s.running {
		return nil
	}
	s.running = true

	core.Go(s.pollLoop)
	return nil
}

// pollLoop reads screen events until stop signal
func (s *Service) pollLoop() {
	defer close(s.doneCh)

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}

		select {
		case <-s.stopCh:
			return
		default:
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			select {
			case s.keyCh <- ev:
			case <-s.stopCh:
				return
			}
		case *tcell.EventResize:
			// Single pending slot: consumers only need to know the size changed
			select {
			case s.resizeCh <- struct{}{}:
			default:
			}
		}
	}
}

// Stop implements service.Service - halts polling and restores the terminal
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized || !s.initialized {
		return nil
	}

	if s.running {
		close(s.stopCh)
		// Wake the blocked PollEvent
		s.screen.PostEvent(tcell.NewEventInterrupt(nil))
		<-s.doneCh
		s.running = false
	}

	s.screen.Fini()
	core.SetResetHook(nil)
	s.finalized = true
	log.Printf("display: finalized")
	return nil
}

// Screen returns the managed screen
// Only the windowing service draws to it
func (s *Service) Screen() tcell.Screen {
	return s.screen
}

// Keys returns the raw key event channel
func (s *Service) Keys() <-chan *tcell.EventKey {
	return s.keyCh
}

// Resizes returns the coalesced resize notification channel
func (s *Service) Resizes() <-chan struct{} {
	return s.resizeCh
}
