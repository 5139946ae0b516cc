package input

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/autostart/core"
	"github.com/lixenwraith/autostart/display"
	"github.com/lixenwraith/autostart/service"
)

// Name is the record name of the input service
const Name = "input"

// subscriberBuffer bounds events queued per subscriber before drops
const subscriberBuffer = 32

// Subscription receives published input events until unsubscribed
type Subscription struct {
	ch chan Event
}

// Events returns the event channel; closed on Unsubscribe or service stop
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Service translates raw key strokes into device input events and publishes them
type Service struct {
	keymap *Keymap
	keys   <-chan *tcell.EventKey
	seq    atomic.Uint32

	subMu sync.Mutex
	subs  map[*Subscription]struct{}

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewService creates an input service using keymap; nil selects DefaultKeymap
func NewService(keymap *Keymap) *Service {
	if keymap == nil {
		keymap = DefaultKeymap()
	}
	return &Service{
		keymap: keymap,
		subs:   make(map[*Subscription]struct{}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Name implements service.Service
func (s *Service) Name() string {
	return Name
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return []string{display.Name}
}

// Init implements service.Service
func (s *Service) Init(h *service.Hub) error {
	s.keys = service.MustGet[*display.Service](h, display.Name).Keys()
	return nil
}

// Start implements service.Service - launches translation goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.running = true

	core.Go(s.loop)
	return nil
}

// loop consumes raw strokes until stop signal
func (s *Service) loop() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			return
		case ev := <-s.keys:
			key, long, ok := s.keymap.Translate(ev)
			if !ok {
				log.Printf("input: unmapped key %s", ev.Name())
				continue
			}
			s.stroke(key, long)
		}
	}
}

// Stop implements service.Service - halts translation and closes all subscriptions
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopCh)
	<-s.doneCh

	s.subMu.Lock()
	for sub := range s.subs {
		close(sub.ch)
		delete(s.subs, sub)
	}
	s.subMu.Unlock()
	return nil
}

// Emit injects a synthetic short stroke of key, as if pressed and released
func (s *Service) Emit(key Key) {
	s.stroke(key, false)
}

// stroke publishes the press, short or long, release sequence of one stroke
func (s *Service) stroke(key Key, long bool) {
	seq := s.seq.Add(1)

	phase := TypeShort
	if long {
		phase = TypeLong
	}

	s.publish(Event{Type: TypePress, Key: key, Sequence: seq})
	s.publish(Event{Type: phase, Key: key, Sequence: seq})
	s.publish(Event{Type: TypeRelease, Key: key, Sequence: seq})
}

// Subscribe registers a new event subscriber
func (s *Service) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan Event, subscriberBuffer)}

	s.subMu.Lock()
	s.subs[sub] = struct{}{}
	s.subMu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber and closes its channel
// Safe to call after the service stopped
func (s *Service) Unsubscribe(sub *Subscription) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if _, ok := s.subs[sub]; !ok {
		return
	}
	delete(s.subs, sub)
	close(sub.ch)
}

// publish delivers ev to every subscriber without blocking
func (s *Service) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for sub := range s.subs {
		select {
		case sub.ch <- ev:
		default:
			log.Printf("input: subscriber full, dropped %s %s #%d", ev.Key, ev.Type, ev.Sequence)
		}
	}
}
