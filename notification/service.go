package notification

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/autostart/service"
)

// Name is the record name of the notification service
const Name = "notification"

// Config holds notification settings
type Config struct {
	Enabled    bool
	Volume     float64
	SampleRate int
}

// DefaultConfig returns the stock notification settings
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		Volume:     0.5,
		SampleRate: 44100,
	}
}

// Service plays tone sequences on the speaker
// Degrades to silent when no audio backend is available
type Service struct {
	config Config
	rate   beep.SampleRate

	mu    sync.Mutex
	ready bool
}

// NewService creates a notification service
func NewService(cfg Config) *Service {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	return &Service{
		config: cfg,
		rate:   beep.SampleRate(cfg.SampleRate),
	}
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
func (s *Service) Init(_ *service.Hub) error {
	return nil
}

// Start implements service.Service
// Speaker failure disables playback, not the service
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled || s.ready {
		return nil
	}

	if err := speaker.Init(s.rate, s.rate.N(100*time.Millisecond)); err != nil {
		log.Printf("notification: speaker unavailable, continuing silent: %v", err)
		return nil
	}
	s.ready = true
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}
	speaker.Close()
	s.ready = false
	return nil
}

// Ready reports whether sequences reach the speaker
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Play queues seq on the speaker and returns immediately
// No-op while the speaker is unavailable
func (s *Service) Play(seq Sequence) {
	if !s.Ready() {
		return
	}

	streamer, err := seq.Streamer(s.rate, s.config.Volume)
	if err != nil {
		log.Printf("notification: %v", err)
		return
	}
	speaker.Play(streamer)
}
