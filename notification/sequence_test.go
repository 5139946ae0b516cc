package notification

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// drain pulls every sample out of s and returns the count and peak amplitude
func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
		if !ok || n == 0 {
			return total, peak
		}
	}
}

func TestSequence_Streamer(t *testing.T) {
	rate := beep.SampleRate(8000)

	tests := []struct {
		name    string
		seq     Sequence
		volume  float64
		samples int
		silent  bool
	}{
		{"boot chime", SequenceBoot, 0.5, rate.N(SequenceBoot.Duration()), false},
		{"rest only", Sequence{{Freq: 0, Duration: 50 * time.Millisecond}}, 1, 400, true},
		{"muted", Sequence{{Freq: 440, Duration: 10 * time.Millisecond}}, 0, 80, true},
		{"empty", nil, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.seq.Streamer(rate, tt.volume)
			if err != nil {
				t.Fatalf("Streamer: %v", err)
			}
			n, peak := drain(s)
			if n != tt.samples {
				t.Errorf("samples = %d, want %d", n, tt.samples)
			}
			if tt.silent && peak != 0 {
				t.Errorf("peak = %f, want silence", peak)
			}
			if !tt.silent && (peak == 0 || peak > 1) {
				t.Errorf("peak = %f, want audible within [-1, 1]", peak)
			}
		})
	}
}

func TestSequence_InvalidTone(t *testing.T) {
	// Nyquist limit for 8 kHz is 4 kHz
	seq := Sequence{{Freq: 6000, Duration: time.Millisecond}}
	if _, err := seq.Streamer(beep.SampleRate(8000), 1); err == nil {
		t.Error("expected error for tone above the Nyquist limit")
	}
}

func TestService_DisabledIsSilent(t *testing.T) {
	s := NewService(Config{Enabled: false, Volume: 1})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Ready() {
		t.Error("disabled service must not open the speaker")
	}
	s.Play(SequenceBoot)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
