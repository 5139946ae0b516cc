package notification

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Note is one tone of a sequence; zero frequency is a rest
type Note struct {
	Freq     float64
	Duration time.Duration
}

// Sequence is a short melody played through the speaker
type Sequence []Note

// SequenceBoot is played by the loader before the autostart application
var SequenceBoot = Sequence{
	{Freq: 523.25, Duration: 80 * time.Millisecond},
	{Freq: 0, Duration: 20 * time.Millisecond},
	{Freq: 783.99, Duration: 120 * time.Millisecond},
}

// Duration returns the total play time
func (s Sequence) Duration() time.Duration {
	var d time.Duration
	for _, n := range s {
		d += n.Duration
	}
	return d
}

// Streamer renders the sequence at rate with linear volume in [0, 1]
func (s Sequence) Streamer(rate beep.SampleRate, volume float64) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(s))
	for _, n := range s {
		samples := rate.N(n.Duration)
		if n.Freq <= 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(rate, n.Freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(samples, tone))
	}
	return newVolume(beep.Seq(parts...), volume), nil
}

// newVolume wraps s with linear volume in [0, 1]
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	if vol > 1 {
		vol = 1
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
