package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// rampGain scales streams by a shared gain value that glides toward its
// target instead of jumping, so level changes during playback don't click.
type rampGain struct {
	mu      sync.Mutex
	sr      beep.SampleRate
	current float64
	target  float64
	step    float64 // per-sample increment while gliding
}

func newRampGain(sr beep.SampleRate, gain float64) *rampGain {
	return &rampGain{sr: sr, current: gain, target: gain}
}

// Set starts a glide to gain over rampSec seconds. rampSec <= 0 jumps.
func (g *rampGain) Set(gain, rampSec float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.target = gain
	if rampSec <= 0 {
		g.current = gain
		g.step = 0
		return
	}
	samples := rampSec * float64(g.sr)
	g.step = (g.target - g.current) / samples
}

// Process wraps a streamer with the shared gain.
func (g *rampGain) Process(src beep.Streamer) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		n, ok = src.Stream(samples)
		g.mu.Lock()
		for i := 0; i < n; i++ {
			if g.step != 0 {
				g.current += g.step
				if (g.step > 0 && g.current >= g.target) ||
					(g.step < 0 && g.current <= g.target) {
					g.current = g.target
					g.step = 0
				}
			}
			samples[i][0] *= g.current
			samples[i][1] *= g.current
		}
		g.mu.Unlock()
		return n, ok
	})
}
