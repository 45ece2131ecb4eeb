// Package audio is the sample-playback sound engine: slices of a loaded wav
// buffer, streamed through the speaker with a ramped channel gain.
package audio

import (
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"stepseq/debug"
	"stepseq/engine"
	"stepseq/pattern"
)

// Engine implements engine.SoundEngine for the sampler channel. Drum and
// synth triggers are not its business; it answers only for slices.
type Engine struct {
	sr beep.SampleRate

	mu      sync.Mutex
	buf     *beep.Buffer
	format  beep.Format
	ready   bool
	loadGen int
	pending map[int64]*time.Timer
	nextID  int64

	gain *rampGain

	onReady func()
}

// NewEngine opens the speaker at the given sample rate.
func NewEngine(sampleRate int) (*Engine, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Engine{
		sr:      sr,
		pending: make(map[int64]*time.Timer),
		gain:    newRampGain(sr, 1.0),
	}, nil
}

// OnReady registers a callback fired when an asynchronous sample load
// completes. The dispatcher rebuilds its schedule off this.
func (e *Engine) OnReady(fn func()) {
	e.mu.Lock()
	e.onReady = fn
	e.mu.Unlock()
}

// LoadSample decodes a wav file into a buffer off the audio path. The
// previous buffer is disposed immediately: readiness drops until the new
// load completes, and slice steps are skipped meanwhile. A second load
// started before the first finishes wins.
func (e *Engine) LoadSample(path string) {
	e.mu.Lock()
	e.loadGen++
	gen := e.loadGen
	e.ready = false
	e.buf = nil
	e.mu.Unlock()
	e.CancelPending()

	go func() {
		f, err := os.Open(path)
		if err != nil {
			debug.Log("audio", "open %s: %v", path, err)
			return
		}
		defer f.Close()

		streamer, format, err := wav.Decode(f)
		if err != nil {
			debug.Log("audio", "decode %s: %v", path, err)
			return
		}
		defer streamer.Close()

		buf := beep.NewBuffer(format)
		buf.Append(streamer)

		e.mu.Lock()
		stale := gen != e.loadGen
		var notify func()
		if !stale {
			e.buf = buf
			e.format = format
			e.ready = true
			notify = e.onReady
		}
		e.mu.Unlock()

		if stale {
			return
		}
		debug.Log("audio", "loaded %s: %d frames @ %d Hz", path, buf.Len(), format.SampleRate)
		if notify != nil {
			notify()
		}
	}()
}

// Trigger is a no-op: drums and synth notes belong to the MIDI engine.
func (e *Engine) Trigger(ch pattern.ChannelID, note uint8, d engine.Duration, at time.Time, vel uint8) {
}

// PlaySlice schedules a buffer segment to start at the given time.
func (e *Engine) PlaySlice(at time.Time, start, dur float64) {
	e.mu.Lock()
	if !e.ready || e.buf == nil {
		e.mu.Unlock()
		return
	}
	from := e.format.SampleRate.N(secToDur(start))
	to := from + e.format.SampleRate.N(secToDur(dur))
	if n := e.buf.Len(); to > n {
		to = n
	}
	if from >= to {
		e.mu.Unlock()
		return
	}
	var s beep.Streamer = e.buf.Streamer(from, to)
	if e.format.SampleRate != e.sr {
		s = beep.Resample(4, e.format.SampleRate, e.sr, s)
	}
	s = e.gain.Process(s)

	e.nextID++
	id := e.nextID
	e.pending[id] = time.AfterFunc(time.Until(at), func() {
		speaker.Play(s)
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
	})
	e.mu.Unlock()
}

// SetChannelGain ramps the sampler channel gain; other channels have no
// audio here.
func (e *Engine) SetChannelGain(ch pattern.ChannelID, gain, rampSec float64) {
	if ch != pattern.ChannelSampler {
		return
	}
	e.gain.Set(gain, rampSec)
}

// SampleDuration reports the loaded buffer length in seconds.
func (e *Engine) SampleDuration() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready || e.buf == nil {
		return 0, false
	}
	return e.format.SampleRate.D(e.buf.Len()).Seconds(), true
}

// CancelPending stops scheduled slices that have not started and silences
// anything currently streaming.
func (e *Engine) CancelPending() {
	e.mu.Lock()
	for id, t := range e.pending {
		t.Stop()
		delete(e.pending, id)
	}
	e.mu.Unlock()
	speaker.Clear()
}

func (e *Engine) Close() error {
	e.CancelPending()
	speaker.Close()
	return nil
}

func secToDur(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
