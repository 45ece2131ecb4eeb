// Package midiout is the MIDI-backed sound engine: drum and synth triggers
// become note on/off pairs on configurable ports and channels.
package midiout

import (
	"math"
	"runtime"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"stepseq/debug"
	"stepseq/engine"
	"stepseq/pattern"
)

// Config selects output routing. Channels are 1-16 as printed on hardware.
type Config struct {
	PortName     string
	DrumChannel  uint8
	SynthChannel uint8
}

// DefaultConfig routes drums to channel 10 (the GM drum channel) and the
// synth to channel 1 on the first available port.
func DefaultConfig() Config {
	return Config{DrumChannel: 10, SynthChannel: 1}
}

type scheduledNote struct {
	timer *time.Timer
	ch    uint8
	note  uint8
}

// Engine implements engine.SoundEngine over gomidi. Senders are opened
// lazily per port name. Channel gains scale trigger velocities, since MIDI
// has no per-note gain ramp; the ramp argument is accepted and ignored.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	senders map[string]func(gomidi.Message) error
	pending map[int64]*scheduledNote
	nextID  int64
	gains   map[pattern.ChannelID]float64
	bpm     float64
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cfg:     cfg,
		senders: make(map[string]func(gomidi.Message) error),
		pending: make(map[int64]*scheduledNote),
		gains:   make(map[pattern.ChannelID]float64),
		bpm:     120,
	}
	return e
}

// SetBPM updates the tempo used to translate gate tags into note lengths.
func (e *Engine) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	e.mu.Lock()
	e.bpm = bpm
	e.mu.Unlock()
}

// getSender returns a sender for the port, lazily opening it.
func (e *Engine) getSender(portName string) func(gomidi.Message) error {
	if portName == "" {
		ports := gomidi.GetOutPorts()
		if len(ports) == 0 {
			return nil
		}
		portName = ports[0].String()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if sender, ok := e.senders[portName]; ok {
		return sender
	}
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			sender, err := gomidi.SendTo(port)
			if err != nil {
				debug.Log("midi", "open %s failed: %v", portName, err)
				return nil
			}
			e.senders[portName] = sender
			return sender
		}
	}
	return nil
}

// midiChannel maps a sequencer channel to a 0-based MIDI channel.
func (e *Engine) midiChannel(ch pattern.ChannelID) uint8 {
	if ch == pattern.ChannelSynth {
		return e.cfg.SynthChannel - 1
	}
	return e.cfg.DrumChannel - 1
}

// gateLen translates a duration tag at the current tempo.
func (e *Engine) gateLen(d engine.Duration) time.Duration {
	e.mu.Lock()
	bpm := e.bpm
	e.mu.Unlock()
	sixteenth := time.Duration(float64(time.Minute) / bpm / 4)
	if d == engine.DurEighth {
		return 2 * sixteenth
	}
	return sixteenth
}

// Trigger schedules a note on at the given time and the matching note off
// one gate later. The wait happens on a timer goroutine pinned to its OS
// thread, the same shape as a dedicated MIDI output loop.
func (e *Engine) Trigger(ch pattern.ChannelID, note uint8, d engine.Duration, at time.Time, vel uint8) {
	sender := e.getSender(e.cfg.PortName)
	if sender == nil {
		return
	}

	e.mu.Lock()
	gain, ok := e.gains[ch]
	if !ok {
		gain = 1
	}
	e.mu.Unlock()
	scaled := float64(vel) * gain
	if scaled > 127 {
		scaled = 127
	}
	if scaled < 1 {
		return // inaudible, skip entirely
	}
	vel = uint8(math.Round(scaled))

	midiCh := e.midiChannel(ch)
	gate := e.gateLen(d)

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	sn := &scheduledNote{ch: midiCh, note: note}
	sn.timer = time.AfterFunc(time.Until(at), func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		sender(gomidi.NoteOn(midiCh, note, vel))
		time.Sleep(gate)
		sender(gomidi.NoteOff(midiCh, note))

		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
	})
	e.pending[id] = sn
	e.mu.Unlock()
}

// PlaySlice is a no-op: sample playback lives in the audio engine.
func (e *Engine) PlaySlice(at time.Time, start, dur float64) {}

// SetChannelGain stores a linear velocity scale for the channel. rampSec is
// meaningless for MIDI and ignored.
func (e *Engine) SetChannelGain(ch pattern.ChannelID, gain, rampSec float64) {
	e.mu.Lock()
	e.gains[ch] = gain
	e.mu.Unlock()
}

// SampleDuration reports no buffer: this engine never plays slices.
func (e *Engine) SampleDuration() (float64, bool) { return 0, false }

// CancelPending stops scheduled notes that have not fired and silences both
// output channels.
func (e *Engine) CancelPending() {
	e.mu.Lock()
	for id, sn := range e.pending {
		sn.timer.Stop()
		delete(e.pending, id)
	}
	e.mu.Unlock()

	if sender := e.getSender(e.cfg.PortName); sender != nil {
		// CC 123: all notes off.
		sender(gomidi.ControlChange(e.cfg.DrumChannel-1, 123, 0))
		sender(gomidi.ControlChange(e.cfg.SynthChannel-1, 123, 0))
	}
}

func (e *Engine) Close() error {
	e.CancelPending()
	gomidi.CloseDriver()
	return nil
}
