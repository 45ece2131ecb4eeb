package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"stepseq/debug"
	"stepseq/pattern"
)

// Drum trigger notes and gate lengths, fixed per track.
var drumNotes = map[pattern.TrackID]uint8{
	pattern.TrackKick:  36,
	pattern.TrackSnare: 38,
	pattern.TrackHat:   42,
	pattern.TrackPerc:  39,
}

var drumDurs = map[pattern.TrackID]Duration{
	pattern.TrackKick:  DurEighth,
	pattern.TrackSnare: DurEighth,
	pattern.TrackHat:   DurSixteenth,
	pattern.TrackPerc:  DurSixteenth,
}

// accentOffsets place each track's accent inside the accent cycle: kick on
// the downbeat of the cycle, snare two steps in.
var accentOffsets = map[pattern.TrackID]int{
	pattern.TrackKick:  0,
	pattern.TrackSnare: 2,
	pattern.TrackHat:   0,
	pattern.TrackPerc:  2,
}

// Exactly two velocities per track: accented and not.
const (
	baseVel   uint8 = 96
	accentVel uint8 = 120
	synthVel  uint8 = 100
)

// Dispatcher consumes clock ticks and issues sound engine calls for every
// active event at the current step. It reads an immutable snapshot installed
// at schedule-build time; the control path never mutates what a tick sees.
type Dispatcher struct {
	clock Clock
	snd   SoundEngine
	store *pattern.PatternStore
	mix   *MixGainStage

	snap atomic.Pointer[pattern.Snapshot]

	mu      sync.Mutex // guards handle/running against concurrent rebuilds
	handle  Handle
	live    bool
	running bool

	playhead atomic.Int32

	// Updates carries playhead positions for the UI. Sends never block.
	Updates chan int
}

// NewDispatcher wires the dispatcher to its collaborators and registers the
// store's change callback so any mutation rebuilds the schedule.
func NewDispatcher(clock Clock, snd SoundEngine, store *pattern.PatternStore) *Dispatcher {
	d := &Dispatcher{
		clock:   clock,
		snd:     snd,
		store:   store,
		mix:     NewMixGainStage(snd),
		Updates: make(chan int, 4),
	}
	d.snap.Store(store.Snapshot())
	store.OnChange(d.Rebuild)
	return d
}

// Play starts the transport. The step counter begins at 0.
func (d *Dispatcher) Play() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	snap := d.store.Snapshot()
	d.snap.Store(snap)
	d.clock.Configure(snap.Transport.BPM, snap.Transport.Swing)
	d.handle = d.clock.Schedule(d.tick, Sixteenth)
	d.live = true
	d.mu.Unlock()

	d.mix.Apply(snap.Mix)
	d.clock.Start(50 * time.Millisecond)
	debug.Log("dispatch", "play bpm=%v swing=%v", snap.Transport.BPM, snap.Transport.Swing)
}

// Stop halts the transport, cancels in-flight scheduled events and resets
// the playhead to 0.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.clock.Stop()
	if d.live {
		d.clock.Dispose(d.handle)
		d.live = false
	}
	d.mu.Unlock()

	d.snd.CancelPending()
	d.playhead.Store(0)
	d.notify(0)
	debug.Log("dispatch", "stop")
}

// Running reports the transport state.
func (d *Dispatcher) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Playhead returns the last reported step index.
func (d *Dispatcher) Playhead() int {
	return int(d.playhead.Load())
}

// Rebuild installs a fresh snapshot and replaces the schedule registration.
// The old registration is fully disposed before the new one is installed,
// and both happen under the lock: a tick can never see two registrations or
// none while the transport runs.
func (d *Dispatcher) Rebuild() {
	snap := d.store.Snapshot()
	d.snap.Store(snap)
	d.clock.Configure(snap.Transport.BPM, snap.Transport.Swing)
	d.mix.Apply(snap.Mix)

	d.mu.Lock()
	if d.live {
		d.clock.Dispose(d.handle)
		d.handle = d.clock.Schedule(d.tick, Sixteenth)
	}
	d.mu.Unlock()
}

func (d *Dispatcher) notify(step int) {
	select {
	case d.Updates <- step:
	default:
	}
}

// tick fires every active event for one step. All triggers within a tick
// reference the identical scheduled time. A panic anywhere in here degrades
// to a dropped event; the clock must keep running.
func (d *Dispatcher) tick(at time.Time, raw int64) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log("dispatch", "tick panic recovered: %v", r)
		}
	}()

	i := int(raw % pattern.Steps)
	snap := d.snap.Load()

	// Playhead first: the UI follows the step grid, not audio latency.
	d.playhead.Store(int32(i))
	d.notify(i)

	accent := snap.Transport.AccentInterval
	for _, track := range pattern.DrumTracks {
		if !snap.Pattern.Drums[track][i] {
			continue
		}
		vel := baseVel
		if accent != 0 && i%accent == accentOffsets[track] {
			vel = accentVel
		}
		d.snd.Trigger(pattern.ChannelID(track), drumNotes[track], drumDurs[track], at, vel)
	}

	if row, ok := snap.Pattern.NoteRoll[i].Get(); ok {
		d.snd.Trigger(pattern.ChannelSynth, pattern.RollNotes[row].MIDI, DurSixteenth, at, synthVel)
	}

	if m, ok := snap.Pattern.SampleRoll[i].Get(); ok {
		if bufDur, ready := d.snd.SampleDuration(); ready {
			if s, ok := Cut(snap.Markers, m, bufDur); ok {
				d.snd.PlaySlice(at, s.Start, s.Duration)
			}
		}
	}
}
