package engine

import (
	"sync"
	"time"

	"stepseq/debug"
)

// Subdivision is the tick resolution of a schedule registration.
type Subdivision int

// Sixteenth is the only subdivision the sequencer runs at: 16 ticks per bar.
const Sixteenth Subdivision = 16

// SwingSubdivision is fixed: swing delays every second 16th (8th-note
// swing).
const SwingSubdivision Subdivision = 8

// TickFunc receives the scheduled time of a step, not wall-clock now, plus
// the raw (unwrapped) step counter.
type TickFunc func(at time.Time, stepRaw int64)

// Handle identifies a live schedule registration.
type Handle int64

// Clock is the transport primitive the dispatcher consumes: it holds tempo
// and swing and calls registered callbacks at successive 16th boundaries.
type Clock interface {
	Configure(bpm, swing float64)
	Schedule(fn TickFunc, sub Subdivision) Handle
	Dispose(h Handle)
	Start(offset time.Duration)
	Stop()
	Running() bool
}

// StepClock drives ticks from a dedicated goroutine. Step times are
// absolute: computed from the start instant and the tempo in force at each
// boundary, so callbacks can schedule sample-tight audio ahead of time.
// Tempo and swing changes take effect at the next step boundary.
type StepClock struct {
	mu    sync.Mutex
	bpm   float64
	swing float64

	regs   map[Handle]TickFunc
	nextID Handle

	running  bool
	stopChan chan struct{}
}

// NewStepClock returns a stopped clock at the given tempo.
func NewStepClock(bpm float64) *StepClock {
	return &StepClock{
		bpm:  bpm,
		regs: make(map[Handle]TickFunc),
	}
}

func (c *StepClock) Configure(bpm, swing float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bpm > 0 {
		c.bpm = bpm
	}
	if swing < 0 {
		swing = 0
	}
	if swing > 1 {
		swing = 1
	}
	c.swing = swing
}

// Schedule registers a tick callback. Only the 16th subdivision is
// supported; anything else still ticks at 16ths.
func (c *StepClock) Schedule(fn TickFunc, sub Subdivision) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	h := c.nextID
	c.regs[h] = fn
	return h
}

func (c *StepClock) Dispose(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.regs, h)
}

// Start begins ticking. offset shifts the first step into the future, giving
// downstream engines scheduling headroom.
func (c *StepClock) Start(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stopChan = make(chan struct{})
	go c.run(time.Now().Add(offset), c.stopChan)
}

func (c *StepClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stopChan)
}

func (c *StepClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// stepDur returns the length of one 16th at the given tempo.
func stepDur(bpm float64) time.Duration {
	return time.Duration(float64(time.Minute) / bpm / 4)
}

// swingOffset delays every odd 16th by up to half a step.
func swingOffset(step int64, swing float64, dur time.Duration) time.Duration {
	if step%2 == 0 {
		return 0
	}
	return time.Duration(swing * 0.5 * float64(dur))
}

func (c *StepClock) run(t0 time.Time, stop chan struct{}) {
	next := t0
	var step int64

	for {
		c.mu.Lock()
		bpm, swing := c.bpm, c.swing
		c.mu.Unlock()

		dur := stepDur(bpm)
		at := next.Add(swingOffset(step, swing, dur))

		if wait := time.Until(at); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-stop:
				timer.Stop()
				return
			case <-timer.C:
			}
		} else {
			select {
			case <-stop:
				return
			default:
			}
		}

		c.mu.Lock()
		fns := make([]TickFunc, 0, len(c.regs))
		for _, fn := range c.regs {
			fns = append(fns, fn)
		}
		c.mu.Unlock()

		for _, fn := range fns {
			fn(at, step)
		}
		debug.LogEvery(64, "clock", "step=%d at=%v", step, at)

		// The grid keeps its un-swung spacing; swing only offsets the
		// delivered time.
		next = next.Add(dur)
		step++
	}
}
