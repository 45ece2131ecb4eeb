package engine

import (
	"time"

	"stepseq/pattern"
)

// Multi fans sound engine calls out to a trigger backend (MIDI) and a
// sampler backend (audio). Slice queries go to the sampler; everything else
// reaches both, which lets each backend claim the channels it owns.
type Multi struct {
	Trig    SoundEngine
	Sampler SoundEngine
}

func (m *Multi) Trigger(ch pattern.ChannelID, note uint8, d Duration, at time.Time, vel uint8) {
	m.Trig.Trigger(ch, note, d, at, vel)
}

func (m *Multi) PlaySlice(at time.Time, start, dur float64) {
	m.Sampler.PlaySlice(at, start, dur)
}

func (m *Multi) SetChannelGain(ch pattern.ChannelID, gain, rampSec float64) {
	m.Trig.SetChannelGain(ch, gain, rampSec)
	m.Sampler.SetChannelGain(ch, gain, rampSec)
}

func (m *Multi) SampleDuration() (float64, bool) {
	return m.Sampler.SampleDuration()
}

func (m *Multi) CancelPending() {
	m.Trig.CancelPending()
	m.Sampler.CancelPending()
}

func (m *Multi) Close() error {
	err := m.Trig.Close()
	if cerr := m.Sampler.Close(); err == nil {
		err = cerr
	}
	return err
}
