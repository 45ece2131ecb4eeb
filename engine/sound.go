// Package engine is the scheduling core: the step clock, the dispatcher that
// turns pattern snapshots into sound engine calls, the sample slicer and the
// mix gain stage.
package engine

import (
	"time"

	"stepseq/pattern"
)

// Duration tags the musical gate length of a trigger. The sound engine owns
// what the tag means in seconds at the current tempo.
type Duration string

const (
	DurEighth    Duration = "8n"
	DurSixteenth Duration = "16n"
)

// SoundEngine is everything the dispatcher knows about sound production.
// Implementations own synthesis, sample decoding and output routing.
type SoundEngine interface {
	// Trigger fires a note on a channel at the scheduled time.
	Trigger(ch pattern.ChannelID, note uint8, d Duration, at time.Time, vel uint8)

	// PlaySlice plays a segment of the loaded sample buffer at the
	// scheduled time. start and dur are in seconds.
	PlaySlice(at time.Time, start, dur float64)

	// SetChannelGain sets a channel's linear gain with a smoothing ramp.
	SetChannelGain(ch pattern.ChannelID, gain, rampSec float64)

	// SampleDuration reports the loaded sample buffer length. ok is false
	// until an asynchronous load has completed.
	SampleDuration() (sec float64, ok bool)

	// CancelPending drops any scheduled-but-unplayed events (transport
	// stop).
	CancelPending()

	Close() error
}
