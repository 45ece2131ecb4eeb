package engine

import (
	"math"

	"stepseq/pattern"
)

// GainRampSeconds is the smoothing applied to channel gain changes so level
// edits don't click mid-playback.
const GainRampSeconds = 0.03

// DBToGain converts a decibel level to linear gain.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// MixGainStage pushes per-channel decibel levels to the sound engine as
// ramped linear gains. It remembers what it last applied so repeated
// snapshot rebuilds only touch channels that actually changed.
type MixGainStage struct {
	snd     SoundEngine
	applied map[pattern.ChannelID]float64
}

func NewMixGainStage(snd SoundEngine) *MixGainStage {
	return &MixGainStage{
		snd:     snd,
		applied: make(map[pattern.ChannelID]float64),
	}
}

// Apply sends changed levels to the engine, clamped to the mixer range.
func (g *MixGainStage) Apply(levels map[pattern.ChannelID]float64) {
	for ch, db := range levels {
		if db < pattern.MinLevelDB {
			db = pattern.MinLevelDB
		}
		if db > pattern.MaxLevelDB {
			db = pattern.MaxLevelDB
		}
		if prev, ok := g.applied[ch]; ok && prev == db {
			continue
		}
		g.applied[ch] = db
		g.snd.SetChannelGain(ch, DBToGain(db), GainRampSeconds)
	}
}
