package engine

import (
	"math"
	"testing"

	"stepseq/pattern"
)

func TestDBToGain(t *testing.T) {
	cases := []struct {
		db   float64
		gain float64
	}{
		{0, 1.0},
		{-6, 0.501187},
		{-20, 0.1},
		{-60, 0.001},
		{6, 1.995262},
	}
	for _, c := range cases {
		if got := DBToGain(c.db); math.Abs(got-c.gain) > 1e-5 {
			t.Errorf("DBToGain(%v) = %v, want %v", c.db, got, c.gain)
		}
	}
}

func TestMixGainStageAppliesOnlyChanges(t *testing.T) {
	snd := newFakeEngine()
	g := NewMixGainStage(snd)

	levels := pattern.DefaultMixLevels()
	g.Apply(levels)
	first := len(snd.gains)
	if first != len(pattern.Channels) {
		t.Fatalf("initial apply touched %d channels, want %d", first, len(pattern.Channels))
	}

	// Unchanged levels are not re-sent.
	g.Apply(levels)
	if len(snd.gains) != first {
		t.Errorf("re-apply of identical levels sent %d extra updates", len(snd.gains)-first)
	}

	levels[pattern.ChannelSynth] = -12
	g.Apply(levels)
	if len(snd.gains) != first+1 {
		t.Fatalf("single level change sent %d updates", len(snd.gains)-first)
	}
	last := snd.gains[len(snd.gains)-1]
	if last.ch != pattern.ChannelSynth || last.ramp != GainRampSeconds {
		t.Errorf("unexpected gain update %+v", last)
	}
	if want := DBToGain(-12); math.Abs(last.gain-want) > 1e-9 {
		t.Errorf("gain = %v, want %v", last.gain, want)
	}
}

func TestMixGainStageClamps(t *testing.T) {
	snd := newFakeEngine()
	g := NewMixGainStage(snd)
	g.Apply(map[pattern.ChannelID]float64{pattern.ChannelSampler: -999})
	if got, want := snd.gains[0].gain, DBToGain(pattern.MinLevelDB); math.Abs(got-want) > 1e-9 {
		t.Errorf("gain = %v, want floor %v", got, want)
	}
}
