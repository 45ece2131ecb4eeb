package pattern

// Steps is the fixed pattern length: one bar of 16th notes.
const Steps = 16

// MaxMarkers caps the slice marker table.
const MaxMarkers = 16

// TrackID identifies a drum track in the grid.
type TrackID string

const (
	TrackKick  TrackID = "kick"
	TrackSnare TrackID = "snare"
	TrackHat   TrackID = "hat"
	TrackPerc  TrackID = "perc"
)

// DrumTracks is the fixed track order used for iteration and display.
var DrumTracks = [4]TrackID{TrackKick, TrackSnare, TrackHat, TrackPerc}

// ChannelID identifies a mixer channel (the drum tracks plus synth and sampler).
type ChannelID string

const (
	ChannelSynth   ChannelID = "synth"
	ChannelSampler ChannelID = "sampler"
)

// Channels lists all mixer channels in display order.
var Channels = [6]ChannelID{
	ChannelID(TrackKick), ChannelID(TrackSnare), ChannelID(TrackHat),
	ChannelID(TrackPerc), ChannelSynth, ChannelSampler,
}

// RollNote is one row of the note roll pitch table.
type RollNote struct {
	Name string
	MIDI uint8
}

// RollNotes is the fixed pitch table for the note roll, highest pitch first
// (row 0 renders at the top of the roll).
var RollNotes = [12]RollNote{
	{"C5", 72},
	{"B4", 71},
	{"A#4", 70},
	{"A4", 69},
	{"G#4", 68},
	{"G4", 67},
	{"F#4", 66},
	{"F4", 65},
	{"E4", 64},
	{"D#4", 63},
	{"D4", 62},
	{"C#4", 61},
}

// RollRows is the note roll height.
const RollRows = len(RollNotes)

// PitchClass returns the pitch class (0-11, C=0) of a roll row.
func PitchClass(row int) int {
	return int(RollNotes[row].MIDI) % 12
}

// StepOpt is an optional step value: a row or marker index, or nothing.
// The zero value is "no event".
type StepOpt struct {
	set bool
	val int
}

// Some returns a set StepOpt holding v.
func Some(v int) StepOpt { return StepOpt{set: true, val: v} }

// None returns the empty StepOpt.
func None() StepOpt { return StepOpt{} }

// Get returns the held value and whether one is set.
func (o StepOpt) Get() (int, bool) { return o.val, o.set }

// IsSome reports whether a value is set.
func (o StepOpt) IsSome() bool { return o.set }

// Pattern is one cycle of sequencer content. All sequences are exactly
// Steps long at all times; generator results replace them wholesale.
type Pattern struct {
	Drums      map[TrackID][Steps]bool
	NoteRoll   [Steps]StepOpt
	SampleRoll [Steps]StepOpt
}

// NewPattern creates an empty pattern with all drum tracks present.
func NewPattern() *Pattern {
	p := &Pattern{Drums: make(map[TrackID][Steps]bool, len(DrumTracks))}
	for _, t := range DrumTracks {
		p.Drums[t] = [Steps]bool{}
	}
	return p
}

// Clone returns a deep copy. Arrays copy by value; only the drum map
// needs explicit duplication.
func (p *Pattern) Clone() *Pattern {
	c := *p
	c.Drums = make(map[TrackID][Steps]bool, len(p.Drums))
	for t, row := range p.Drums {
		c.Drums[t] = row
	}
	return &c
}

// Equal reports whether two patterns hold identical content.
func (p *Pattern) Equal(q *Pattern) bool {
	if len(p.Drums) != len(q.Drums) {
		return false
	}
	for t, row := range p.Drums {
		if q.Drums[t] != row {
			return false
		}
	}
	return p.NoteRoll == q.NoteRoll && p.SampleRoll == q.SampleRoll
}

// TransportConfig holds tempo and feel settings.
type TransportConfig struct {
	BPM            float64 `json:"bpm"`
	Swing          float64 `json:"swing"`          // 0..1, applied at the swing subdivision
	AccentInterval int     `json:"accentInterval"` // 0, 2, 3, 4 or 8; 0 = no accent
}

const (
	MinBPM = 60
	MaxBPM = 180
)

// accentIntervals are the legal accent settings.
var accentIntervals = [5]int{0, 2, 3, 4, 8}

// DefaultTransport returns the startup transport settings.
func DefaultTransport() TransportConfig {
	return TransportConfig{BPM: 120, Swing: 0, AccentInterval: 4}
}

// clampBPM bounds a tempo to the supported range.
func clampBPM(bpm float64) float64 {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// snapAccent maps any value to the nearest legal accent interval.
func snapAccent(n int) int {
	best, bestDist := accentIntervals[0], 1<<30
	for _, a := range accentIntervals {
		d := n - a
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

const (
	MinLevelDB = -60.0
	MaxLevelDB = 6.0
)

// DefaultMixLevels returns unity (0 dB) on every channel.
func DefaultMixLevels() map[ChannelID]float64 {
	m := make(map[ChannelID]float64, len(Channels))
	for _, ch := range Channels {
		m[ch] = 0
	}
	return m
}

// clampDB bounds a channel level to the mixer range.
func clampDB(db float64) float64 {
	if db < MinLevelDB {
		return MinLevelDB
	}
	if db > MaxLevelDB {
		return MaxLevelDB
	}
	return db
}
