package pattern

import (
	"sort"
	"sync"

	"stepseq/debug"
)

// Snapshot is an immutable view of the sequencer state. The dispatch path
// reads snapshots only; it never sees a half-applied edit.
type Snapshot struct {
	Pattern   *Pattern
	Markers   []float64
	Mix       map[ChannelID]float64
	Transport TransportConfig
}

// PatternStore owns the pattern, markers, mix levels and transport config.
// All mutation happens here, on the control path. Every mutation installs a
// fresh snapshot, persists, and fires the change callback so the dispatcher
// can rebuild its schedule registration.
type PatternStore struct {
	mu    sync.Mutex
	snap  *Snapshot
	store Store

	onChange []func()
}

// NewPatternStore creates a store with empty content, backed by kv.
// A nil kv disables persistence (used by tests and generators run offline).
func NewPatternStore(kv Store) *PatternStore {
	return &PatternStore{
		snap: &Snapshot{
			Pattern:   NewPattern(),
			Markers:   nil,
			Mix:       DefaultMixLevels(),
			Transport: DefaultTransport(),
		},
		store: kv,
	}
}

// OnChange registers a callback fired after every mutation. The dispatcher
// uses this for its schedule rebuild; engines hang tempo updates off it.
func (s *PatternStore) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Snapshot returns the current immutable snapshot.
func (s *PatternStore) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Load restores persisted state, falling back to defaults on any failure.
func (s *PatternStore) Load() {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	next := cloneSnapshot(s.snap)
	if p, err := loadPattern(s.store); err == nil {
		next.Pattern = p
	} else {
		debug.Log("store", "pattern load failed, using empty: %v", err)
	}
	if m, err := loadMarkers(s.store); err == nil {
		next.Markers = m
	}
	if mix, err := loadMix(s.store); err == nil {
		next.Mix = mix
	}
	if tc, err := loadTransport(s.store); err == nil {
		next.Transport = tc
	}
	s.snap = next
	s.mu.Unlock()
}

// mutate runs fn against a deep copy of the snapshot, installs the result,
// persists and notifies.
func (s *PatternStore) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	next := cloneSnapshot(s.snap)
	fn(next)
	s.snap = next
	store := s.store
	notify := append([]func(){}, s.onChange...)
	s.mu.Unlock()

	if store != nil {
		if err := persistSnapshot(store, next); err != nil {
			debug.Log("store", "persist failed: %v", err)
		}
	}
	for _, fn := range notify {
		fn()
	}
}

func cloneSnapshot(snap *Snapshot) *Snapshot {
	next := &Snapshot{
		Pattern:   snap.Pattern.Clone(),
		Markers:   append([]float64(nil), snap.Markers...),
		Mix:       make(map[ChannelID]float64, len(snap.Mix)),
		Transport: snap.Transport,
	}
	for ch, db := range snap.Mix {
		next.Mix[ch] = db
	}
	return next
}

// ToggleDrumStep flips one cell of the drum grid.
func (s *PatternStore) ToggleDrumStep(track TrackID, step int) {
	if step < 0 || step >= Steps {
		return
	}
	s.mutate(func(snap *Snapshot) {
		row := snap.Pattern.Drums[track]
		row[step] = !row[step]
		snap.Pattern.Drums[track] = row
	})
}

// SetDrumRow replaces a whole drum track row (generator output).
func (s *PatternStore) SetDrumRow(track TrackID, row [Steps]bool) {
	s.mutate(func(snap *Snapshot) {
		snap.Pattern.Drums[track] = row
	})
}

// SetNoteStep sets or clears the monophonic note at one step.
func (s *PatternStore) SetNoteStep(step int, note StepOpt) {
	if step < 0 || step >= Steps {
		return
	}
	if v, ok := note.Get(); ok && (v < 0 || v >= RollRows) {
		return
	}
	s.mutate(func(snap *Snapshot) {
		snap.Pattern.NoteRoll[step] = note
	})
}

// SetNoteRoll replaces the whole note roll atomically (generator output).
func (s *PatternStore) SetNoteRoll(roll [Steps]StepOpt) {
	s.mutate(func(snap *Snapshot) {
		snap.Pattern.NoteRoll = roll
	})
}

// SetSampleStep sets or clears the sample marker at one step.
func (s *PatternStore) SetSampleStep(step int, marker StepOpt) {
	if step < 0 || step >= Steps {
		return
	}
	if v, ok := marker.Get(); ok && (v < 0 || v >= MaxMarkers) {
		return
	}
	s.mutate(func(snap *Snapshot) {
		snap.Pattern.SampleRoll[step] = marker
	})
}

// SetSampleRoll replaces the whole sample roll atomically.
func (s *PatternStore) SetSampleRoll(roll [Steps]StepOpt) {
	s.mutate(func(snap *Snapshot) {
		snap.Pattern.SampleRoll = roll
	})
}

// ClearPattern empties the drum grid and both rolls.
func (s *PatternStore) ClearPattern() {
	s.mutate(func(snap *Snapshot) {
		snap.Pattern = NewPattern()
	})
}

// AddMarker inserts a slice marker, keeping the table sorted. Adding past
// the cap is a no-op.
func (s *PatternStore) AddMarker(sec float64) {
	if sec < 0 {
		sec = 0
	}
	s.mu.Lock()
	full := len(s.snap.Markers) >= MaxMarkers
	s.mu.Unlock()
	if full {
		return
	}
	s.mutate(func(snap *Snapshot) {
		snap.Markers = append(snap.Markers, sec)
		sort.Float64s(snap.Markers)
	})
}

// ClearMarkers drops the whole marker table.
func (s *PatternStore) ClearMarkers() {
	s.mutate(func(snap *Snapshot) {
		snap.Markers = nil
	})
}

// SetMarkers replaces the marker table (slice assignment tooling). Values
// are sorted and truncated to the cap.
func (s *PatternStore) SetMarkers(markers []float64) {
	s.mutate(func(snap *Snapshot) {
		ms := append([]float64(nil), markers...)
		sort.Float64s(ms)
		if len(ms) > MaxMarkers {
			ms = ms[:MaxMarkers]
		}
		snap.Markers = ms
	})
}

// SetLevel sets a channel's mix level in dB, clamped to the mixer range.
func (s *PatternStore) SetLevel(ch ChannelID, db float64) {
	s.mutate(func(snap *Snapshot) {
		snap.Mix[ch] = clampDB(db)
	})
}

// SetBPM sets the tempo, clamped to the supported range.
func (s *PatternStore) SetBPM(bpm float64) {
	s.mutate(func(snap *Snapshot) {
		snap.Transport.BPM = clampBPM(bpm)
	})
}

// SetSwing sets the swing amount (0..1).
func (s *PatternStore) SetSwing(amount float64) {
	if amount < 0 {
		amount = 0
	}
	if amount > 1 {
		amount = 1
	}
	s.mutate(func(snap *Snapshot) {
		snap.Transport.Swing = amount
	})
}

// SetAccentInterval sets the accent interval, snapping to the legal set.
func (s *PatternStore) SetAccentInterval(n int) {
	s.mutate(func(snap *Snapshot) {
		snap.Transport.AccentInterval = snapAccent(n)
	})
}
