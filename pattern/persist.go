package pattern

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Store is the key/value byte storage the sequencer persists into.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
}

// ErrNotFound is returned by Store.Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Persistence keys.
const (
	keyPattern   = "pattern"
	keyMarkers   = "markers"
	keyMix       = "mix"
	keyTransport = "transport"
)

// patternVersion is the current serialized pattern format.
const patternVersion = 2

// MarshalJSON encodes a StepOpt as its value or null.
func (o StepOpt) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.val)
}

// UnmarshalJSON decodes null as none and an integer as some.
func (o *StepOpt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = StepOpt{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// patternPayload is the versioned on-disk pattern format.
type patternPayload struct {
	Version    int                     `json:"version"`
	DrumHits   map[TrackID][Steps]bool `json:"drumHits"`
	NoteRoll   *[Steps]StepOpt         `json:"noteRoll"`
	SampleRoll *[Steps]StepOpt         `json:"sampleRoll"`
}

// MarshalPattern serializes a pattern in the current versioned format.
func MarshalPattern(p *Pattern) ([]byte, error) {
	return json.Marshal(patternPayload{
		Version:    patternVersion,
		DrumHits:   p.Drums,
		NoteRoll:   &p.NoteRoll,
		SampleRoll: &p.SampleRoll,
	})
}

// UnmarshalPattern deserializes a pattern, accepting both the current
// versioned format and the legacy bare drum-grid object (which predates the
// note and sample rolls; those load as all-none).
func UnmarshalPattern(data []byte) (*Pattern, error) {
	var payload patternPayload
	if err := json.Unmarshal(data, &payload); err == nil && payload.DrumHits != nil {
		p := NewPattern()
		for _, t := range DrumTracks {
			if row, ok := payload.DrumHits[t]; ok {
				p.Drums[t] = row
			}
		}
		if payload.NoteRoll != nil {
			p.NoteRoll = *payload.NoteRoll
		}
		if payload.SampleRoll != nil {
			p.SampleRoll = *payload.SampleRoll
		}
		sanitizeRolls(p)
		return p, nil
	}

	// Legacy format: a bare {trackId: bool[16]} object.
	var legacy map[TrackID][Steps]bool
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}
	p := NewPattern()
	for _, t := range DrumTracks {
		if row, ok := legacy[t]; ok {
			p.Drums[t] = row
		}
	}
	return p, nil
}

// sanitizeRolls drops out-of-range indices loaded from disk.
func sanitizeRolls(p *Pattern) {
	for i := range p.NoteRoll {
		if v, ok := p.NoteRoll[i].Get(); ok && (v < 0 || v >= RollRows) {
			p.NoteRoll[i] = None()
		}
	}
	for i := range p.SampleRoll {
		if v, ok := p.SampleRoll[i].Get(); ok && (v < 0 || v >= MaxMarkers) {
			p.SampleRoll[i] = None()
		}
	}
}

func persistSnapshot(kv Store, snap *Snapshot) error {
	data, err := MarshalPattern(snap.Pattern)
	if err != nil {
		return err
	}
	if err := kv.Put(keyPattern, data); err != nil {
		return err
	}
	if data, err = json.Marshal(snap.Markers); err == nil {
		err = kv.Put(keyMarkers, data)
	}
	if err != nil {
		return err
	}
	if data, err = json.Marshal(snap.Mix); err == nil {
		err = kv.Put(keyMix, data)
	}
	if err != nil {
		return err
	}
	if data, err = json.Marshal(snap.Transport); err == nil {
		err = kv.Put(keyTransport, data)
	}
	return err
}

func loadPattern(kv Store) (*Pattern, error) {
	data, err := kv.Get(keyPattern)
	if err != nil {
		return nil, err
	}
	return UnmarshalPattern(data)
}

func loadMarkers(kv Store) ([]float64, error) {
	data, err := kv.Get(keyMarkers)
	if err != nil {
		return nil, err
	}
	var m []float64
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m) > MaxMarkers {
		m = m[:MaxMarkers]
	}
	return m, nil
}

func loadMix(kv Store) (map[ChannelID]float64, error) {
	data, err := kv.Get(keyMix)
	if err != nil {
		return nil, err
	}
	mix := DefaultMixLevels()
	var stored map[ChannelID]float64
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	for ch := range mix {
		if db, ok := stored[ch]; ok {
			mix[ch] = clampDB(db)
		}
	}
	return mix, nil
}

func loadTransport(kv Store) (TransportConfig, error) {
	data, err := kv.Get(keyTransport)
	if err != nil {
		return TransportConfig{}, err
	}
	tc := DefaultTransport()
	if err := json.Unmarshal(data, &tc); err != nil {
		return TransportConfig{}, err
	}
	tc.BPM = clampBPM(tc.BPM)
	tc.AccentInterval = snapAccent(tc.AccentInterval)
	return tc, nil
}

// FileStore keeps each key as a JSON file in a directory, the same way the
// app config lives under ~/.config/stepseq.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

func (f *FileStore) Put(key string, data []byte) error {
	return os.WriteFile(f.path(key), data, 0644)
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	m map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, error) {
	data, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *MemStore) Put(key string, data []byte) error {
	s.m[key] = append([]byte(nil), data...)
	return nil
}
