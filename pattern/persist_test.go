package pattern

import (
	"testing"
)

func TestPatternRoundTrip(t *testing.T) {
	p := NewPattern()
	kick := p.Drums[TrackKick]
	kick[0], kick[4], kick[8], kick[12] = true, true, true, true
	p.Drums[TrackKick] = kick
	snare := p.Drums[TrackSnare]
	snare[4], snare[12] = true, true
	p.Drums[TrackSnare] = snare
	p.NoteRoll[0] = Some(5)
	p.NoteRoll[3] = Some(11)
	p.SampleRoll[2] = Some(0)
	p.SampleRoll[10] = Some(15)

	data, err := MarshalPattern(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	q, err := UnmarshalPattern(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Equal(q) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", q, p)
	}
}

func TestLegacyDrumOnlyMigration(t *testing.T) {
	legacy := []byte(`{
		"kick":  [true,false,false,false,true,false,false,false,true,false,false,false,true,false,false,false],
		"snare": [false,false,false,false,true,false,false,false,false,false,false,false,true,false,false,false],
		"hat":   [true,true,true,true,true,true,true,true,true,true,true,true,true,true,true,true],
		"perc":  [false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false]
	}`)

	p, err := UnmarshalPattern(legacy)
	if err != nil {
		t.Fatalf("legacy unmarshal: %v", err)
	}
	if !p.Drums[TrackKick][0] || !p.Drums[TrackKick][4] {
		t.Error("legacy kick row lost")
	}
	if !p.Drums[TrackHat][15] {
		t.Error("legacy hat row lost")
	}
	for i := 0; i < Steps; i++ {
		if p.NoteRoll[i].IsSome() {
			t.Errorf("step %d: legacy load should give empty note roll", i)
		}
		if p.SampleRoll[i].IsSome() {
			t.Errorf("step %d: legacy load should give empty sample roll", i)
		}
	}
}

func TestCorruptPayloadFallsBackToEmpty(t *testing.T) {
	kv := NewMemStore()
	kv.Put("pattern", []byte("{not json"))

	s := NewPatternStore(kv)
	s.Load()

	snap := s.Snapshot()
	if !snap.Pattern.Equal(NewPattern()) {
		t.Error("corrupt payload should load as the empty pattern")
	}
}

func TestVersionedLoadDropsOutOfRangeIndices(t *testing.T) {
	data := []byte(`{
		"version": 2,
		"drumHits": {"kick": [false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false]},
		"noteRoll": [99,null,null,null,null,null,null,null,null,null,null,null,null,null,null,-1],
		"sampleRoll": [16,null,null,null,null,null,null,null,null,null,null,null,null,null,null,4]
	}`)
	p, err := UnmarshalPattern(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.NoteRoll[0].IsSome() || p.NoteRoll[15].IsSome() {
		t.Error("out-of-range note rows should load as none")
	}
	if p.SampleRoll[0].IsSome() {
		t.Error("out-of-range markers should load as none")
	}
	if v, ok := p.SampleRoll[15].Get(); !ok || v != 4 {
		t.Errorf("in-range marker lost: got %v %v", v, ok)
	}
}
