package gen

import (
	"math/rand"
	"testing"

	"stepseq/pattern"
)

func TestAllowedRowsMatchScale(t *testing.T) {
	rows := AllowedRows(0, ScaleMajor) // C major
	if len(rows) == 0 {
		t.Fatal("C major should allow rows")
	}
	for _, r := range rows {
		pc := pattern.PitchClass(r)
		switch pc {
		case 0, 2, 4, 5, 7, 9, 11:
		default:
			t.Errorf("row %d (pc %d) is not in C major", r, pc)
		}
	}
}

func TestAllowedRowsWrapsPresets(t *testing.T) {
	a := AllowedRows(5, ScaleMinor)
	b := AllowedRows(5, ScaleMinor+len(scaleIntervals))
	if len(a) != len(b) {
		t.Fatal("scale index should wrap modulo the preset count")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("wrapped scale index gave different rows")
		}
	}
}

func TestMelodyRowsAlwaysInRange(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		p := MelodyParams{
			Root:     int(seed) % 12,
			Scale:    int(seed) % 7, // deliberately past the preset count
			JumpProb: float64(seed%10) / 10,
			Engine:   int(seed) % 6, // deliberately past the engine count
		}
		mask := Rhythm(int(seed)%4, 1+int(seed)%16, rng)
		roll := Melody(p, mask, rng)
		for i, opt := range roll {
			if row, ok := opt.Get(); ok {
				if row < 0 || row >= pattern.RollRows {
					t.Fatalf("seed %d step %d: row %d out of range", seed, i, row)
				}
				if !mask[i] {
					t.Fatalf("seed %d step %d: note on inactive step", seed, i)
				}
			}
		}
	}
}

func TestMelodyEmptyMaskIsAllNone(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	roll := Melody(MelodyParams{Scale: ScaleMajor}, Mask{}, rng)
	for i, opt := range roll {
		if opt.IsSome() {
			t.Errorf("step %d should be none for an empty mask", i)
		}
	}
}

func TestMelodyReplacesWholeRoll(t *testing.T) {
	// Active steps get notes (modulo the final-step rest pass); inactive
	// steps never carry anything over.
	rng := rand.New(rand.NewSource(3))
	mask := Euclid(8)
	roll := Melody(MelodyParams{Scale: ScaleMinor, JumpProb: 0.2}, mask, rng)
	for i := 0; i < pattern.Steps-1; i++ {
		if mask[i] && !roll[i].IsSome() {
			t.Errorf("active step %d has no note", i)
		}
	}
}

func TestDeRepeatChangesDuplicate(t *testing.T) {
	allowed := AllowedRows(0, ScaleMajor)
	var roll [pattern.Steps]pattern.StepOpt
	roll[0] = pattern.Some(allowed[3])
	roll[1] = pattern.Some(allowed[3])

	// Find a seed whose first Float64 lands under the change probability,
	// so the de-repeat branch is taken deterministically.
	var rng *rand.Rand
	for seed := int64(0); ; seed++ {
		r := rand.New(rand.NewSource(seed))
		if r.Float64() < deRepeatProb {
			rng = rand.New(rand.NewSource(seed))
			break
		}
	}

	deRepeat(&roll, allowed, rng)
	a, _ := roll[0].Get()
	b, ok := roll[1].Get()
	if !ok {
		t.Fatal("de-repeat cleared the step instead of moving it")
	}
	if a == b {
		t.Errorf("adjacent duplicate survived the forced change branch: %d", a)
	}
}

func TestCadenceSnapsToRoot(t *testing.T) {
	allowed := AllowedRows(0, ScaleMajor)
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		var roll [pattern.Steps]pattern.StepOpt
		roll[14] = pattern.Some(allowed[1])
		roll[15] = pattern.Some(allowed[2])
		cadence(&roll, allowed, 0, rng)
		for _, i := range []int{14, 15} {
			row, ok := roll[i].Get()
			if !ok {
				t.Fatalf("cadence removed the note at %d", i)
			}
			// Either untouched or snapped to a C row; never anything else.
			if row != allowed[1] && row != allowed[2] && pattern.PitchClass(row) != 0 {
				t.Fatalf("cadence moved step %d to a non-root row %d", i, row)
			}
		}
	}
}

func TestMelodyEmptyAllowedRowsYieldsRest(t *testing.T) {
	// The built-in presets always allow rows (the table is chromatic), so
	// drive the degenerate case through the engine entry point directly.
	rng := rand.New(rand.NewSource(9))
	roll := melodyFromRows(MelodyParams{}, nil, Euclid(8), rng)
	for i, opt := range roll {
		if opt.IsSome() {
			t.Errorf("step %d should be none with no allowed rows", i)
		}
	}
}

func TestSlicesSequentialCycle(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	mask := Euclid(pattern.Steps)
	roll := Slices(4, mask, true, rng)
	for i := 0; i < pattern.Steps; i++ {
		v, ok := roll[i].Get()
		if !ok {
			t.Fatalf("step %d missing a marker", i)
		}
		if v != i%4 {
			t.Errorf("step %d = marker %d, want %d", i, v, i%4)
		}
	}
}

func TestSlicesNoMarkers(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	roll := Slices(0, Euclid(8), false, rng)
	for i, opt := range roll {
		if opt.IsSome() {
			t.Errorf("step %d set with zero markers", i)
		}
	}
}

func TestSlicesRandomInRange(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		rng := rand.New(rand.NewSource(seed))
		roll := Slices(6, Euclid(11), false, rng)
		for i, opt := range roll {
			if v, ok := opt.Get(); ok && (v < 0 || v >= 6) {
				t.Fatalf("seed %d step %d: marker %d out of range", seed, i, v)
			}
		}
	}
}
