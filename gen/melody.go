package gen

import (
	"math"
	"math/rand"

	"stepseq/pattern"
)

// Scale presets, in selector order.
const (
	ScaleMajor = iota
	ScaleMinor
	ScalePentatonic
	ScaleBlues
)

// ScaleNames matches the selector order.
var ScaleNames = []string{"major", "minor", "pentatonic", "blues"}

// scaleIntervals are semitone offsets from the root.
var scaleIntervals = [][]int{
	{0, 2, 4, 5, 7, 9, 11}, // major
	{0, 2, 3, 5, 7, 8, 10}, // minor
	{0, 2, 4, 7, 9},        // pentatonic
	{0, 3, 5, 6, 7, 10},    // blues
}

// Melody placement engines, in selector order.
const (
	EngineWalk = iota
	EngineArp
	EngineMotif
	EngineBass
)

// EngineNames matches the selector order.
var EngineNames = []string{"walk", "arp", "motif", "bass"}

// Post-processing probabilities. Stated here once: the de-repeat pass
// changes a duplicated pitch with p=0.55, the cadence pass snaps the final
// two steps to the root with p=0.45, and the last step rests with p=0.10.
const (
	deRepeatProb = 0.55
	cadenceProb  = 0.45
	restProb     = 0.10
)

// MelodyParams selects what the melody generator emits. Scale and Engine
// indices wrap modulo their preset counts.
type MelodyParams struct {
	Root     int // pitch class 0..11
	Scale    int
	JumpProb float64 // 0..1 chance of a leap instead of a stepwise move
	Engine   int
}

// AllowedRows returns the note roll rows whose pitch class lies in the
// chosen scale transposed to root. Rows are in table order (descending
// pitch). May be empty for no root/scale combination of the built-in
// presets, but degenerate inputs still get a defined answer.
func AllowedRows(root, scale int) []int {
	n := len(scaleIntervals)
	scale = ((scale % n) + n) % n
	root = ((root % 12) + 12) % 12

	in := [12]bool{}
	for _, iv := range scaleIntervals[scale] {
		in[(root+iv)%12] = true
	}
	var rows []int
	for r := 0; r < pattern.RollRows; r++ {
		if in[pattern.PitchClass(r)] {
			rows = append(rows, r)
		}
	}
	return rows
}

// Melody generates a complete note roll: a pitch for every active mask step,
// none elsewhere. The previous roll is never merged into the result. An
// empty allowed-row set yields an all-none roll.
func Melody(p MelodyParams, mask Mask, rng *rand.Rand) [pattern.Steps]pattern.StepOpt {
	return melodyFromRows(p, AllowedRows(p.Root, p.Scale), mask, rng)
}

// melodyFromRows runs the placement engines over an explicit allowed-row
// set. An empty set yields an all-none roll rather than an error.
func melodyFromRows(p MelodyParams, allowed []int, mask Mask, rng *rand.Rand) [pattern.Steps]pattern.StepOpt {
	var roll [pattern.Steps]pattern.StepOpt

	if len(allowed) == 0 {
		return roll
	}

	active := activeSteps(mask)
	if len(active) == 0 {
		return roll
	}

	var positions []int
	switch e := wrapIndex(p.Engine, len(EngineNames)); e {
	case EngineArp:
		positions = arpPositions(len(allowed), len(active), rng)
	case EngineMotif:
		positions = motifPositions(len(allowed), len(active), p.JumpProb, rng)
	case EngineBass:
		positions = bassPositions(len(allowed), len(active), rng)
	default:
		positions = walkPositions(len(allowed), len(active), p.JumpProb, rng)
	}

	for k, step := range active {
		roll[step] = pattern.Some(allowed[positions[k]])
	}

	deRepeat(&roll, allowed, rng)
	cadence(&roll, allowed, p.Root, rng)
	if rng.Float64() < restProb {
		roll[pattern.Steps-1] = pattern.None()
	}
	return roll
}

func wrapIndex(i, n int) int {
	return ((i % n) + n) % n
}

func activeSteps(mask Mask) []int {
	var steps []int
	for i, on := range mask {
		if on {
			steps = append(steps, i)
		}
	}
	return steps
}

// bellPick chooses an index in [0,n) with a gaussian weighting centered on
// the middle, biasing melodies toward the mid register.
func bellPick(n int, rng *rand.Rand) int {
	center := float64(n-1) / 2
	weights := make([]float64, n)
	total := 0.0
	for i := range weights {
		d := float64(i) - center
		weights[i] = math.Exp(-0.5 * d * d)
		total += weights[i]
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return n - 1
}

// clampPos bounds a position to the allowed-row range.
func clampPos(p, n int) int {
	if p < 0 {
		return 0
	}
	if p >= n {
		return n - 1
	}
	return p
}

// walkPositions is the default engine: a bell-weighted start, then stepwise
// moves within two allowed-row positions, with occasional leaps of three to
// five positions.
func walkPositions(n, count int, jumpProb float64, rng *rand.Rand) []int {
	positions := make([]int, count)
	positions[0] = bellPick(n, rng)
	for k := 1; k < count; k++ {
		prev := positions[k-1]
		if rng.Float64() < jumpProb {
			offset := 3 + rng.Intn(3) // 3..5
			if rng.Intn(2) == 0 {
				offset = -offset
			}
			positions[k] = clampPos(prev+offset, n)
			continue
		}
		var candidates []int
		for d := -2; d <= 2; d++ {
			if j := prev + d; j >= 0 && j < n {
				candidates = append(candidates, j)
			}
		}
		if len(candidates) == 0 {
			positions[k] = prev
			continue
		}
		positions[k] = candidates[rng.Intn(len(candidates))]
	}
	return positions
}

// arpPositions cycles a small chord subset up, down or bouncing across the
// active steps.
func arpPositions(n, count int, rng *rand.Rand) []int {
	size := 3 + rng.Intn(3) // 3..5 chord tones
	if size > n {
		size = n
	}
	// Stack the chord in thirds (every other allowed row) from a base near
	// the low end of the table.
	maxBase := n - (size-1)*2
	base := 0
	if maxBase > 1 {
		base = rng.Intn(maxBase)
	}
	chord := make([]int, size)
	for i := range chord {
		chord[i] = clampPos(base+i*2, n)
	}

	dir := rng.Intn(3) // 0=up 1=down 2=bounce
	positions := make([]int, count)
	for k := range positions {
		switch dir {
		case 0:
			positions[k] = chord[k%size]
		case 1:
			positions[k] = chord[size-1-k%size]
		default:
			period := 2*size - 2
			if period <= 0 {
				period = 1
			}
			i := k % period
			if i >= size {
				i = period - i
			}
			positions[k] = chord[i]
		}
	}
	return positions
}

// motifPositions builds a four-step motif and repeats it across the active
// steps, nudging occasional repetitions by one position so the halves rhyme
// without being identical.
func motifPositions(n, count int, jumpProb float64, rng *rand.Rand) []int {
	motifLen := 4
	if motifLen > count {
		motifLen = count
	}
	motif := walkPositions(n, motifLen, jumpProb, rng)

	positions := make([]int, count)
	for k := range positions {
		p := motif[k%motifLen]
		if k >= motifLen && rng.Float64() < 0.3 {
			if rng.Intn(2) == 0 {
				p = clampPos(p+1, n)
			} else {
				p = clampPos(p-1, n)
			}
		}
		positions[k] = p
	}
	return positions
}

// bassPositions walks the low end of the allowed rows with small moves and
// rare leaps. Rows are in descending pitch order, so "low" means the high
// indices of the table.
func bassPositions(n, count int, rng *rand.Rand) []int {
	positions := make([]int, count)
	positions[0] = clampPos(n-1-rng.Intn(2), n)
	for k := 1; k < count; k++ {
		prev := positions[k-1]
		var move int
		if rng.Float64() < 0.08 {
			move = 3 + rng.Intn(3)
			if rng.Intn(2) == 0 {
				move = -move
			}
		} else {
			move = rng.Intn(3) - 1 // -1, 0, +1
		}
		p := clampPos(prev+move, n)
		// Drift back toward the low register when a leap strands us high.
		if p < n/2 && rng.Float64() < 0.5 {
			p = clampPos(p+2, n)
		}
		positions[k] = p
	}
	return positions
}

// deRepeat replaces the second of two identical adjacent active pitches with
// a neighboring allowed row.
func deRepeat(roll *[pattern.Steps]pattern.StepOpt, allowed []int, rng *rand.Rand) {
	posOf := make(map[int]int, len(allowed))
	for i, r := range allowed {
		posOf[r] = i
	}
	prev := -1
	for i := range roll {
		row, ok := roll[i].Get()
		if !ok {
			continue
		}
		if row == prev && rng.Float64() < deRepeatProb {
			p := posOf[row]
			q := p + 1
			if q >= len(allowed) || (p > 0 && rng.Intn(2) == 0) {
				q = p - 1
			}
			if q >= 0 && q < len(allowed) && allowed[q] != row {
				row = allowed[q]
				roll[i] = pattern.Some(row)
			}
		}
		prev = row
	}
}

// cadence pulls the final two steps toward the root pitch class.
func cadence(roll *[pattern.Steps]pattern.StepOpt, allowed []int, root int, rng *rand.Rand) {
	root = ((root % 12) + 12) % 12
	for _, i := range [2]int{pattern.Steps - 2, pattern.Steps - 1} {
		row, ok := roll[i].Get()
		if !ok || rng.Float64() >= cadenceProb {
			continue
		}
		best, bestDist := -1, 1<<30
		for _, r := range allowed {
			if pattern.PitchClass(r) != root {
				continue
			}
			d := r - row
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				best, bestDist = r, d
			}
		}
		if best >= 0 {
			roll[i] = pattern.Some(best)
		}
	}
}
