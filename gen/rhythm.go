// Package gen holds the procedural pattern generators. Every generator is a
// pure function over an injected *rand.Rand so callers can seed them for
// repeatable output.
package gen

import (
	"math/rand"

	"stepseq/pattern"
)

// Mask is a boolean step mask, one flag per pattern step.
type Mask [pattern.Steps]bool

// Count returns the number of active steps.
func (m Mask) Count() int {
	n := 0
	for _, on := range m {
		if on {
			n++
		}
	}
	return n
}

// Euclid spreads hits as evenly as possible across the pattern using the
// bucket accumulator form of the Euclidean rhythm algorithm. hits=0 gives an
// empty mask, hits=Steps a full one.
func Euclid(hits int) Mask {
	if hits < 0 {
		hits = 0
	}
	if hits > pattern.Steps {
		hits = pattern.Steps
	}
	var m Mask
	bucket := 0
	for i := 0; i < pattern.Steps; i++ {
		bucket += hits
		if bucket >= pattern.Steps {
			bucket -= pattern.Steps
			m[i] = true
		}
	}
	return m
}

// Rotate shifts a mask right by r steps, wrapping around.
func Rotate(m Mask, r int) Mask {
	r = ((r % pattern.Steps) + pattern.Steps) % pattern.Steps
	if r == 0 {
		return m
	}
	var out Mask
	for i, on := range m {
		out[(i+r)%pattern.Steps] = on
	}
	return out
}

// RhythmStyle produces a step mask for a hit count.
type RhythmStyle func(hits int, rng *rand.Rand) Mask

// rhythmStyles in selector order.
var rhythmStyles = []RhythmStyle{styleEuclid, styleOffbeat, styleSynco, styleSparse}

// RhythmStyleNames matches the selector order of Rhythm.
var RhythmStyleNames = []string{"euclid", "offbeat", "synco", "sparse"}

// Rhythm runs the style at index (wrapped modulo the style count). The hit
// count is clamped to the pattern length.
func Rhythm(style, hits int, rng *rand.Rand) Mask {
	if hits < 0 {
		hits = 0
	}
	if hits > pattern.Steps {
		hits = pattern.Steps
	}
	n := len(rhythmStyles)
	style = ((style % n) + n) % n
	return rhythmStyles[style](hits, rng)
}

// styleEuclid is the Euclidean mask under a uniformly random rotation.
func styleEuclid(hits int, rng *rand.Rand) Mask {
	return Rotate(Euclid(hits), rng.Intn(pattern.Steps))
}

// styleOffbeat fixes the offbeat 8ths and fills extra steps with a
// probability that grows with the hit count. No rotation: the offbeats are
// the point.
func styleOffbeat(hits int, rng *rand.Rand) Mask {
	var m Mask
	m[2], m[6], m[10], m[14] = true, true, true, true
	extra := float64(hits) / float64(pattern.Steps)
	for i := range m {
		if !m[i] && rng.Float64() < extra*0.35 {
			m[i] = true
		}
	}
	return m
}

// styleSynco starts from a fixed syncopated figure, trims or grows it toward
// the requested hit count, then applies only a light rotation so the figure
// keeps its character.
func styleSynco(hits int, rng *rand.Rand) Mask {
	base := []int{0, 3, 6, 10, 12, 14}
	var m Mask
	for _, i := range base {
		m[i] = true
	}
	for m.Count() > hits && m.Count() > 0 {
		m[base[len(base)-1]] = false
		base = base[:len(base)-1]
	}
	for m.Count() < hits {
		i := rng.Intn(pattern.Steps)
		m[i] = true
	}
	return Rotate(m, rng.Intn(4))
}

// styleSparse picks a random subset sized proportionally to the hit count.
func styleSparse(hits int, rng *rand.Rand) Mask {
	n := hits * 3 / 4
	if hits > 0 && n == 0 {
		n = 1
	}
	var m Mask
	perm := rng.Perm(pattern.Steps)
	for _, i := range perm[:n] {
		m[i] = true
	}
	return m
}
