package gen

import (
	"math/rand"

	"stepseq/pattern"
)

// Slices fills a sample roll: active mask steps get a marker index, either
// cycling through the marker table in order or picking at random. No markers
// means an all-none roll.
func Slices(markerCount int, mask Mask, sequential bool, rng *rand.Rand) [pattern.Steps]pattern.StepOpt {
	var roll [pattern.Steps]pattern.StepOpt
	if markerCount <= 0 {
		return roll
	}
	if markerCount > pattern.MaxMarkers {
		markerCount = pattern.MaxMarkers
	}
	next := 0
	for i, on := range mask {
		if !on {
			continue
		}
		if sequential {
			roll[i] = pattern.Some(next % markerCount)
			next++
		} else {
			roll[i] = pattern.Some(rng.Intn(markerCount))
		}
	}
	return roll
}
