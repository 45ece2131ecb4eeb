package engine

// MinSliceDur is the shortest audible slice; anything shorter is stretched
// up to it (or skipped when the buffer tail is too short).
const MinSliceDur = 0.005

// Slice is a cut into the loaded sample buffer, in seconds.
type Slice struct {
	Start    float64
	Duration float64
}

// Cut maps a marker index to a slice. Each marker plays up to the next
// marker, the last up to the end of the buffer. ok is false when the step
// should be skipped: bad index, empty buffer, or no audible duration left.
func Cut(markers []float64, m int, bufferDur float64) (Slice, bool) {
	if m < 0 || m >= len(markers) || bufferDur <= 0 {
		return Slice{}, false
	}

	start := markers[m]
	if start < 0 {
		start = 0
	}
	if start > bufferDur {
		start = bufferDur
	}

	end := bufferDur
	if m+1 < len(markers) {
		end = markers[m+1]
	}

	dur := end - start
	if dur < MinSliceDur {
		dur = MinSliceDur
	}
	if max := bufferDur - start; dur > max {
		dur = max
	}
	if dur < MinSliceDur {
		return Slice{}, false
	}
	return Slice{Start: start, Duration: dur}, true
}
