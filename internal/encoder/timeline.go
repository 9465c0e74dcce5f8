package encoder

import (
	"math"
	"strconv"
)

// Offsets returns the xfade start offset for each adjacent pair of slides.
//
// The timeline accumulates as transitions are chained: after slide 0 it is
// d0 long; each following slide adds its duration minus the overlap. The
// transition into slide k starts one transition length before the end of the
// accumulated timeline, so for durations [5 5 5] and t=0.5 the offsets are
// [4.5 9.0].
func Offsets(durations []float64, transition float64) []float64 {
	if len(durations) < 2 {
		return nil
	}

	offsets := make([]float64, 0, len(durations)-1)
	acc := durations[0]
	for _, d := range durations[1:] {
		offsets = append(offsets, acc-transition)
		acc += d - transition
	}
	return offsets
}

// TotalDuration returns the sum of durations.
func TotalDuration(durations []float64) float64 {
	var total float64
	for _, d := range durations {
		total += d
	}
	return total
}

// ExpectedDuration returns the video stream length the composition produces,
// before any audio "shortest" truncation.
func ExpectedDuration(c Composition) float64 {
	durations := c.durations()
	if len(durations) == 0 {
		return 0
	}
	switch SelectStrategy(c) {
	case StrategySingle:
		return durations[0]
	case StrategyCrossfade:
		return TotalDuration(durations) - float64(len(durations)-1)*c.TransitionDuration
	default:
		return TotalDuration(durations)
	}
}

// formatSeconds renders seconds for ffmpeg, rounded to the millisecond so
// float accumulation noise never reaches the command line.
func formatSeconds(s float64) string {
	return strconv.FormatFloat(math.Round(s*1000)/1000, 'f', -1, 64)
}
