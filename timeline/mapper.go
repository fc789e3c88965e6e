package timeline

import (
	"math"

	"github.com/samber/lo"
)

// Fraction returns the clamped position of pointerX along the timeline in [0, 1].
// Degenerate geometry yields 0.
func Fraction(pointerX, left, width float64) float64 {
	if width <= 0 || anyNaN(pointerX, left, width) {
		return 0
	}

	return lo.Clamp((pointerX-left)/width, 0, 1)
}

// MapPointer converts a horizontal pointer coordinate into a media time.
// The result always lies in [0, videoLength]; degenerate input yields 0.
func MapPointer(pointerX, left, width, videoLength float64) float64 {
	if videoLength <= 0 || math.IsNaN(videoLength) || math.IsInf(videoLength, 0) {
		return 0
	}

	return Fraction(pointerX, left, width) * videoLength
}

// TimeToOffset is the inverse of MapPointer, relative to the timeline's left edge.
func TimeToOffset(t, width, videoLength float64) float64 {
	if width <= 0 || videoLength <= 0 || anyNaN(t, width, videoLength) {
		return 0
	}

	return lo.Clamp(t/videoLength, 0, 1) * width
}

func anyNaN(values ...float64) bool {
	return lo.SomeBy(values, math.IsNaN)
}
