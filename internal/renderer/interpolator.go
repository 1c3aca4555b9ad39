package renderer

import (
	"math"
	"time"
)

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// ratio returns part/whole clamped to [0, 1]; a zero whole counts as done.
func ratio(part, whole time.Duration) float64 {
	if whole <= 0 {
		return 1
	}
	return clamp01(float64(part) / float64(whole))
}
