package ui

import (
	"math"
)

// transition eases a value from 0 to 1 over a fixed number of frames. It
// drives the highlight fade when the active lyric line changes.
type transition struct {
	progress float64
	steps    int
}

func newTransition(steps int) transition {
	if steps <= 0 {
		steps = 1
	}
	return transition{progress: 1, steps: steps}
}

func (t *transition) Start() {
	t.progress = 0
}

func (t *transition) Advance() {
	if t.progress >= 1 {
		return
	}
	t.progress += 1 / float64(t.steps)
	if t.progress > 1 {
		t.progress = 1
	}
}

func (t transition) Value() float64 {
	return easeOutCubic(t.progress)
}

func easeOutCubic(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - math.Pow(1-t, 3)
}

func clamp(val float64, min float64, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
