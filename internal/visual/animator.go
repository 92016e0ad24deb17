// Package visual draws the procedural visualisation shown when a track has
// no synced lyrics. Every frame is a pure function of its inputs.
package visual

import (
	"math"
	"strings"
)

const (
	DefaultWidth  = 56
	DefaultHeight = 9
)

// ramp maps intensity in [0,1] to glyph density
var ramp = []rune(" .:-=+*#%@")

type Pattern int

const (
	PatternWaves Pattern = iota
	PatternPulse
	PatternBars
	PatternRain
	patternCount
)

var patternNames = [...]string{
	PatternWaves: "waves",
	PatternPulse: "pulse",
	PatternBars:  "bars",
	PatternRain:  "rain",
}

func (p Pattern) String() string {
	if p < 0 || p >= patternCount {
		return "unknown"
	}
	return patternNames[p]
}

func Patterns() []Pattern {
	out := make([]Pattern, 0, patternCount)
	for p := Pattern(0); p < patternCount; p++ {
		out = append(out, p)
	}
	return out
}

// Params fully determine a frame.
type Params struct {
	TimePos float64
	Frame   uint64
	Pattern Pattern
	Seed    uint64
	Width   int
	Height  int
}

// Render produces the character grid for p. Same params, same output.
func Render(p Params) []string {
	width, height := p.Width, p.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	rows := make([]string, height)
	var b strings.Builder
	for y := 0; y < height; y++ {
		b.Reset()
		for x := 0; x < width; x++ {
			b.WriteRune(glyph(intensity(p, x, y, width, height)))
		}
		rows[y] = b.String()
	}
	return rows
}

func glyph(v float64) rune {
	v = clamp01(v)
	idx := int(v * float64(len(ramp)-1))
	return ramp[idx]
}

func intensity(p Params, x, y, width, height int) float64 {
	t := p.TimePos
	fx := float64(x) / float64(width)
	// row 0 is the top, so flip for "height above floor"
	fy := float64(height-1-y) / float64(height)

	// two beats at different rates, phase shifted across the grid
	beatA := 0.5 + 0.5*math.Sin(2*math.Pi*(1.0*t+fx))
	beatB := 0.5 + 0.5*math.Sin(2*math.Pi*(1.6*t+0.5*fy)+math.Pi/3)
	n := noise(p.Seed, p.Frame, x, y)

	switch p.Pattern {
	case PatternWaves:
		level := 0.5 + 0.35*math.Sin(2*math.Pi*(fx*2-t*0.5))*beatA + 0.15*(beatB-0.5)
		return edge(level-fy)*0.85 + 0.15*n

	case PatternPulse:
		cx := fx - 0.5
		cy := (float64(y)/float64(height) - 0.5) * 0.5
		dist := math.Sqrt(cx*cx + cy*cy)
		ring := 0.5 + 0.5*math.Sin(dist*18-2*math.Pi*1.2*t)
		return ring*(0.4+0.6*beatA)*0.8 + 0.2*n

	case PatternBars:
		col := x / 2
		level := 0.2 + 0.3*(0.5+0.5*math.Sin(float64(col)*0.9+2*math.Pi*t)) +
			0.3*beatB*(0.5+0.5*math.Cos(float64(col)*0.37-t*3)) +
			0.2*noise(p.Seed, p.Frame/3, col, 0)
		if fy < level {
			return 0.55 + 0.45*fy/math.Max(level, 0.01)
		}
		return 0

	case PatternRain:
		// drops fall one row per frame, one column in three is active
		drop := noise(p.Seed, 0, x, y-int(p.Frame))
		if x%3 != 0 || drop < 0.82 {
			return 0.1 * beatA * n
		}
		return 0.5 + 0.5*beatB
	}

	return 0
}

func edge(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return clamp01(0.4 + v*2.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// noise is a splitmix64 hash of its inputs scaled to [0,1).
func noise(seed uint64, frame uint64, x, y int) float64 {
	z := seed ^ (frame * 0x9E3779B97F4A7C15) ^ (uint64(uint32(x)) << 32) ^ uint64(uint32(y))
	z += 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return float64(z>>11) / float64(1<<53)
}

// Animator holds the mutable state for one session. It is not safe for use
// from more than one goroutine.
type Animator struct {
	pattern     Pattern
	frame       uint64
	lastTimePos float64
	seed        uint64
	width       int
	height      int
}

func NewAnimator(seed uint64, width int, height int) *Animator {
	return &Animator{
		pattern:     Pattern(seed % uint64(patternCount)),
		seed:        seed,
		width:       width,
		height:      height,
		lastTimePos: -1,
	}
}

func (a *Animator) Pattern() Pattern { return a.pattern }
func (a *Animator) Frame() uint64    { return a.frame }

// SelectNext cycles to the next pattern and resets the counters.
func (a *Animator) SelectNext() Pattern {
	a.pattern = (a.pattern + 1) % patternCount
	a.frame = 0
	a.lastTimePos = -1
	return a.pattern
}

// Next renders the frame for timePos. The frame counter only advances while
// the position moves, so a paused player freezes the animation.
func (a *Animator) Next(timePos float64) []string {
	if timePos != a.lastTimePos {
		if a.lastTimePos >= 0 {
			a.frame++
		}
		a.lastTimePos = timePos
	}

	return Render(Params{
		TimePos: timePos,
		Frame:   a.frame,
		Pattern: a.pattern,
		Seed:    a.seed,
		Width:   a.width,
		Height:  a.height,
	})
}
