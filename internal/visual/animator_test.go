package visual

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

func TestRenderIsPure(t *testing.T) {
	for _, pattern := range Patterns() {
		t.Run(pattern.String(), func(t *testing.T) {
			p := Params{TimePos: 12.34, Frame: 77, Pattern: pattern, Seed: 42, Width: 40, Height: 8}
			first := Render(p)
			second := Render(p)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("identical params produced different grids")
			}
		})
	}
}

func TestRenderDimensions(t *testing.T) {
	rows := Render(Params{TimePos: 1, Pattern: PatternBars, Width: 30, Height: 5})
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if n := utf8.RuneCountInString(row); n != 30 {
			t.Errorf("row %d has %d cells, want 30", i, n)
		}
	}

	defaults := Render(Params{})
	if len(defaults) != DefaultHeight || utf8.RuneCountInString(defaults[0]) != DefaultWidth {
		t.Errorf("zero size should fall back to defaults")
	}
}

func TestRenderVariesWithTime(t *testing.T) {
	for _, pattern := range Patterns() {
		a := Render(Params{TimePos: 1.0, Frame: 1, Pattern: pattern, Seed: 7})
		b := Render(Params{TimePos: 2.3, Frame: 27, Pattern: pattern, Seed: 7})
		if reflect.DeepEqual(a, b) {
			t.Errorf("%s: frames at different times should differ", pattern)
		}
	}
}

func TestGlyphRamp(t *testing.T) {
	if glyph(-1) != ' ' || glyph(0) != ' ' {
		t.Error("low intensity should be blank")
	}
	if glyph(1) != '@' || glyph(5) != '@' {
		t.Error("full intensity should be the densest glyph")
	}
}

func TestNoiseRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		n := noise(uint64(i), uint64(i*3), i, -i)
		if n < 0 || n >= 1 {
			t.Fatalf("noise out of range: %v", n)
		}
	}
}

func TestSelectNextCyclesAndResets(t *testing.T) {
	a := NewAnimator(0, 20, 4)
	if a.Pattern() != PatternWaves {
		t.Fatalf("seed 0 should start on waves, got %s", a.Pattern())
	}

	a.Next(1.0)
	a.Next(1.1)
	a.Next(1.2)
	if a.Frame() != 2 {
		t.Fatalf("expected frame 2, got %d", a.Frame())
	}

	seen := []Pattern{a.SelectNext(), a.SelectNext(), a.SelectNext(), a.SelectNext()}
	want := []Pattern{PatternPulse, PatternBars, PatternRain, PatternWaves}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("cycle = %v, want %v", seen, want)
	}
	if a.Frame() != 0 {
		t.Errorf("SelectNext should reset the frame counter, got %d", a.Frame())
	}
}

func TestNextFreezesWhilePaused(t *testing.T) {
	a := NewAnimator(3, 20, 4)
	first := a.Next(5.0)
	second := a.Next(5.0)
	if a.Frame() != 0 {
		t.Errorf("frame should not advance while position is unchanged, got %d", a.Frame())
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("paused frames should be identical")
	}

	a.Next(5.05)
	if a.Frame() != 1 {
		t.Errorf("frame should advance when position moves, got %d", a.Frame())
	}
}

func TestPatternString(t *testing.T) {
	if Pattern(99).String() != "unknown" {
		t.Error("out of range pattern should be unknown")
	}
	if PatternRain.String() != "rain" {
		t.Errorf("unexpected name %q", PatternRain.String())
	}
}
