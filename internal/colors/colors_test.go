package colors

import (
	"strings"
	"testing"
)

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"#FF8000", 255, 128, 0},
		{"00ff7f", 0, 255, 127},
		{"#123", 255, 255, 255},
		{"#GGGGGG", 255, 255, 255},
		{"", 255, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, g, b := HexToRGB(tt.in)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("HexToRGB(%q) = %d,%d,%d, want %d,%d,%d", tt.in, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestRGBToHexClamps(t *testing.T) {
	if got := RGBToHex(300, -5, 16); got != "#FF0010" {
		t.Errorf("got %s", got)
	}
}

func TestBlendColors(t *testing.T) {
	if got := BlendColors("#000000", "#FFFFFF", 0); got != "#000000" {
		t.Errorf("t=0: %s", got)
	}
	if got := BlendColors("#000000", "#FFFFFF", 1); got != "#FFFFFF" {
		t.Errorf("t=1: %s", got)
	}
	if got := BlendColors("#000000", "#FFFFFF", 2); got != "#FFFFFF" {
		t.Errorf("t clamps: %s", got)
	}
	if got := BlendColors("#000000", "#C8C8C8", 0.5); got != "#646464" {
		t.Errorf("t=0.5: %s", got)
	}
}

func TestGenerateGradientEndpoints(t *testing.T) {
	g := GenerateGradient("#8BA4E8", "#E8A4C8", 20)
	if len(g) != 20 {
		t.Fatalf("expected 20 steps, got %d", len(g))
	}
	if g[0] != "#8BA4E8" || g[19] != "#E8A4C8" {
		t.Errorf("gradient endpoints %s..%s", g[0], g[19])
	}

	if got := GenerateGradient("#000000", "#FFFFFF", 0); len(got) != 2 {
		t.Errorf("steps below 2 should be raised to 2, got %d", len(got))
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{5.9, "00:05"},
		{65, "01:05"},
		{3600, "60:00"},
		{-3, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderGradientTextKeepsRunes(t *testing.T) {
	out := RenderGradientText("héllo", []string{"#FF0000", "#0000FF"}, false)
	for _, r := range "héllo" {
		if !strings.ContainsRune(out, r) {
			t.Errorf("missing rune %q in %q", r, out)
		}
	}
	if RenderGradientText("", []string{"#FFFFFF"}, true) != "" {
		t.Error("empty text should render empty")
	}
	if RenderGradientText("plain", nil, false) != "plain" {
		t.Error("no gradient should leave text untouched")
	}
}
