package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// GenerateGradient interpolates between two hex colours. Strongly contrasting
// pairs are eased so the middle of the ramp does not turn muddy.
func GenerateGradient(startHex string, endHex string, steps int) []string {
	if steps < 2 {
		steps = 2
	}

	smooth := math.Abs(GetLightness(startHex)-GetLightness(endHex)) > 0.3

	gradient := make([]string, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		if smooth {
			t = smoothStep(t)
		}
		gradient[i] = BlendColors(startHex, endHex, t)
	}
	return gradient
}

func BlendColors(hex1 string, hex2 string, t float64) string {
	r1, g1, b1 := HexToRGB(hex1)
	r2, g2, b2 := HexToRGB(hex2)

	t = math.Max(0, math.Min(1, t))
	r := int(math.Round(float64(r1) + (float64(r2)-float64(r1))*t))
	g := int(math.Round(float64(g1) + (float64(g2)-float64(g1))*t))
	b := int(math.Round(float64(b1) + (float64(b2)-float64(b1))*t))

	return RGBToHex(r, g, b)
}

// GetLightness returns relative luma in [0,1].
func GetLightness(hex string) float64 {
	r, g, b := HexToRGB(hex)
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

func AdjustBrightness(hex string, factor float64) string {
	r, g, b := HexToRGB(hex)
	return RGBToHex(
		int(float64(r)*factor),
		int(float64(g)*factor),
		int(float64(b)*factor),
	)
}

func RGBToHex(r int, g int, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", clampInt(r, 0, 255), clampInt(g, 0, 255), clampInt(b, 0, 255))
}

// HexToRGB parses #RRGGBB or RRGGBB. Anything else yields white.
func HexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 255, 255, 255
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}

// RenderGradientText colours each rune of text along the gradient.
func RenderGradientText(text string, gradient []string, bold bool) string {
	if text == "" {
		return ""
	}
	if len(gradient) == 0 {
		return text
	}

	runes := []rune(text)
	var out strings.Builder
	for i, r := range runes {
		idx := 0
		if len(runes) > 1 {
			idx = i * (len(gradient) - 1) / (len(runes) - 1)
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradient[idx])).Bold(bold)
		out.WriteString(style.Render(string(r)))
	}
	return out.String()
}

// FormatTime renders seconds as mm:ss. Negative or NaN input renders as 00:00.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func smoothStep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func clampInt(val int, min int, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
