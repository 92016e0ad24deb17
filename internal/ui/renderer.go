package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/lyreplay/internal/artwork"
	"karolbroda.com/lyreplay/internal/colors"
)

const bodyHeight = 9

type contentRenderer struct {
	palette artwork.Palette
	width   int
}

func newContentRenderer(palette artwork.Palette, width int) contentRenderer {
	return contentRenderer{palette: palette, width: width}
}

func (r contentRenderer) render(f Frame, fade float64) []string {
	var rows []string
	switch f.Kind {
	case ContentLyrics:
		rows = r.lyrics(f, fade)
	case ContentAnimation:
		rows = r.animation(f.Lines)
	default:
		rows = r.message(f.Lines)
	}
	return r.fit(rows)
}

// lyrics highlights the focus line and dims its neighbours. The highlight
// fades in from the dim colour after a line change.
func (r contentRenderer) lyrics(f Frame, fade float64) []string {
	focusColor := colors.BlendColors(r.palette.Dim, r.palette.Primary, clamp(fade, 0, 1))
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(focusColor)).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(r.palette.Dim))

	rows := make([]string, 0, len(f.Lines)*2)
	for i, line := range f.Lines {
		text := truncate(line, r.width)
		if i == f.Focus {
			rows = append(rows, r.center(focusStyle.Render(text)))
		} else {
			rows = append(rows, r.center(contextStyle.Render(text)))
		}
		if i < len(f.Lines)-1 {
			rows = append(rows, "")
		}
	}
	return rows
}

// animation colours each grid row along the palette gradient.
func (r contentRenderer) animation(grid []string) []string {
	rows := make([]string, len(grid))
	gradient := r.palette.Gradient
	for y, row := range grid {
		color := r.palette.Primary
		if len(gradient) > 0 {
			idx := 0
			if len(grid) > 1 {
				idx = y * (len(gradient) - 1) / (len(grid) - 1)
			}
			color = gradient[idx]
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		rows[y] = r.center(style.Render(truncate(row, r.width)))
	}
	return rows
}

func (r contentRenderer) message(lines []string) []string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(r.palette.Secondary)).Italic(true)
	rows := make([]string, len(lines))
	for i, line := range lines {
		rows[i] = r.center(style.Render(truncate(line, r.width)))
	}
	return rows
}

// fit pads or trims rows to bodyHeight, keeping the content vertically
// centred so the panel does not jump between modes.
func (r contentRenderer) fit(rows []string) []string {
	if len(rows) > bodyHeight {
		rows = rows[:bodyHeight]
	}

	out := make([]string, 0, bodyHeight)
	top := (bodyHeight - len(rows)) / 2
	for i := 0; i < top; i++ {
		out = append(out, "")
	}
	out = append(out, rows...)
	for len(out) < bodyHeight {
		out = append(out, "")
	}
	return out
}

func (r contentRenderer) center(s string) string {
	return lipgloss.PlaceHorizontal(r.width, lipgloss.Center, s)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return strings.TrimRight(string(runes[:width-1]), " ") + "…"
}
