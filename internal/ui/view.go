package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/lyreplay/internal/colors"
)

const (
	minPanelWidth = 20
	maxPanelWidth = 72
)

func (m Model) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}

	if !m.hasFrame {
		return m.renderBanner(width, height)
	}
	return m.renderPanel(width, height)
}

func (m Model) renderBanner(width int, height int) string {
	gradient := m.palette.Gradient
	rows := make([]string, 0, len(m.banner)+2)

	for i, line := range m.banner {
		color := m.palette.Primary
		if len(gradient) > 0 && len(m.banner) > 1 {
			color = gradient[i*(len(gradient)-1)/(len(m.banner)-1)]
		}
		rows = append(rows, lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(line))
	}

	rows = append(rows, "", lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Dim)).
		Italic(true).
		Render("starting playback"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (m Model) renderPanel(width int, height int) string {
	inner := panelInnerWidth(width)
	renderer := newContentRenderer(m.palette, inner)

	title := colors.RenderGradientText(truncate(m.frame.Title, inner), m.palette.Gradient, true)

	rows := []string{renderer.center(title), ""}
	rows = append(rows, renderer.render(m.frame, m.fade.Value())...)
	rows = append(rows, "", renderer.center(m.renderStatus(inner)))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.palette.Accent)).
		Padding(1, 2).
		Render(strings.Join(rows, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}

func (m Model) renderStatus(width int) string {
	if m.frame.Status == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Dim)).
		Render(truncate(m.frame.Status, width))
}

func panelInnerWidth(screenWidth int) int {
	w := screenWidth - 8
	if w > maxPanelWidth {
		w = maxPanelWidth
	}
	if w < minPanelWidth {
		w = minPanelWidth
	}
	return w
}
