package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case FrameMsg:
		return m.handleFrame(Frame(msg))

	case PaletteMsg:
		if len(msg.Palette.Gradient) > 0 {
			m.palette = msg.Palette
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleFrame(next Frame) (tea.Model, tea.Cmd) {
	lineChanged := next.Kind == ContentLyrics &&
		(m.frame.Kind != ContentLyrics || next.FocusText() != m.frame.FocusText())

	if lineChanged {
		m.fade.Start()
	} else {
		m.fade.Advance()
	}

	m.frame = next
	m.hasFrame = true
	return m, nil
}
