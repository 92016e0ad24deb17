package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/common-nighthawk/go-figure"

	"karolbroda.com/lyreplay/internal/artwork"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	bannerText    = "lyreplay"
	fadeTicks     = 6
)

type ContentKind int

const (
	ContentMessage ContentKind = iota
	ContentLyrics
	ContentAnimation
)

// Frame is one content block pushed by the render loop. For lyrics, Focus
// is the index in Lines of the active line, or -1.
type Frame struct {
	Title  string
	Lines  []string
	Focus  int
	Kind   ContentKind
	Status string
}

// FocusText returns the highlighted line, if any.
func (f Frame) FocusText() string {
	if f.Focus < 0 || f.Focus >= len(f.Lines) {
		return ""
	}
	return f.Lines[f.Focus]
}

type FrameMsg Frame

type PaletteMsg struct {
	Palette artwork.Palette
}

type Model struct {
	frame    Frame
	hasFrame bool
	palette  artwork.Palette
	banner   []string
	fade     transition
	width    int
	height   int
}

func NewModel() Model {
	return Model{
		palette: artwork.DefaultPalette(),
		banner:  figure.NewFigure(bannerText, "", false).Slicify(),
		fade:    newTransition(fadeTicks),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Frame() Frame             { return m.frame }
func (m Model) Palette() artwork.Palette { return m.palette }
func (m Model) Width() int               { return m.width }
func (m Model) Height() int              { return m.height }
func (m Model) FadeProgress() float64    { return m.fade.Value() }
