package ui

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"karolbroda.com/lyreplay/internal/artwork"
	"karolbroda.com/lyreplay/internal/config"
)

type SurfaceConfig struct {
	FPS       int
	Output    io.Writer
	AltScreen bool
	Logger    zerolog.Logger
}

// Surface is the draw surface the render loop pushes frames to. It owns a
// bubbletea program with keyboard input disabled; keys are read by the
// terminal listener instead.
type Surface struct {
	program *tea.Program
	log     zerolog.Logger

	started   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	err       error
}

func NewSurface(ctx context.Context, cfg SurfaceConfig) *Surface {
	fps := cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}

	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
		tea.WithFPS(fps),
	}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	return &Surface{
		program: tea.NewProgram(NewModel(), opts...),
		log:     cfg.Logger,
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background. Calling it twice is a no-op.
func (s *Surface) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(s.done)
		_, err := s.program.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			s.err = err
			s.log.Error().Err(err).Msg("draw surface stopped")
		}
	}()
}

// Draw replaces the displayed content. Frames sent after Close are dropped.
func (s *Surface) Draw(f Frame) {
	if !s.started.Load() {
		return
	}
	s.program.Send(FrameMsg(f))
}

func (s *Surface) SetPalette(p artwork.Palette) {
	if !s.started.Load() {
		return
	}
	s.program.Send(PaletteMsg{Palette: p})
}

// Close stops the program and waits for the terminal to be restored.
// Idempotent.
func (s *Surface) Close() error {
	if !s.started.Load() {
		return nil
	}
	s.closeOnce.Do(func() {
		s.program.Quit()
		<-s.done
	})
	return s.err
}
