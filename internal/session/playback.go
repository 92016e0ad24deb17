package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"karolbroda.com/lyreplay/internal/artwork"
	"karolbroda.com/lyreplay/internal/colors"
	"karolbroda.com/lyreplay/internal/lyrics"
	"karolbroda.com/lyreplay/internal/terminal"
	"karolbroda.com/lyreplay/internal/track"
	"karolbroda.com/lyreplay/internal/ui"
	"karolbroda.com/lyreplay/internal/visual"
)

// maxDurationQueries is about one second of ticks.
const maxDurationQueries = 20

type lyricsStatus int

const (
	lyricsPending lyricsStatus = iota
	lyricsFound
	lyricsMissing
)

// session is the state of one queue item. Everything here is owned by the
// render loop goroutine; the prefetches hand results over through their
// done channels.
type session struct {
	runner *Runner
	item   track.Track
	next   *track.Track
	log    zerolog.Logger

	// prepared was fetched by the previous session for this item; nextFetch
	// is started by this one for the following item.
	prepared  *prefetch
	nextFetch *prefetch

	state         State
	handle        Handle
	duration      float64
	durationTries int

	current      *prefetch
	lyrics       lyricsStatus
	timeline     lyrics.Timeline
	lyricsSource string
	offset       float64

	animator *visual.Animator
}

func (s *session) run(ctx context.Context) Result {
	s.transition(StateStarting)
	s.draw(ui.Frame{
		Title: s.item.DisplayTitle(),
		Lines: []string{"starting playback"},
		Focus: -1,
		Kind:  ui.ContentMessage,
	})

	ref, err := s.item.SourceRef()
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrNoPlayableSource, err))
	}

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	handle, err := s.runner.player.Start(sessCtx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return s.end(StateStopped)
		}
		return s.fail(err)
	}
	s.handle = handle
	defer handle.Stop()

	s.animator = visual.NewAnimator(s.runner.sessionSeed(), visual.DefaultWidth, visual.DefaultHeight)
	s.transition(StatePlaying)

	s.bindLyrics(sessCtx)
	s.startNextFetch(ctx)
	s.loadPalette(sessCtx)

	return s.loop(ctx)
}

func (s *session) loop(ctx context.Context) Result {
	ticker := time.NewTicker(s.runner.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.end(StateStopped)
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return s.end(StateStopped)
		}

		if finished := s.tick(); finished {
			return s.end(StateFinished)
		}
	}
}

// tick runs one render step and reports whether the player has exited.
func (s *session) tick() bool {
	s.collectLyrics()

	pos := s.handle.TimePos()
	if s.wantsDuration(pos) {
		s.durationTries++
		s.duration = s.handle.Duration()
	}

	s.draw(s.frame(pos))

	if s.runner.input != nil && s.runner.input.Poll() == terminal.EventSwitchPattern {
		pattern := s.animator.SelectNext()
		s.log.Debug().Stringer("pattern", pattern).Msg("pattern switched")
	}

	return !s.handle.IsAlive()
}

// wantsDuration limits duration queries to ticks where the position query
// answered, and gives up on streams that never report one.
func (s *session) wantsDuration(pos float64) bool {
	return s.duration <= 0 && pos > 0 && s.durationTries < maxDurationQueries
}

func (s *session) frame(pos float64) ui.Frame {
	if s.lyrics == lyricsFound {
		return s.lyricFrame(pos + s.offset)
	}

	info := "no synced lyrics"
	if s.lyrics == lyricsPending {
		info = "fetching lyrics"
	}

	return ui.Frame{
		Title:  s.item.DisplayTitle(),
		Lines:  s.animator.Next(pos),
		Focus:  -1,
		Kind:   ui.ContentAnimation,
		Status: s.status(pos, info+" · "+s.animator.Pattern().String()),
	}
}

// lyricFrame shows the active line between its neighbours.
func (s *session) lyricFrame(pos float64) ui.Frame {
	text, _ := s.timeline.Locate(pos)
	idx := s.timeline.Index(pos)

	lines := make([]string, 0, 3)
	focus := 0
	if prev, ok := s.timeline.Line(idx - 1); ok {
		lines = append(lines, prev.Text)
		focus = 1
	}
	lines = append(lines, text)
	if next, ok := s.timeline.Line(idx + 1); ok {
		lines = append(lines, next.Text)
	}

	return ui.Frame{
		Title:  s.item.DisplayTitle(),
		Lines:  lines,
		Focus:  focus,
		Kind:   ui.ContentLyrics,
		Status: s.status(pos-s.offset, s.lyricsSource),
	}
}

func (s *session) status(pos float64, info string) string {
	duration := s.duration
	if duration <= 0 {
		duration = float64(s.item.DurationSecs)
	}

	line := colors.FormatTime(pos) + " / " + colors.FormatTime(duration)
	if info != "" {
		line += "  ·  " + info
	}
	return line
}

func (s *session) bindLyrics(ctx context.Context) {
	switch {
	case !s.item.HasKnownTitle():
		s.lyrics = lyricsMissing
		s.log.Info().Msg("no title to look lyrics up by, animating")
	case s.prepared.isFor(s.item):
		s.current = s.prepared
	case s.runner.fetcher != nil:
		s.current = startPrefetch(ctx, s.runner.fetcher, s.item)
	default:
		s.lyrics = lyricsMissing
	}
}

// startNextFetch prepares the following item's lyrics. It runs on the queue
// context so the result can outlive this session.
func (s *session) startNextFetch(ctx context.Context) {
	if s.next == nil || s.runner.fetcher == nil || !s.next.HasKnownTitle() {
		return
	}
	s.nextFetch = startPrefetch(ctx, s.runner.fetcher, *s.next)
	s.log.Debug().Str("next", s.next.Title).Msg("prefetching lyrics")
}

func (s *session) collectLyrics() {
	if s.lyrics != lyricsPending {
		return
	}

	outcome, done := s.current.poll()
	if !done {
		return
	}

	if !outcome.Found() {
		s.lyrics = lyricsMissing
		s.log.Info().Int("attempts", len(outcome.Attempts)).Msg("no synced lyrics, animating")
		return
	}

	s.timeline = outcome.Timeline
	s.lyricsSource = outcome.Source
	s.offset = s.runner.syncOffset + outcome.SyncOffset
	s.lyrics = lyricsFound
	s.log.Info().
		Str("source", outcome.Source).
		Bool("cached", outcome.Cached).
		Int("lines", outcome.Timeline.Len()).
		Msg("lyrics bound")
}

// loadPalette themes the panel from the thumbnail off the render loop. A
// palette that arrives after the session ended is dropped.
func (s *session) loadPalette(ctx context.Context) {
	if s.runner.surface == nil {
		return
	}
	s.runner.surface.SetPalette(artwork.DefaultPalette())

	url := s.item.ThumbnailURL
	if s.runner.palettes == nil || url == "" {
		return
	}

	go func() {
		palette, err := s.runner.palettes(ctx, url)
		if err != nil {
			s.log.Debug().Err(err).Msg("thumbnail palette unavailable")
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.runner.surface.SetPalette(palette)
	}()
}

func (s *session) draw(f ui.Frame) {
	if s.runner.surface != nil {
		s.runner.surface.Draw(f)
	}
}

func (s *session) transition(state State) {
	s.state = state
	s.log.Info().Stringer("state", state).Msg("session state")
}

func (s *session) fail(err error) Result {
	s.log.Error().Err(err).Msg("session setup failed")
	s.draw(ui.Frame{
		Title: s.item.DisplayTitle(),
		Lines: []string{"could not play this track", err.Error()},
		Focus: -1,
		Kind:  ui.ContentMessage,
	})

	result := s.end(StateFailed)
	result.Err = err
	return result
}

func (s *session) end(state State) Result {
	s.transition(state)
	return Result{
		Track:        s.item,
		State:        state,
		LyricsSource: s.lyricsSource,
	}
}
