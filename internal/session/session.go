// Package session runs playback sessions: one per queued track, each binding
// a player handle, a lyric timeline or an animator, and the prefetch of the
// next track's lyrics.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"karolbroda.com/lyreplay/internal/artwork"
	"karolbroda.com/lyreplay/internal/config"
	"karolbroda.com/lyreplay/internal/lyrics"
	"karolbroda.com/lyreplay/internal/player"
	"karolbroda.com/lyreplay/internal/terminal"
	"karolbroda.com/lyreplay/internal/track"
	"karolbroda.com/lyreplay/internal/ui"
)

var ErrNoPlayableSource = errors.New("no playable source")

type State int

const (
	StateStarting State = iota
	StatePlaying
	StateFinished
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle is a live player instance.
type Handle interface {
	TimePos() float64
	Duration() float64
	IsAlive() bool
	Stop()
}

// Player starts playback. Starting stops whatever the player was playing.
type Player interface {
	Start(ctx context.Context, sourceRef string) (Handle, error)
}

type LyricsFetcher interface {
	Fetch(ctx context.Context, q lyrics.Query) lyrics.FetchOutcome
}

type Surface interface {
	Draw(f ui.Frame)
	SetPalette(p artwork.Palette)
}

type InputSource interface {
	Poll() terminal.Event
}

// PaletteLoader derives a panel palette from a thumbnail URL.
type PaletteLoader func(ctx context.Context, url string) (artwork.Palette, error)

type launcherPlayer struct {
	launcher *player.Launcher
}

// FromLauncher adapts an mpv launcher to Player.
func FromLauncher(l *player.Launcher) Player {
	return launcherPlayer{launcher: l}
}

func (p launcherPlayer) Start(ctx context.Context, sourceRef string) (Handle, error) {
	h, err := p.launcher.Start(ctx, sourceRef)
	if err != nil {
		return nil, err
	}
	return h, nil
}

type Config struct {
	Player   Player
	Fetcher  LyricsFetcher
	Surface  Surface
	Input    InputSource
	Palettes PaletteLoader

	TickInterval time.Duration
	SyncOffset   float64
	// Seed fixes the animator seed; zero picks one per session.
	Seed   uint64
	Logger zerolog.Logger
}

// Result is the terminal state of one queue item.
type Result struct {
	Track        track.Track
	State        State
	Err          error
	LyricsSource string
}

type Runner struct {
	player   Player
	fetcher  LyricsFetcher
	surface  Surface
	input    InputSource
	palettes PaletteLoader

	tick       time.Duration
	syncOffset float64
	seed       uint64
	log        zerolog.Logger
}

func NewRunner(cfg Config) *Runner {
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = config.TickInterval
	}

	return &Runner{
		player:     cfg.Player,
		fetcher:    cfg.Fetcher,
		surface:    cfg.Surface,
		input:      cfg.Input,
		palettes:   cfg.Palettes,
		tick:       tick,
		syncOffset: cfg.SyncOffset,
		seed:       cfg.Seed,
		log:        cfg.Logger,
	}
}

// Run plays tracks in order. A failed item is skipped; cancellation stops the
// current item and leaves the rest unplayed. One Result is returned per item
// that was started.
func (r *Runner) Run(ctx context.Context, tracks []track.Track) []Result {
	log := r.log.With().Str("run", uuid.NewString()).Logger()
	log.Info().Int("tracks", len(tracks)).Msg("queue started")

	results := make([]Result, 0, len(tracks))
	var prepared *prefetch

	for i, item := range tracks {
		if ctx.Err() != nil {
			break
		}

		var next *track.Track
		if i+1 < len(tracks) {
			next = &tracks[i+1]
		}

		s := &session{
			runner:   r,
			item:     item,
			next:     next,
			prepared: prepared,
			log:      log.With().Int("item", i).Str("title", item.Title).Logger(),
		}

		result := s.run(ctx)
		results = append(results, result)
		prepared = s.nextFetch

		if result.State == StateStopped {
			break
		}
	}

	log.Info().Int("played", len(results)).Msg("queue ended")
	return results
}

// queryFor leaves the artist out when only the placeholder is known.
func queryFor(t track.Track) lyrics.Query {
	q := lyrics.Query{
		Title:        t.Title,
		Album:        t.Album,
		DurationSecs: t.DurationSecs,
	}
	if t.HasKnownArtist() {
		q.Artist = t.Artist
	}
	return q
}

func (r *Runner) sessionSeed() uint64 {
	if r.seed != 0 {
		return r.seed
	}
	return uint64(time.Now().UnixNano())
}
