package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"karolbroda.com/lyreplay/internal/artwork"
	"karolbroda.com/lyreplay/internal/cache"
	"karolbroda.com/lyreplay/internal/lyrics"
	"karolbroda.com/lyreplay/internal/mpris"
	"karolbroda.com/lyreplay/internal/player"
	"karolbroda.com/lyreplay/internal/queue"
	"karolbroda.com/lyreplay/internal/session"
	"karolbroda.com/lyreplay/internal/terminal"
	"karolbroda.com/lyreplay/internal/track"
	"karolbroda.com/lyreplay/internal/ui"
)

var (
	// flags for play
	queueFile   string
	trackTitle  string
	trackArtist string
	trackAlbum  string
	fromMpris   bool
)

var playCmd = &cobra.Command{
	Use:   "play [video-id|url|path...]",
	Short: "play tracks with synchronized lyrics",
	Long: `play one or more tracks through mpv, showing synced lyrics when available.

tracks come from positional arguments, a yaml queue file (--queue), or the
track currently playing in an mpris player (--from-mpris).`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVarP(&queueFile, "queue", "q", "", "yaml queue file")
	playCmd.Flags().StringVar(&trackTitle, "title", "", "title for a single track (used for lyric lookup)")
	playCmd.Flags().StringVar(&trackArtist, "artist", "", "artist for a single track")
	playCmd.Flags().StringVar(&trackAlbum, "album", "", "album for a single track")
	playCmd.Flags().BoolVar(&fromMpris, "from-mpris", false, "queue the track playing in the mpris player")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	log, closer := setupLogger(cfg)
	defer closer.Close()

	tracks, err := buildQueue(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	defer terminal.Reset()

	launcher := player.NewLauncher(player.LauncherConfig{
		Path:   cfg.MpvPath,
		Logger: log,
	})
	defer launcher.Stop()

	client := lyrics.NewHTTPClient()
	fetcher := lyrics.NewFetcher(lyrics.FetcherConfig{
		Sources:        lyrics.DefaultSources(cfg, client),
		Store:          cache.Open(),
		SkipCacheReads: cfg.NoCache,
		Logger:         log,
	})

	surface := ui.NewSurface(context.Background(), ui.SurfaceConfig{
		FPS:       cfg.FPS,
		AltScreen: true,
		Logger:    log,
	})
	surface.Start()
	defer surface.Close()

	var input session.InputSource
	listener := terminal.NewListener(os.Stdin, cfg.SwitchKey, log)
	if err := listener.Start(); err != nil {
		log.Warn().Err(err).Msg("keyboard input unavailable")
	} else {
		input = listener
	}
	defer listener.Stop()

	runner := session.NewRunner(session.Config{
		Player:     session.FromLauncher(launcher),
		Fetcher:    fetcher,
		Surface:    surface,
		Input:      input,
		Palettes:   paletteLoader(client),
		SyncOffset: cfg.SyncOffset,
		Logger:     log,
	})

	results := runner.Run(ctx, tracks)

	listener.Stop()
	_ = surface.Close()

	return summarize(results, log)
}

func buildQueue(args []string) ([]track.Track, error) {
	var tracks []track.Track

	if queueFile != "" {
		loaded, err := queue.Load(queueFile)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, loaded...)
	}

	if fromMpris {
		client, err := mpris.Connect(mprisService)
		if err != nil {
			return nil, err
		}
		defer client.Close()

		current, err := client.CurrentTrack()
		if err != nil {
			return nil, fmt.Errorf("failed to read track from %s: %w", client.Service(), err)
		}
		tracks = append(tracks, current)
	}

	if len(args) > 0 {
		fromArgs, err := queue.FromArgs(args, trackTitle, trackArtist, trackAlbum)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, fromArgs...)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: pass a video id, url, --queue or --from-mpris", queue.ErrEmptyQueue)
	}
	return tracks, nil
}

func paletteLoader(client *http.Client) session.PaletteLoader {
	return func(ctx context.Context, url string) (artwork.Palette, error) {
		img, err := artwork.Fetch(ctx, client, url)
		if err != nil {
			return artwork.Palette{}, err
		}
		return artwork.ExtractPalette(img), nil
	}
}

// summarize prints one line per item after the surface is gone. A run where
// nothing could be played is an error.
func summarize(results []session.Result, log zerolog.Logger) error {
	played := 0
	for _, r := range results {
		line := fmt.Sprintf("%-9s %s", r.State, r.Track.DisplayTitle())
		if r.Err != nil {
			line += ": " + r.Err.Error()
		}
		fmt.Println(line)

		if r.State == session.StateFinished || r.State == session.StateStopped {
			played++
		}
	}

	log.Info().Int("items", len(results)).Int("played", played).Msg("run summary")

	if len(results) > 0 && played == 0 {
		return errors.New("no track could be played")
	}
	return nil
}
