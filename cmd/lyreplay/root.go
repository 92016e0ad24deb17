package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"karolbroda.com/lyreplay/internal/config"
	"karolbroda.com/lyreplay/internal/logging"
	"karolbroda.com/lyreplay/internal/mpris"
)

var (
	// global flags
	syncOffset      float64
	noCache         bool
	logLevel        string
	debug           bool
	mpvPath         string
	lyricsURL       string
	lrclibURL       string
	lrclibSearchURL string
	fps             int
	mprisService    string
)

var rootCmd = &cobra.Command{
	Use:   "lyreplay",
	Short: "play tracks through mpv with synchronized lyrics in the terminal",
	Long: `lyreplay plays tracks through mpv and shows their synced lyrics in a terminal panel.
tracks without synced lyrics get a procedural visualisation instead.

press 'v' during playback to switch the visualisation pattern.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Float64VarP(&syncOffset, "sync-offset", "s", 0, "seconds added to the player position before lyric lookup")
	flags.BoolVar(&noCache, "no-cache", false, "disable cache reads (always fetch fresh)")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.BoolVar(&debug, "debug", false, "shortcut for --log-level debug")
	flags.StringVar(&mpvPath, "mpv-path", "", "path to the mpv binary")
	flags.StringVar(&lyricsURL, "lyrics-url", "", "primary lyrics api url")
	flags.StringVar(&lrclibURL, "lrclib-url", "", "lrclib exact-match api url")
	flags.StringVar(&lrclibSearchURL, "lrclib-search-url", "", "lrclib search api url")
	flags.IntVar(&fps, "fps", 0, "draw surface frame rate")
	flags.StringVarP(&mprisService, "mpris-service", "m", mpris.DefaultService, "mpris service name (e.g., org.mpris.MediaPlayer2.spotify)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, then lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()

	if mpvPath != "" {
		cfg.MpvPath = mpvPath
	}
	if lyricsURL != "" {
		cfg.LyricsURL = lyricsURL
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if lrclibSearchURL != "" {
		cfg.LrclibSearchURL = lrclibSearchURL
	}
	if fps > 0 {
		cfg.FPS = fps
	}
	if cmd.Flags().Changed("sync-offset") {
		cfg.SyncOffset = syncOffset
	}
	if cmd.Flags().Changed("no-cache") {
		cfg.NoCache = noCache
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

func setupLogger(cfg *config.Config) (zerolog.Logger, io.Closer) {
	return logging.New(cfg.LogLevel)
}
