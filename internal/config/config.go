package config

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultMpvPath         = "mpv"
	DefaultLyricsURL       = "https://api.lyrics.boidu.dev/lyrics"
	DefaultLrclibGetURL    = "https://lrclib.net/api/get"
	DefaultLrclibSearchURL = "https://lrclib.net/api/search"
	DefaultFPS             = 20
	DefaultSwitchKey       = 'v'
	DefaultLogLevel        = "info"

	HTTPTimeoutSeconds = 10

	// render loop cadence, 20 ticks per second
	TickInterval = 50 * time.Millisecond

	EndpointWaitTimeout  = 3 * time.Second
	EndpointPollInterval = 50 * time.Millisecond
	QueryTimeout         = 500 * time.Millisecond
	InputPollTimeout     = 100 * time.Millisecond
)

type Config struct {
	MpvPath         string
	LyricsURL       string
	LrclibURL       string
	LrclibSearchURL string
	FPS             int
	SwitchKey       byte
	SyncOffset      float64
	NoCache         bool
	LogLevel        string
}

func Load() *Config {
	syncOffset, err := strconv.ParseFloat(getEnvOrDefault("LYREPLAY_SYNC_OFFSET", "0"), 64)
	if err != nil {
		syncOffset = 0
	}

	fps, err := strconv.Atoi(getEnvOrDefault("LYREPLAY_FPS", strconv.Itoa(DefaultFPS)))
	if err != nil || fps <= 0 {
		fps = DefaultFPS
	}

	switchKey := byte(DefaultSwitchKey)
	if key := os.Getenv("LYREPLAY_SWITCH_KEY"); len(key) == 1 {
		switchKey = key[0]
	}

	return &Config{
		MpvPath:         getEnvOrDefault("LYREPLAY_MPV_PATH", DefaultMpvPath),
		LyricsURL:       getEnvOrDefault("LYREPLAY_LYRICS_URL", DefaultLyricsURL),
		LrclibURL:       getEnvOrDefault("LYREPLAY_LRCLIB_URL", DefaultLrclibGetURL),
		LrclibSearchURL: getEnvOrDefault("LYREPLAY_LRCLIB_SEARCH_URL", DefaultLrclibSearchURL),
		FPS:             fps,
		SwitchKey:       switchKey,
		SyncOffset:      syncOffset,
		NoCache:         parseBool(os.Getenv("LYREPLAY_NO_CACHE")),
		LogLevel:        getEnvOrDefault("LYREPLAY_LOG_LEVEL", DefaultLogLevel),
	}
}

func parseBool(s string) bool {
	return s == "1" || s == "true" || s == "yes"
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
