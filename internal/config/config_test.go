package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"LYREPLAY_MPV_PATH", "LYREPLAY_LYRICS_URL", "LYREPLAY_LRCLIB_URL", "LYREPLAY_LRCLIB_SEARCH_URL",
		"LYREPLAY_FPS", "LYREPLAY_SWITCH_KEY", "LYREPLAY_SYNC_OFFSET", "LYREPLAY_NO_CACHE", "LYREPLAY_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.MpvPath != DefaultMpvPath {
		t.Errorf("MpvPath = %q, want %q", cfg.MpvPath, DefaultMpvPath)
	}
	if cfg.LyricsURL != DefaultLyricsURL {
		t.Errorf("LyricsURL = %q, want %q", cfg.LyricsURL, DefaultLyricsURL)
	}
	if cfg.FPS != DefaultFPS {
		t.Errorf("FPS = %d, want %d", cfg.FPS, DefaultFPS)
	}
	if cfg.SwitchKey != DefaultSwitchKey {
		t.Errorf("SwitchKey = %q, want %q", cfg.SwitchKey, DefaultSwitchKey)
	}
	if cfg.NoCache {
		t.Error("NoCache should default to false")
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "sync offset",
			env:  map[string]string{"LYREPLAY_SYNC_OFFSET": "-0.75"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.SyncOffset != -0.75 {
					t.Errorf("SyncOffset = %v, want -0.75", cfg.SyncOffset)
				}
			},
		},
		{
			name: "invalid fps falls back",
			env:  map[string]string{"LYREPLAY_FPS": "fast"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.FPS != DefaultFPS {
					t.Errorf("FPS = %d, want %d", cfg.FPS, DefaultFPS)
				}
			},
		},
		{
			name: "switch key",
			env:  map[string]string{"LYREPLAY_SWITCH_KEY": "p"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.SwitchKey != 'p' {
					t.Errorf("SwitchKey = %q, want 'p'", cfg.SwitchKey)
				}
			},
		},
		{
			name: "multi char switch key ignored",
			env:  map[string]string{"LYREPLAY_SWITCH_KEY": "ctrl+p"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.SwitchKey != DefaultSwitchKey {
					t.Errorf("SwitchKey = %q, want default", cfg.SwitchKey)
				}
			},
		},
		{
			name: "no cache",
			env:  map[string]string{"LYREPLAY_NO_CACHE": "yes"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.NoCache {
					t.Error("NoCache should be true")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			tc.check(t, Load())
		})
	}
}
