package mpris

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"

	"karolbroda.com/lyreplay/internal/track"
)

func TestTrackFromMetadata(t *testing.T) {
	metadata := map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("Everlong"),
		"xesam:artist": dbus.MakeVariant([]string{"Foo Fighters", "Other"}),
		"xesam:album":  dbus.MakeVariant(" The Colour and the Shape "),
		"xesam:url":    dbus.MakeVariant("https://example.com/everlong"),
		"mpris:artUrl": dbus.MakeVariant("https://example.com/art.jpg"),
		"mpris:length": dbus.MakeVariant(int64(250_500_000)),
	}

	got, err := TrackFromMetadata(metadata)
	if err != nil {
		t.Fatalf("TrackFromMetadata failed: %v", err)
	}

	want := track.Track{
		Title:        "Everlong",
		Artist:       "Foo Fighters",
		Album:        "The Colour and the Shape",
		URL:          "https://example.com/everlong",
		ThumbnailURL: "https://example.com/art.jpg",
		DurationSecs: 250,
	}
	if got != want {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestTrackFromMetadataDefaults(t *testing.T) {
	got, err := TrackFromMetadata(map[string]dbus.Variant{
		"xesam:title": dbus.MakeVariant("Untitled Demo"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Artist != track.UnknownArtist {
		t.Errorf("expected default artist, got %q", got.Artist)
	}
}

func TestTrackFromMetadataMissingTitle(t *testing.T) {
	_, err := TrackFromMetadata(map[string]dbus.Variant{
		"xesam:artist": dbus.MakeVariant("Someone"),
	})
	if !errors.Is(err, ErrNoMetadata) {
		t.Errorf("expected ErrNoMetadata, got %v", err)
	}
}

func TestExtractArtist(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"list", []string{"A", "B"}, "A"},
		{"empty list", []string{}, ""},
		{"plain string", "Solo", "Solo"},
		{"wrong type", int32(5), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata := map[string]dbus.Variant{"xesam:artist": dbus.MakeVariant(tt.value)}
			if got := extractArtist(metadata, "xesam:artist"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if got := extractArtist(nil, "xesam:artist"); got != "" {
		t.Errorf("nil metadata should give empty artist, got %q", got)
	}
}

func TestExtractDurationSeconds(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
	}{
		{"signed", int64(3_000_000), 3},
		{"unsigned", uint64(61_000_000), 61},
		{"negative", int64(-5), 0},
		{"wrong type", "10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata := map[string]dbus.Variant{"mpris:length": dbus.MakeVariant(tt.value)}
			if got := extractDurationSeconds(metadata, "mpris:length"); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewClientRejectsNilBus(t *testing.T) {
	if _, err := NewClient(nil, ""); err == nil {
		t.Error("expected error for nil bus")
	}
}
