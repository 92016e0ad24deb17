package mpris

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"

	"karolbroda.com/lyreplay/internal/track"
)

const (
	DefaultService = "org.mpris.MediaPlayer2.spotify"

	servicePrefix    = "org.mpris.MediaPlayer2."
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
)

var ErrNoMetadata = errors.New("player reported no track metadata")

// Client reads track metadata from a running MPRIS player so it can be
// replayed through mpv.
type Client struct {
	bus     *dbus.Conn
	service string
	owned   bool
}

func NewClient(bus *dbus.Conn, service string) (*Client, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if service == "" {
		service = DefaultService
	}
	return &Client{bus: bus, service: service}, nil
}

// Connect opens the session bus. The connection is closed by Close.
func Connect(service string) (*Client, error) {
	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	c, err := NewClient(bus, service)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	c.owned = true
	return c, nil
}

func (c *Client) Close() error {
	if c == nil || !c.owned {
		return nil
	}
	return c.bus.Close()
}

func (c *Client) Service() string {
	return c.service
}

// Players lists the MPRIS services currently on the bus, sorted.
func (c *Client) Players() ([]string, error) {
	var names []string
	err := c.bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return nil, fmt.Errorf("failed to list bus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, servicePrefix) {
			players = append(players, name)
		}
	}
	sort.Strings(players)
	return players, nil
}

// CurrentTrack returns the track the player is on now.
func (c *Client) CurrentTrack() (track.Track, error) {
	obj := c.bus.Object(c.service, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return track.Track{}, fmt.Errorf("failed to get metadata property: %w", err)
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return track.Track{}, fmt.Errorf("unexpected metadata type %T", prop.Value())
	}

	return TrackFromMetadata(metadata)
}

// TrackFromMetadata maps xesam/mpris metadata onto a Track. A map without a
// title is rejected.
func TrackFromMetadata(metadata map[string]dbus.Variant) (track.Track, error) {
	t := track.Track{
		Title:        extractString(metadata, "xesam:title"),
		Artist:       extractArtist(metadata, "xesam:artist"),
		Album:        extractString(metadata, "xesam:album"),
		URL:          extractString(metadata, "xesam:url"),
		ThumbnailURL: extractString(metadata, "mpris:artUrl"),
		DurationSecs: extractDurationSeconds(metadata, "mpris:length"),
	}

	if t.Title == "" {
		return track.Track{}, ErrNoMetadata
	}

	return t.WithDefaults(), nil
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	text, ok := variant.Value().(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case []string:
		if len(typed) > 0 {
			return strings.TrimSpace(typed[0])
		}
		return ""
	case string:
		return strings.TrimSpace(typed)
	default:
		return ""
	}
}

// mpris:length is in microseconds and players disagree on signedness.
func extractDurationSeconds(metadata map[string]dbus.Variant, key string) int64 {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}

	switch typed := variant.Value().(type) {
	case int64:
		if typed <= 0 {
			return 0
		}
		return typed / 1_000_000
	case uint64:
		return int64(typed / 1_000_000)
	default:
		return 0
	}
}
