package track

import (
	"errors"
	"fmt"
	"strings"
)

const (
	UnknownTitle  = "Unknown"
	UnknownArtist = "Unknown"

	watchURLFormat     = "https://www.youtube.com/watch?v=%s"
	thumbnailURLFormat = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

var ErrNoSource = errors.New("track has no playable source")

// Track is the opaque record handed over by the catalog lookup.
type Track struct {
	ID           string
	Title        string
	Artist       string
	Album        string
	URL          string
	DurationSecs int64
	ThumbnailURL string
}

// SearchResult mirrors a catalog search hit. Artists and Album are optional.
type SearchResult struct {
	VideoID  string   `yaml:"video_id" json:"videoId"`
	Title    string   `yaml:"title" json:"title"`
	Artists  []Artist `yaml:"artists" json:"artists"`
	Album    *Album   `yaml:"album" json:"album"`
	URL      string   `yaml:"url" json:"url"`
	Duration int64    `yaml:"duration" json:"duration_seconds"`
}

type Artist struct {
	Name string `yaml:"name" json:"name"`
}

type Album struct {
	Name string `yaml:"name" json:"name"`
}

// ToTrack converts a search hit, filling documented defaults: missing title
// or artist become "Unknown", missing album becomes empty.
func (r SearchResult) ToTrack() Track {
	t := Track{
		ID:           strings.TrimSpace(r.VideoID),
		Title:        strings.TrimSpace(r.Title),
		URL:          strings.TrimSpace(r.URL),
		DurationSecs: r.Duration,
	}

	if len(r.Artists) > 0 {
		t.Artist = strings.TrimSpace(r.Artists[0].Name)
	}
	if r.Album != nil {
		t.Album = strings.TrimSpace(r.Album.Name)
	}

	return t.WithDefaults()
}

func (t Track) WithDefaults() Track {
	if t.Title == "" {
		t.Title = UnknownTitle
	}
	if t.Artist == "" {
		t.Artist = UnknownArtist
	}
	if t.ThumbnailURL == "" && t.ID != "" {
		t.ThumbnailURL = fmt.Sprintf(thumbnailURLFormat, t.ID)
	}
	return t
}

// SourceRef returns what the media player should open. An explicit URL wins
// over the identifier.
func (t Track) SourceRef() (string, error) {
	if t.URL != "" {
		return t.URL, nil
	}
	if t.ID != "" {
		return fmt.Sprintf(watchURLFormat, t.ID), nil
	}
	return "", ErrNoSource
}

// DisplayTitle is the panel title, "title - artist".
func (t Track) DisplayTitle() string {
	return t.Title + " - " + t.Artist
}

// HasKnownTitle reports whether the title came from metadata rather than
// the placeholder. Lyric lookups need one.
func (t Track) HasKnownTitle() bool {
	return t.Title != "" && t.Title != UnknownTitle
}

// HasKnownArtist reports whether lyric lookups have an artist to match on.
func (t Track) HasKnownArtist() bool {
	return t.Artist != "" && t.Artist != UnknownArtist
}

// IsSameTrack compares identifiers when both sides have one, otherwise the
// title and artist.
func (t Track) IsSameTrack(other Track) bool {
	if t.ID != "" && other.ID != "" {
		return t.ID == other.ID
	}
	return t.Title == other.Title && t.Artist == other.Artist
}
