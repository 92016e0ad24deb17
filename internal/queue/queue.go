// Package queue builds the ordered list of tracks a run will play, either
// from command line arguments or from a YAML queue file.
package queue

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"karolbroda.com/lyreplay/internal/track"
)

var ErrEmptyQueue = errors.New("queue is empty")

type File struct {
	Tracks []track.SearchResult `yaml:"tracks"`
}

// Load reads a queue file. Entries with neither an id nor a url are kept so
// the run can report them as failed items rather than silently dropping them.
func Load(path string) ([]track.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]track.Track, error) {
	var file File
	err := yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode queue yaml: %w", err)
	}

	if len(file.Tracks) == 0 {
		return nil, ErrEmptyQueue
	}

	return lo.Map(file.Tracks, func(r track.SearchResult, _ int) track.Track {
		return r.ToTrack()
	}), nil
}

// FromArgs turns positional arguments into tracks. Anything that looks like
// a url or a path is played as is, everything else is treated as a video id.
func FromArgs(args []string, title string, artist string, album string) ([]track.Track, error) {
	refs := lo.Filter(args, func(a string, _ int) bool {
		return strings.TrimSpace(a) != ""
	})
	if len(refs) == 0 {
		return nil, ErrEmptyQueue
	}

	tracks := make([]track.Track, 0, len(refs))
	for i, ref := range refs {
		ref = strings.TrimSpace(ref)
		t := track.Track{}
		if looksLikeLocation(ref) {
			t.URL = ref
		} else {
			t.ID = ref
		}

		// metadata flags only describe a single explicit track
		if i == 0 && len(refs) == 1 {
			t.Title = title
			t.Artist = artist
			t.Album = album
		}

		tracks = append(tracks, t.WithDefaults())
	}

	return tracks, nil
}

func looksLikeLocation(ref string) bool {
	return strings.Contains(ref, "://") ||
		strings.HasPrefix(ref, "/") ||
		strings.HasPrefix(ref, "./") ||
		strings.HasPrefix(ref, "~")
}
