package main

import (
	"bytes"
	"strings"
	"testing"

	"karolbroda.com/lyreplay/internal/track"
)

func TestWriteTrack(t *testing.T) {
	var out bytes.Buffer
	writeTrack(&out, track.Track{ID: "abc123", Title: "Song", Artist: "Band", DurationSecs: 185})

	got := out.String()
	for _, want := range []string{"Song - Band", "03:05", "https://www.youtube.com/watch?v=abc123"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "album") {
		t.Errorf("empty album should be omitted:\n%s", got)
	}

	out.Reset()
	writeTrack(&out, track.Track{Title: "Song", Artist: "Band"})
	if !strings.Contains(out.String(), "cannot be replayed") {
		t.Errorf("missing source should be reported:\n%s", out.String())
	}
}
