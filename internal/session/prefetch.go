package session

import (
	"context"

	"karolbroda.com/lyreplay/internal/lyrics"
	"karolbroda.com/lyreplay/internal/track"
)

// prefetch is a lyric fetch whose result belongs to exactly one session.
// The fetching goroutine writes outcome once and then closes done; readers
// only look at outcome after done is closed.
type prefetch struct {
	item    track.Track
	done    chan struct{}
	outcome lyrics.FetchOutcome
}

func startPrefetch(ctx context.Context, fetcher LyricsFetcher, item track.Track) *prefetch {
	p := &prefetch{
		item: item,
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		outcome := fetcher.Fetch(ctx, queryFor(item))
		if ctx.Err() != nil {
			// cancelled, whatever came back is discarded
			return
		}
		p.outcome = outcome
	}()

	return p
}

// isFor reports whether the fetch was started for item.
func (p *prefetch) isFor(item track.Track) bool {
	return p != nil && p.item.IsSameTrack(item)
}

// poll returns the outcome once the fetch has finished.
func (p *prefetch) poll() (lyrics.FetchOutcome, bool) {
	if p == nil {
		return lyrics.FetchOutcome{}, false
	}
	select {
	case <-p.done:
		return p.outcome, true
	default:
		return lyrics.FetchOutcome{}, false
	}
}
