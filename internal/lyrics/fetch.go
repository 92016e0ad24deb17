package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"karolbroda.com/lyreplay/internal/cache"
	"karolbroda.com/lyreplay/internal/config"
	"karolbroda.com/lyreplay/internal/track"
)

const userAgent = "lyreplay/1.0"

var (
	ErrNotFound     = errors.New("lyrics not found")
	ErrNoSyncedBody = errors.New("response has no synced lyrics")
)

type LrclibResponse struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

type Query struct {
	Title        string
	Artist       string
	Album        string
	DurationSecs int64
}

// withoutPlaceholders blanks the default title and artist a track gets when
// it has no metadata, so they never reach a provider or a cache key.
func (q Query) withoutPlaceholders() Query {
	if normalizeString(q.Title) == track.UnknownTitle {
		q.Title = ""
	}
	if normalizeString(q.Artist) == track.UnknownArtist {
		q.Artist = ""
	}
	return q
}

func (q Query) cacheable() bool {
	return normalizeString(q.Title) != "" && normalizeString(q.Artist) != ""
}

// Source is one remote lyric provider. Lookup returns the raw synced body.
type Source interface {
	Name() string
	Lookup(ctx context.Context, q Query) (string, error)
}

// Store is the subset of the disk cache the fetcher needs.
type Store interface {
	Get(artist, title string) (*cache.LyricEntry, error)
	Set(artist, title string, entry *cache.LyricEntry) error
}

type Attempt struct {
	Source string
	Err    error
}

// FetchOutcome is the result of a fetch. An empty Timeline means no source
// had synced lyrics; that is a normal outcome, not an error.
type FetchOutcome struct {
	Timeline   Timeline
	Source     string
	Cached     bool
	SyncOffset float64
	Attempts   []Attempt
}

func (o FetchOutcome) Found() bool {
	return !o.Timeline.IsEmpty()
}

type FetcherConfig struct {
	Sources        []Source
	Store          Store
	SkipCacheReads bool
	AttemptTimeout time.Duration
	Logger         zerolog.Logger
}

type Fetcher struct {
	sources        []Source
	store          Store
	skipCacheReads bool
	attemptTimeout time.Duration
	log            zerolog.Logger
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	timeout := cfg.AttemptTimeout
	if timeout <= 0 {
		timeout = time.Duration(config.HTTPTimeoutSeconds) * time.Second
	}

	return &Fetcher{
		sources:        cfg.Sources,
		store:          cfg.Store,
		skipCacheReads: cfg.SkipCacheReads,
		attemptTimeout: timeout,
		log:            cfg.Logger,
	}
}

// Fetch tries every source in order with each query variant and returns the
// first non-empty timeline. Failures only move on to the next attempt.
func (f *Fetcher) Fetch(ctx context.Context, q Query) FetchOutcome {
	var outcome FetchOutcome

	q = q.withoutPlaceholders()
	if normalizeString(q.Title) == "" {
		f.log.Debug().Msg("no title to look lyrics up by")
		return outcome
	}

	if f.store != nil && !f.skipCacheReads && q.cacheable() {
		entry, err := f.store.Get(q.Artist, q.Title)
		if err == nil && entry != nil {
			timeline := Parse(entry.SyncedLyrics)
			if !timeline.IsEmpty() {
				outcome.Timeline = timeline
				outcome.Source = entry.Source
				outcome.Cached = true
				outcome.SyncOffset = entry.SyncOffset
				return outcome
			}
		}
	}

	variants := queryVariants(q)

	for _, source := range f.sources {
		for _, variant := range variants {
			if ctx.Err() != nil {
				return outcome
			}

			body, err := f.attempt(ctx, source, variant)
			if err == nil {
				timeline := Parse(body)
				if !timeline.IsEmpty() {
					outcome.Timeline = timeline
					outcome.Source = source.Name()
					f.remember(q, source.Name(), body)
					return outcome
				}
				err = ErrNoSyncedBody
			}

			outcome.Attempts = append(outcome.Attempts, Attempt{Source: source.Name(), Err: err})
			f.log.Debug().
				Str("source", source.Name()).
				Str("title", variant.Title).
				Err(err).
				Msg("lyrics attempt failed")
		}
	}

	return outcome
}

func (f *Fetcher) attempt(ctx context.Context, source Source, q Query) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()
	return source.Lookup(attemptCtx, q)
}

// remember caches a found body. A sync offset already stored for the song
// is carried over.
func (f *Fetcher) remember(q Query, sourceName string, body string) {
	if f.store == nil || !q.cacheable() {
		return
	}

	entry := &cache.LyricEntry{
		Album:        q.Album,
		Source:       sourceName,
		SyncedLyrics: body,
	}
	if prev, err := f.store.Get(q.Artist, q.Title); err == nil && prev != nil {
		entry.SyncOffset = prev.SyncOffset
	}

	err := f.store.Set(q.Artist, q.Title, entry)
	if err != nil {
		f.log.Debug().Err(err).Msg("failed to cache lyrics")
	}
}

// queryVariants yields the query as given plus a variant with version info
// such as "(Remastered)" stripped, deduplicated.
func queryVariants(q Query) []Query {
	base := Query{
		Title:        normalizeString(q.Title),
		Artist:       normalizeString(q.Artist),
		Album:        normalizeString(q.Album),
		DurationSecs: q.DurationSecs,
	}
	stripped := Query{
		Title:  stripVersionInfo(q.Title),
		Artist: normalizeString(q.Artist),
	}

	candidates := []Query{base, stripped}
	candidates = lo.Filter(candidates, func(v Query, _ int) bool {
		return v.Title != ""
	})

	return lo.UniqBy(candidates, func(v Query) string {
		return v.Artist + "|" + v.Title + "|" + v.Album + "|" + strconv.FormatInt(v.DurationSecs, 10)
	})
}

// normalizeString trims and collapses repeated spaces
func normalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripVersionInfo removes text in parentheses and brackets (remixes, versions, etc)
func stripVersionInfo(s string) string {
	for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}} {
		for {
			start := strings.Index(s, pair[0])
			end := strings.Index(s, pair[1])
			if start < 0 || end <= start {
				break
			}
			s = s[:start] + " " + s[end+1:]
		}
	}
	return normalizeString(s)
}

// ExactSource looks a track up by track_name/artist_name/album_name.
type ExactSource struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewExactSource(name string, baseURL string, client *http.Client) *ExactSource {
	return &ExactSource{name: name, baseURL: baseURL, client: client}
}

func (s *ExactSource) Name() string { return s.name }

func (s *ExactSource) Lookup(ctx context.Context, q Query) (string, error) {
	if q.Artist == "" {
		// an exact match needs both fields
		return "", ErrNotFound
	}

	params := url.Values{}
	params.Set("track_name", q.Title)
	params.Set("artist_name", q.Artist)
	if q.Album != "" {
		params.Set("album_name", q.Album)
	}
	if q.DurationSecs > 0 {
		params.Set("duration", strconv.FormatInt(q.DurationSecs, 10))
	}

	var payload LrclibResponse
	err := getJSON(ctx, s.client, s.baseURL, params, &payload)
	if err != nil {
		return "", err
	}

	if payload.SyncedLyrics == "" {
		return "", ErrNoSyncedBody
	}
	return payload.SyncedLyrics, nil
}

// SearchSource does a free-text search and takes the first hit that carries
// synced lyrics.
type SearchSource struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewSearchSource(name string, baseURL string, client *http.Client) *SearchSource {
	return &SearchSource{name: name, baseURL: baseURL, client: client}
}

func (s *SearchSource) Name() string { return s.name }

func (s *SearchSource) Lookup(ctx context.Context, q Query) (string, error) {
	terms := q.Title
	if q.Artist != "" {
		terms += " " + q.Artist
	}

	params := url.Values{}
	params.Set("q", terms)

	var hits []LrclibResponse
	err := getJSON(ctx, s.client, s.baseURL, params, &hits)
	if err != nil {
		return "", err
	}

	hit, ok := lo.Find(hits, func(h LrclibResponse) bool {
		return strings.TrimSpace(h.SyncedLyrics) != ""
	})
	if !ok {
		return "", ErrNoSyncedBody
	}
	return hit.SyncedLyrics, nil
}

func getJSON(ctx context.Context, client *http.Client, baseURL string, params url.Values, out any) error {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid lyrics url %q: %w", baseURL, err)
	}

	query := parsed.Query()
	for key, values := range params {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	parsed.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build http request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("lyrics server returned status %d: %s", resp.StatusCode, string(body))
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode lyrics json: %w", err)
	}

	return nil
}

func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 2 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(config.HTTPTimeoutSeconds) * time.Second,
	}
}

// DefaultSources is the provider order: the mirror by exact match, lrclib by
// exact match, then lrclib keyword search.
func DefaultSources(cfg *config.Config, client *http.Client) []Source {
	var sources []Source
	if cfg.LyricsURL != "" {
		sources = append(sources, NewExactSource("boidu", cfg.LyricsURL, client))
	}
	if cfg.LrclibURL != "" {
		sources = append(sources, NewExactSource("lrclib", cfg.LrclibURL, client))
	}
	if cfg.LrclibSearchURL != "" {
		sources = append(sources, NewSearchSource("lrclib-search", cfg.LrclibSearchURL, client))
	}
	return sources
}
