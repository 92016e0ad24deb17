package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"karolbroda.com/lyreplay/internal/cache"
	"karolbroda.com/lyreplay/internal/config"
	"karolbroda.com/lyreplay/internal/lyrics"
)

var (
	// flags for lyrics show
	showAt float64
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "lyrics search and preview",
	Long:  `search the lyric sources, fill the cache, or print a synced timeline.`,
}

var lyricsSearchCmd = &cobra.Command{
	Use:   "search <artist> <title>",
	Short: "search every lyric source and cache the result",
	Long:  `query the lyric sources in order, ignoring cached entries, and report which one answered.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		fetcher := newFetcher(cfg, cache.Open(), true)

		fmt.Printf("searching for: %s - %s\n\n", args[0], args[1])

		outcome := fetcher.Fetch(cmd.Context(), lyrics.Query{Artist: args[0], Title: args[1]})
		for _, attempt := range outcome.Attempts {
			fmt.Printf("  %-14s %v\n", attempt.Source, attempt.Err)
		}

		if !outcome.Found() {
			fmt.Println("\nno synced lyrics found")
			return nil
		}

		fmt.Printf("  %-14s found %d synced lines\n", outcome.Source, outcome.Timeline.Len())
		fmt.Println("\nsaved to cache, use 'lyreplay lyrics show' to print it")
		return nil
	},
}

var lyricsShowCmd = &cobra.Command{
	Use:   "show <artist> <title>",
	Short: "print a synced timeline",
	Long: `print the synced lyrics for a song, from the cache when possible.
with --at, print only the line active at that position in seconds.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		fetcher := newFetcher(cfg, cache.Open(), cfg.NoCache)

		outcome := fetcher.Fetch(cmd.Context(), lyrics.Query{Artist: args[0], Title: args[1]})
		if !outcome.Found() {
			return fmt.Errorf("no synced lyrics for %s - %s", args[0], args[1])
		}

		if cmd.Flags().Changed("at") {
			text, _ := outcome.Timeline.Locate(showAt + outcome.SyncOffset + cfg.SyncOffset)
			fmt.Println(text)
			return nil
		}

		origin := outcome.Source
		if outcome.Cached {
			origin += ", cached"
		}
		fmt.Fprintf(os.Stderr, "%s - %s (%d lines, %s)\n\n", args[0], args[1], outcome.Timeline.Len(), origin)
		fmt.Print(outcome.Timeline.Serialize())

		if outcome.SyncOffset != 0 {
			fmt.Fprintf(os.Stderr, "\nsync offset: %.2fs\n", outcome.SyncOffset)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lyricsCmd)

	lyricsCmd.AddCommand(lyricsSearchCmd)
	lyricsCmd.AddCommand(lyricsShowCmd)

	lyricsShowCmd.Flags().Float64Var(&showAt, "at", 0, "print the line active at this position (seconds)")
}

func newFetcher(cfg *config.Config, store lyrics.Store, skipCacheReads bool) *lyrics.Fetcher {
	client := lyrics.NewHTTPClient()
	return lyrics.NewFetcher(lyrics.FetcherConfig{
		Sources:        lyrics.DefaultSources(cfg, client),
		Store:          store,
		SkipCacheReads: skipCacheReads,
		Logger:         zerolog.Nop(),
	})
}
