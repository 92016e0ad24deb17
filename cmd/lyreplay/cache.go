package main

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"karolbroda.com/lyreplay/internal/cache"
	"karolbroda.com/lyreplay/internal/lyrics"
)

const maxSuggestions = 5

var (
	cacheSortBy  string
	cacheConfirm bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "inspect and maintain the lyrics cache",
	Long:  `every synced body that was found during playback or a search is kept on disk for 30 days.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "print entry count, size and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.Open()

		count, size, err := store.Stats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}

		location := store.Path()
		if location == "" {
			location = "(memory only)"
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "location  %s\n", location)
		fmt.Fprintf(out, "entries   %d\n", count)
		fmt.Fprintf(out, "size      %s\n", formatBytes(size))
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "list cached songs",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := cache.Open().ListAll()
		if err != nil {
			return fmt.Errorf("listing cache: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "cache is empty")
			return nil
		}

		sortCacheEntries(entries, cacheSortBy)
		if err := writeEntryTable(out, entries); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d cached\n", len(entries))
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <artist> <title>",
	Short: "print one cached entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.Open()

		entry, err := store.Get(args[0], args[1])
		if err != nil {
			return notCachedError(cmd.ErrOrStderr(), store, args[0], args[1], err)
		}

		writeEntryDetail(cmd.OutOrStdout(), entry)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "remove every cached entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cacheConfirm && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "remove every cached entry?") {
			fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
			return nil
		}

		if err := cache.Open().Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "remove expired and unreadable entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		pruned, err := cache.Open().Prune()
		if err != nil {
			return fmt.Errorf("pruning cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries\n", pruned)
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <artist> <title>",
	Short: "remove one cached entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.Open()

		if _, err := store.Get(args[0], args[1]); err != nil {
			return notCachedError(cmd.ErrOrStderr(), store, args[0], args[1], err)
		}
		if err := store.Delete(args[0], args[1]); err != nil {
			return fmt.Errorf("deleting cache entry: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s - %s\n", args[0], args[1])
		return nil
	},
}

var cacheOffsetCmd = &cobra.Command{
	Use:   "offset <artist> <title> <seconds>",
	Short: "store a sync offset for one cached song",
	Long: `store a per-song sync offset in seconds. it is added to the playback position,
on top of --sync-offset, whenever the song's cached lyrics are shown. 0 removes it.
put -- before a negative value: lyreplay cache offset -- artist title -0.4`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCachedOffset(cmd.OutOrStdout(), cmd.ErrOrStderr(), cache.Open(), args[0], args[1], args[2])
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheListCmd, cacheShowCmd, cacheClearCmd, cachePruneCmd, cacheDeleteCmd, cacheOffsetCmd)

	cacheListCmd.Flags().StringVar(&cacheSortBy, "sort", "date", "order by date, artist or title")
	cacheClearCmd.Flags().BoolVarP(&cacheConfirm, "yes", "y", false, "do not ask for confirmation")
}

func writeEntryTable(out io.Writer, entries []*cache.LyricEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ARTIST\tTITLE\tSOURCE\tOFFSET\tCACHED")
	for _, e := range entries {
		offset := "-"
		if e.SyncOffset != 0 {
			offset = fmt.Sprintf("%+.1fs", e.SyncOffset)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Artist, e.Title, e.Source, offset, time.Unix(e.CreatedAt, 0).Format(time.DateOnly))
	}
	return w.Flush()
}

func writeEntryDetail(out io.Writer, e *cache.LyricEntry) {
	album := e.Album
	if album == "" {
		album = "-"
	}
	fmt.Fprintf(out, "%s - %s\n", e.Title, e.Artist)
	fmt.Fprintf(out, "  album    %s\n", album)
	fmt.Fprintf(out, "  source   %s\n", e.Source)
	fmt.Fprintf(out, "  offset   %+.2fs\n", e.SyncOffset)
	fmt.Fprintf(out, "  lines    %d\n", lyrics.Parse(e.SyncedLyrics).Len())
	fmt.Fprintf(out, "  cached   %s\n", time.Unix(e.CreatedAt, 0).Format(time.DateTime))
	fmt.Fprintf(out, "  expires  %s\n", time.Unix(e.ExpiresAt, 0).Format(time.DateTime))
}

func setCachedOffset(out, errOut io.Writer, store *cache.DiskCache, artist, title, raw string) error {
	offset, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q: %w", raw, err)
	}

	if err := store.SetSyncOffset(artist, title, offset); err != nil {
		return notCachedError(errOut, store, artist, title, err)
	}

	fmt.Fprintf(out, "%s - %s now plays with %+.2fs offset\n", artist, title, offset)
	return nil
}

// confirm reads a single line answer. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func notCachedError(errOut io.Writer, store *cache.DiskCache, artist, title string, cause error) error {
	if suggestions := findSimilarCachedSongs(store, artist, title); len(suggestions) > 0 {
		fmt.Fprintln(errOut, "not cached, similar entries:")
		for _, s := range suggestions {
			fmt.Fprintf(errOut, "  %s - %s\n", s.Artist, s.Title)
		}
	}
	return fmt.Errorf("%s - %s: %w", artist, title, cause)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for rest := n / unit; rest >= unit; rest /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func sortCacheEntries(entries []*cache.LyricEntry, by string) {
	fold := func(pick func(*cache.LyricEntry) string) func(a, b *cache.LyricEntry) int {
		return func(a, b *cache.LyricEntry) int {
			return strings.Compare(strings.ToLower(pick(a)), strings.ToLower(pick(b)))
		}
	}

	switch by {
	case "artist":
		slices.SortStableFunc(entries, fold(func(e *cache.LyricEntry) string { return e.Artist }))
	case "title":
		slices.SortStableFunc(entries, fold(func(e *cache.LyricEntry) string { return e.Title }))
	default:
		slices.SortStableFunc(entries, func(a, b *cache.LyricEntry) int {
			return cmp.Compare(b.CreatedAt, a.CreatedAt)
		})
	}
}

// findSimilarCachedSongs returns entries whose title overlaps the query.
// Exact artist matches are preferred over partial ones.
func findSimilarCachedSongs(store *cache.DiskCache, artist, title string) []*cache.LyricEntry {
	all, err := store.ListAll()
	if err != nil {
		return nil
	}

	artist = strings.ToLower(artist)
	title = strings.ToLower(title)
	overlaps := func(a, b string) bool {
		return strings.Contains(a, b) || strings.Contains(b, a)
	}

	candidates := lo.Filter(all, func(e *cache.LyricEntry, _ int) bool {
		return overlaps(strings.ToLower(e.Title), title)
	})
	exact, partial := lo.FilterReject(candidates, func(e *cache.LyricEntry, _ int) bool {
		return strings.ToLower(e.Artist) == artist
	})
	partial = lo.Filter(partial, func(e *cache.LyricEntry, _ int) bool {
		return overlaps(strings.ToLower(e.Artist), artist)
	})

	matches := exact
	if len(matches) == 0 {
		matches = partial
	}
	return lo.Subset(matches, 0, maxSuggestions)
}
