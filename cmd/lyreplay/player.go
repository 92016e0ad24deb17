package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"karolbroda.com/lyreplay/internal/colors"
	"karolbroda.com/lyreplay/internal/mpris"
	"karolbroda.com/lyreplay/internal/track"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "read tracks from running mpris players",
	Long:  `find mpris players on the session bus and show what 'play --from-mpris' would queue.`,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list mpris players on the session bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mpris.Connect(mprisService)
		if err != nil {
			return err
		}
		defer client.Close()

		players, err := client.Players()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(players) == 0 {
			fmt.Fprintln(out, "no mpris players on the session bus")
			return nil
		}
		for _, service := range players {
			marker := " "
			if service == client.Service() {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, service)
		}
		fmt.Fprintln(out, "\n* is read by --from-mpris, change it with --mpris-service")
		return nil
	},
}

var playerCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show the track --from-mpris would queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mpris.Connect(mprisService)
		if err != nil {
			return err
		}
		defer client.Close()

		current, err := client.CurrentTrack()
		if err != nil {
			return fmt.Errorf("reading %s: %w", client.Service(), err)
		}

		writeTrack(cmd.OutOrStdout(), current)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)
	playerCmd.AddCommand(playerListCmd, playerCurrentCmd)
}

func writeTrack(out io.Writer, t track.Track) {
	fmt.Fprintln(out, t.DisplayTitle())
	if t.Album != "" {
		fmt.Fprintf(out, "  album     %s\n", t.Album)
	}
	if t.DurationSecs > 0 {
		fmt.Fprintf(out, "  duration  %s\n", colors.FormatTime(float64(t.DurationSecs)))
	}
	if ref, err := t.SourceRef(); err == nil {
		fmt.Fprintf(out, "  source    %s\n", ref)
	} else {
		fmt.Fprintln(out, "  source    none, cannot be replayed")
	}
	if t.ThumbnailURL != "" {
		fmt.Fprintf(out, "  artwork   %s\n", t.ThumbnailURL)
	}
}
