package main

import (
	"fmt"
	"io"
	"time"

	"gauge-tracker/internal/decay"
	"gauge-tracker/internal/logging"
	"gauge-tracker/internal/reading"

	"github.com/spf13/cobra"
)

var (
	rankLimit    int
	rankStrategy string
	rankNow      string
)

var rankCmd = &cobra.Command{
	Use:   "rank <history.yaml>",
	Short: "Print the watch list: objects ordered by earliest failure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		histories, err := reading.LoadFile(args[0])
		if err != nil {
			return err
		}
		p, err := newProjector(rankStrategy)
		if err != nil {
			return err
		}
		if err := pinClock(p, rankNow); err != nil {
			return err
		}

		limit := profile.Projection.WatchLimit
		if cmd.Flags().Changed("limit") {
			limit = rankLimit
		}
		entries := p.Rank(histories, limit)
		logging.FromContext(cmd.Context()).Debug("ranked", "objects", len(histories), "defined", len(entries), "limit", limit)
		printRanking(cmd.OutOrStdout(), entries, p.Now())
		return nil
	},
}

func init() {
	rankCmd.Flags().IntVar(&rankLimit, "limit", decay.DefaultWatchLimit, "Maximum number of entries, 0 for all (overrides profile)")
	rankCmd.Flags().StringVar(&rankStrategy, "strategy", "", "Projection strategy: cycle or trend (overrides profile)")
	rankCmd.Flags().StringVar(&rankNow, "now", "", "Evaluate as of this time (RFC3339) instead of the wall clock")
}

func printRanking(w io.Writer, entries []decay.Entry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no object has a defined projection")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(w, "%2d. %-20s %6.1f%%  fails in %s (by %s)\n",
			i+1, e.ID, e.Projection.Current,
			decay.FormatRemaining(e.Projection.Remaining(now)),
			e.Projection.Earliest.Format(time.DateTime))
	}
}
