package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gauge-tracker/internal/decay"
	"gauge-tracker/internal/reading"

	"github.com/spf13/cobra"
)

var (
	projectStrategy string
	projectNow      string
)

var projectCmd = &cobra.Command{
	Use:   "project <history.yaml>",
	Short: "Project failure windows for every object in a history file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		histories, err := reading.LoadFile(args[0])
		if err != nil {
			return err
		}
		p, err := newProjector(projectStrategy)
		if err != nil {
			return err
		}
		if err := pinClock(p, projectNow); err != nil {
			return err
		}
		printProjections(cmd.OutOrStdout(), p, histories)
		return nil
	},
}

func init() {
	projectCmd.Flags().StringVar(&projectStrategy, "strategy", "", "Projection strategy: cycle or trend (overrides profile)")
	projectCmd.Flags().StringVar(&projectNow, "now", "", "Evaluate as of this time (RFC3339) instead of the wall clock")
}

// pinClock fixes the projector clock when now is set.
func pinClock(p *decay.Projector, now string) error {
	if now == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return fmt.Errorf("--now: %w", err)
	}
	p.Now = func() time.Time { return t }
	return nil
}

// printProjections writes one line per object in ID order. Undefined
// projections are listed with their reason.
func printProjections(w io.Writer, p *decay.Projector, histories map[string]reading.History) {
	ids := make([]string, 0, len(histories))
	for id := range histories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := p.Now()
	fmt.Fprintf(w, "%-20s %8s %-20s %-20s %-20s %s\n", "ID", "CURRENT", "EARLIEST", "TYPICAL", "LATEST", "REMAINING")
	for _, id := range ids {
		proj, err := p.ProjectErr(histories[id])
		if err != nil {
			fmt.Fprintf(w, "%-20s %8s %s\n", id, "-", err)
			continue
		}
		fmt.Fprintf(w, "%-20s %7.1f%% %-20s %-20s %-20s %s\n",
			id, proj.Current,
			proj.Earliest.Format(time.DateTime),
			proj.Typical.Format(time.DateTime),
			proj.Latest.Format(time.DateTime),
			decay.FormatRemaining(proj.Remaining(now)))
	}
}
