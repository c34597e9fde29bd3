package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faultbox/flipbook/internal/book/flipper"
)

// maxSimulatedFrames bounds a simulation that never settles.
const maxSimulatedFrames = 100000

type stepRecord struct {
	at      time.Duration
	page    int
	pending time.Duration
}

func newSimulateCommand() *cobra.Command {
	var (
		total    int
		from, to int
		frame    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print the page steps taken to reach a target page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if total < 0 {
				return fmt.Errorf("total must be >= 0, got %d", total)
			}
			if frame <= 0 {
				return fmt.Errorf("frame must be positive, got %s", frame)
			}
			steps := simulate(total, from, to, frame)

			rows := make([][]string, 0, len(steps))
			for i, s := range steps {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i),
					fmt.Sprintf("%d", s.at.Milliseconds()),
					fmt.Sprintf("%d", s.page),
					fmt.Sprintf("%d", s.pending.Milliseconds()),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Step", "Time (ms)", "Page", "Next in (ms)"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVar(&total, "total", 20, "Total pages")
	cmd.Flags().IntVar(&from, "from", 0, "Starting page")
	cmd.Flags().IntVar(&to, "to", 21, "Target page")
	cmd.Flags().DurationVar(&frame, "frame", 16*time.Millisecond, "Frame duration")
	return cmd
}

// simulate drives a controller at a fixed frame rate and records every
// page change. The first record is the state right after the request.
func simulate(total, from, to int, frame time.Duration) []stepRecord {
	c := flipper.NewController(total, flipper.DefaultTurningSpeed)
	c.SetPage(from)
	for i := 0; c.Stepping() && i < maxSimulatedFrames; i++ {
		c.Update(frame)
	}

	c.SetPage(to)
	steps := []stepRecord{{page: c.CurrentPage(), pending: c.Pending()}}
	var elapsed time.Duration
	for i := 0; c.Stepping() && i < maxSimulatedFrames; i++ {
		before := c.CurrentPage()
		c.Update(frame)
		elapsed += frame
		if c.CurrentPage() != before {
			steps = append(steps, stepRecord{at: elapsed, page: c.CurrentPage(), pending: c.Pending()})
		}
	}
	return steps
}
