package main

import (
	"fmt"

	"github.com/fwojciec/adamsdoc"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	cs := deps.TextCache.Stats()
	fmt.Fprintf(deps.Stdout, "Text cache: %s\n", deps.TextCache.Dir())
	fmt.Fprintf(deps.Stdout, "  documents:      %d\n", cs.Entries)
	fmt.Fprintf(deps.Stdout, "  text size:      %d chars\n", cs.TotalTextSize)

	ds, err := deps.DownloadLog.DownloadStats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "Downloads:")
	fmt.Fprintf(deps.Stdout, "  attempts:       %d\n", ds.Attempts)
	fmt.Fprintf(deps.Stdout, "  successes:      %d\n", ds.Successes)
	fmt.Fprintf(deps.Stdout, "  success rate:   %.1f%%\n", ds.SuccessRate*100)
	fmt.Fprintf(deps.Stdout, "  average size:   %.0f bytes\n", ds.AverageSize)
	if !ds.LastAttempt.IsZero() {
		fmt.Fprintf(deps.Stdout, "  last attempt:   %s\n", ds.LastAttempt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
