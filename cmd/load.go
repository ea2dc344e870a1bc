package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/collector"
	"github.com/fakeyudi/aist/internal/session"
)

// now is replaced in tests.
var now = time.Now

func newCollector(project string) *collector.TranscriptCollector {
	return &collector.TranscriptCollector{
		ProjectsDir:    cfg.ProjectsDir,
		ProjectFilter:  project,
		IgnorePatterns: cfg.IgnorePatterns,
		Workers:        cfg.Workers,
	}
}

// loadSessions parses every transcript matching project. Skipped files are
// reported as warnings.
func loadSessions(cmd *cobra.Command, project string) ([]*session.Session, error) {
	start := time.Now()
	res, err := newCollector(project).Collect(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("loading transcripts: %w", err)
	}
	for _, w := range res.Warnings {
		warn(cmd, w)
	}
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "loaded %d sessions from %s in %s\n",
			len(res.Sessions), displayPath(cfg.ProjectsDir), time.Since(start).Round(time.Millisecond))
	}
	return res.Sessions, nil
}

// printNoSessions reports an empty result, distinct from a failure.
func printNoSessions(cmd *cobra.Command) {
	fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("No sessions found."))
}

// limitOrDefault returns n, or the configured default when n is not positive.
func limitOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return cfg.DefaultLimit
}
