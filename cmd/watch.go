package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/bottleneck"
	"github.com/fakeyudi/aist/internal/collector"
	"github.com/fakeyudi/aist/internal/session"
	"github.com/fakeyudi/aist/internal/telemetry"
)

var watchProject string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run bottleneck detection as transcripts change",
	Long: `Watch the projects directory and report bottlenecks for every transcript
written to, once writes settle. When telemetry is configured, each changed
session is also exported. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				fmt.Fprintln(cmd.ErrOrStderr(), "\nStopping watch...")
				cancel()
			case <-ctx.Done():
			}
		}()

		var exp telemetry.Exporter = telemetry.NoOp{}
		switch e, err := openExporter(ctx, telemetryConfig()); {
		case err == nil:
			exp = e
		case !errors.Is(err, telemetry.ErrDisabled):
			warn(cmd, fmt.Sprintf("telemetry disabled: %v", err))
		}
		defer exp.Close(context.Background())

		sessions, err := loadSessions(cmd, watchProject)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		bs := bottleneck.DetectAll(sessions)
		fmt.Fprintf(out, "Watching %s (%d sessions, %d bottlenecks so far)\n",
			displayPath(cfg.ProjectsDir), len(sessions), len(bs))

		return newCollector(watchProject).Watch(ctx, collector.DefaultDebounce, func(paths []string) {
			reportChanges(ctx, cmd, exp, paths)
		})
	},
}

// reportChanges re-parses each changed transcript and prints a one-line
// bottleneck summary for it.
func reportChanges(ctx context.Context, cmd *cobra.Command, exp telemetry.Exporter, paths []string) {
	out := cmd.OutOrStdout()
	for _, p := range paths {
		s, err := session.ParseFile(p)
		if err != nil {
			warn(cmd, fmt.Sprintf("skipping %s: %v", displayPath(p), err))
			continue
		}
		bs := bottleneck.Detect(s)
		printChange(out, now(), s, bs)
		if err := exp.ExportSession(ctx, telemetry.NewRecord(s, bs, cfg.Pricing)); err != nil {
			warn(cmd, fmt.Sprintf("exporting %s: %v", shortID(s.ID), err))
		}
	}
}

func printChange(out io.Writer, at time.Time, s *session.Session, bs []bottleneck.Bottleneck) {
	stamp := dimStyle.Render(at.Format("15:04:05"))
	if len(bs) == 0 {
		fmt.Fprintf(out, "%s %s (%s) %s\n", stamp, shortID(s.ID), s.ProjectName(), goodStyle.Render("no bottlenecks"))
		return
	}
	bottleneck.Rank(bs)
	fmt.Fprintf(out, "%s %s (%s) %s, ~%.0f min: %s\n", stamp, shortID(s.ID), s.ProjectName(),
		warnStyle.Render(fmt.Sprintf("%d bottlenecks", len(bs))),
		bottleneck.TotalMinutes(bs), bottleneck.Pattern(bs[0]))
}

func init() {
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "only transcripts whose project path contains this")
	rootCmd.AddCommand(watchCmd)
}
