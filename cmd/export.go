package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/bottleneck"
	"github.com/fakeyudi/aist/internal/metrics"
	"github.com/fakeyudi/aist/internal/session"
	"github.com/fakeyudi/aist/internal/telemetry"
)

var (
	exportProject string
	exportPeriod  string
)

// openExporter is replaced in tests.
var openExporter = func(ctx context.Context, c telemetry.Config) (telemetry.Exporter, error) {
	return telemetry.New(ctx, c)
}

func telemetryConfig() telemetry.Config {
	return telemetry.Config{Endpoint: cfg.Telemetry.Endpoint, Insecure: cfg.Telemetry.Insecure}
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export session metrics to an OpenTelemetry collector",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := openExporter(cmd.Context(), telemetryConfig())
		if errors.Is(err, telemetry.ErrDisabled) {
			return fmt.Errorf("%w (set AIST_OTEL_ENDPOINT or telemetry.endpoint in config)", err)
		}
		if err != nil {
			return err
		}

		sessions, err := loadSessions(cmd, exportProject)
		if err != nil {
			_ = exp.Close(cmd.Context())
			return err
		}
		sessions = metrics.FilterByPeriod(sessions, exportPeriod, now())

		exported, err := exportSessions(cmd.Context(), exp, sessions)
		if cerr := exp.Close(cmd.Context()); err == nil && cerr != nil {
			err = fmt.Errorf("flushing metrics: %w", cerr)
		}
		if err != nil {
			return err
		}

		msg := fmt.Sprintf("Exported %d sessions", exported)
		if r, ok := exp.(interface{ RunID() string }); ok {
			msg += fmt.Sprintf(" (run %s)", r.RunID())
		}
		fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render(msg))
		return nil
	},
}

// exportSessions runs detection on each session and hands the record to
// exp. It stops at the first export error.
func exportSessions(ctx context.Context, exp telemetry.Exporter, sessions []*session.Session) (int, error) {
	for i, s := range sessions {
		rec := telemetry.NewRecord(s, bottleneck.Detect(s), cfg.Pricing)
		if err := exp.ExportSession(ctx, rec); err != nil {
			return i, fmt.Errorf("exporting session %s: %w", shortID(s.ID), err)
		}
	}
	return len(sessions), nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportProject, "project", "p", "", "only sessions whose project path contains this")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "all", "all, day, week or month")
	rootCmd.AddCommand(exportCmd)
}
