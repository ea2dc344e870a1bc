package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/bottleneck"
	"github.com/fakeyudi/aist/internal/metrics"
	"github.com/fakeyudi/aist/internal/session"
)

const analyzeTopN = 10

var (
	analyzeProject string
	analyzePeriod  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarise tool usage, projects, errors and efficiency",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadSessions(cmd, analyzeProject)
		if err != nil {
			return err
		}
		sessions = metrics.FilterByPeriod(sessions, analyzePeriod, now())
		if len(sessions) == 0 {
			printNoSessions(cmd)
			return nil
		}

		tot := metrics.Aggregate(sessions)
		bs := bottleneck.DetectAll(sessions)
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, boldStyle.Render("SESSION ANALYSIS"))
		fmt.Fprintln(out, "════════════════")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Period: %s | Sessions: %s | Total time: %s\n\n",
			boldStyle.Render(analyzePeriod),
			boldStyle.Render(fmt.Sprint(tot.Sessions)),
			boldStyle.Render(metrics.FormatDuration(tot.DurationMinutes)))

		printToolUsage(out, tot)
		printProjects(out, tot, sessions)

		section(out, "ERRORS", "─")
		fmt.Fprintf(out, "Total: %s errors detected\n\n", metrics.FormatNumber(tot.Errors))

		printBreakdown(out, metrics.Breakdown(bs, tot.DurationMinutes))

		if sums := bottleneck.Summarize(bs); len(sums) > 0 {
			section(out, "TOP BOTTLENECKS", "─")
			for _, s := range sums {
				fmt.Fprintf(out, "%-20s %3d  ~%-7s %s\n",
					s.Kind.Title(), s.Count, metrics.FormatDuration(s.TotalMinutes), dimStyle.Render(s.Description))
			}
			fmt.Fprintln(out)
		}

		section(out, "RECOMMENDATIONS", "─")
		for _, r := range bottleneck.Recommendations(bs) {
			fmt.Fprintf(out, "• %s\n", r)
		}
		return nil
	},
}

func printToolUsage(out io.Writer, tot metrics.Totals) {
	section(out, "TOOL USAGE", "─")
	tools := tot.TopTools(0)
	shown := tools
	if !verbose && len(shown) > analyzeTopN {
		shown = shown[:analyzeTopN]
	}
	for _, tc := range shown {
		pct := 0
		if tot.ToolCalls > 0 {
			pct = tc.Count * 100 / tot.ToolCalls
		}
		fmt.Fprintf(out, "%-12s %6s (%2d%%)\n", tc.Name, metrics.FormatNumber(tc.Count), pct)
	}
	if len(tools) > len(shown) {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("... and %d more (use --verbose to see all)", len(tools)-len(shown))))
	}
	fmt.Fprintln(out)
}

func printProjects(out io.Writer, tot metrics.Totals, sessions []*session.Session) {
	section(out, "BY PROJECT", "─")
	names := tot.Projects()
	shown := names
	if !verbose && len(shown) > analyzeTopN {
		shown = shown[:analyzeTopN]
	}
	for _, name := range shown {
		p := tot.ByProject[name]
		var own []*session.Session
		for _, s := range sessions {
			if s.ProjectName() == name {
				own = append(own, s)
			}
		}
		eff := metrics.Efficiency(p.DurationMinutes, bottleneck.TotalMinutes(bottleneck.DetectAll(own)))
		fmt.Fprintf(out, "%-20s %2d sessions, %6s  %s\n",
			clip(name, 18), p.Sessions, metrics.FormatDuration(p.DurationMinutes),
			efficiencyStyle(eff).Render(fmt.Sprintf("%3.0f%% efficient", eff)))
	}
	if len(names) > len(shown) {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("... and %d more (use --verbose to see all)", len(names)-len(shown))))
	}
	fmt.Fprintln(out)
}

func printBreakdown(out io.Writer, b metrics.TimeBreakdown) {
	section(out, "TIME BREAKDOWN", "─")
	row := func(label string, minutes float64) {
		pct := 0.0
		if b.TotalMinutes > 0 {
			pct = minutes / b.TotalMinutes * 100
		}
		fmt.Fprintf(out, "%-20s %7s (%3.0f%%)\n", label, metrics.FormatDuration(minutes), pct)
	}
	row("Productive", b.ProductiveMinutes)
	for _, k := range bottleneck.Kinds {
		row(k.Title(), b.Wasted[k])
	}
	eff := b.Efficiency()
	fmt.Fprintf(out, "\nEfficiency: %s\n\n", efficiencyStyle(eff).Render(fmt.Sprintf("%.0f%%", eff)))
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeProject, "project", "p", "", "only sessions whose project path contains this")
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "all", "all, day, week or month")
	rootCmd.AddCommand(analyzeCmd)
}
