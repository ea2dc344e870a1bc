package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/cost"
	"github.com/fakeyudi/aist/internal/metrics"
)

// costTopN caps the per-session breakdown.
const costTopN = 20

var (
	costProject  string
	costPeriod   string
	costDetailed bool
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Show token usage and estimated cost",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadSessions(cmd, costProject)
		if err != nil {
			return err
		}
		sessions = metrics.FilterByPeriod(sessions, costPeriod, now())
		if len(sessions) == 0 {
			printNoSessions(cmd)
			return nil
		}

		p := cfg.Pricing
		sum := p.Summarize(sessions)
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, boldStyle.Render("TOKEN USAGE & COST"))
		fmt.Fprintln(out, "══════════════════")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Period: %s | Sessions: %s\n\n", boldStyle.Render(costPeriod), boldStyle.Render(fmt.Sprint(len(sessions))))

		section(out, "SUMMARY", "─")
		fmt.Fprintf(out, "Input tokens:   %15s  %s\n", metrics.FormatNumber(sum.Input), dimStyle.Render(cost.Format(p.Input(sum.Input))))
		fmt.Fprintf(out, "Output tokens:  %15s  %s\n", metrics.FormatNumber(sum.Output), dimStyle.Render(cost.Format(p.Output(sum.Output))))
		fmt.Fprintf(out, "Total cost:     %15s\n", boldStyle.Render(cost.Format(sum.Cost)))
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf(
			"Pricing: $%g / 1M input, $%g / 1M output (input includes cache writes)",
			p.InputPerMillion, p.OutputPerMillion)))

		if !costDetailed {
			return nil
		}
		fmt.Fprintln(out)
		section(out, "PER-SESSION BREAKDOWN", "─")
		fmt.Fprintf(out, "%-12s %-30s %14s %14s %10s\n", "SESSION", "PROJECT", "INPUT", "OUTPUT", "COST")
		fmt.Fprintln(out, dimStyle.Render(strings.Repeat("─", 84)))
		for i, sc := range sum.Sessions {
			if i == costTopN {
				fmt.Fprintf(out, "... and %d more\n", len(sum.Sessions)-costTopN)
				break
			}
			fmt.Fprintf(out, "%-12s %-30s %14s %14s %10s\n",
				shortID(sc.Session.ID),
				clipLeft(sc.Session.ProjectName(), 30),
				metrics.FormatNumber(sc.Input),
				metrics.FormatNumber(sc.Output),
				cost.Format(sc.Cost))
		}
		return nil
	},
}

func init() {
	costCmd.Flags().StringVarP(&costProject, "project", "p", "", "only sessions whose project path contains this")
	costCmd.Flags().StringVar(&costPeriod, "period", "all", "all, day, week or month")
	costCmd.Flags().BoolVar(&costDetailed, "detailed", false, "show the most expensive sessions")
	rootCmd.AddCommand(costCmd)
}
