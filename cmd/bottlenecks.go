package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/bottleneck"
)

var (
	bottlenecksProject string
	bottlenecksLimit   int
	bottlenecksPrompts bool
)

var bottlenecksCmd = &cobra.Command{
	Use:   "bottlenecks",
	Short: "Rank interaction patterns that wasted time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadSessions(cmd, bottlenecksProject)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			printNoSessions(cmd)
			return nil
		}
		printBottlenecks(cmd.OutOrStdout(), bottleneck.DetectAll(sessions), limitOrDefault(bottlenecksLimit), bottlenecksPrompts)
		return nil
	},
}

// printBottlenecks writes at most limit entries of the ranked list bs.
func printBottlenecks(out io.Writer, bs []bottleneck.Bottleneck, limit int, prompts bool) {
	if len(bs) == 0 {
		fmt.Fprintln(out, goodStyle.Render("No bottlenecks detected."))
		return
	}

	fmt.Fprintln(out, boldStyle.Render("BOTTLENECKS DETECTED"))
	fmt.Fprintln(out, strings.Repeat("═", 60))
	fmt.Fprintf(out, "Found %s bottlenecks | ~%.0f minutes potentially wasted\n\n",
		boldStyle.Render(fmt.Sprint(len(bs))), bottleneck.TotalMinutes(bs))

	for i, b := range bs {
		if i == limit {
			fmt.Fprintf(out, "... and %d more (use --limit to see more)\n", len(bs)-limit)
			break
		}
		printBottleneck(out, i+1, b, prompts)
		fmt.Fprintln(out)
	}
}

func printBottleneck(out io.Writer, num int, b bottleneck.Bottleneck, prompts bool) {
	var cost string
	switch v := b.(type) {
	case *bottleneck.ErrorLoop:
		cost = fmt.Sprintf("(~%.0f min wasted)", v.DurationMinutes)
	case *bottleneck.LongGap:
		cost = fmt.Sprintf("(%.0f min pause)", v.GapMinutes)
	default:
		cost = fmt.Sprintf("(~%.0f min)", b.WastedMinutes())
	}
	src := b.Source()

	fmt.Fprintf(out, "%d. %s %s\n", num,
		bottleneckStyle(b.Kind()).Render(strings.ToUpper(b.Kind().String())),
		dimStyle.Render(cost))
	fmt.Fprintln(out, "   "+dimStyle.Render(strings.Repeat("─", 50)))
	fmt.Fprintf(out, "   Session: %s (%s)\n", shortID(src.SessionID), src.Project)
	fmt.Fprintf(out, "   Pattern: %s\n", bottleneck.Pattern(b))
	if sp, ok := b.(*bottleneck.ExplorationSpiral); ok {
		fmt.Fprintf(out, "   Files searched: %s\n", warnStyle.Render(fmt.Sprint(len(sp.FilesSearched))))
	}
	if el, ok := b.(*bottleneck.ErrorLoop); ok && verbose {
		for _, sample := range el.ErrorSamples {
			fmt.Fprintln(out, "   "+badStyle.Render("! "+sample))
		}
	}
	fmt.Fprintln(out, "   "+hintStyle.Render("Suggestion: "+bottleneck.Suggestion(b.Kind())))

	if !prompts {
		return
	}
	if src.PrecedingPrompt == "" {
		fmt.Fprintln(out, "   "+dimStyle.Render("Prompt: (no prompt found)"))
		return
	}
	fmt.Fprintln(out, "   "+dimStyle.Render("Prompt:"))
	fmt.Fprintln(out, "   "+dimStyle.Italic(true).Render(`"`+src.PrecedingPrompt+`"`))
}

func init() {
	bottlenecksCmd.Flags().StringVarP(&bottlenecksProject, "project", "p", "", "only sessions whose project path contains this")
	bottlenecksCmd.Flags().IntVarP(&bottlenecksLimit, "limit", "n", 0, "number of bottlenecks to show (default from config)")
	bottlenecksCmd.Flags().BoolVar(&bottlenecksPrompts, "prompts", false, "show the user prompt that preceded each bottleneck")
	rootCmd.AddCommand(bottlenecksCmd)
}
