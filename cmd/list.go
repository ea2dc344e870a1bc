package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/session"
)

var (
	listLimit   int
	listProject string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadSessions(cmd, listProject)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			printNoSessions(cmd)
			return nil
		}
		session.SortByEndDesc(sessions)

		out := cmd.OutOrStdout()
		limit := min(limitOrDefault(listLimit), len(sessions))
		fmt.Fprintln(out, boldStyle.Render(fmt.Sprintf("RECENT SESSIONS (showing %d)", limit)))
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%-12s %-40s %-15s %10s", "SESSION", "PROJECT", "BRANCH", "DURATION")))
		fmt.Fprintln(out, dimStyle.Render("────────────────────────────────────────────────────────────────────────────────"))

		for _, s := range sessions[:limit] {
			branch := s.Branch
			if branch == "" {
				branch = "-"
			}
			fmt.Fprintf(out, "%-12s %-40s %-15s %10s\n",
				s.ShortID(10),
				clipLeft(displayPath(s.Project), 38),
				clip(branch, 13),
				listDuration(s))
		}

		fmt.Fprintf(out, "\n%s total sessions found\n", boldStyle.Render(fmt.Sprint(len(sessions))))
		return nil
	},
}

// listDuration renders a session length as "1h 5m" or "42m", or "-" when
// unknown.
func listDuration(s *session.Session) string {
	if s.StartTime == nil || s.EndTime == nil {
		return "-"
	}
	mins := int(s.Duration().Minutes())
	if mins >= 60 {
		return fmt.Sprintf("%dh %dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "number of sessions to show (default from config)")
	listCmd.Flags().StringVarP(&listProject, "project", "p", "", "only sessions whose project path contains this")
	rootCmd.AddCommand(listCmd)
}
