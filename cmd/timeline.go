package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/activity"
	"github.com/fakeyudi/aist/internal/bottleneck"
	"github.com/fakeyudi/aist/internal/metrics"
	"github.com/fakeyudi/aist/internal/picker"
	"github.com/fakeyudi/aist/internal/session"
	"github.com/fakeyudi/aist/internal/tui"
)

var (
	timelineProject string
	timelinePlain   bool
	timelinePick    bool
)

var timelineCmd = &cobra.Command{
	Use:   "timeline [session-id|latest]",
	Short: "Show activity, events and bottlenecks of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadSessions(cmd, timelineProject)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			printNoSessions(cmd)
			return nil
		}

		interactive := !timelinePlain && term.IsTerminal(os.Stdout.Fd())

		var s *session.Session
		switch {
		case timelinePick:
			if !term.IsTerminal(os.Stdin.Fd()) {
				return errors.New("--pick needs an interactive terminal")
			}
			session.SortByEndDesc(sessions)
			s, err = picker.SelectSession(sessions)
			if err != nil {
				return err
			}
			if s == nil {
				return nil // cancelled
			}
		default:
			query := "latest"
			if len(args) == 1 {
				query = args[0]
			}
			if query == "latest" {
				s, err = session.Latest(sessions)
			} else {
				s, err = session.FindByID(sessions, query)
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("Use 'aist list' to see available sessions."))
				return err
			}
		}

		if interactive {
			return tui.Run(s)
		}
		printTimeline(cmd.OutOrStdout(), s)
		return nil
	},
}

// printTimeline writes a plain-text rendition of s.
func printTimeline(out io.Writer, s *session.Session) {
	branch := s.Branch
	if branch == "" {
		branch = "unknown"
	}
	fmt.Fprintf(out, "%s: %s\n", boldStyle.Render("SESSION"), s.ShortID(10))
	fmt.Fprintf(out, "%s: %s\n", dimStyle.Render("Project"), displayPath(s.Project))
	fmt.Fprintf(out, "%s: %s\n", dimStyle.Render("Branch"), branch)
	fmt.Fprintf(out, "%s: %s\n\n", dimStyle.Render("Duration"), longDuration(s))

	printActivity(out, activity.Extract(s))

	section(out, "TIMELINE", "─")
	for _, ev := range activity.Events(s) {
		text := ev.Text
		switch {
		case ev.Kind == activity.EventError:
			text = badStyle.Render(text)
		case ev.Succeeded:
			text += " " + goodStyle.Render("✓")
		}
		fmt.Fprintf(out, "%s  %s %s\n", dimStyle.Render(ev.Time.Local().Format("15:04:05")), eventIcon(ev), text)
	}
	fmt.Fprintln(out)

	bs := bottleneck.Detect(s)
	bottleneck.Rank(bs)
	section(out, "BOTTLENECKS", "─")
	if len(bs) == 0 {
		fmt.Fprintln(out, goodStyle.Render("No bottlenecks detected."))
	}
	for _, b := range bs {
		fmt.Fprintf(out, "%s ~%.0f min  %s\n",
			bottleneckStyle(b.Kind()).Render(fmt.Sprintf("%-20s", b.Kind().Title())),
			b.WastedMinutes(), bottleneck.Pattern(b))
	}
	fmt.Fprintln(out)

	printToolSummary(out, s)
}

func printActivity(out io.Writer, spans []activity.Span) {
	section(out, "ACTIVITY", "─")
	if len(spans) == 0 {
		fmt.Fprintln(out, dimStyle.Render("(no timestamped activity)"))
		fmt.Fprintln(out)
		return
	}
	for _, sp := range spans {
		fmt.Fprintf(out, "%s-%s  %s %s\n",
			sp.Start.Local().Format("15:04:05"), sp.End.Local().Format("15:04:05"),
			activityStyle(sp.Kind).Render(fmt.Sprintf("%-14s", activity.StyleOf(sp.Kind).Label)),
			sp.Label)
	}
	fmt.Fprintln(out)
	totals := activity.Totals(spans)
	for _, k := range activity.Kinds {
		if d := totals[k]; d > 0 {
			fmt.Fprintf(out, "  %-14s %s\n", activity.StyleOf(k).Label, metrics.FormatDuration(d.Minutes()))
		}
	}
	fmt.Fprintln(out)
}

func printToolSummary(out io.Writer, s *session.Session) {
	m := metrics.Calculate(s)
	touched := make(map[string]bool)
	for i := range s.Messages {
		for _, c := range s.Messages[i].ToolCalls {
			if p, ok := c.FilePath(); ok {
				touched[p] = true
			}
		}
	}
	var parts []string
	for name, n := range m.ToolCounts {
		parts = append(parts, fmt.Sprintf("%s: %d", name, n))
	}
	sort.Strings(parts)

	section(out, "SUMMARY", "─")
	fmt.Fprintf(out, "%s: %d (%s)\n", dimStyle.Render("Tool calls"), m.TotalToolCalls, strings.Join(parts, ", "))
	errs := "0"
	if m.Errors > 0 {
		errs = fmt.Sprintf("%d (check timeline for details)", m.Errors)
	}
	fmt.Fprintf(out, "%s: %s\n", dimStyle.Render("Errors"), errs)
	fmt.Fprintf(out, "%s: %d\n", dimStyle.Render("Files touched"), len(touched))
}

// longDuration renders a session length as "1 hours 5 minutes" or
// "42 minutes", or "unknown".
func longDuration(s *session.Session) string {
	if s.StartTime == nil || s.EndTime == nil {
		return "unknown"
	}
	mins := int(s.Duration().Minutes())
	if mins >= 60 {
		return fmt.Sprintf("%d hours %d minutes", mins/60, mins%60)
	}
	return fmt.Sprintf("%d minutes", mins)
}

func eventIcon(ev activity.Event) string {
	switch ev.Kind {
	case activity.EventStart:
		return "▶"
	case activity.EventEnd:
		return "⏹"
	case activity.EventError:
		return "✗"
	}
	switch ev.Tool {
	case "Read":
		return "📖"
	case "Edit", "Write":
		return "✏️"
	case "Bash":
		return "🖥️"
	case "Grep", "Glob":
		return "🔍"
	case "Task":
		return "🤖"
	}
	return "•"
}

func init() {
	timelineCmd.Flags().StringVarP(&timelineProject, "project", "p", "", "only sessions whose project path contains this")
	timelineCmd.Flags().BoolVar(&timelinePlain, "plain", false, "plain text output instead of TUI")
	timelineCmd.Flags().BoolVar(&timelinePick, "pick", false, "choose the session with a fuzzy finder")
	rootCmd.AddCommand(timelineCmd)
}
