package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/activity"
	"github.com/fakeyudi/aist/internal/bottleneck"
)

// ── Styles ────────────

var (
	boldStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

func bottleneckStyle(k bottleneck.Kind) lipgloss.Style {
	color := map[bottleneck.Kind]string{
		bottleneck.KindErrorLoop:         "196",
		bottleneck.KindExplorationSpiral: "220",
		bottleneck.KindEditThrashing:     "201",
		bottleneck.KindLongGap:           "39",
	}[k]
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

func activityStyle(k activity.Kind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(activity.StyleOf(k).Color))
}

func efficiencyStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 80:
		return goodStyle
	case pct >= 60:
		return warnStyle
	}
	return badStyle
}

// section prints a bold title underlined with ch.
func section(w io.Writer, title, ch string) {
	fmt.Fprintln(w, boldStyle.Render(title))
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat(ch, max(len(title), 10))))
}

func warn(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
}

// displayPath replaces the home directory prefix with "~".
func displayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rest, ok := strings.CutPrefix(path, home); ok && (rest == "" || rest[0] == '/') {
		return "~" + rest
	}
	return path
}

// clipLeft keeps the last n characters of s, prefixed with "...".
func clipLeft(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "..." + string(r[len(r)-(n-3):])
}

// clip keeps the first n characters of s, suffixed with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// shortID returns the first ten characters of a session id.
func shortID(id string) string {
	if len(id) <= 10 {
		return id
	}
	return id[:10]
}
