// Package picker offers a fuzzy finder over sessions.
package picker

import (
	"fmt"
	"strings"

	"github.com/koki-develop/go-fzf"

	"github.com/fakeyudi/aist/internal/bottleneck"
	"github.com/fakeyudi/aist/internal/metrics"
	"github.com/fakeyudi/aist/internal/session"
)

// SelectSession presents an interactive fuzzy finder. It returns nil, nil
// when the user cancels.
func SelectSession(sessions []*session.Session) (*session.Session, error) {
	if len(sessions) == 0 {
		return nil, session.ErrNoSession
	}

	f, err := fzf.New(
		fzf.WithPrompt("Sessions > "),
		fzf.WithInputPosition(fzf.InputPositionTop),
		fzf.WithLimit(1),
	)
	if err != nil {
		return nil, err
	}

	idxs, err := f.Find(
		sessions,
		func(i int) string {
			return Line(sessions[i])
		},
		fzf.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 || i >= len(sessions) {
				return ""
			}
			return Preview(sessions[i])
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(idxs) == 0 {
		return nil, nil // User cancelled
	}
	return sessions[idxs[0]], nil
}

// Line is the one-line entry shown for s in the finder.
func Line(s *session.Session) string {
	when := "----------------"
	if s.EndTime != nil {
		when = s.EndTime.Local().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s  %-20s  %s  %s",
		when,
		s.ProjectName(),
		s.ShortID(10),
		metrics.FormatDuration(metrics.Calculate(s).DurationMinutes))
}

// Preview describes s for the finder's preview pane.
func Preview(s *session.Session) string {
	var b strings.Builder
	m := metrics.Calculate(s)

	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "Session: %s\n", s.ID)
	fmt.Fprintf(&b, "Project: %s\n", s.Project)
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	if s.Branch != "" {
		fmt.Fprintf(&b, "Branch: %s\n", s.Branch)
	}
	fmt.Fprintf(&b, "Duration: %s\n", metrics.FormatDuration(m.DurationMinutes))
	fmt.Fprintf(&b, "Messages: %d user / %d assistant\n", m.UserMessages, m.AssistantMessages)
	fmt.Fprintf(&b, "Tool calls: %d (%d errors)\n", m.TotalToolCalls, m.Errors)

	if sums := bottleneck.Summarize(bottleneck.Detect(s)); len(sums) > 0 {
		b.WriteString("\nBottlenecks:\n")
		for _, sum := range sums {
			fmt.Fprintf(&b, "  %s: %d (~%s)\n", sum.Kind.Title(), sum.Count, metrics.FormatDuration(sum.TotalMinutes))
		}
	}
	return b.String()
}
