// Package metrics derives usage figures from sessions: tool counts, errors,
// durations and per-project totals.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

// SessionMetrics summarises one session.
type SessionMetrics struct {
	DurationMinutes   float64
	ToolCounts        map[string]int
	TotalToolCalls    int
	Errors            int // results flagged or matching the error heuristic
	UserMessages      int
	AssistantMessages int
	FilesRead         []string // distinct, first-seen order
	FilesEdited       []string
}

// ProjectMetrics totals the sessions of one project.
type ProjectMetrics struct {
	Sessions        int
	DurationMinutes float64
	ToolCalls       int
	Errors          int
}

// Totals is the aggregate over a set of sessions.
type Totals struct {
	Sessions        int
	DurationMinutes float64
	ToolCalls       int
	Errors          int
	InputTokens     uint64
	OutputTokens    uint64
	ToolCounts      map[string]int
	// ByProject is keyed by short project name.
	ByProject map[string]*ProjectMetrics
}

// Calculate computes the metrics of s.
func Calculate(s *session.Session) SessionMetrics {
	m := SessionMetrics{ToolCounts: make(map[string]int)}
	read := make(map[string]bool)
	edited := make(map[string]bool)

	for i := range s.Messages {
		msg := &s.Messages[i]
		switch msg.Kind {
		case session.KindUser:
			m.UserMessages++
		case session.KindAssistant:
			m.AssistantMessages++
		}

		for _, c := range msg.ToolCalls {
			m.ToolCounts[c.Name]++
			m.TotalToolCalls++

			path, ok := c.FilePath()
			if !ok {
				continue
			}
			switch {
			case c.Name == "Read" && !read[path]:
				read[path] = true
				m.FilesRead = append(m.FilesRead, path)
			case c.IsEdit() && !edited[path]:
				edited[path] = true
				m.FilesEdited = append(m.FilesEdited, path)
			}
		}

		for _, r := range msg.ToolResults {
			if r.Failed() {
				m.Errors++
			}
		}
	}

	// Whole seconds, so sub-second jitter never shows up as a fraction.
	m.DurationMinutes = float64(s.Duration()/time.Second) / 60
	return m
}

// Aggregate totals the metrics of every session.
func Aggregate(sessions []*session.Session) Totals {
	t := Totals{
		Sessions:   len(sessions),
		ToolCounts: make(map[string]int),
		ByProject:  make(map[string]*ProjectMetrics),
	}
	for _, s := range sessions {
		m := Calculate(s)
		t.DurationMinutes += m.DurationMinutes
		t.ToolCalls += m.TotalToolCalls
		t.Errors += m.Errors
		t.InputTokens += s.InputTokens
		t.OutputTokens += s.OutputTokens
		for name, n := range m.ToolCounts {
			t.ToolCounts[name] += n
		}

		name := s.ProjectName()
		p, ok := t.ByProject[name]
		if !ok {
			p = &ProjectMetrics{}
			t.ByProject[name] = p
		}
		p.Sessions++
		p.DurationMinutes += m.DurationMinutes
		p.ToolCalls += m.TotalToolCalls
		p.Errors += m.Errors
	}
	return t
}

// ToolCount is one entry of a ranked tool list.
type ToolCount struct {
	Name  string
	Count int
}

// TopTools returns tool counts sorted by count, highest first, then by name.
// n <= 0 returns every tool.
func (t Totals) TopTools(n int) []ToolCount {
	out := make([]ToolCount, 0, len(t.ToolCounts))
	for name, c := range t.ToolCounts {
		out = append(out, ToolCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Projects returns the project names sorted by duration, longest first.
func (t Totals) Projects() []string {
	names := make([]string, 0, len(t.ByProject))
	for name := range t.ByProject {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := t.ByProject[names[i]], t.ByProject[names[j]]
		if a.DurationMinutes != b.DurationMinutes {
			return a.DurationMinutes > b.DurationMinutes
		}
		return names[i] < names[j]
	})
	return names
}

// PeriodCutoff returns the earliest end time kept for period, and false
// when the period is unbounded.
func PeriodCutoff(period string, now time.Time) (time.Time, bool) {
	switch strings.ToLower(period) {
	case "day":
		return now.AddDate(0, 0, -1), true
	case "week":
		return now.AddDate(0, 0, -7), true
	case "month":
		return now.AddDate(0, 0, -30), true
	}
	return time.Time{}, false
}

// FilterByPeriod keeps sessions that ended within period of now. Periods
// other than day, week and month keep every session. Sessions with no end
// time are dropped from bounded periods.
func FilterByPeriod(sessions []*session.Session, period string, now time.Time) []*session.Session {
	cutoff, bounded := PeriodCutoff(period, now)
	if !bounded {
		return sessions
	}
	var kept []*session.Session
	for _, s := range sessions {
		if s.EndTime != nil && !s.EndTime.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	return kept
}
