package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

// GapThreshold is the idle time after which a Gap span is emitted.
const GapThreshold = 2 * time.Minute

// Span is a half-open interval [Start, End) of one activity kind.
type Span struct {
	Start time.Time
	End   time.Time
	Kind  Kind
	Label string
}

// Duration returns End - Start.
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// run is the open, not yet emitted span.
type run struct {
	start time.Time
	kind  Kind
	label string
}

// Extract walks the session's timestamped messages and returns contiguous,
// non-overlapping spans. Runs of the same kind are merged; the merged span
// keeps the label of the message that opened it.
func Extract(s *session.Session) []Span {
	var (
		spans []Span
		prev  *time.Time
		cur   *run
	)

	for i := range s.Messages {
		msg := &s.Messages[i]
		if msg.Timestamp == nil {
			continue
		}
		ts := *msg.Timestamp
		// Out-of-order stamps are clamped so spans never run backwards.
		if prev != nil && ts.Before(*prev) {
			ts = *prev
		}

		if prev != nil {
			if gap := ts.Sub(*prev).Truncate(time.Second); gap > GapThreshold {
				if cur != nil {
					spans = append(spans, Span{Start: cur.start, End: *prev, Kind: cur.kind, Label: cur.label})
					cur = nil
				}
				spans = append(spans, Span{
					Start: *prev,
					End:   ts,
					Kind:  Gap,
					Label: fmt.Sprintf("%.0fm pause", gap.Minutes()),
				})
			}
		}

		kind, label := Classify(msg)
		switch {
		case cur == nil:
			cur = &run{start: ts, kind: kind, label: label}
		case cur.kind != kind:
			spans = append(spans, Span{Start: cur.start, End: ts, Kind: cur.kind, Label: cur.label})
			cur = &run{start: ts, kind: kind, label: label}
		}

		t := ts
		prev = &t
	}

	if cur != nil && s.EndTime != nil {
		end := *s.EndTime
		if end.Before(cur.start) {
			end = cur.start
		}
		spans = append(spans, Span{Start: cur.start, End: end, Kind: cur.kind, Label: cur.label})
	}
	return spans
}

// Classify returns the activity kind and label of a single message.
func Classify(msg *session.Message) (Kind, string) {
	switch msg.Kind {
	case session.KindAssistant:
		var edit, bash, read bool
		for _, tc := range msg.ToolCalls {
			switch tc.Name {
			case "Edit", "Write", "NotebookEdit":
				edit = true
			case "Bash":
				bash = true
			case "Read", "Grep", "Glob":
				read = true
			}
		}
		label := toolLabel(msg.ToolCalls)
		switch {
		case edit:
			return Productive, label
		case bash:
			return Executing, label
		case read:
			return Reading, label
		}
		return Thinking, label

	case session.KindUser:
		if msg.HasError() {
			return Error, "Error"
		}
		return Thinking, "User input"
	}
	return Thinking, "System"
}

// toolLabel lists distinct tool names, collapsing beyond three.
func toolLabel(calls []session.ToolCall) string {
	var names []string
	seen := make(map[string]bool, len(calls))
	for _, tc := range calls {
		if !seen[tc.Name] {
			seen[tc.Name] = true
			names = append(names, tc.Name)
		}
	}
	switch {
	case len(names) == 0:
		return "Thinking"
	case len(names) <= 3:
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s + %d more", strings.Join(names[:2], ", "), len(names)-2)
}

// Totals sums span durations per kind.
func Totals(spans []Span) map[Kind]time.Duration {
	totals := make(map[Kind]time.Duration, len(Kinds))
	for _, sp := range spans {
		totals[sp.Kind] += sp.Duration()
	}
	return totals
}
