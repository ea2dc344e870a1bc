package activity

import (
	"sort"
	"strings"
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

// EventKind tags one entry of a session event log.
type EventKind int

const (
	EventStart EventKind = iota
	EventTool
	EventError
	EventEnd
)

const maxErrorText = 50

// Event is one timestamped entry of a session's event log.
type Event struct {
	Time time.Time
	Kind EventKind
	Tool string // set for EventTool
	Text string
	// Succeeded marks a Bash call not immediately followed by an error.
	Succeeded bool
}

// Events lists the session start and end, every timestamped tool call and
// every failed tool result, ordered by time.
func Events(s *session.Session) []Event {
	var events []Event
	if s.StartTime != nil {
		events = append(events, Event{Time: *s.StartTime, Kind: EventStart, Text: "Session start"})
	}
	for i := range s.Messages {
		msg := &s.Messages[i]
		if msg.Timestamp == nil {
			continue
		}
		for _, c := range msg.ToolCalls {
			events = append(events, Event{Time: *msg.Timestamp, Kind: EventTool, Tool: c.Name, Text: c.Describe()})
		}
		for _, r := range msg.ToolResults {
			if r.Failed() {
				events = append(events, Event{Time: *msg.Timestamp, Kind: EventError, Text: "Error: " + errorText(r.Content)})
			}
		}
	}
	if s.EndTime != nil {
		events = append(events, Event{Time: *s.EndTime, Kind: EventEnd, Text: "Session end"})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })

	for i := range events {
		if events[i].Tool != "Bash" {
			continue
		}
		events[i].Succeeded = i+1 >= len(events) || events[i+1].Kind != EventError
	}
	return events
}

// errorText flattens content to one line of at most maxErrorText characters.
func errorText(content string) string {
	r := []rune(strings.Join(strings.Fields(content), " "))
	if len(r) > maxErrorText {
		return string(r[:maxErrorText-3]) + "..."
	}
	return string(r)
}
