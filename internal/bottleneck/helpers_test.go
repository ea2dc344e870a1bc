package bottleneck

import (
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

var base = time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)

// at returns base plus d.
func at(d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

func mins(m float64) *time.Time {
	return at(time.Duration(m * float64(time.Minute)))
}

func call(name, path string) session.ToolCall {
	c := session.ToolCall{Name: name}
	if path != "" {
		c.Input = map[string]any{"file_path": path}
	}
	return c
}

func asst(ts *time.Time, calls ...session.ToolCall) session.Message {
	return session.Message{Kind: session.KindAssistant, Timestamp: ts, ToolCalls: calls}
}

func results(ts *time.Time, rs ...session.ToolResult) session.Message {
	return session.Message{Kind: session.KindUser, Timestamp: ts, ToolResults: rs}
}

func fail(content string) session.ToolResult {
	return session.ToolResult{Content: content, IsError: true}
}

func ok() session.ToolResult {
	return session.ToolResult{Content: "done"}
}

func prompt(ts *time.Time, text string) session.Message {
	return session.Message{Kind: session.KindUser, Timestamp: ts, Text: text}
}

// sess builds a session with time bounds computed from msgs.
func sess(msgs ...session.Message) *session.Session {
	s := &session.Session{ID: "session-1", Project: "/home/dev/app", Messages: msgs}
	for _, m := range msgs {
		if m.Timestamp == nil {
			continue
		}
		if s.StartTime == nil || m.Timestamp.Before(*s.StartTime) {
			s.StartTime = m.Timestamp
		}
		if s.EndTime == nil || m.Timestamp.After(*s.EndTime) {
			s.EndTime = m.Timestamp
		}
	}
	return s
}
