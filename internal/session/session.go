package session

import (
	"strings"
	"time"
)

// MessageKind is the transcript line type.
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindUser
	KindAssistant
	KindSystem
	KindSummary
	KindFileHistorySnapshot
)

// ParseKind maps a transcript "type" value to a MessageKind.
// Unrecognised values map to KindUnknown.
func ParseKind(s string) MessageKind {
	switch s {
	case "user":
		return KindUser
	case "assistant":
		return KindAssistant
	case "system":
		return KindSystem
	case "summary":
		return KindSummary
	case "file-history-snapshot":
		return KindFileHistorySnapshot
	}
	return KindUnknown
}

func (k MessageKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAssistant:
		return "assistant"
	case KindSystem:
		return "system"
	case KindSummary:
		return "summary"
	case KindFileHistorySnapshot:
		return "file-history-snapshot"
	}
	return "unknown"
}

// Session is one normalized transcript file.
type Session struct {
	ID      string
	Project string // working directory, unmodified
	Path    string // transcript file the session was built from
	Branch  string // empty when the transcript never names one
	// Messages are kept in file order.
	Messages []Message
	// StartTime and EndTime are the min and max message timestamps,
	// both nil when no message carries one.
	StartTime    *time.Time
	EndTime      *time.Time
	InputTokens  uint64 // input + cache-creation input
	OutputTokens uint64
}

// Duration returns EndTime - StartTime, or zero when either is unknown.
func (s *Session) Duration() time.Duration {
	if s.StartTime == nil || s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(*s.StartTime)
}

// ProjectName returns the last non-empty segment of the project path.
func (s *Session) ProjectName() string {
	return ProjectName(s.Project)
}

// ProjectName returns the last non-empty "/"-separated segment of path,
// or "unknown" if there is none.
func ProjectName(path string) string {
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return "unknown"
}

// ShortID returns at most the first n characters of the session id.
func (s *Session) ShortID(n int) string {
	if len(s.ID) <= n {
		return s.ID
	}
	return s.ID[:n]
}

// Message is one decoded transcript line.
type Message struct {
	Kind        MessageKind
	Timestamp   *time.Time
	ToolCalls   []ToolCall
	ToolResults []ToolResult
	// Text is the newline-joined text content; empty means none.
	Text string
}

// HasError reports whether any tool result in m failed.
func (m *Message) HasError() bool {
	for _, r := range m.ToolResults {
		if r.Failed() {
			return true
		}
	}
	return false
}

// ToolCall is a tool invocation made by the assistant.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

// StringInput returns Input[key] when it is a string.
func (c ToolCall) StringInput(key string) (string, bool) {
	if c.Input == nil {
		return "", false
	}
	v, ok := c.Input[key].(string)
	return v, ok
}

// FilePath returns the "file_path" input, if any.
func (c ToolCall) FilePath() (string, bool) {
	return c.StringInput("file_path")
}

// IsEdit reports whether the call modifies a file.
func (c ToolCall) IsEdit() bool {
	return c.Name == "Edit" || c.Name == "Write"
}

// ToolResult is the outcome of a tool invocation, reported back in a user line.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

var errorMarkers = []string{
	"error",
	"failed",
	"not found",
	"permission denied",
	"no such file",
	"command not found",
	"exit code",
}

// LooksLikeError reports whether content reads like a failure message.
// Some tools only report failure in text, not via the error flag.
func LooksLikeError(content string) bool {
	lower := strings.ToLower(content)
	for _, m := range errorMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Failed reports whether the result is flagged as an error or looks like one.
func (r ToolResult) Failed() bool {
	return r.IsError || LooksLikeError(r.Content)
}
