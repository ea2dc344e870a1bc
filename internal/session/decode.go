package session

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// RawEvent is one decoded transcript line before it is folded into a Session.
type RawEvent struct {
	Kind        MessageKind
	Timestamp   *time.Time
	SessionID   string
	Branch      string
	Cwd         string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
	Text        string
	Usage       *Usage
}

// Usage is the token-usage block carried by assistant lines.
type Usage struct {
	InputTokens              uint64 `json:"input_tokens"`
	OutputTokens             uint64 `json:"output_tokens"`
	CacheCreationInputTokens uint64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64 `json:"cache_read_input_tokens"`
}

// BillableInput returns input plus cache-creation input tokens.
// Cache reads are not billed.
func (u Usage) BillableInput() uint64 {
	return u.InputTokens + u.CacheCreationInputTokens
}

// rawLine mirrors the subset of the transcript schema we read.
type rawLine struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	SessionID string      `json:"sessionId"`
	GitBranch string      `json:"gitBranch"`
	Cwd       string      `json:"cwd"`
	Message   *rawMessage `json:"message"`
}

type rawMessage struct {
	Content json.RawMessage `json:"content"`
	Usage   *Usage          `json:"usage"`
}

type rawContentItem struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

// DecodeLine decodes a single transcript line. It returns false for blank
// or malformed lines; those are skipped, never fatal.
func DecodeLine(line []byte) (RawEvent, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return RawEvent{}, false
	}

	var raw rawLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return RawEvent{}, false
	}

	ev := RawEvent{
		Kind:      ParseKind(raw.Type),
		Timestamp: parseTimestamp(raw.Timestamp),
		SessionID: raw.SessionID,
		Branch:    raw.GitBranch,
		Cwd:       raw.Cwd,
	}
	if raw.Message != nil {
		ev.Usage = raw.Message.Usage
		ev.ToolCalls, ev.ToolResults, ev.Text = decodeContent(raw.Message.Content)
	}
	return ev, true
}

// parseTimestamp returns nil for missing or unparsable timestamps.
func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// decodeContent splits a message content payload into tool calls, tool
// results, and joined text. A bare string payload is treated as one text item.
func decodeContent(data json.RawMessage) ([]ToolCall, []ToolResult, string) {
	if len(data) == 0 {
		return nil, nil, ""
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return nil, nil, s
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil, ""
	}

	var (
		calls   []ToolCall
		results []ToolResult
		texts   []string
	)
	for _, itemData := range items {
		var item rawContentItem
		if err := json.Unmarshal(itemData, &item); err != nil {
			continue
		}
		switch item.Type {
		case "text":
			if item.Text != "" {
				texts = append(texts, item.Text)
			}
		case "tool_use":
			name := item.Name
			if name == "" {
				name = "unknown"
			}
			calls = append(calls, ToolCall{
				ID:    item.ID,
				Name:  name,
				Input: decodeInput(item.Input),
			})
		case "tool_result":
			results = append(results, ToolResult{
				ToolUseID: item.ToolUseID,
				Content:   resultText(item.Content),
				IsError:   item.IsError,
			})
		}
	}
	return calls, results, strings.Join(texts, "\n")
}

// decodeInput returns the tool input as a map. Non-object inputs are kept
// under the "_" key so callers reading named keys see them as absent.
func decodeInput(data json.RawMessage) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"_": v}
}

// resultText returns a string payload as-is and any other JSON value in
// its compact encoded form.
func resultText(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}
