package bottleneck

import (
	"math"
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

const (
	minLoopFailures = 3
	maxErrorSamples = 3
	maxSampleChars  = 100
)

// toolOutcome is one tool result paired with a best-effort tool name.
type toolOutcome struct {
	tool    string
	failed  bool
	content string
	at      *time.Time
	msgIdx  int
}

// toolNamer associates results with the call that produced them. Transcripts
// do not guarantee call ids, so the most recent call's name stands in when
// an id is missing or unknown.
type toolNamer struct {
	byID map[string]string
	last string
}

func (n *toolNamer) observe(c session.ToolCall) {
	if c.ID != "" {
		if n.byID == nil {
			n.byID = make(map[string]string)
		}
		n.byID[c.ID] = c.Name
	}
	n.last = c.Name
}

func (n *toolNamer) name(r session.ToolResult) string {
	if name, ok := n.byID[r.ToolUseID]; ok && r.ToolUseID != "" {
		return name
	}
	if n.last != "" {
		return n.last
	}
	return "unknown"
}

// outcomes lists tool results from user messages in session order.
func outcomes(s *session.Session) []toolOutcome {
	var (
		out   []toolOutcome
		namer toolNamer
	)
	for i := range s.Messages {
		msg := &s.Messages[i]
		switch msg.Kind {
		case session.KindAssistant:
			for _, c := range msg.ToolCalls {
				namer.observe(c)
			}
		case session.KindUser:
			for _, r := range msg.ToolResults {
				out = append(out, toolOutcome{
					tool:    namer.name(r),
					failed:  r.Failed(),
					content: r.Content,
					at:      msg.Timestamp,
					msgIdx:  i,
				})
			}
		}
	}
	return out
}

// ErrorLoops finds maximal runs of at least three consecutive failed tool
// results. Runs are split only by a success, not by a change of tool.
func ErrorLoops(s *session.Session) []Bottleneck {
	var found []Bottleneck
	results := outcomes(s)

	for i := 0; i < len(results); {
		if !results[i].failed {
			i++
			continue
		}
		j := i + 1
		for j < len(results) && results[j].failed {
			j++
		}
		run := results[i:j]
		if len(run) >= minLoopFailures {
			first, last := run[0], run[len(run)-1]
			var samples []string
			for _, r := range run {
				if len(samples) == maxErrorSamples {
					break
				}
				samples = append(samples, truncate(r.content, maxSampleChars))
			}
			found = append(found, &ErrorLoop{
				Origin:          originOf(s, first.msgIdx),
				ToolName:        first.tool,
				FailureCount:    len(run),
				StartTime:       first.at,
				EndTime:         last.at,
				DurationMinutes: math.Max(1.0, minutesBetween(first.at, last.at)),
				ErrorSamples:    samples,
			})
		}
		i = j
	}
	return found
}
