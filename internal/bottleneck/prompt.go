package bottleneck

import "github.com/fakeyudi/aist/internal/session"

const maxPromptChars = 200

// precedingPrompt returns the text of the last user message with content
// before index before, truncated to maxPromptChars.
func precedingPrompt(msgs []session.Message, before int) string {
	if before > len(msgs) {
		before = len(msgs)
	}
	for i := before - 1; i >= 0; i-- {
		if msgs[i].Kind == session.KindUser && msgs[i].Text != "" {
			return truncate(msgs[i].Text, maxPromptChars)
		}
	}
	return ""
}

// truncate cuts s to max characters and appends "..." when it was longer.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
