package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned when a lookup matches no session.
var ErrNoSession = errors.New("no session found")

// FindByID returns the session whose id equals query, or failing that the
// first whose id starts with it. Full UUID queries are compared in
// canonical form so case and braces do not matter.
func FindByID(sessions []*Session, query string) (*Session, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrNoSession
	}
	if u, err := uuid.Parse(q); err == nil {
		q = u.String()
	}

	for _, s := range sessions {
		if canonicalID(s.ID) == q {
			return s, nil
		}
	}
	lower := strings.ToLower(q)
	for _, s := range sessions {
		if strings.HasPrefix(strings.ToLower(s.ID), lower) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w matching %q", ErrNoSession, query)
}

func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

// Latest returns the session with the greatest end time. Sessions without
// an end time are only chosen when none has one.
func Latest(sessions []*Session) (*Session, error) {
	var latest *Session
	for _, s := range sessions {
		if latest == nil || timeLess(latest.EndTime, s.EndTime) {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrNoSession
	}
	return latest, nil
}

// SortByEndDesc orders sessions newest first; sessions without an end time
// go last. The sort is stable.
func SortByEndDesc(sessions []*Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return timeLess(sessions[j].EndTime, sessions[i].EndTime)
	})
}

// timeLess orders optional timestamps with nil before any value.
func timeLess(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

// Describe returns a short human description of the call.
func (c ToolCall) Describe() string {
	switch c.Name {
	case "Read", "Edit", "Write":
		if p, ok := c.FilePath(); ok {
			return c.Name + " " + shortenPath(p)
		}
		return c.Name + " file"
	case "Bash":
		if cmd, ok := c.StringInput("command"); ok {
			return "Bash: " + clip(cmd, 40)
		}
		return "Bash command"
	case "Grep":
		if p, ok := c.StringInput("pattern"); ok {
			return fmt.Sprintf("Grep %q", clip(p, 30))
		}
		return "Grep search"
	case "Glob":
		if p, ok := c.StringInput("pattern"); ok {
			return fmt.Sprintf("Glob %q", p)
		}
		return "Glob search"
	case "Task":
		return "Task (subagent)"
	}
	return c.Name
}

// clip shortens s to max runes, ending in "..." when cut.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func shortenPath(p string) string {
	if len(p) > 50 {
		return filepath.Base(p)
	}
	return p
}
