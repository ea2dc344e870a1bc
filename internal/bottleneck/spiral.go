package bottleneck

import (
	"math"
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

const (
	minSpiralCalls   = 10
	minSpiralMinutes = 10.0
)

// spiralWindow is the exploration state since the last edit. The window
// opens at the first read or search after an edit and closes at the next
// edit or at session end.
type spiralWindow struct {
	open     bool
	start    *time.Time // first timestamped read/search in the window
	startIdx int
	lastSeen *time.Time // most recent timestamped read/search
	reads    int
	greps    int
	files    []string
	seen     map[string]bool
}

// observe records one read or search call made in message idx.
func (w *spiralWindow) observe(c session.ToolCall, at *time.Time, idx int) {
	if !w.open {
		w.open = true
		w.startIdx = idx
	}
	if w.start == nil && at != nil {
		w.start = at
		w.startIdx = idx
	}
	if at != nil {
		w.lastSeen = at
	}

	switch c.Name {
	case "Read":
		w.reads++
		if p, ok := c.FilePath(); ok && !w.seen[p] {
			if w.seen == nil {
				w.seen = make(map[string]bool)
			}
			w.seen[p] = true
			w.files = append(w.files, p)
		}
	case "Grep", "Glob":
		w.greps++
	}
}

func (w *spiralWindow) calls() int { return w.reads + w.greps }

// elapsed returns the window length in minutes, closing at end, then the
// last read/search, then the window start. Never negative.
func (w *spiralWindow) elapsed(end *time.Time) float64 {
	if w.start == nil {
		return 0
	}
	if end == nil {
		end = w.lastSeen
	}
	return math.Max(0, minutesBetween(w.start, end))
}

// spiral returns the window as a bottleneck if it qualifies.
func (w *spiralWindow) spiral(s *session.Session, end *time.Time) (*ExplorationSpiral, bool) {
	if !w.open || w.start == nil || w.calls() < minSpiralCalls {
		return nil, false
	}
	minutes := w.elapsed(end)
	if minutes < minSpiralMinutes {
		return nil, false
	}
	return &ExplorationSpiral{
		Origin:          originOf(s, w.startIdx),
		ReadCount:       w.reads,
		GrepCount:       w.greps,
		DurationMinutes: minutes,
		StartTime:       w.start,
		FilesSearched:   append([]string(nil), w.files...),
	}, true
}

func (w *spiralWindow) reset() {
	*w = spiralWindow{}
}

// ExplorationSpirals finds windows of at least ten reads and searches
// spanning ten minutes or more before an edit, or before session end.
func ExplorationSpirals(s *session.Session) []Bottleneck {
	var (
		found []Bottleneck
		w     spiralWindow
	)
	for i := range s.Messages {
		msg := &s.Messages[i]
		if msg.Kind != session.KindAssistant {
			continue
		}
		for _, c := range msg.ToolCalls {
			switch c.Name {
			case "Read", "Grep", "Glob":
				w.observe(c, msg.Timestamp, i)
			case "Edit", "Write":
				if sp, ok := w.spiral(s, msg.Timestamp); ok {
					found = append(found, sp)
				}
				w.reset()
			}
		}
	}

	if s.EndTime != nil {
		if sp, ok := w.spiral(s, s.EndTime); ok {
			found = append(found, sp)
		}
	}
	return found
}
