package bottleneck

import (
	"math"
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

const minThrashEdits = 5

type fileEdits struct {
	path     string
	count    int
	first    *time.Time
	last     *time.Time
	firstIdx int
}

// EditThrashings finds files edited five or more times. Results follow the
// order in which each file was first edited.
func EditThrashings(s *session.Session) []Bottleneck {
	var order []*fileEdits
	byPath := make(map[string]*fileEdits)

	for i := range s.Messages {
		msg := &s.Messages[i]
		if msg.Kind != session.KindAssistant {
			continue
		}
		for _, c := range msg.ToolCalls {
			if !c.IsEdit() {
				continue
			}
			path, ok := c.FilePath()
			if !ok {
				continue
			}
			fe, ok := byPath[path]
			if !ok {
				fe = &fileEdits{path: path, firstIdx: i}
				byPath[path] = fe
				order = append(order, fe)
			}
			fe.count++
			if ts := msg.Timestamp; ts != nil {
				if fe.first == nil {
					fe.first = ts
				}
				fe.last = ts
			}
		}
	}

	var found []Bottleneck
	for _, fe := range order {
		if fe.count < minThrashEdits {
			continue
		}
		found = append(found, &EditThrashing{
			Origin:          originOf(s, fe.firstIdx),
			FilePath:        fe.path,
			EditCount:       fe.count,
			FirstEdit:       fe.first,
			LastEdit:        fe.last,
			DurationMinutes: math.Max(1.0, minutesBetween(fe.first, fe.last)),
		})
	}
	return found
}
