package bottleneck

import (
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

// LongGapThreshold is the pause length that counts as a long gap.
const LongGapThreshold = 5 * time.Minute

// LongGaps finds pauses of at least five minutes between consecutive
// timestamped messages.
func LongGaps(s *session.Session) []Bottleneck {
	var (
		found   []Bottleneck
		prev    *time.Time
		prevIdx int
	)
	for i := range s.Messages {
		ts := s.Messages[i].Timestamp
		if ts == nil {
			continue
		}
		if prev != nil {
			if gap := ts.Sub(*prev); gap >= LongGapThreshold {
				found = append(found, &LongGap{
					Origin:     originOf(s, prevIdx+1),
					GapMinutes: gap.Minutes(),
					Before:     *prev,
					After:      *ts,
				})
			}
		}
		prev = ts
		prevIdx = i
	}
	return found
}
