package bottleneck

import (
	"sort"

	"github.com/fakeyudi/aist/internal/session"
)

// Detector is one detection pass over a session.
type Detector func(*session.Session) []Bottleneck

// Detectors lists every pass in the order results are concatenated.
var Detectors = []Detector{ErrorLoops, ExplorationSpirals, EditThrashings, LongGaps}

// Detect runs every detector on s.
func Detect(s *session.Session) []Bottleneck {
	var found []Bottleneck
	for _, d := range Detectors {
		found = append(found, d(s)...)
	}
	return found
}

// DetectAll runs every detector on every session and returns the results
// ordered by wasted minutes, highest first. Ties keep detection order.
func DetectAll(sessions []*session.Session) []Bottleneck {
	var found []Bottleneck
	for _, s := range sessions {
		found = append(found, Detect(s)...)
	}
	Rank(found)
	return found
}

// Rank sorts bs by wasted minutes, highest first, keeping the relative
// order of equal entries.
func Rank(bs []Bottleneck) {
	sort.SliceStable(bs, func(i, j int) bool {
		return bs[i].WastedMinutes() > bs[j].WastedMinutes()
	})
}

// TotalMinutes sums the wasted minutes of bs.
func TotalMinutes(bs []Bottleneck) float64 {
	var total float64
	for _, b := range bs {
		total += b.WastedMinutes()
	}
	return total
}
