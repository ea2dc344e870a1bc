// Package bottleneck detects interaction patterns that indicate wasted time.
//
// Every detector is a pure function of one session. Results are derived on
// demand and never persisted.
package bottleneck

import (
	"time"

	"github.com/fakeyudi/aist/internal/session"
)

// Kind identifies a bottleneck variant.
type Kind int

const (
	KindErrorLoop Kind = iota
	KindExplorationSpiral
	KindEditThrashing
	KindLongGap
)

// Kinds lists every Kind in detection order.
var Kinds = []Kind{KindErrorLoop, KindExplorationSpiral, KindEditThrashing, KindLongGap}

func (k Kind) String() string {
	switch k {
	case KindErrorLoop:
		return "error loop"
	case KindExplorationSpiral:
		return "exploration spiral"
	case KindEditThrashing:
		return "edit thrashing"
	case KindLongGap:
		return "long gap"
	}
	return "unknown"
}

// Bottleneck is one detected pattern. The concrete type is one of
// *ErrorLoop, *ExplorationSpiral, *EditThrashing or *LongGap.
type Bottleneck interface {
	Kind() Kind
	// WastedMinutes is an estimate and never negative.
	WastedMinutes() float64
	Source() Origin
}

// Origin is the context shared by every variant.
type Origin struct {
	SessionID string
	Project   string // short project name
	// PrecedingPrompt is the last user text before the pattern began,
	// truncated to 200 characters. Empty when there is none.
	PrecedingPrompt string
}

// Source returns o.
func (o Origin) Source() Origin { return o }

func originOf(s *session.Session, msgIdx int) Origin {
	return Origin{
		SessionID:       s.ID,
		Project:         s.ProjectName(),
		PrecedingPrompt: precedingPrompt(s.Messages, msgIdx),
	}
}

// ErrorLoop is a run of three or more consecutive failed tool results.
type ErrorLoop struct {
	Origin
	ToolName        string // tool of the first failure in the run
	FailureCount    int
	StartTime       *time.Time
	EndTime         *time.Time
	DurationMinutes float64
	ErrorSamples    []string
}

func (*ErrorLoop) Kind() Kind { return KindErrorLoop }
func (e *ErrorLoop) WastedMinutes() float64 { return e.DurationMinutes }

// ExplorationSpiral is a long stretch of reads and searches without an edit.
type ExplorationSpiral struct {
	Origin
	ReadCount       int
	GrepCount       int
	DurationMinutes float64
	StartTime       *time.Time
	FilesSearched   []string
}

func (*ExplorationSpiral) Kind() Kind { return KindExplorationSpiral }
func (e *ExplorationSpiral) WastedMinutes() float64 { return e.DurationMinutes }

// EditThrashing is one file edited five or more times in a session.
type EditThrashing struct {
	Origin
	FilePath        string
	EditCount       int
	FirstEdit       *time.Time
	LastEdit        *time.Time
	DurationMinutes float64
}

func (*EditThrashing) Kind() Kind { return KindEditThrashing }
func (e *EditThrashing) WastedMinutes() float64 { return e.DurationMinutes }

// LongGap is a pause of five minutes or more between consecutive messages.
type LongGap struct {
	Origin
	GapMinutes float64
	Before     time.Time
	After      time.Time
}

func (*LongGap) Kind() Kind { return KindLongGap }
func (g *LongGap) WastedMinutes() float64 { return g.GapMinutes }

// minutesBetween returns b - a in minutes, or 0 when either is unknown.
func minutesBetween(a, b *time.Time) float64 {
	if a == nil || b == nil {
		return 0
	}
	return b.Sub(*a).Minutes()
}
