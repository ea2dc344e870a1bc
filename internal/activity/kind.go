// Package activity classifies session time into activity spans.
package activity

// Kind is the activity classification of a span.
type Kind int

const (
	Productive Kind = iota // file edits
	Reading                // reads and searches
	Executing              // shell commands
	Error                  // failed tool results
	Gap                    // idle pauses
	Thinking               // everything else
)

// Kinds lists every Kind in display order.
var Kinds = []Kind{Productive, Reading, Executing, Error, Gap, Thinking}

func (k Kind) String() string {
	switch k {
	case Productive:
		return "productive"
	case Reading:
		return "reading"
	case Executing:
		return "executing"
	case Error:
		return "error"
	case Gap:
		return "gap"
	case Thinking:
		return "thinking"
	}
	return "unknown"
}

// Style is the presentation of a Kind: a display label and a color hint
// in hex form. Renderers map the hint onto their own palette.
type Style struct {
	Label string
	Color string
}

// StyleOf returns the presentation of k.
func StyleOf(k Kind) Style {
	switch k {
	case Productive:
		return Style{"Productive", "#4ade80"}
	case Reading:
		return Style{"Reading/Search", "#facc15"}
	case Executing:
		return Style{"Executing", "#60a5fa"}
	case Error:
		return Style{"Error", "#f87171"}
	case Gap:
		return Style{"Gap/Pause", "#9ca3af"}
	case Thinking:
		return Style{"Thinking", "#c4b5fd"}
	}
	return Style{"Unknown", "#ffffff"}
}
