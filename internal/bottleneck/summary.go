package bottleneck

import (
	"fmt"
	"sort"
)

// maxSummaries caps the per-kind summary list.
const maxSummaries = 5

// Summary aggregates all bottlenecks of one kind.
type Summary struct {
	Kind         Kind
	Count        int
	TotalMinutes float64
	Description  string
}

// Title returns the plural heading for a kind.
func (k Kind) Title() string {
	switch k {
	case KindErrorLoop:
		return "Error loops"
	case KindExplorationSpiral:
		return "Exploration spirals"
	case KindEditThrashing:
		return "Edit thrashing"
	case KindLongGap:
		return "Long gaps"
	}
	return "Other"
}

// Summarize groups bs by kind, ordered by total minutes, highest first.
func Summarize(bs []Bottleneck) []Summary {
	byKind := make(map[Kind]*Summary)
	for _, b := range bs {
		sum, ok := byKind[b.Kind()]
		if !ok {
			sum = &Summary{Kind: b.Kind()}
			byKind[b.Kind()] = sum
		}
		sum.Count++
		sum.TotalMinutes += b.WastedMinutes()
	}

	var out []Summary
	for _, k := range Kinds {
		sum, ok := byKind[k]
		if !ok {
			continue
		}
		sum.Description = describe(k, sum.Count)
		out = append(out, *sum)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalMinutes > out[j].TotalMinutes })
	if len(out) > maxSummaries {
		out = out[:maxSummaries]
	}
	return out
}

func describe(k Kind, count int) string {
	switch k {
	case KindErrorLoop:
		return fmt.Sprintf("%d consecutive failures", count)
	case KindExplorationSpiral:
		return fmt.Sprintf("%d search sessions without edits", count)
	case KindEditThrashing:
		return fmt.Sprintf("%d files edited repeatedly", count)
	case KindLongGap:
		return fmt.Sprintf("%d pauses over 5 minutes", count)
	}
	return fmt.Sprintf("%d occurrences", count)
}

// Suggestion returns the remediation hint shown next to a bottleneck.
func Suggestion(k Kind) string {
	switch k {
	case KindErrorLoop:
		return "Check tool availability and inputs before running"
	case KindExplorationSpiral:
		return "Provide better context upfront (CLAUDE.md, file hints)"
	case KindEditThrashing:
		return "Break down complex changes into smaller tasks"
	case KindLongGap:
		return "Review what caused the pause - unclear requirements?"
	}
	return ""
}

// Recommendations returns one line per kind present in bs.
func Recommendations(bs []Bottleneck) []string {
	present := make(map[Kind]bool)
	for _, b := range bs {
		present[b.Kind()] = true
	}

	var recs []string
	if present[KindErrorLoop] {
		recs = append(recs, "Check PATH and dependencies for failing tools")
	}
	if present[KindExplorationSpiral] {
		recs = append(recs, "Add better context to CLAUDE.md to reduce search time")
	}
	if present[KindEditThrashing] {
		recs = append(recs, "Break down complex changes into smaller, focused tasks")
	}
	if present[KindLongGap] {
		recs = append(recs, "Review blocked sessions - unclear requirements?")
	}
	if len(recs) == 0 {
		recs = append(recs, "No significant bottlenecks detected - keep it up!")
	}
	return recs
}

// Pattern is a one-line description of what b observed.
func Pattern(b Bottleneck) string {
	switch v := b.(type) {
	case *ErrorLoop:
		return fmt.Sprintf("%s failed %d times in a row", v.ToolName, v.FailureCount)
	case *ExplorationSpiral:
		return fmt.Sprintf("%d Read + %d Grep calls with no Edit", v.ReadCount, v.GrepCount)
	case *EditThrashing:
		return fmt.Sprintf("%s edited %d times", v.FilePath, v.EditCount)
	case *LongGap:
		return fmt.Sprintf("%.0f minute gap between actions", v.GapMinutes)
	}
	return b.Kind().String()
}
