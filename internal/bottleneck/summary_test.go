package bottleneck

import (
	"reflect"
	"testing"
)

func TestSummarize(t *testing.T) {
	bs := []Bottleneck{
		&ErrorLoop{DurationMinutes: 2},
		&LongGap{GapMinutes: 30},
		&ErrorLoop{DurationMinutes: 3},
		&EditThrashing{DurationMinutes: 10},
	}
	got := Summarize(bs)
	want := []Summary{
		{Kind: KindLongGap, Count: 1, TotalMinutes: 30, Description: "1 pauses over 5 minutes"},
		{Kind: KindEditThrashing, Count: 1, TotalMinutes: 10, Description: "1 files edited repeatedly"},
		{Kind: KindErrorLoop, Count: 2, TotalMinutes: 5, Description: "2 consecutive failures"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summarize:\n got %+v\nwant %+v", got, want)
	}
	if len(Summarize(nil)) != 0 {
		t.Error("no bottlenecks should summarize to nothing")
	}
}

func TestKindText(t *testing.T) {
	tests := []struct {
		kind  Kind
		name  string
		title string
	}{
		{KindErrorLoop, "error loop", "Error loops"},
		{KindExplorationSpiral, "exploration spiral", "Exploration spirals"},
		{KindEditThrashing, "edit thrashing", "Edit thrashing"},
		{KindLongGap, "long gap", "Long gaps"},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.name || tt.kind.Title() != tt.title {
			t.Errorf("%d: got %q/%q", tt.kind, tt.kind.String(), tt.kind.Title())
		}
		if Suggestion(tt.kind) == "" {
			t.Errorf("%s: missing suggestion", tt.name)
		}
	}
}

func TestRecommendations(t *testing.T) {
	if got := Recommendations(nil); len(got) != 1 || got[0] != "No significant bottlenecks detected - keep it up!" {
		t.Errorf("empty: got %v", got)
	}
	got := Recommendations([]Bottleneck{&LongGap{}, &ErrorLoop{}, &LongGap{}})
	want := []string{
		"Check PATH and dependencies for failing tools",
		"Review blocked sessions - unclear requirements?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPattern(t *testing.T) {
	tests := []struct {
		b    Bottleneck
		want string
	}{
		{&ErrorLoop{ToolName: "Bash", FailureCount: 4}, "Bash failed 4 times in a row"},
		{&ExplorationSpiral{ReadCount: 8, GrepCount: 3}, "8 Read + 3 Grep calls with no Edit"},
		{&EditThrashing{FilePath: "/src/a.go", EditCount: 6}, "/src/a.go edited 6 times"},
		{&LongGap{GapMinutes: 12.4}, "12 minute gap between actions"},
	}
	for _, tt := range tests {
		if got := Pattern(tt.b); got != tt.want {
			t.Errorf("Pattern(%s) = %q, want %q", tt.b.Kind(), got, tt.want)
		}
	}
}
