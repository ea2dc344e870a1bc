package bottleneck

import (
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/aist/internal/session"
)

func TestLongGapsThreshold(t *testing.T) {
	short := sess(
		asst(at(0), call("Read", "/a.go")),
		asst(at(4*time.Minute+59*time.Second), call("Read", "/b.go")),
	)
	if found := LongGaps(short); len(found) != 0 {
		t.Errorf("4:59 pause: want none, got %d", len(found))
	}

	exact := sess(
		asst(at(0), call("Read", "/a.go")),
		asst(at(5*time.Minute), call("Read", "/b.go")),
	)
	found := LongGaps(exact)
	if len(found) != 1 {
		t.Fatalf("5:00 pause: want 1, got %d", len(found))
	}
	g := found[0].(*LongGap)
	if math.Abs(g.GapMinutes-5.0) > 1e-9 {
		t.Errorf("GapMinutes: want 5.0, got %v", g.GapMinutes)
	}
	if !g.Before.Equal(base) || !g.After.Equal(base.Add(5*time.Minute)) {
		t.Errorf("bounds: %v .. %v", g.Before, g.After)
	}
}

func TestLongGapsSkipUntimestamped(t *testing.T) {
	s := sess(
		prompt(mins(0), "deploy it"),
		asst(nil, call("Bash", "")),
		asst(mins(3), call("Bash", "")),
		results(nil, ok()),
		results(mins(20), ok()),
	)
	found := LongGaps(s)
	if len(found) != 1 {
		t.Fatalf("want 1 gap, got %d", len(found))
	}
	g := found[0].(*LongGap)
	if g.GapMinutes != 17 {
		t.Errorf("GapMinutes: want 17, got %v", g.GapMinutes)
	}
	if g.PrecedingPrompt != "deploy it" {
		t.Errorf("PrecedingPrompt: got %q", g.PrecedingPrompt)
	}
}

func TestLongGapsPromptBeforeGap(t *testing.T) {
	s := sess(
		asst(mins(0), call("Read", "/a.go")),
		prompt(mins(1), "what about the cache?"),
		asst(mins(30), call("Read", "/b.go")),
	)
	found := LongGaps(s)
	if len(found) != 1 {
		t.Fatalf("want 1 gap, got %d", len(found))
	}
	if p := found[0].Source().PrecedingPrompt; p != "what about the cache?" {
		t.Errorf("PrecedingPrompt: got %q", p)
	}
}

// Feature: aist, Property 6: Every consecutive pause of five minutes or more is a long gap
func TestLongGapsMatchPauses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := rapid.SliceOf(rapid.IntRange(0, 600)).Draw(t, "step_seconds")
		var (
			msgs []session.Message
			now  time.Duration
			want int
		)
		msgs = append(msgs, asst(at(0)))
		for _, sec := range steps {
			d := time.Duration(sec) * time.Second
			if d >= LongGapThreshold {
				want++
			}
			now += d
			msgs = append(msgs, asst(at(now)))
		}

		found := LongGaps(sess(msgs...))
		if len(found) != want {
			t.Fatalf("want %d gaps, got %d", want, len(found))
		}
		for _, b := range found {
			if b.WastedMinutes() < 5.0 {
				t.Fatalf("gap below threshold: %v", b.WastedMinutes())
			}
		}
	})
}
