package bottleneck

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/aist/internal/session"
)

// exploration returns n read/search messages evenly spread over span
// minutes starting at minute start, followed by nothing.
func exploration(n int, start, span float64) []session.Message {
	msgs := make([]session.Message, n)
	for i := range msgs {
		m := start
		if n > 1 {
			m += span * float64(i) / float64(n-1)
		}
		name := "Read"
		if i%3 == 2 {
			name = "Grep"
		}
		msgs[i] = asst(mins(m), call(name, fmt.Sprintf("/src/f%d.go", i%4)))
	}
	return msgs
}

func TestExplorationSpiralThreshold(t *testing.T) {
	nine := append(exploration(9, 0, 15), asst(mins(16), call("Edit", "/src/a.go")))
	if found := ExplorationSpirals(sess(nine...)); len(found) != 0 {
		t.Errorf("9 calls: want no spiral, got %d", len(found))
	}

	ten := append(exploration(10, 0, 15), asst(mins(16), call("Edit", "/src/a.go")))
	found := ExplorationSpirals(sess(ten...))
	if len(found) != 1 {
		t.Fatalf("10 calls: want 1 spiral, got %d", len(found))
	}
	sp := found[0].(*ExplorationSpiral)
	if sp.ReadCount+sp.GrepCount != 10 {
		t.Errorf("calls: want 10, got %d+%d", sp.ReadCount, sp.GrepCount)
	}
	if sp.DurationMinutes != 16 {
		t.Errorf("DurationMinutes: want 16 (window start to edit), got %v", sp.DurationMinutes)
	}
	if len(sp.FilesSearched) != 4 {
		t.Errorf("FilesSearched: want 4 distinct, got %v", sp.FilesSearched)
	}
}

func TestExplorationSpiralTooShort(t *testing.T) {
	msgs := append(exploration(20, 0, 8), asst(mins(9), call("Write", "/src/a.go")))
	if found := ExplorationSpirals(sess(msgs...)); len(found) != 0 {
		t.Errorf("9 minute window: want no spiral, got %d", len(found))
	}
}

func TestExplorationSpiralResetsAfterEdit(t *testing.T) {
	var msgs []session.Message
	msgs = append(msgs, exploration(6, 0, 10)...)
	msgs = append(msgs, asst(mins(11), call("Edit", "/src/a.go")))
	msgs = append(msgs, exploration(6, 12, 10)...)
	msgs = append(msgs, asst(mins(23), call("Edit", "/src/a.go")))
	if found := ExplorationSpirals(sess(msgs...)); len(found) != 0 {
		t.Errorf("counters must reset at each edit, got %d spirals", len(found))
	}
}

func TestExplorationSpiralTrailing(t *testing.T) {
	msgs := append([]session.Message{prompt(mins(0), "where is the config loaded?")}, exploration(12, 1, 10)...)
	msgs = append(msgs, prompt(mins(20), "still there?"))

	found := ExplorationSpirals(sess(msgs...))
	if len(found) != 1 {
		t.Fatalf("want 1 trailing spiral, got %d", len(found))
	}
	sp := found[0].(*ExplorationSpiral)
	if sp.DurationMinutes != 19 {
		t.Errorf("DurationMinutes: want 19 (to session end), got %v", sp.DurationMinutes)
	}
	if sp.PrecedingPrompt != "where is the config loaded?" {
		t.Errorf("PrecedingPrompt: got %q", sp.PrecedingPrompt)
	}
}

func TestExplorationSpiralUntimestampedEdit(t *testing.T) {
	msgs := append(exploration(10, 0, 12), asst(nil, call("Edit", "/src/a.go")))
	msgs = append(msgs, prompt(mins(60), "later"))
	found := ExplorationSpirals(sess(msgs...))
	if len(found) != 1 {
		t.Fatalf("want 1 spiral, got %d", len(found))
	}
	if d := found[0].WastedMinutes(); d != 12 {
		t.Errorf("want window closed at last read (12m), got %v", d)
	}
}

func TestSpiralWindowState(t *testing.T) {
	var w spiralWindow
	if w.elapsed(nil) != 0 {
		t.Error("empty window should have zero elapsed time")
	}

	w.observe(call("Glob", ""), nil, 3)
	if !w.open || w.start != nil || w.startIdx != 3 {
		t.Errorf("untimestamped first call: got %+v", w)
	}
	w.observe(call("Read", "/a.go"), mins(5), 4)
	w.observe(call("Read", "/a.go"), mins(2), 5)
	if w.start == nil || !w.start.Equal(*mins(5)) || w.startIdx != 4 {
		t.Errorf("window should start at first timestamped call: %+v", w)
	}
	if w.reads != 2 || w.greps != 1 || len(w.files) != 1 {
		t.Errorf("counters: reads=%d greps=%d files=%v", w.reads, w.greps, w.files)
	}
	if e := w.elapsed(nil); e != 0 {
		t.Errorf("elapsed must never be negative, got %v", e)
	}
	if e := w.elapsed(mins(15)); e != 10 {
		t.Errorf("elapsed to edit: want 10, got %v", e)
	}

	w.reset()
	if w.open || w.calls() != 0 || w.start != nil {
		t.Errorf("reset left state behind: %+v", w)
	}
}

// Feature: aist, Property 5: Exploration spirals need ten calls over ten minutes
func TestExplorationSpiralCallThreshold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 25).Draw(t, "calls")
		span := rapid.Float64Range(10, 60).Draw(t, "span_minutes")
		msgs := append(exploration(n, 0, span), asst(mins(span), call("Edit", "/src/a.go")))

		found := ExplorationSpirals(sess(msgs...))
		if n < 10 {
			if len(found) != 0 {
				t.Fatalf("%d calls: want no spiral, got %d", n, len(found))
			}
			return
		}
		if len(found) != 1 {
			t.Fatalf("%d calls over %.1fm: want 1 spiral, got %d", n, span, len(found))
		}
		sp := found[0].(*ExplorationSpiral)
		if sp.ReadCount+sp.GrepCount != n {
			t.Fatalf("calls: want %d, got %d", n, sp.ReadCount+sp.GrepCount)
		}
	})
}
