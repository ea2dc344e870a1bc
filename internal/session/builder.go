package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Builder folds the ordered events of one transcript file into a Session.
type Builder struct {
	path string
	s    Session
}

// NewBuilder returns a Builder for the transcript at path. The path is used
// only for id and project fallbacks.
func NewBuilder(path string) *Builder {
	return &Builder{path: path, s: Session{Path: path}}
}

// Add folds one event into the session. Metadata fields keep the first
// non-empty value seen.
func (b *Builder) Add(ev RawEvent) {
	if b.s.ID == "" {
		b.s.ID = ev.SessionID
	}
	if b.s.Project == "" {
		b.s.Project = ev.Cwd
	}
	if b.s.Branch == "" {
		b.s.Branch = ev.Branch
	}

	if ev.Usage != nil {
		b.s.InputTokens += ev.Usage.BillableInput()
		b.s.OutputTokens += ev.Usage.OutputTokens
	}

	// Unrecognised lines still supply metadata but are not messages, so
	// they do not move the session's time bounds.
	if ev.Kind == KindUnknown {
		return
	}

	if ts := ev.Timestamp; ts != nil {
		if b.s.StartTime == nil || ts.Before(*b.s.StartTime) {
			t := *ts
			b.s.StartTime = &t
		}
		if b.s.EndTime == nil || ts.After(*b.s.EndTime) {
			t := *ts
			b.s.EndTime = &t
		}
	}

	b.s.Messages = append(b.s.Messages, Message{
		Kind:        ev.Kind,
		Timestamp:   ev.Timestamp,
		ToolCalls:   ev.ToolCalls,
		ToolResults: ev.ToolResults,
		Text:        ev.Text,
	})
}

// Session returns the folded session with id and project fallbacks applied.
func (b *Builder) Session() *Session {
	s := b.s
	if s.ID == "" {
		s.ID = idFromPath(b.path)
	}
	if s.Project == "" {
		s.Project = projectFromPath(b.path)
	}
	s.Messages = append([]Message(nil), b.s.Messages...)
	return &s
}

// Build decodes lines in order and returns the resulting Session.
// Malformed lines are skipped.
func Build(path string, lines [][]byte) *Session {
	b := NewBuilder(path)
	for _, line := range lines {
		if ev, ok := DecodeLine(line); ok {
			b.Add(ev)
		}
	}
	return b.Session()
}

// Parse reads a transcript from r. Only read errors are returned;
// malformed lines are skipped.
func Parse(path string, r io.Reader) (*Session, error) {
	b := NewBuilder(path)
	// bufio.Reader rather than Scanner: tool results can make single lines
	// arbitrarily long.
	br := bufio.NewReaderSize(r, 1024*1024)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if ev, ok := DecodeLine(line); ok {
				b.Add(ev)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read transcript %s: %w", path, err)
		}
	}
	return b.Session(), nil
}

// ParseFile opens and parses the transcript at path.
func ParseFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()
	return Parse(path, f)
}

func idFromPath(path string) string {
	id := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	if id == "" || id == "." || id == string(filepath.Separator) {
		return "unknown"
	}
	return id
}

// projectFromPath decodes the parent directory name, which encodes the
// working directory with "-" in place of "/".
func projectFromPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) || dir == "" {
		return ""
	}
	project := strings.ReplaceAll(dir, "-", "/")
	if !strings.HasPrefix(project, "/") {
		project = "/" + project
	}
	return project
}
