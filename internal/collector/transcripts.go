package collector

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fakeyudi/aist/internal/session"
)

var _ Collector = (*TranscriptCollector)(nil)

// DefaultWorkers bounds parallel transcript parsing when Workers is unset.
const DefaultWorkers = 8

// ignoreFile lists extra glob patterns, one per line, in the projects dir.
const ignoreFile = ".aistignore"

// TranscriptCollector finds *.jsonl transcripts under ProjectsDir and parses
// them into sessions.
type TranscriptCollector struct {
	ProjectsDir string
	// ProjectFilter keeps only transcripts whose path contains the filter,
	// either verbatim or with "/" encoded as "-".
	ProjectFilter  string
	IgnorePatterns []string
	Workers        int
}

// Collect parses every matching transcript in parallel. Unreadable files
// are skipped with a warning.
func (tc *TranscriptCollector) Collect(ctx context.Context) (Result, error) {
	paths, warnings := tc.Files()

	sessions := make([]*session.Session, len(paths))
	errs := make([]error, len(paths))

	workers := tc.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := session.ParseFile(p)
			if err != nil {
				errs[i] = err
				return nil
			}
			sessions[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Warnings: warnings}
	for i, s := range sessions {
		if errs[i] != nil {
			res.Warnings = append(res.Warnings, "skipping "+paths[i]+": "+errs[i].Error())
			continue
		}
		res.Sessions = append(res.Sessions, s)
	}
	return res, nil
}

// Files returns the matching transcript paths in lexical order. A missing
// projects directory yields no files and no warning.
func (tc *TranscriptCollector) Files() ([]string, []string) {
	if tc.ProjectsDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(tc.ProjectsDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, []string{"cannot read projects directory: " + err.Error()}
	}

	var warnings []string
	patterns, err := tc.loadIgnorePatterns()
	if err != nil {
		warnings = append(warnings, "failed to load ignore patterns: "+err.Error())
	}

	var files []string
	_ = filepath.WalkDir(tc.ProjectsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, "skipping "+path+": "+err.Error())
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if tc.matches(path, patterns) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, warnings
}

// Matches reports whether path is a transcript this collector would load.
func (tc *TranscriptCollector) Matches(path string) bool {
	patterns, _ := tc.loadIgnorePatterns()
	return tc.matches(path, patterns)
}

func (tc *TranscriptCollector) matches(path string, patterns []string) bool {
	if filepath.Ext(path) != ".jsonl" {
		return false
	}
	slashed := filepath.ToSlash(path)
	if strings.Contains(slashed, "/subagents/") {
		return false
	}
	if f := tc.ProjectFilter; f != "" {
		encoded := strings.ReplaceAll(f, "/", "-")
		if !strings.Contains(slashed, encoded) && !strings.Contains(slashed, f) {
			return false
		}
	}
	return !tc.isIgnored(path, patterns)
}

// isIgnored reports whether path matches any of the given glob patterns.
func (tc *TranscriptCollector) isIgnored(path string, patterns []string) bool {
	rel := path
	if r, err := filepath.Rel(tc.ProjectsDir, path); err == nil {
		rel = r
	}
	base := filepath.Base(path)

	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Dir(rel)); matched {
			return true
		}
	}
	return false
}

// loadIgnorePatterns merges the configured patterns with those from the
// ignore file in the projects directory.
func (tc *TranscriptCollector) loadIgnorePatterns() ([]string, error) {
	patterns := make([]string, len(tc.IgnorePatterns))
	copy(patterns, tc.IgnorePatterns)

	extra, err := readPatternFile(filepath.Join(tc.ProjectsDir, ignoreFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return patterns, nil
		}
		return patterns, err
	}
	return append(patterns, extra...), nil
}

// readPatternFile reads a gitignore-style file and returns non-empty, non-comment lines.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}
