package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// resetFlags restores every flag variable to its default. Flag values
// persist on the package-level commands between runs.
func resetFlags() {
	verbose = false
	listLimit, listProject = 0, ""
	analyzeProject, analyzePeriod = "", "all"
	bottlenecksProject, bottlenecksLimit, bottlenecksPrompts = "", 0, false
	timelineProject, timelinePlain, timelinePick = "", false, false
	costProject, costPeriod, costDetailed = "", "all", false
	exportProject, exportPeriod = "", "all"
	watchProject = ""
}

const (
	appID = "aaaa1111-0000-4000-8000-000000000001"
	apiID = "bbbb2222-0000-4000-8000-000000000002"
)

// appTranscript is a session in /home/dev/app with a three-failure Bash loop.
var appTranscript = []string{
	`{"type":"user","timestamp":"2026-01-13T10:00:00Z","sessionId":"` + appID + `","cwd":"/home/dev/app","gitBranch":"main","message":{"content":"run the tests"}}`,
	`{"type":"assistant","timestamp":"2026-01-13T10:01:00Z","sessionId":"` + appID + `","message":{"content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"go test ./..."}}],"usage":{"input_tokens":1000,"output_tokens":200,"cache_creation_input_tokens":600,"cache_read_input_tokens":9000}}}`,
	`{"type":"user","timestamp":"2026-01-13T10:02:00Z","sessionId":"` + appID + `","message":{"content":[{"type":"tool_result","tool_use_id":"t1","content":"exit code 1","is_error":true}]}}`,
	`{"type":"user","timestamp":"2026-01-13T10:03:00Z","sessionId":"` + appID + `","message":{"content":[{"type":"tool_result","tool_use_id":"t1","content":"exit code 1","is_error":true}]}}`,
	`{"type":"user","timestamp":"2026-01-13T10:04:00Z","sessionId":"` + appID + `","message":{"content":[{"type":"tool_result","tool_use_id":"t1","content":"exit code 1","is_error":true}]}}`,
	`not json`,
	`{"type":"assistant","timestamp":"2026-01-13T10:06:00Z","sessionId":"` + appID + `","message":{"content":[{"type":"text","text":"The tests need a database."}]}}`,
}

// apiTranscript is a later session in /home/dev/api with a 20 minute pause.
var apiTranscript = []string{
	`{"type":"user","timestamp":"2026-01-14T09:00:00Z","sessionId":"` + apiID + `","cwd":"/home/dev/api","message":{"content":"deploy it"}}`,
	`{"type":"assistant","timestamp":"2026-01-14T09:20:00Z","sessionId":"` + apiID + `","message":{"content":[{"type":"text","text":"Deployed."}],"usage":{"input_tokens":2500,"output_tokens":1000}}}`,
}

// setupProjects writes both fixture transcripts into a fresh projects
// directory and points the configuration at it.
func setupProjects(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "-home-dev-app", appID+".jsonl"), appTranscript)
	writeLines(t, filepath.Join(dir, "-home-dev-api", apiID+".jsonl"), apiTranscript)
	useProjectsDir(t, dir)
	return dir
}

// useProjectsDir isolates config loading and points it at dir.
func useProjectsDir(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("AIST_PROJECTS_DIR", dir)
	t.Setenv("AIST_OTEL_ENDPOINT", "")
	t.Setenv("AIST_OTEL_INSECURE", "")
	resetFlags()

	prev := now
	now = func() time.Time { return time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}
