// Package tui provides a Bubble Tea TUI for exploring one session.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/aist/internal/activity"
	"github.com/fakeyudi/aist/internal/bottleneck"
	"github.com/fakeyudi/aist/internal/metrics"
	"github.com/fakeyudi/aist/internal/session"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	wasteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// kindStyle renders an activity kind in its display colour.
func kindStyle(k activity.Kind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(activity.StyleOf(k).Color)).Bold(true)
}

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabActivity
	tabEvents
	tabBottlenecks
	tabTools
	tabCount
)

var tabNames = [tabCount]string{
	"Summary", "Activity", "Events", "Bottlenecks", "Tools",
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	session     *session.Session
	metrics     metrics.SessionMetrics
	spans       []activity.Span
	events      []activity.Event
	bottlenecks []bottleneck.Bottleneck
	activeTab   tabID
	viewports   [tabCount]viewport.Model
	width       int
	height      int
	ready       bool
	sortAsc     bool
}

// New creates a new TUI model for s.
func New(s *session.Session) Model {
	bs := bottleneck.Detect(s)
	bottleneck.Rank(bs)
	return Model{
		session:     s,
		metrics:     metrics.Calculate(s),
		spans:       activity.Extract(s),
		events:      activity.Events(s),
		bottlenecks: bs,
		sortAsc:     true,
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1", "2", "3", "4", "5":
			m.activeTab = tabID(msg.String()[0] - '1')
			return m, nil
		case "s":
			if m.activeTab == tabEvents {
				m.sortAsc = !m.sortAsc
				if m.ready {
					m.viewports[tabEvents].SetContent(m.renderTab(tabEvents))
					m.viewports[tabEvents].GotoTop()
				}
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render(
		fmt.Sprintf("  aist  %s  %s", m.session.ShortID(10), m.session.ProjectName()))

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-5 jump  q quit"
	if m.activeTab == tabEvents {
		hint += "  s sort (" + m.sortLabel() + ")"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

func (m Model) sortLabel() string {
	if m.sortAsc {
		return "oldest first"
	}
	return "newest first"
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabActivity:
		return m.renderActivity()
	case tabEvents:
		return m.renderEvents()
	case tabBottlenecks:
		return m.renderBottlenecks()
	case tabTools:
		return m.renderTools()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}

func clock(t time.Time) string {
	return timeStyle.Render(t.Local().Format("15:04:05"))
}

func (m *Model) renderSummary() string {
	s := m.session
	var sb strings.Builder
	sb.WriteString(heading("Session Summary"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Session:", s.ID)
	row("Project:", s.Project)
	if s.Branch != "" {
		row("Branch:", s.Branch)
	}
	if s.StartTime != nil && s.EndTime != nil {
		row("Started:", s.StartTime.Local().Format("2006-01-02 15:04:05 MST"))
		row("Ended:", s.EndTime.Local().Format("2006-01-02 15:04:05 MST"))
	}
	row("Duration:", metrics.FormatDuration(m.metrics.DurationMinutes))

	sb.WriteString(heading("Counts"))
	row("Messages:", fmt.Sprintf("%d user / %d assistant", m.metrics.UserMessages, m.metrics.AssistantMessages))
	row("Tool calls:", fmt.Sprintf("%d", m.metrics.TotalToolCalls))
	row("Errors:", fmt.Sprintf("%d", m.metrics.Errors))
	row("Files read:", fmt.Sprintf("%d", len(m.metrics.FilesRead)))
	row("Files edited:", fmt.Sprintf("%d", len(m.metrics.FilesEdited)))
	row("Tokens:", fmt.Sprintf("%s in / %s out",
		metrics.FormatNumber(s.InputTokens), metrics.FormatNumber(s.OutputTokens)))

	wasted := bottleneck.TotalMinutes(m.bottlenecks)
	sb.WriteString(heading("Efficiency"))
	row("Wasted:", fmt.Sprintf("~%s in %d bottlenecks", metrics.FormatDuration(wasted), len(m.bottlenecks)))
	row("Efficiency:", fmt.Sprintf("%.0f%%", metrics.Efficiency(m.metrics.DurationMinutes, wasted)))
	return sb.String()
}

func (m *Model) renderActivity() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Activity (%d spans)", len(m.spans))))
	if len(m.spans) == 0 {
		sb.WriteString(dimStyle.Render("  (no timestamped activity in this session)") + "\n")
		return sb.String()
	}

	totals := activity.Totals(m.spans)
	var all time.Duration
	for _, d := range totals {
		all += d
	}
	for _, k := range activity.Kinds {
		d := totals[k]
		if d == 0 {
			continue
		}
		share := 0.0
		if all > 0 {
			share = float64(d) / float64(all)
		}
		barWidth := int(share * 30)
		bar := kindStyle(k).Render(strings.Repeat("█", barWidth)) + dimStyle.Render(strings.Repeat("░", 30-barWidth))
		sb.WriteString(fmt.Sprintf("  %-16s %s %5.1f%%  %s\n",
			activity.StyleOf(k).Label, bar, share*100, metrics.FormatDuration(d.Minutes())))
	}

	sb.WriteString(heading("Spans"))
	for _, sp := range m.spans {
		badge := kindStyle(sp.Kind).Render(fmt.Sprintf("%-14s", activity.StyleOf(sp.Kind).Label))
		sb.WriteString(fmt.Sprintf("  %s–%s  %s  %s\n",
			clock(sp.Start), clock(sp.End), badge, sp.Label))
	}
	return sb.String()
}

func (m *Model) renderEvents() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Events (%s)", m.sortLabel())))
	if len(m.events) == 0 {
		sb.WriteString(dimStyle.Render("  (no timestamped events in this session)") + "\n")
		return sb.String()
	}

	n := len(m.events)
	for i := range m.events {
		ev := m.events[i]
		if !m.sortAsc {
			ev = m.events[n-1-i]
		}
		text := ev.Text
		switch {
		case ev.Kind == activity.EventError:
			text = errorStyle.Render(text)
		case ev.Succeeded:
			text += " " + successStyle.Render("✓")
		}
		sb.WriteString("  " + clock(ev.Time) + "  " + text + "\n")
	}
	return sb.String()
}

func (m *Model) renderBottlenecks() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Bottlenecks (%d)", len(m.bottlenecks))))
	if len(m.bottlenecks) == 0 {
		sb.WriteString(dimStyle.Render("  No bottlenecks detected.") + "\n")
		return sb.String()
	}
	for i, b := range m.bottlenecks {
		sb.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1,
			strings.ToUpper(b.Kind().String()),
			wasteStyle.Render(fmt.Sprintf("(~%.0f min)", b.WastedMinutes()))))
		sb.WriteString("     " + bottleneck.Pattern(b) + "\n")
		if p := b.Source().PrecedingPrompt; p != "" {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("     Prompt: %q", p)) + "\n")
		}
		sb.WriteString(dimStyle.Render("     → "+bottleneck.Suggestion(b.Kind())) + "\n\n")
	}
	return sb.String()
}

func (m *Model) renderTools() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Tool Calls (%d)", m.metrics.TotalToolCalls)))
	if m.metrics.TotalToolCalls == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	tot := metrics.Totals{ToolCounts: m.metrics.ToolCounts}
	for _, tc := range tot.TopTools(0) {
		sb.WriteString(bullet(fmt.Sprintf("%-14s %d", tc.Name, tc.Count)))
	}

	if len(m.metrics.FilesEdited) > 0 {
		sb.WriteString(heading(fmt.Sprintf("Files Edited (%d)", len(m.metrics.FilesEdited))))
		for _, f := range m.metrics.FilesEdited {
			sb.WriteString(bullet(f))
		}
	}
	if len(m.metrics.FilesRead) > 0 {
		sb.WriteString(heading(fmt.Sprintf("Files Read (%d)", len(m.metrics.FilesRead))))
		for _, f := range m.metrics.FilesRead {
			sb.WriteString(bullet(f))
		}
	}
	return sb.String()
}

// Run starts the TUI for s.
func Run(s *session.Session) error {
	p := tea.NewProgram(New(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
