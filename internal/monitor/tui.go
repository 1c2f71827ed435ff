package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
	completeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	inProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Italic(true)
)

type tickMsg time.Time

type snapshotMsg struct {
	snapshot Snapshot
	err      error
}

// watchModel is the bubbletea model behind `aime watch`: it polls the
// monitoring endpoint and renders the live checklist.
type watchModel struct {
	url      string
	spinner  spinner.Model
	snapshot Snapshot
	fetchErr error
	loaded   bool
}

// Watch runs a terminal viewer polling the monitor server at baseURL
// until the user quits.
func Watch(baseURL string) error {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	m := watchModel{
		url:     strings.TrimRight(baseURL, "/") + "/api/state",
		spinner: sp,
	}
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchSnapshot(m.url), tick())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(fetchSnapshot(m.url), tick())
	case snapshotMsg:
		if msg.err != nil {
			m.fetchErr = msg.err
			return m, nil
		}
		m.fetchErr = nil
		m.snapshot = msg.snapshot
		m.loaded = true
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("aime workflow monitor"))
	b.WriteString("\n\n")

	if m.fetchErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("cannot reach %s: %v", m.url, m.fetchErr)))
		b.WriteString("\n")
	}
	if !m.loaded {
		b.WriteString(m.spinner.View())
		b.WriteString(" waiting for first snapshot...\n")
		return b.String()
	}

	if m.snapshot.Checklist == "" {
		b.WriteString(labelStyle.Render("no tasks yet"))
		b.WriteString("\n")
	} else {
		for _, line := range strings.Split(m.snapshot.Checklist, "\n") {
			b.WriteString(styleChecklistLine(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("rationale: "))
	b.WriteString(m.snapshot.Rationale)
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf(
		"optimizer: window %d/%d  score %.3f  mutations %d",
		m.snapshot.Optimizer.WindowSize,
		m.snapshot.Optimizer.Capacity,
		m.snapshot.Optimizer.CompositeScore,
		m.snapshot.Optimizer.Mutations,
	)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("updated %s  (q to quit)", m.snapshot.UpdatedAt.Format("15:04:05"))))
	b.WriteString("\n")
	return b.String()
}

func styleChecklistLine(line string) string {
	switch {
	case strings.Contains(line, "- [x]"):
		return completeStyle.Render(line)
	case strings.Contains(line, "- [!]"):
		return failedStyle.Render(line)
	case strings.Contains(line, "- [-]"):
		return inProgressStyle.Render(line)
	default:
		return line
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshot(url string) tea.Cmd {
	return func() tea.Msg {
		resp, err := http.Get(url)
		if err != nil {
			return snapshotMsg{err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return snapshotMsg{err: fmt.Errorf("unexpected status %s", resp.Status)}
		}
		var snapshot Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{snapshot: snapshot}
	}
}
