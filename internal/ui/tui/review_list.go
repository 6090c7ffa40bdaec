package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/complytools/cacsync/internal/sync"
)

// reviewPhase represents the current phase of the findings review.
type reviewPhase int

const (
	reviewPhaseList reviewPhase = iota
	reviewPhaseDetail
)

// reviewKeyMap defines the key bindings for the findings review.
type reviewKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultReviewKeyMap() reviewKeyMap {
	return reviewKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view details"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Styles for the findings review TUI.
var reviewStyles = struct {
	Title      lipgloss.Style
	Help       lipgloss.Style
	Status     lipgloss.Style
	Annotation lipgloss.Style
	Detail     lipgloss.Style
}{
	Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	Annotation: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	Detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
}

var kindTitleCaser = cases.Title(language.English)

// kindTitle renders a finding kind as a human heading ("rule-added" becomes
// "Rule Added").
func kindTitle(kind sync.FindingKind) string {
	return kindTitleCaser.String(strings.ReplaceAll(string(kind), "-", " "))
}

// ReviewListModel is the BubbleTea model for browsing the findings of a sync
// run before committing the changes.
type ReviewListModel struct {
	result   *sync.Result
	table    table.Model
	viewport viewport.Model
	keys     reviewKeyMap
	phase    reviewPhase
	showHelp bool
	width    int
	height   int
	quitting bool
	ready    bool
}

// NewReviewListModel creates a findings review model for one result.
func NewReviewListModel(result *sync.Result) ReviewListModel {
	columns := []table.Column{
		{Title: "Kind", Width: 22},
		{Title: "Control", Width: 12},
		{Title: "Subject", Width: 30},
		{Title: "Detail", Width: 28},
	}

	rows := make([]table.Row, len(result.Findings))
	for i, f := range result.Findings {
		rows[i] = table.Row{
			string(f.Kind),
			f.Control,
			truncateText(f.Subject, 30),
			truncateText(f.Detail, 28),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return ReviewListModel{
		result: result,
		table:  t,
		keys:   defaultReviewKeyMap(),
	}
}

// Init implements tea.Model.
func (m ReviewListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ReviewListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, msg.Height-6)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if m.phase == reviewPhaseList && len(m.result.Findings) > 0 {
				m.phase = reviewPhaseDetail
				m.viewport.SetContent(m.buildDetailContent())
				m.viewport.GotoTop()
			}
			return m, nil

		case key.Matches(msg, m.keys.Back):
			if m.phase == reviewPhaseDetail {
				m.phase = reviewPhaseList
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.phase == reviewPhaseDetail {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// buildDetailContent renders the currently selected finding.
func (m ReviewListModel) buildDetailContent() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.result.Findings) {
		return ""
	}
	f := m.result.Findings[idx]

	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(reviewStyles.Title.Render(kindTitle(f.Kind)))
	b.WriteString("\n\n")
	if f.Control != "" {
		b.WriteString(reviewStyles.Detail.Render(formatDetail("Control: ", f.Control, width)))
		b.WriteString("\n")
	}
	b.WriteString(reviewStyles.Detail.Render(formatDetail("Subject: ", f.Subject, width)))
	b.WriteString("\n")
	if f.Detail != "" {
		b.WriteString(reviewStyles.Detail.Render(formatDetail("Detail:  ", f.Detail, width)))
		b.WriteString("\n")
	}
	return b.String()
}

// statusLine summarizes the run below the table.
func (m ReviewListModel) statusLine() string {
	annotations := len(m.result.Annotations())
	line := fmt.Sprintf("%d findings", len(m.result.Findings))
	if annotations > 0 {
		line += reviewStyles.Annotation.Render(fmt.Sprintf("  %d need attention", annotations))
	}
	return reviewStyles.Status.Render(line)
}

func (m ReviewListModel) helpLine() string {
	if m.showHelp {
		return reviewStyles.Help.Render("↑/k up • ↓/j down • enter details • b/esc back • q quit")
	}
	return reviewStyles.Help.Render("? help • q quit")
}

// View implements tea.Model.
func (m ReviewListModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(reviewStyles.Title.Render(m.result.Task))
	b.WriteString("\n")

	if m.phase == reviewPhaseDetail && m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}
