// Package tui provides a Bubbletea dashboard over the task graph: a
// filterable list pane with a detail view, refreshing through the same
// repositories the CLI commands use.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/types"
	"github.com/spineworks/vertebrae/internal/ui"
)

// KeyMap defines the dashboard key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Filter  key.Binding
	Advance key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Filter:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle status filter")),
		Advance: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "advance status")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.Advance, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type tasksLoadedMsg struct {
	tasks []types.Task
}

type errMsg struct {
	err error
}

type statusMsg struct {
	text string
}

type detailMsg struct {
	id       string
	blockers []string
}

// Model is the Bubbletea model for the dashboard.
type Model struct {
	ctx   context.Context
	tasks *repo.TaskRepository
	rels  *repo.RelationshipRepository

	items    []types.Task
	selected int
	filter   *types.Status // nil = all pending work
	blockers []string      // blockers of the selected task

	width, height int
	keys          KeyMap
	help          help.Model
	showHelp      bool
	status        string
	err           error
}

// New creates a dashboard model over the given repositories.
func New(ctx context.Context, tasks *repo.TaskRepository, rels *repo.RelationshipRepository) *Model {
	return &Model{
		ctx:   ctx,
		tasks: tasks,
		rels:  rels,
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tea.SetWindowTitle("vtb"))
}

func (m *Model) load() tea.Cmd {
	filter := m.filter
	return func() tea.Msg {
		f := repo.Filter{IncludeComplete: filter != nil}
		f.Status = filter
		tasks, err := m.tasks.List(m.ctx, f)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{tasks}
	}
}

// advance moves the selected task one step along the happy path:
// backlog->todo, todo->in_progress, in_progress->pending_review,
// pending_review->done.
func (m *Model) advance() tea.Cmd {
	if m.selected >= len(m.items) {
		return nil
	}
	task := m.items[m.selected]
	next, ok := happyNext(task.Status)
	if !ok {
		return func() tea.Msg {
			return statusMsg{fmt.Sprintf("%s is final", task.ID)}
		}
	}
	return func() tea.Msg {
		if _, _, err := m.tasks.Transition(m.ctx, task.ID, next); err != nil {
			return errMsg{err}
		}
		return statusMsg{fmt.Sprintf("%s -> %s", task.ID, next)}
	}
}

func happyNext(s types.Status) (types.Status, bool) {
	switch s {
	case types.StatusBacklog:
		return types.StatusTodo, true
	case types.StatusTodo:
		return types.StatusInProgress, true
	case types.StatusInProgress:
		return types.StatusPendingReview, true
	case types.StatusPendingReview:
		return types.StatusDone, true
	}
	return "", false
}

// cycleFilter steps nil -> backlog -> todo -> ... -> rejected -> nil.
func (m *Model) cycleFilter() {
	all := types.AllStatuses()
	if m.filter == nil {
		s := all[0]
		m.filter = &s
		return
	}
	for i, s := range all {
		if s == *m.filter {
			if i == len(all)-1 {
				m.filter = nil
			} else {
				next := all[i+1]
				m.filter = &next
			}
			return
		}
	}
	m.filter = nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tasksLoadedMsg:
		m.items = msg.tasks
		m.err = nil
		if m.selected >= len(m.items) {
			m.selected = 0
		}
		return m, m.loadDetail()

	case detailMsg:
		if m.selected < len(m.items) && m.items[m.selected].ID == msg.id {
			m.blockers = msg.blockers
		}
		return m, nil

	case statusMsg:
		m.status = msg.text
		return m, m.load()

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
			return m, m.loadDetail()
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.items)-1 {
				m.selected++
			}
			return m, m.loadDetail()
		case key.Matches(msg, m.keys.Filter):
			m.cycleFilter()
			m.selected = 0
			return m, m.load()
		case key.Matches(msg, m.keys.Advance):
			return m, m.advance()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) loadDetail() tea.Cmd {
	if m.selected >= len(m.items) {
		m.blockers = nil
		return nil
	}
	id := m.items[m.selected].ID
	return func() tea.Msg {
		blockers, err := m.rels.Blockers(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return detailMsg{id: id, blockers: blockers}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	title := "all pending"
	if m.filter != nil {
		title = string(*m.filter)
	}
	b.WriteString(ui.HeaderStyle.Render("vtb · "+title) + "\n\n")

	if len(m.items) == 0 {
		b.WriteString(ui.MutedStyle.Render("no tasks") + "\n")
	}
	for i, task := range m.items {
		cursor := "  "
		if i == m.selected {
			cursor = ui.AccentStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%-14s %-22s %s", cursor, task.ID,
			ui.RenderStatus(task.Status), ui.Truncate(task.Title, m.width-44))
		b.WriteString(line + "\n")
	}

	if m.selected < len(m.items) {
		b.WriteString("\n" + m.renderDetail(m.items[m.selected]) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + ui.FailStyle.Render(ui.IconFail+" "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + ui.MutedStyle.Render(m.status) + "\n")
	}

	if m.showHelp {
		b.WriteString("\n" + m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) renderDetail(task types.Task) string {
	var b strings.Builder
	b.WriteString(ui.HeaderStyle.Render(task.ID) + " " + task.Title + "\n")
	b.WriteString(fmt.Sprintf("level %s · priority %s", task.Level, ui.RenderPriority(task.Priority)))
	if task.NeedsHumanReview {
		b.WriteString(" · " + ui.WarnStyle.Render("needs review"))
	}
	b.WriteString("\n")
	for _, s := range task.Sections {
		b.WriteString(ui.AccentStyle.Render(string(s.Type)) + ": " + ui.Truncate(s.Content, 120) + "\n")
	}
	if len(task.Tags) > 0 {
		b.WriteString(ui.MutedStyle.Render("tags: "+strings.Join(task.Tags, ", ")) + "\n")
	}
	if len(m.blockers) > 0 {
		b.WriteString(ui.WarnStyle.Render("blocked by: "+strings.Join(m.blockers, ", ")) + "\n")
	}
	return b.String()
}
