/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package teasink

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/suparena/dynascript/uibridge"
)

const maxHistory = 8

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Model is a minimal bubbletea front end: a status line, the request being
// shown, and an input that answers prompts or acts as the command palette.
type Model struct {
	input    textinput.Model
	current  *uibridge.Request
	status   string
	history  []string
	run      func(name string)
	commands func() []string
	width    int
	quitting bool
}

// NewModel creates a Model. run is called with the command name entered in
// the palette; commands lists the names used for tab completion.
func NewModel(run func(name string), commands func() []string) Model {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "command"
	ti.Focus()

	return Model{
		input:    ti,
		run:      run,
		commands: commands,
		status:   "no result set",
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Current returns the request being shown, if any.
func (m Model) Current() *uibridge.Request {
	return m.current
}

// Update handles all TUI events and messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case RequestMsg:
		return m.showRequest(msg.Request), nil

	case ResultSetMsg:
		m.status = fmt.Sprintf("%s: %d row(s) for %q", msg.Table, msg.Rows, msg.Expression)
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) showRequest(req *uibridge.Request) Model {
	m.current = req
	m.input.Reset()
	if req.Kind == uibridge.KindPrompt {
		m.input.Prompt = "> "
		m.input.Placeholder = ""
	}
	return m
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if m.current != nil {
			m.current.Cancel()
			m.current = nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	if m.current != nil {
		return m.handleRequestKey(msg)
	}

	switch msg.Type {
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if name != "" && m.run != nil {
			m.addHistory(": " + name)
			m.run(name)
		}
		return m, nil

	case tea.KeyTab:
		m.input.SetValue(m.complete(m.input.Value()))
		m.input.CursorEnd()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleRequestKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	req := m.current

	if req.Kind != uibridge.KindPrompt {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
			m.addHistory(req.Message)
			req.Ack()
			m = m.clearRequest()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		m.addHistory(req.Message + " " + m.input.Value())
		req.Answer(m.input.Value())
		return m.clearRequest(), nil
	case tea.KeyEsc:
		req.Cancel()
		return m.clearRequest(), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) clearRequest() Model {
	m.current = nil
	m.input.Reset()
	m.input.Prompt = ": "
	m.input.Placeholder = "command"
	return m
}

func (m *Model) addHistory(line string) {
	m.history = append(m.history, line)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

// complete returns the longest common prefix of the commands starting with prefix.
func (m Model) complete(prefix string) string {
	if m.commands == nil {
		return prefix
	}

	var matches []string
	for _, name := range m.commands() {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return prefix
	}
	sort.Strings(matches)

	common := matches[0]
	for _, name := range matches[1:] {
		for !strings.HasPrefix(name, common) {
			common = common[:len(common)-1]
		}
	}
	return common
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("dynascript"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n\n")

	for _, line := range m.history {
		b.WriteString(statusStyle.Render(line))
		b.WriteString("\n")
	}

	if m.current != nil {
		switch m.current.Kind {
		case uibridge.KindError:
			b.WriteString(errorStyle.Render(m.current.Message))
		case uibridge.KindAlert:
			b.WriteString(alertStyle.Render(m.current.Message))
		default:
			b.WriteString(m.current.Message)
		}
		b.WriteString("\n")
	}

	if m.current == nil || m.current.Kind == uibridge.KindPrompt {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) helpText() string {
	if m.current == nil {
		return "enter: run command • tab: complete • ctrl+c: quit"
	}
	if m.current.Kind == uibridge.KindPrompt {
		return "enter: answer • esc: cancel"
	}
	return "enter: dismiss"
}
