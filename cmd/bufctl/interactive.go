package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const historyLimit = 12

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cmdStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type entry struct {
	cmd    string
	result string
	err    error
}

type interactiveModel struct {
	err     error
	sess    *Session
	cfg     SessionConfig
	input   textinput.Model
	history []entry
	recall  int
}

type openedMsg struct {
	err  error
	sess *Session
}

func newInteractiveModel(cfg SessionConfig) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "array create 4 4 8"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{cfg: cfg, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.openSession, textinput.Blink)
}

func (m *interactiveModel) openSession() tea.Msg {
	sess, err := NewSession(context.Background(), m.cfg)
	return openedMsg{sess: sess, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		m.sess, m.err = msg.sess, msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.sess != nil {
				_ = m.sess.Close(context.Background())
			}
			return m, tea.Quit

		case "up":
			if m.recall < len(m.history) {
				m.recall++
				m.input.SetValue(m.history[len(m.history)-m.recall].cmd)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.recall > 0 {
				m.recall--
				if m.recall == 0 {
					m.input.SetValue("")
				} else {
					m.input.SetValue(m.history[len(m.history)-m.recall].cmd)
				}
				m.input.CursorEnd()
			}
			return m, nil

		case "enter":
			if m.sess == nil {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			m.recall = 0
			if line == "" {
				return m, nil
			}
			res, err := m.sess.Exec(line)
			m.history = append(m.history, entry{cmd: line, result: res, err: err})
			if len(m.history) > historyLimit {
				m.history = m.history[len(m.history)-historyLimit:]
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if m.sess == nil {
		return "Opening session...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("bufctl (" + m.sess.name + ")"))
	b.WriteString("\n\n")
	b.WriteString(stateStyle.Render(m.sess.State()))
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(cmdStyle.Render("> " + e.cmd))
		b.WriteString("\n")
		switch {
		case e.err != nil:
			b.WriteString(errorStyle.Render("  " + e.err.Error()))
			b.WriteString("\n")
		case e.result != "":
			b.WriteString(resultStyle.Render(indent(e.result)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • help commands • esc quit"))
	return b.String()
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

func runInteractive(cfg SessionConfig) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal on stdin")
	}
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
