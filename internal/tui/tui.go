package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"podcaster/internal/core"
)

// RunFunc runs the podcast pipeline and reports progress through progress.
type RunFunc func(ctx context.Context, query, userProfile string, progress func(string)) (*core.Episode, error)

const (
	fieldQuery = iota
	fieldProfile
	fieldCount
)

const maxStatusLines = 12

type statusMsg string

type doneMsg struct {
	episode *core.Episode
	err     error
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	inputStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
)

// Model is the podcast request form and live status view.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    RunFunc

	fields [fieldCount][]rune
	focus  int

	running bool
	events  chan tea.Msg
	status  []string
	episode *core.Episode
	err     error

	width    int
	quitting bool
}

// New returns the initial form state.
func New(ctx context.Context, run RunFunc) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{ctx: ctx, cancel: cancel, run: run}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and pipeline events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case statusMsg:
		m.status = append(m.status, string(msg))
		if len(m.status) > maxStatusLines {
			m.status = m.status[len(m.status)-maxStatusLines:]
		}
		return m, listen(m.events)

	case doneMsg:
		m.running = false
		m.episode = msg.episode
		m.err = msg.err

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}
	if m.running {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % fieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + fieldCount - 1) % fieldCount
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if f := m.fields[m.focus]; len(f) > 0 {
			m.fields[m.focus] = f[:len(f)-1]
		}
	case tea.KeySpace:
		m.fields[m.focus] = append(m.fields[m.focus], ' ')
	case tea.KeyRunes:
		m.fields[m.focus] = append(m.fields[m.focus], msg.Runes...)
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(string(m.fields[fieldQuery]))
	if query == "" {
		m.err = fmt.Errorf("please enter a topic for the podcast")
		return m, nil
	}
	profile := strings.TrimSpace(string(m.fields[fieldProfile]))

	m.running = true
	m.err = nil
	m.episode = nil
	m.status = nil
	m.events = make(chan tea.Msg, 16)

	events, ctx, run := m.events, m.ctx, m.run
	go func() {
		send := func(msg tea.Msg) {
			select {
			case events <- msg:
			case <-ctx.Done():
			}
		}
		episode, err := run(ctx, query, profile, func(s string) {
			send(statusMsg(s))
		})
		send(doneMsg{episode: episode, err: err})
	}()
	return m, listen(events)
}

func listen(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// View renders the form, the status log and the outcome.
func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Podcaster"))
	b.WriteString("\n\n")
	b.WriteString(m.renderField(fieldQuery, "Topic"))
	b.WriteString(m.renderField(fieldProfile, "About you (optional)"))

	if len(m.status) > 0 {
		b.WriteString("\n")
		for _, line := range m.status {
			b.WriteString(statusStyle.Render(line) + "\n")
		}
	}

	switch {
	case m.running:
		b.WriteString("\n" + labelStyle.Render("Working...") + "\n")
	case m.err != nil:
		b.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.episode != nil:
		b.WriteString("\n" + successStyle.Render(fmt.Sprintf("Audio saved to %s (%d/%d chunks)",
			m.episode.AudioPath, m.episode.SuccessfulChunks, m.episode.TotalChunks)) + "\n")
		b.WriteString(successStyle.Render("Script saved to "+m.episode.ScriptPath) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("[tab] Next field | [enter] Generate | [esc] Quit"))
	return docStyle.Render(b.String())
}

func (m Model) renderField(field int, label string) string {
	style := labelStyle
	cursor := ""
	if field == m.focus && !m.running {
		style = focusStyle
		cursor = "_"
	}
	width := 60
	if m.width > 10 && m.width-10 < width {
		width = m.width - 10
	}
	return style.Render(label) + "\n" + inputStyle.Width(width).Render(string(m.fields[field])+cursor) + "\n"
}

// Query returns the current topic text.
func (m Model) Query() string {
	return string(m.fields[fieldQuery])
}

// Profile returns the current profile text.
func (m Model) Profile() string {
	return string(m.fields[fieldProfile])
}

// Start runs the form until the user quits.
func Start(ctx context.Context, run RunFunc) error {
	p := tea.NewProgram(New(ctx, run), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
