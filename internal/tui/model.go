package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rmd-knitter/internal/domain"
	"rmd-knitter/internal/jobs"
)

// PollInterval is how often the console log drains pending output.
const PollInterval = 100 * time.Millisecond

// Port is the minimal interface this view needs from the application session.
type Port interface {
	StartRender() (domain.Render, error)
	PollOutput() []jobs.Event
	CurrentRender() domain.Render
	GetSelection() domain.Selection
	GetConfiguredPaths() domain.ResolvedPaths
	Advisory() string
}

// tickMsg triggers one poll of the output queue.
type tickMsg time.Time

// startedMsg is sent after a render start attempt.
type startedMsg struct {
	render domain.Render
	err    error
}

// Model is the Bubble Tea model for the knitter console.
type Model struct {
	port     Port
	output   string
	shown    string
	render   domain.Render
	notice   string
	noticeOK bool
	width    int
	height   int
}

// New creates a console Model backed by the given port.
func New(port Port) Model {
	m := Model{port: port, render: port.CurrentRender()}
	if advisory := port.Advisory(); advisory != "" {
		m.notice = advisory
	}
	return m
}

// Init starts the poll loop.
func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.startCmd()
		case "c":
			m.output = ""
		}

	case startedMsg:
		if msg.err != nil {
			m.notice = describeStartError(msg.err)
			m.noticeOK = false
			return m, nil
		}
		m.render = msg.render
		m.notice = ""

	case tickMsg:
		m.drain()
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	header := m.renderHeader()
	footer := mutedStyle.Render("r: knit  c: clear  q: quit")

	logHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
	if logHeight < 3 {
		logHeight = 3
	}
	body := logStyle.Width(max(m.width-2, 20)).Render(tail(m.output, logHeight))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Output returns everything written to the console log so far.
func (m Model) Output() string {
	return m.output
}

// Run starts the console UI and blocks until the user quits.
func Run(ctx context.Context, port Port) error {
	_, err := tea.NewProgram(New(port), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// ─── private ─────────────────────────────────────────────────────────────────

func tick() tea.Cmd {
	return tea.Tick(PollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) startCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		render, err := port.StartRender()
		return startedMsg{render: render, err: err}
	}
}

// drain appends pending output and picks up status changes.
func (m *Model) drain() {
	for _, event := range m.port.PollOutput() {
		if event.RenderID != m.shown {
			m.shown = event.RenderID
			m.output += fmt.Sprintf("Knitting %s...\n", m.documentFor(event.RenderID))
		}
		m.output += event.Display()
		if event.Kind == jobs.EventKindCompleted {
			m.noticeOK = event.Success
			if event.Success {
				m.notice = "Document knitted successfully!"
			} else {
				m.notice = "Error during knitting"
			}
		}
	}
	m.render = m.port.CurrentRender()
}

// documentFor names the document of renderID for the log header.
func (m Model) documentFor(renderID string) string {
	if current := m.port.CurrentRender(); current.ID == renderID && current.Document != "" {
		return current.Document
	}
	return filepath.Base(m.port.GetSelection().DocumentPath)
}

func (m Model) renderHeader() string {
	selection := m.port.GetSelection()
	paths := m.port.GetConfiguredPaths()

	lines := []string{
		titleStyle.Render("R Markdown Knitter") + "  " + statusLabel(m.render.Status),
		mutedStyle.Render("directory: ") + orUnset(selection.WorkingDirectory),
		mutedStyle.Render("document:  ") + orUnset(selection.DocumentPath),
		mutedStyle.Render("Rscript:   ") + orUnset(paths.ScriptEngine),
		mutedStyle.Render("pandoc:    ") + orUnset(paths.Converter),
	}
	if m.notice != "" {
		style := warnStyle
		if m.noticeOK {
			style = okStyle
		}
		lines = append(lines, style.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func statusLabel(status domain.RenderStatus) string {
	switch status {
	case domain.RenderStatusSucceeded:
		return okStyle.Render(string(status))
	case domain.RenderStatusFailed:
		return errStyle.Render(string(status))
	case domain.RenderStatusLaunching, domain.RenderStatusStreaming:
		return warnStyle.Render(string(status))
	default:
		return mutedStyle.Render(string(domain.RenderStatusIdle))
	}
}

func describeStartError(err error) string {
	switch {
	case errors.Is(err, domain.ErrPreconditionUnmet):
		return "Please select both a working directory and an Rmd file."
	case errors.Is(err, jobs.ErrRenderInProgress):
		return "A render is already running."
	default:
		return fmt.Sprintf("Failed to start rendering: %v", err)
	}
}

func orUnset(value string) string {
	if value == "" {
		return mutedStyle.Render("(not set)")
	}
	return value
}

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
