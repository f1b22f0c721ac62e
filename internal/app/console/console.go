// Package console shows export log records live in the terminal.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrInterrupted is returned when the console is closed before the export
// finishes.
var ErrInterrupted = errors.New("export interrupted")

const (
	lineBuffer   = 256
	maxLines     = 1000
	pollInterval = 100 * time.Millisecond
)

var (
	debugStyle  = lipgloss.NewStyle().Faint(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	statusStyle = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#B0B7C3"})
)

// Run runs export in the background and shows its log until the user quits.
func Run(ctx context.Context, level slog.Leveler, export func(context.Context, *slog.Logger) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan Line, lineBuffer)
	done := make(chan struct{})
	logger := slog.New(NewHandler(lines, done, level))

	p := tea.NewProgram(newModel(lines), tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	var exportErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		exportErr = export(ctx, logger)
		p.Send(doneMsg{err: exportErr})
	}()

	final, runErr := p.Run()
	close(done)
	cancel()
	<-finished

	if m, ok := final.(model); ok && !m.finished {
		return ErrInterrupted
	}
	if exportErr != nil {
		return exportErr
	}
	if runErr != nil {
		return fmt.Errorf("run console: %w", runErr)
	}
	return nil
}

type pollMsg struct{}

type doneMsg struct {
	err error
}

type model struct {
	lines    <-chan Line
	spin     spinner.Model
	log      []Line
	height   int
	finished bool
	err      error
}

func newModel(lines <-chan Line) model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return model{lines: lines, spin: sp}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, poll())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case pollMsg:
		m = m.drain()
		if m.finished {
			return m, nil
		}
		return m, poll()
	case doneMsg:
		m = m.drain()
		m.finished = true
		m.err = msg.err
	}
	return m, nil
}

func (m model) drain() model {
	for {
		select {
		case line := <-m.lines:
			m.log = append(m.log, line)
			if len(m.log) > maxLines {
				m.log = m.log[len(m.log)-maxLines:]
			}
		default:
			return m
		}
	}
}

func (m model) View() string {
	var b strings.Builder

	visible := m.log
	if m.height > 2 && len(visible) > m.height-2 {
		visible = visible[len(visible)-(m.height-2):]
	}
	for _, line := range visible {
		b.WriteString(levelStyle(line.Level).Render(line.Level.String() + " " + line.Text))
		b.WriteByte('\n')
	}

	switch {
	case !m.finished:
		b.WriteString(m.spin.View() + " " + statusStyle.Render("exporting"))
	case m.err != nil:
		b.WriteString(errorStyle.Render("export failed: " + m.err.Error()))
	default:
		b.WriteString(statusStyle.Render("export finished"))
	}
	b.WriteString("  " + hintStyle.Render("q quit") + "\n")
	return b.String()
}

func levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return errorStyle
	case level >= slog.LevelWarn:
		return warnStyle
	case level >= slog.LevelInfo:
		return infoStyle
	default:
		return debugStyle
	}
}
