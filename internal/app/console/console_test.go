package console

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestHandlerFormatsRecordWithAttrs(t *testing.T) {
	lines := make(chan Line, 4)
	logger := slog.New(NewHandler(lines, make(chan struct{}), slog.LevelDebug)).
		With("database", "/tmp/main db.sqlite").
		WithGroup("task")

	logger.Debug("task", "title", "Ship it", "level", 2)

	line := <-lines
	if line.Level != slog.LevelDebug {
		t.Fatalf("unexpected level: %v", line.Level)
	}
	want := `task database="/tmp/main db.sqlite" task.title="Ship it" task.level=2`
	if line.Text != want {
		t.Fatalf("unexpected line:\n%s\nwant:\n%s", line.Text, want)
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	lines := make(chan Line, 4)
	logger := slog.New(NewHandler(lines, make(chan struct{}), slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("shown")

	if got := len(lines); got != 1 {
		t.Fatalf("expected 1 line, got %d", got)
	}
	if line := <-lines; line.Text != "shown" {
		t.Fatalf("unexpected line: %q", line.Text)
	}
}

func TestHandlerDropsRecordsAfterDone(t *testing.T) {
	lines := make(chan Line)
	done := make(chan struct{})
	close(done)
	logger := slog.New(NewHandler(lines, done, slog.LevelInfo))

	// Unbuffered with no reader: this would block forever without done.
	logger.Info("dropped")
}

func TestModelDrainsLogAndFinishes(t *testing.T) {
	lines := make(chan Line, 4)
	lines <- Line{Level: slog.LevelInfo, Text: "starting export"}
	lines <- Line{Level: slog.LevelDebug, Text: "area title=Work"}

	var m tea.Model = newModel(lines)
	m, cmd := m.Update(pollMsg{})
	if cmd == nil {
		t.Fatalf("expected another poll while exporting")
	}
	if got := len(m.(model).log); got != 2 {
		t.Fatalf("expected 2 drained lines, got %d", got)
	}

	lines <- Line{Level: slog.LevelInfo, Text: "export finished files=3"}
	m, _ = m.Update(doneMsg{})
	final := m.(model)
	if !final.finished || len(final.log) != 3 {
		t.Fatalf("unexpected model state: finished=%v lines=%d", final.finished, len(final.log))
	}

	view := final.View()
	for _, want := range []string{"starting export", "area title=Work", "export finished"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelShowsExportError(t *testing.T) {
	var m tea.Model = newModel(make(chan Line))
	m, _ = m.Update(doneMsg{err: errors.New("missing field \"status\" in table TMTask")})

	if view := m.View(); !strings.Contains(view, "export failed: missing field") {
		t.Fatalf("expected failure in view:\n%s", view)
	}
}

func TestModelQuitsOnQ(t *testing.T) {
	var m tea.Model = newModel(make(chan Line))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
