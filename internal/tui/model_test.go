package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ddsconv/internal/convert"
	"ddsconv/internal/format"
)

func resolvedFuture(t *testing.T, req convert.Request) *convert.Future {
	t.Helper()
	fut := convert.New(nil).Start(context.Background(), req)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := fut.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	return fut
}

func TestModelShowsSuccessOnceResolved(t *testing.T) {
	fut := resolvedFuture(t, convert.Request{SourceRoot: "a", DestRoot: "b", Target: format.PNG})
	m := NewModel("ddsconv", fut, &convert.Progress{}, nil)

	next, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	model := next.(Model)
	if _, ok := model.Report(); !ok {
		t.Fatalf("report not captured")
	}
	if !strings.Contains(model.View(), "Success!") {
		t.Fatalf("unexpected view %q", model.View())
	}
}

func TestModelShowsFailure(t *testing.T) {
	fut := resolvedFuture(t, convert.Request{SourceRoot: "a", Target: format.PNG})
	next, _ := NewModel("ddsconv", fut, nil, nil).Update(tickMsg(time.Now()))
	if !strings.Contains(next.(Model).View(), "Failed!") {
		t.Fatalf("expected failure view")
	}
}

func TestModelCancelsOnInterrupt(t *testing.T) {
	canceled := false
	m := NewModel("ddsconv", nil, &convert.Progress{}, func() { canceled = true })
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !canceled {
		t.Fatalf("cancel not called")
	}
	if !strings.Contains(next.(Model).View(), "Stopping...") {
		t.Fatalf("unexpected view %q", next.(Model).View())
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(ReportRows(convert.Report{Total: 3, Succeeded: 2}))
	if !strings.Contains(out, "Converted") || !strings.Contains(out, "Files submitted") {
		t.Fatalf("unexpected summary %q", out)
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(4, 0.5); got != "[==  ]" {
		t.Fatalf("got %q", got)
	}
}
