package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"ddsconv/internal/convert"
)

type SummaryRow struct {
	Label string
	Value string
}

// ReportRows summarises a finished batch.
func ReportRows(r convert.Report) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Files submitted", Value: fmt.Sprintf("%d", r.Total)},
		{Label: "Skipped (already target format)", Value: fmt.Sprintf("%d", r.Skipped)},
		{Label: "Converted", Value: fmt.Sprintf("%d", r.Succeeded)},
		{Label: "Failed", Value: fmt.Sprintf("%d", len(r.Failed))},
	}
	if r.Chunks > 0 {
		rows = append(rows, SummaryRow{Label: "Work units", Value: fmt.Sprintf("%d", r.Chunks)})
	}
	rows = append(rows, SummaryRow{Label: "Elapsed", Value: r.Elapsed.Round(time.Millisecond).String()})
	return rows
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// RenderFailures lists per-file errors, one per line.
func RenderFailures(failed []convert.FileError) string {
	lines := make([]string, 0, len(failed))
	for _, fe := range failed {
		target := fe.Path
		if fe.Dest != "" {
			target += " -> " + fe.Dest
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			kindStyle.Render("["+fe.Kind.String()+"]"),
			labelStyle.Render(target),
			dimStyle.Render(fe.Err.Error()),
		))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	kindStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
)
