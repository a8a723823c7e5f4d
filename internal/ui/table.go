package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fairflowapp/fairflow/models"
)

// Table renders data in a compact markdown-style table format.
// This is optimized for terminal display with fixed-width columns.
type Table struct {
	Headers  []string
	Rows     [][]string
	MaxWidth int // Max width per column (0 = auto)
}

// ColumnWidths calculates optimal column widths based on content.
func (t *Table) ColumnWidths() []int {
	widths := make([]int, len(t.Headers))

	for i, h := range t.Headers {
		widths[i] = len(h)
	}

	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	if t.MaxWidth > 0 {
		for i := range widths {
			if widths[i] > t.MaxWidth {
				widths[i] = t.MaxWidth
			}
		}
	}

	return widths
}

// Render outputs the table to a string.
func (t *Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}

	widths := t.ColumnWidths()
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	cellStyle := lipgloss.NewStyle().Foreground(ColorText)
	dimStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	var headerCells []string
	for i, h := range t.Headers {
		headerCells = append(headerCells, headerStyle.Render(padRight(h, widths[i])))
	}
	sb.WriteString(" " + strings.Join(headerCells, "  ") + "\n")

	var sepParts []string
	for _, w := range widths {
		sepParts = append(sepParts, dimStyle.Render(strings.Repeat("─", w)))
	}
	sb.WriteString(" " + strings.Join(sepParts, "──") + "\n")

	for _, row := range t.Rows {
		var cells []string
		for i := range t.Headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			// Truncate if needed (guard against zero/small widths)
			if widths[i] >= 2 && len(val) > widths[i] {
				val = val[:widths[i]-1] + "…"
			} else if widths[i] == 1 && len(val) > 1 {
				val = "…"
			}
			cells = append(cells, cellStyle.Render(padRight(val, widths[i])))
		}
		sb.WriteString(" " + strings.Join(cells, "  ") + "\n")
	}

	return sb.String()
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// TaskTable renders a tab's task instances.
func TaskTable(tasks []models.TaskInstance) string {
	t := Table{
		Headers:  []string{"ID", "Title", "Status", "Assigned", "Completed By", "Completed At"},
		MaxWidth: 40,
	}
	for _, task := range tasks {
		status := string(task.Status)
		if status == "" {
			status = "-"
		}
		assigned := "-"
		if task.AssignedTo != nil && *task.AssignedTo != "" {
			assigned = *task.AssignedTo
		}
		completedBy := task.CompletedBy
		if completedBy == "" {
			completedBy = "-"
		}
		completedAt := "-"
		if task.CompletedAt > 0 {
			completedAt = time.UnixMilli(task.CompletedAt).Format("2006-01-02 15:04")
		}
		t.Rows = append(t.Rows, []string{task.KeyID(), task.Title, status, assigned, completedBy, completedAt})
	}
	return t.Render()
}

// BadgeLine renders per-tab uncompleted counts on a single line.
func BadgeLine(counts map[models.Tab]int) string {
	tabs := models.AllTabs()
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		n := counts[tab]
		label := fmt.Sprintf("%s %d", tab.Label(), n)
		if n == 0 {
			parts = append(parts, StyleBadgeZero.Render(label))
		} else {
			parts = append(parts, StyleBadgeOpen.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}
