package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table represents a simple table renderer
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
			if w := lipgloss.Width(cells[i]); w > t.widths[i] {
				t.widths[i] = w
			}
		}
	}
	t.rows = append(t.rows, row)
}

// Render renders the table to the writer
func (t *Table) Render(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}

	// Build the header
	headerCells := make([]string, len(t.headers))
	for i, h := range t.headers {
		headerCells[i] = StyleBold.Render(padRight(h, t.widths[i]))
	}
	headerLine := strings.Join(headerCells, "  ")

	// Build separator
	sepParts := make([]string, len(t.widths))
	for i, w := range t.widths {
		sepParts[i] = strings.Repeat("─", w)
	}
	separator := StyleMuted.Render(strings.Join(sepParts, "──"))

	// Print header
	fmt.Fprintln(w, headerLine)
	fmt.Fprintln(w, separator)

	// Print rows
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = padRight(cell, t.widths[i])
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
}

// String returns the table as a string
func (t *Table) String() string {
	var sb strings.Builder
	t.Render(&sb)
	return sb.String()
}

// padRight pads by display width, so styled and wide cells line up.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// RunSummary renders a boxed summary of recorded runs
type RunSummary struct {
	completed int
	failed    int
	tokens    uint64
}

// NewRunSummary creates a summary for the given counts
func NewRunSummary(completed, failed int, tokens uint64) *RunSummary {
	return &RunSummary{completed: completed, failed: failed, tokens: tokens}
}

// Render renders the summary box
func (rs *RunSummary) Render(w io.Writer) {
	content := fmt.Sprintf(
		"%s Completed: %d\n%s Failed:    %d\n%s\n%s Tokens:    %d",
		StatusCompleted, rs.completed,
		StatusFailed, rs.failed,
		StyleMuted.Render("───────────────"),
		StyleBold.Render("Σ"), rs.tokens,
	)

	fmt.Fprintln(w, BoxStyle.Render(content))
}
