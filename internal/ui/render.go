package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/model"
)

// ProgressBar renders a bar with percentage, e.g. "██████░░░░  60%".
func ProgressBar(t Theme, done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(t.BarFull, filled) + strings.Repeat(t.BarEmpty, width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", t.Success.Render(bar), pct)
}

// Readout renders "<done> of <total> completed".
func Readout(t Theme, done, total int) string {
	return fmt.Sprintf("%s of %s completed",
		t.Success.Render(fmt.Sprint(done)),
		t.Accent.Render(fmt.Sprint(total)),
	)
}

// Panel frames lines with the theme's border.
func Panel(t Theme, lines []string) string {
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// RowStyle is the style applied to an item's task text.
func RowStyle(t Theme, it model.Item) lipgloss.Style {
	if it.Completed {
		return t.Done
	}
	return lipgloss.NewStyle()
}

// Row renders one item as "☐ Buy milk".
func Row(t Theme, it model.Item) string {
	box := t.Muted.Render(t.BoxUnchecked)
	if it.Completed {
		box = t.Success.Render(t.BoxChecked)
	}
	return box + " " + RowStyle(t, it).Render(it.Task)
}

// OK prints a success line using the current theme.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

// Fail prints an error line using the current theme.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}

// Hint prints a muted line.
func Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Muted.Render(msg))
}
