package display

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Startup-Mindset/job-posting/pkg/utils"
)

// DefaultMaxCellWidth bounds the value column when rendering for a terminal.
const DefaultMaxCellWidth = 80

var header = [2]string{"Field", "Value"}

// Render lays the table out as an aligned two-column markdown table, one
// line per field. Widths are measured in terminal cells so CJK text lines
// up. Values are collapsed to one line and cut at maxCellWidth (0 = no limit).
func Render(t *Table, maxCellWidth int) string {
	strs := utils.NewStringHelper()

	rows := make([][2]string, 0, len(t.columns)+1)
	rows = append(rows, header)

	for _, col := range t.columns {
		v := strs.NormalizeWhitespace(t.cells[col].String())
		rows = append(rows, [2]string{col, strs.TruncateString(v, maxCellWidth)})
	}

	var widths [2]int

	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	// Separator needs at least "---".
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		lines = append(lines, renderRow(row, widths))

		if i == 0 {
			lines = append(lines, renderSeparator(widths))
		}
	}

	return strings.Join(lines, "\n")
}

// RenderView renders a table view with Render, or returns the text as-is.
func RenderView(v View, maxCellWidth int) string {
	if v.IsTable() {
		return Render(v.Table(), maxCellWidth)
	}

	return v.Text()
}

func renderRow(row [2]string, widths [2]int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for i, cell := range row {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
		sb.WriteString(" |")
	}

	return sb.String()
}

func renderSeparator(widths [2]int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for _, w := range widths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteString(" |")
	}

	return sb.String()
}
