package cmd

import (
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

func okText(s string) string {
	return color.Green.Sprint(s)
}

func warnText(s string) string {
	return color.Yellow.Sprint(s)
}

func errorText(s string) string {
	return color.Red.Sprint(s)
}

func headerText(s string) string {
	return color.Bold.Sprint(s)
}

// table renders rows as left-aligned columns. Widths are measured in terminal
// cells so wide characters in table names do not break alignment. Cells may
// carry color codes; padding is computed from the plain text.
type table struct {
	header []string
	rows   [][]cell
}

type cell struct {
	text  string
	paint func(string) string
}

func plain(s string) cell {
	return cell{text: s}
}

func painted(s string, paint func(string) string) cell {
	return cell{text: s, paint: paint}
}

func (t *table) add(cells ...cell) {
	t.rows = append(t.rows, cells)
}

func (t *table) String() string {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) {
				if w := runewidth.StringWidth(c.text); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	var b strings.Builder
	for i, h := range t.header {
		b.WriteString(headerText(pad(h, widths[i], i, len(t.header))))
		b.WriteString(separator(i, len(t.header)))
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			text := pad(c.text, widths[i], i, len(row))
			if c.paint != nil {
				text = c.paint(text)
			}
			b.WriteString(text)
			b.WriteString(separator(i, len(row)))
		}
	}
	return b.String()
}

// pad fills all but the last column to width.
func pad(s string, width, i, n int) string {
	if i == n-1 {
		return s
	}
	return runewidth.FillRight(s, width)
}

func separator(i, n int) string {
	if i == n-1 {
		return "\n"
	}
	return "  "
}
