// Package viewerui is a bubbletea grid viewer over a *rowdex.File. It
// is the demo consumer that exercises rowdex's public interfaces end
// to end: it never reaches into pkg/lineindex or pkg/tokenize
// directly, only through the File facade.
package viewerui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	lineNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cellStyle       = lipgloss.NewStyle()
	selectedStyle   = lipgloss.NewStyle().Reverse(true)
	statusStyle     = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// grid renders a window of tokenized rows as fixed-width columns. It
// holds no state of its own beyond the tab width and column widths;
// the widths only grow, from the header and the visible rows each
// time it is asked to render.
type grid struct {
	widths   []int
	tabWidth int
}

// newGrid returns a grid that expands tabs in cell content to
// tabWidth spaces before measuring or rendering. tabWidth <= 0
// selects 4.
func newGrid(tabWidth int) *grid {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	return &grid{tabWidth: tabWidth}
}

func (g *grid) expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", g.tabWidth))
}

// ensureWidths grows widths so every column seen across header and
// rows has a width at least as large as its widest observed cell,
// capped at maxCellWidth so one long field can't blow out the layout.
const maxCellWidth = 40

func (g *grid) ensureWidths(header []string, rows [][]string) {
	update := func(fields []string) {
		for i, f := range fields {
			for len(g.widths) <= i {
				g.widths = append(g.widths, 0)
			}
			w := len(g.expandTabs(f))
			if w > maxCellWidth {
				w = maxCellWidth
			}
			if w > g.widths[i] {
				g.widths[i] = w
			}
		}
	}
	update(header)
	for _, row := range rows {
		update(row)
	}
}

func (g *grid) renderRow(lineNum int, lineNumWidth int, fields []string, selectedCol int, showLineNumbers, highlight bool, style lipgloss.Style) string {
	var b strings.Builder
	if showLineNumbers {
		numStr := fmt.Sprintf("%*d ", lineNumWidth, lineNum)
		b.WriteString(lineNumberStyle.Render(numStr))
	}

	for i, f := range fields {
		width := 10
		if i < len(g.widths) {
			width = g.widths[i]
		}
		cell := truncate(g.expandTabs(f), width)
		padded := fmt.Sprintf("%-*s", width, cell)

		cs := style
		if highlight && i == selectedCol {
			padded = renderSyntax(cell, padded, width)
			cs = selectedStyle
		}
		b.WriteString(cs.Render(padded))
		b.WriteString(" │ ")
	}
	return strings.TrimSuffix(b.String(), " │ ")
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}

// renderSyntax highlights cell if it looks like embedded source or
// JSON, padding the result back out to width so the grid stays
// aligned; it falls back to the plain padded string on any failure.
func renderSyntax(cell, padded string, width int) string {
	lexer := lexers.Analyse(cell)
	if lexer == nil {
		return padded
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, cell, lexer.Config().Name, "terminal16m", "monokai"); err != nil {
		return padded
	}
	highlighted := strings.ReplaceAll(buf.String(), "\n", "")
	pad := width - len(cell)
	if pad > 0 {
		highlighted += strings.Repeat(" ", pad)
	}
	return highlighted
}

func parseLineNumber(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}
