// Package layout turns highlighted lines into screen cells.
package layout

import (
	"unicode/utf8"

	"github.com/dshills/parsedit/internal/renderer/core"
	"github.com/dshills/parsedit/internal/syntax/highlight"
)

// DefaultTabWidth is used when a non-positive width is configured.
const DefaultTabWidth = 8

// Line is the visual form of one DisplayLine.
type Line struct {
	// Cells holds one cell per screen column. The second column of a wide
	// rune is a continuation cell.
	Cells []core.Cell

	// Columns maps each content byte to the screen column it starts at.
	Columns []int
}

// Width returns the number of screen columns.
func (l *Line) Width() int {
	return len(l.Cells)
}

// Engine lays out lines with a fixed tab width.
type Engine struct {
	tabWidth int
}

// NewEngine creates a layout engine.
func NewEngine(tabWidth int) *Engine {
	if tabWidth < 1 {
		tabWidth = DefaultTabWidth
	}
	return &Engine{tabWidth: tabWidth}
}

// TabWidth returns the tab width.
func (e *Engine) TabWidth() int {
	return e.tabWidth
}

// Layout expands tabs and decodes UTF-8. Each cell takes the color of the
// first byte of its rune; a tab's spaces all take the tab's color. Bytes
// that are not valid UTF-8 show as U+FFFD. Other control characters take
// no columns.
func (e *Engine) Layout(line *highlight.DisplayLine) *Line {
	content := line.Content
	out := &Line{
		Cells:   make([]core.Cell, 0, len(content)),
		Columns: make([]int, len(content)),
	}

	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		style := styleAt(line, i)
		col := len(out.Cells)
		for j := i; j < i+size; j++ {
			out.Columns[j] = col
		}

		switch {
		case r == '\t':
			stop := e.tabWidth - col%e.tabWidth
			for k := 0; k < stop; k++ {
				out.Cells = append(out.Cells, core.Cell{Rune: ' ', Width: 1, Style: style})
			}
		case r == utf8.RuneError && size == 1:
			out.Cells = append(out.Cells, core.Cell{Rune: utf8.RuneError, Width: 1, Style: style})
		default:
			width := core.RuneWidth(r)
			if width == 0 {
				break
			}
			out.Cells = append(out.Cells, core.Cell{Rune: r, Width: width, Style: style})
			if width == 2 {
				out.Cells = append(out.Cells, core.ContinuationCell(style))
			}
		}
		i += size
	}
	return out
}

func styleAt(line *highlight.DisplayLine, i int) core.Style {
	if i < len(line.Colors) {
		return line.Colors[i]
	}
	return core.DefaultStyle()
}

// Run is a stretch of cells sharing one style.
type Run struct {
	Text  string
	Style core.Style
}

// Runs groups the cells of l into runs of equal style. Continuation cells
// are dropped.
func (l *Line) Runs() []Run {
	var runs []Run
	var text []rune
	var cur core.Style
	for _, c := range l.Cells {
		if c.IsContinuation() {
			continue
		}
		if len(text) > 0 && !c.Style.Equals(cur) {
			runs = append(runs, Run{Text: string(text), Style: cur})
			text = text[:0]
		}
		cur = c.Style
		text = append(text, c.Rune)
	}
	if len(text) > 0 {
		runs = append(runs, Run{Text: string(text), Style: cur})
	}
	return runs
}
