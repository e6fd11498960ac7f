package renderer

import (
	"strconv"

	"github.com/dshills/parsedit/internal/renderer/backend"
	"github.com/dshills/parsedit/internal/renderer/core"
	"github.com/dshills/parsedit/internal/renderer/layout"
	"github.com/dshills/parsedit/internal/renderer/statusline"
	"github.com/dshills/parsedit/internal/syntax/highlight"
)

// Options configures the renderer.
type Options struct {
	TabWidth        int  // Columns per tab stop
	ShowLineNumbers bool // Show line numbers in gutter
	ShowStatusLine  bool // Reserve the bottom row for the status line
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		TabWidth:        layout.DefaultTabWidth,
		ShowLineNumbers: true,
		ShowStatusLine:  true,
	}
}

// Renderer draws highlighted windows to a backend.
type Renderer struct {
	opts    Options
	backend backend.Backend
	colors  highlight.ColorResolver
	layout  *layout.Engine
	status  *statusline.StatusLine

	width, height int
	leftCol       int
	gutterWidth   int
}

// New creates a renderer. colors supplies the row background and gutter
// colors; the text colors come from the highlighted lines.
func New(b backend.Backend, colors highlight.ColorResolver, opts Options) *Renderer {
	r := &Renderer{
		opts:    opts,
		backend: b,
		colors:  colors,
		layout:  layout.NewEngine(opts.TabWidth),
		status:  statusline.New(),
	}
	r.Resize(b.Size())
	return r
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.status.Resize(width)
}

// Size returns the screen dimensions.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// TextHeight returns the number of rows available for document lines.
func (r *Renderer) TextHeight() int {
	h := r.height
	if r.opts.ShowStatusLine {
		h--
	}
	return max(h, 0)
}

// StatusLine returns the status line component.
func (r *Renderer) StatusLine() *statusline.StatusLine {
	return r.status
}

// LeftColumn returns the first visible screen column of the text.
func (r *Renderer) LeftColumn() int {
	return r.leftCol
}

// SetLeftColumn scrolls horizontally.
func (r *Renderer) SetLeftColumn(col int) {
	r.leftCol = max(col, 0)
}

// Render draws win with rows past its end shown as "~". lineCount is the
// document length, used to size the gutter.
func (r *Renderer) Render(win *highlight.Window, lineCount int) {
	r.gutterWidth = r.calculateGutterWidth(lineCount)
	rows := r.TextHeight()
	for y := 0; y < rows; y++ {
		if win != nil && y < len(win.Lines) {
			r.renderLine(win.Lines[y], win.Top+y, y)
		} else {
			r.renderEmpty(y)
		}
	}
	if r.opts.ShowStatusLine && r.height > 0 {
		r.status.Render(r.backend, r.height-1)
	}
	r.backend.Show()
}

// renderLine draws one display line at screenRow.
func (r *Renderer) renderLine(line *highlight.DisplayLine, docRow, screenRow int) {
	r.renderGutter(strconv.Itoa(docRow+1), screenRow)

	fill := core.Cell{Rune: ' ', Width: 1, Style: r.colors.DefaultColor(line.BaseRole())}
	cells := r.layout.Layout(line).Cells
	contentWidth := r.width - r.gutterWidth
	for x := 0; x < contentWidth; x++ {
		visCol := r.leftCol + x
		cell := fill
		if visCol < len(cells) {
			cell = cells[visCol]
			if cell.IsContinuation() {
				if x > 0 {
					continue
				}
				// The wide rune starts left of the screen.
				cell = core.Cell{Rune: ' ', Width: 1, Style: cell.Style}
			}
			if cell.Width > 1 && x+cell.Width > contentWidth {
				cell = core.Cell{Rune: ' ', Width: 1, Style: cell.Style}
			}
		}
		r.backend.SetCell(r.gutterWidth+x, screenRow, cell)
	}
}

// renderEmpty draws a row past the end of the document.
func (r *Renderer) renderEmpty(screenRow int) {
	text := r.colors.DefaultColor(highlight.RoleText)
	for x := 0; x < r.width; x++ {
		r.backend.SetCell(x, screenRow, core.Cell{Rune: ' ', Width: 1, Style: text})
	}
	r.backend.SetCell(0, screenRow, core.Cell{Rune: '~', Width: 1, Style: r.gutterStyle()})
}

// renderGutter draws a right-aligned line number and a separator.
func (r *Renderer) renderGutter(num string, screenRow int) {
	if r.gutterWidth == 0 {
		return
	}
	style := r.gutterStyle()
	num = padLeft(num, r.gutterWidth-1)
	for x, ch := range num {
		r.backend.SetCell(x, screenRow, core.Cell{Rune: ch, Width: 1, Style: style})
	}
	r.backend.SetCell(r.gutterWidth-1, screenRow, core.Cell{Rune: ' ', Width: 1, Style: style})
}

func (r *Renderer) gutterStyle() core.Style {
	style := r.colors.DefaultColor(highlight.RoleText)
	style.Attributes |= core.AttrDim
	return style
}

// calculateGutterWidth returns the gutter width for lineCount lines: at
// least three digits plus the separator.
func (r *Renderer) calculateGutterWidth(lineCount int) int {
	if !r.opts.ShowLineNumbers {
		return 0
	}
	digits := len(strconv.Itoa(max(lineCount, 1)))
	return max(digits, 3) + 1
}

// GutterWidth returns the gutter width used by the last Render.
func (r *Renderer) GutterWidth() int {
	return r.gutterWidth
}

// padLeft pads a string with spaces on the left.
func padLeft(s string, width int) string {
	for len(s) < width {
		s = " " + s
	}
	return s
}
