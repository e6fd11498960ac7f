// Package viewport tracks which part of a document the viewer shows and
// where its cursor row is.
package viewport

import "sync"

// Viewport represents the visible portion of the document.
type Viewport struct {
	mu sync.RWMutex

	// Position in document (first visible line)
	topLine    int
	leftColumn int

	// Size in screen cells
	width  int
	height int

	// Cursor row, kept this many lines from the edges when possible
	cursor int
	margin int

	lineCount int
}

// NewViewport creates a viewport with the given size.
// Width and height are clamped to a minimum of 1.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:     max(width, 1),
		height:    max(height, 1),
		margin:    3,
		lineCount: 1,
	}
}

// Width returns the viewport width.
func (v *Viewport) Width() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width
}

// Height returns the viewport height.
func (v *Viewport) Height() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.height
}

// TopLine returns the first visible line.
func (v *Viewport) TopLine() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine
}

// LeftColumn returns the first visible column.
func (v *Viewport) LeftColumn() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.leftColumn
}

// Cursor returns the cursor row.
func (v *Viewport) Cursor() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cursor
}

// Resize updates the viewport size and keeps the cursor visible.
func (v *Viewport) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = max(width, 1)
	v.height = max(height, 1)
	v.clamp()
	v.reveal()
}

// SetMargin sets how many lines are kept between the cursor and the top or
// bottom edge.
func (v *Viewport) SetMargin(lines int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.margin = max(lines, 0)
}

// SetLineCount sets the document length and clamps the position.
func (v *Viewport) SetLineCount(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lineCount = max(n, 1)
	v.clamp()
}

// MoveCursor moves the cursor by delta rows, scrolling to keep it visible.
func (v *Viewport) MoveCursor(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cursor += delta
	v.clamp()
	v.reveal()
}

// SetCursor moves the cursor to a row.
func (v *Viewport) SetCursor(line int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cursor = line
	v.clamp()
	v.reveal()
}

// PageDown moves the view and cursor one screen forward.
func (v *Viewport) PageDown() {
	v.page(1)
}

// PageUp moves the view and cursor one screen back.
func (v *Viewport) PageUp() {
	v.page(-1)
}

func (v *Viewport) page(dir int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	step := max(v.height-1, 1) * dir
	v.topLine += step
	v.cursor += step
	v.clamp()
	v.follow()
}

// ScrollBy scrolls by delta lines without moving the cursor off screen.
func (v *Viewport) ScrollBy(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.topLine += delta
	v.clamp()
	v.follow()
}

// follow pulls the cursor back onto the screen.
func (v *Viewport) follow() {
	if v.cursor < v.topLine {
		v.cursor = v.topLine
	}
	if bottom := v.topLine + v.height - 1; v.cursor > bottom {
		v.cursor = min(bottom, v.lineCount-1)
	}
}

// ScrollHorizontalBy scrolls horizontally by a delta.
func (v *Viewport) ScrollHorizontalBy(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.leftColumn = max(v.leftColumn+delta, 0)
}

// VisibleLineRange returns the first visible line and the line after the
// last one.
func (v *Viewport) VisibleLineRange() (start, end int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine, min(v.topLine+v.height, v.lineCount)
}

// clamp keeps the cursor inside the document and the top line where the
// last screen is still full.
func (v *Viewport) clamp() {
	v.cursor = min(max(v.cursor, 0), v.lineCount-1)
	maxTop := max(v.lineCount-v.height, 0)
	v.topLine = min(max(v.topLine, 0), maxTop)
}

// reveal scrolls minimally so the cursor sits at least margin rows from
// either edge. The margin shrinks on small screens.
func (v *Viewport) reveal() {
	margin := min(v.margin, (v.height-1)/2)
	if v.cursor < v.topLine+margin {
		v.topLine = v.cursor - margin
	}
	if v.cursor > v.topLine+v.height-1-margin {
		v.topLine = v.cursor - v.height + 1 + margin
	}
	maxTop := max(v.lineCount-v.height, 0)
	v.topLine = min(max(v.topLine, 0), maxTop)
}
