package highlight

import (
	"github.com/dshills/parsedit/internal/syntax/parser"
)

// CommentSpan is the part of a paired comment that falls on one row.
type CommentSpan struct {
	Span
	// Opens is set on the row holding the comment's start delimiter.
	Opens bool
}

type delimKind uint8

const (
	delimNone delimKind = iota
	delimStart
	delimEnd
)

type position struct {
	row int
	col int
}

// tracker locates paired comments across the visible window.
type tracker struct {
	rows  [][]byte
	skip  [][]bool
	fold  bool
	spans [][]CommentSpan
}

// CommentSpans scans the visible rows for paired comments and returns the
// spans per row. The scan never looks outside the rows given: a comment
// whose start is above the first row is recognized only by its end
// delimiter being the first delimiter found, and a comment left open runs
// to the end of the last row.
func CommentSpans(lines []*DisplayLine, def *parser.Definition) [][]CommentSpan {
	spans := make([][]CommentSpan, len(lines))
	if def == nil || len(def.PairedComments) == 0 || len(lines) == 0 {
		return spans
	}
	t := &tracker{
		rows:  make([][]byte, len(lines)),
		skip:  make([][]bool, len(lines)),
		fold:  !def.CaseSensitive,
		spans: spans,
	}
	for r, l := range lines {
		t.rows[r] = l.Content
		t.skip[r] = make([]bool, len(l.Content))
		for _, ex := range def.Exclusions {
			for c := ex.First; c <= ex.Last && c < len(l.Content); c++ {
				t.skip[r][c] = true
			}
		}
	}
	for _, rule := range def.PairedComments {
		if len(rule.Start) == 0 || len(rule.End) == 0 {
			continue
		}
		t.scan(rule)
	}
	return t.spans
}

func (t *tracker) scan(rule parser.PairedComment) {
	cur := position{}
	first := true
	for {
		kind, at := t.find(cur, rule)
		switch kind {
		case delimNone:
			return
		case delimEnd:
			end := position{at.row, at.col + len(rule.End)}
			if first {
				t.add(position{}, end, false)
			}
			cur = end
		case delimStart:
			end, ok := t.findEnd(position{at.row, at.col + len(rule.Start)}, at.row, rule)
			if !ok {
				last := len(t.rows) - 1
				t.add(at, position{last, len(t.rows[last])}, true)
				return
			}
			end.col += len(rule.End)
			t.add(at, end, true)
			cur = end
		}
		first = false
	}
}

// find returns the first start or end delimiter at or after from, skipping
// excluded bytes and bytes inside spans of earlier rules.
func (t *tracker) find(from position, rule parser.PairedComment) (delimKind, position) {
	for r := from.row; r < len(t.rows); r++ {
		c := 0
		if r == from.row {
			c = from.col
		}
		for ; c < len(t.rows[r]); c++ {
			if t.skip[r][c] {
				continue
			}
			if matchBytes(t.rows[r], c, rule.Start, t.fold) {
				return delimStart, position{r, c}
			}
			if matchBytes(t.rows[r], c, rule.End, t.fold) {
				return delimEnd, position{r, c}
			}
		}
	}
	return delimNone, position{}
}

// findEnd returns the end delimiter closing a comment opened on startRow.
// Every byte of startRow is examined; later rows honor the skip marks.
// Nested rules count inner start delimiters.
func (t *tracker) findEnd(from position, startRow int, rule parser.PairedComment) (position, bool) {
	depth := 1
	for r := from.row; r < len(t.rows); r++ {
		row := t.rows[r]
		c := 0
		if r == from.row {
			c = from.col
		}
		for c < len(row) {
			if r != startRow && t.skip[r][c] {
				c++
				continue
			}
			if rule.Nested && matchBytes(row, c, rule.Start, t.fold) {
				depth++
				c += len(rule.Start)
				continue
			}
			if matchBytes(row, c, rule.End, t.fold) {
				depth--
				if depth == 0 {
					return position{r, c}, true
				}
				c += len(rule.End)
				continue
			}
			c++
		}
	}
	return position{}, false
}

// add records the comment from `from` up to but excluding `to`.
func (t *tracker) add(from, to position, opens bool) {
	for r := from.row; r <= to.row && r < len(t.rows); r++ {
		start, end := 0, len(t.rows[r])
		if r == from.row {
			start = from.col
		}
		if r == to.row && to.col < end {
			end = to.col
		}
		if end <= start {
			continue
		}
		t.spans[r] = append(t.spans[r], CommentSpan{
			Span:  Span{Start: start, End: end},
			Opens: opens && r == from.row,
		})
		for c := start; c < end; c++ {
			t.skip[r][c] = true
		}
	}
}
