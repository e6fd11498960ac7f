package highlight

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/parsedit/internal/syntax/parser"
)

// richSource exercises every pass at once.
var richSource = []string{
	":case", "respect",
	":option", "preprocessor #", "function ( blank", "rexx", "unknownfunction",
	":number", "c",
	":string", "single backslash", "double",
	":comment", "line // any", "paired /* */", "paired (* *) nest",
	":header", "line == firstnonblank",
	":label", "delimiter : column 2",
	":match", "( )", "{ }",
	":keyword", "if", "else", "#define", "call",
	":function", "f", "go",
	":postcompare", "text :=", `class [+\-=]`,
	":column", "exclude 30 32",
	":markup", "tag < >",
	":directory", "directory", "executable", "extension .c",
}

const alphabet = "abcfgilox019 '\"\\/*#(){}<>:=+-."

func drawLine(rt *rapid.T, label string) []byte {
	return rapid.SliceOfN(rapid.SampledFrom([]byte(alphabet)), 0, 40).Draw(rt, label)
}

func TestPipelineWritesEachCellOnce(t *testing.T) {
	def, err := parser.CompileLines("rich", "", richSource)
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		rows := rapid.IntRange(1, 6).Draw(rt, "rows")
		lines := make([]*DisplayLine, rows)
		for i := range lines {
			lines[i] = NewDisplayLine(drawLine(rt, "line"))
			lines[i].DirectoryListing = rapid.Bool().Draw(rt, "listing")
		}
		cursor := rapid.IntRange(-1, rows-1).Draw(rt, "cursor")
		if cursor >= 0 {
			lines[cursor].Current = true
		}

		writes := make([]map[int]int, rows)
		for i := range writes {
			writes[i] = map[int]int{}
		}
		h := New(nil)
		h.trace = func(row, pos int, class SyntaxClass) {
			writes[row][pos]++
		}
		st := h.HighlightWindow(lines, def)

		classified := 0
		for r, l := range lines {
			if len(l.Classes) != l.Len() || len(l.Colors) != l.Len() {
				rt.Fatalf("row %d: arrays not sized to content", r)
			}
			for pos, n := range writes[r] {
				if n > 1 {
					rt.Fatalf("row %d col %d written %d times", r, pos, n)
				}
			}
			for pos, c := range l.Classes {
				if c != None {
					classified++
					if writes[r][pos] != 1 {
						rt.Fatalf("row %d col %d has class %v without a write", r, pos, c)
					}
				}
			}
		}
		if classified > st.Classified {
			rt.Fatalf("classified %d bytes, stats say %d", classified, st.Classified)
		}
		if st.Lines != rows {
			rt.Fatalf("stats lines = %d, want %d", st.Lines, rows)
		}
	})
}

func TestExcludedColumnsNeverReclassified(t *testing.T) {
	def, err := parser.CompileLines("rich", "", richSource)
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		l := NewDisplayLine(drawLine(rt, "line"))
		New(nil).HighlightLine(l, def)
		for col := 29; col <= 31 && col < l.Len(); col++ {
			if l.Classes[col] != Excluded {
				rt.Fatalf("col %d = %v, want excluded", col, l.Classes[col])
			}
		}
	})
}

func TestUnterminatedCommentFillsWindow(t *testing.T) {
	def, err := parser.CompileLines("c", "", []string{":comment", "paired /* */"})
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		const safe = "abc xyz;()"
		body := rapid.SliceOfN(rapid.StringOfN(rapid.SampledFrom([]rune(safe)), 0, 20, -1), 1, 5).Draw(rt, "body")
		rows := append([]string{"start /* here"}, body...)

		lines := make([]*DisplayLine, len(rows))
		for i, r := range rows {
			lines[i] = NewDisplayLine([]byte(r))
		}
		New(nil).HighlightWindow(lines, def)

		for r, l := range lines {
			from := 0
			if r == 0 {
				from = 6
			}
			for col := from; col < l.Len(); col++ {
				if l.Classes[col] != Comment {
					rt.Fatalf("row %d col %d = %v, want comment", r, col, l.Classes[col])
				}
			}
		}
	})
}
