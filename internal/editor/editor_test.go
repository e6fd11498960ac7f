package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/parsedit/internal/syntax/highlight"
	"github.com/dshills/parsedit/internal/syntax/library"
	"github.com/dshills/parsedit/internal/syntax/parser"
)

func TestNewDocumentSplitsLines(t *testing.T) {
	tests := []struct {
		content string
		want    []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\n\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		d := NewDocument("f.txt", []byte(tt.content))
		require.Equal(t, len(tt.want), d.LineCount(), "%q", tt.content)
		for i, w := range tt.want {
			assert.Equal(t, w, string(d.Line(i)), "%q line %d", tt.content, i)
		}
	}
	assert.Equal(t, "Untitled", NewDocument("", nil).Name)
	assert.Nil(t, NewDocument("x", nil).Line(5))
}

func TestDocumentEdits(t *testing.T) {
	d := NewDocument("f", []byte("one\ntwo"))
	require.NoError(t, d.SetLine(1, []byte("TWO")))
	require.NoError(t, d.InsertLine(0, []byte("zero")))
	require.NoError(t, d.InsertLine(3, []byte("three")))
	assert.ErrorIs(t, d.SetLine(9, nil), ErrLineRange)
	assert.ErrorIs(t, d.InsertLine(-1, nil), ErrLineRange)

	var got []string
	for i := 0; i < d.LineCount(); i++ {
		got = append(got, string(d.Line(i)))
	}
	assert.Equal(t, []string{"zero", "one", "TWO", "three"}, got)
	assert.EqualValues(t, 3, d.Version())
}

func TestLoadFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(path, []byte("int x;\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lib"), 0o755))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "prog.c", doc.Name)
	assert.False(t, doc.DirectoryListing)
	assert.Equal(t, "int x;", doc.FirstLine())

	listing, err := LoadFile(dir)
	require.NoError(t, err)
	assert.True(t, listing.DirectoryListing)
	require.Equal(t, 2, listing.LineCount())
	assert.Equal(t, byte('d'), listing.Line(0)[0])

	_, err = LoadFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

// countingResolver records how often selection runs.
type countingResolver struct {
	defs    map[string]*parser.Definition
	selects int
}

func (r *countingResolver) Select(name, firstLine string) *parser.Definition {
	r.selects++
	if firstLine == "#!/bin/sh" {
		return r.defs["sh"]
	}
	return nil
}

func (r *countingResolver) Definition(name string) *parser.Definition {
	return r.defs[name]
}

func mustCompile(t *testing.T, name string, lines ...string) *parser.Definition {
	t.Helper()
	def, err := parser.CompileLines(name, "", lines)
	require.NoError(t, err)
	return def
}

func TestViewSelectsOnceAndOnFirstLine(t *testing.T) {
	sh := mustCompile(t, "sh", ":keyword", "echo")
	res := &countingResolver{defs: map[string]*parser.Definition{"sh": sh}}
	doc := NewDocument("new", nil)
	v := NewView(doc, res, highlight.New(nil))

	v.Render(0, 10, 0)
	v.Render(0, 10, 0)
	assert.Equal(t, 1, res.selects, "selection runs once while the first line stays empty")
	assert.Nil(t, v.Parser())

	require.NoError(t, doc.SetLine(0, []byte("#!/bin/sh")))
	require.NoError(t, doc.InsertLine(1, []byte("echo hi")))
	win := v.Render(0, 10, 0)
	assert.Equal(t, 2, res.selects, "a first line that stops being empty reselects")
	assert.Same(t, sh, v.Parser())
	assert.Equal(t, highlight.Keyword, win.ClassAt(1, 0))

	require.NoError(t, doc.SetLine(0, []byte("#!/bin/bash")))
	v.Render(0, 10, 0)
	assert.Equal(t, 2, res.selects, "changing a non-empty first line keeps the parser")
}

func TestViewPicksUpReloadedDefinition(t *testing.T) {
	old := mustCompile(t, "sh", ":keyword", "echo")
	res := &countingResolver{defs: map[string]*parser.Definition{"sh": old}}
	doc := NewDocument("s", []byte("#!/bin/sh\nprint"))
	v := NewView(doc, res, highlight.New(nil))
	v.Render(0, 2, -1)
	assert.Equal(t, highlight.None, v.ClassAt(1, 0))

	res.defs["sh"] = mustCompile(t, "sh", ":keyword", "print")
	v.Render(0, 2, -1)
	assert.Equal(t, highlight.Keyword, v.ClassAt(1, 0))

	delete(res.defs, "sh")
	v.Render(0, 2, -1)
	assert.Nil(t, v.Parser(), "an unloaded definition stops highlighting")
}

func TestViewPinnedParser(t *testing.T) {
	def := mustCompile(t, "adhoc", ":keyword", "go")
	v := NewView(NewDocument("x", []byte("go")), &countingResolver{}, highlight.New(nil))
	v.SetParser(def)
	v.Render(0, 1, -1)
	assert.Same(t, def, v.Parser(), "a pinned definition not in the resolver is kept")
	assert.Equal(t, highlight.Keyword, v.ClassAt(0, 1))
}

func TestViewRenderWindow(t *testing.T) {
	lib := library.New(nil)
	lib.LoadBuiltin()

	doc := NewDocument("a.c", []byte("/* one\ntwo\nthree */ int\nx"))
	v := NewView(doc, lib, highlight.New(nil))
	v.SetZone(3, 3)

	win := v.Render(1, 10, 2)
	require.Len(t, win.Lines, 3, "height is clipped to the document")
	assert.Equal(t, 1, win.Top)
	assert.Equal(t, "c", v.Parser().Name)

	assert.Equal(t, highlight.Comment, v.ClassAt(1, 0), "a stray end delimiter makes the rows above it comment")
	assert.True(t, win.Lines[1].Current)
	assert.False(t, win.Lines[0].Current)
	assert.True(t, win.Lines[2].CursorZone)
	assert.Equal(t, highlight.None, v.ClassAt(0, 0), "rows above the window are None")
	assert.Equal(t, highlight.None, v.ClassAt(1, 99))
	assert.Equal(t, 3, v.Stats().Lines)

	empty := v.Render(50, 5, -1)
	assert.Empty(t, empty.Lines)
}

func TestViewDirectoryListing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.c"), nil, 0o644))

	lib := library.New(nil)
	lib.LoadBuiltin()
	doc, err := LoadDirectory(dir)
	require.NoError(t, err)

	v := NewView(doc, lib, highlight.New(nil), WithCurrentLine(false))
	v.Render(0, 10, 0)
	assert.Equal(t, library.DirectoryParser, v.Parser().Name)
	assert.Equal(t, highlight.Extension, v.ClassAt(0, 0), "main.c")
	assert.Equal(t, highlight.Directory, v.ClassAt(1, 0), "src")
	assert.False(t, v.Window().Lines[0].Current)
}
