package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/parsedit/internal/renderer/ansi"
	"github.com/dshills/parsedit/internal/syntax/library"
)

func TestCat(t *testing.T) {
	app := newTestApp(t, Options{})
	path := writeFile(t, t.TempDir(), "main.c", "int\tx;\n// done\n")

	var plain bytes.Buffer
	require.NoError(t, app.Cat(&plain, path, "", ansi.ModeNever))
	assert.Equal(t, "int     x;\n// done\n", plain.String())

	var colored bytes.Buffer
	require.NoError(t, app.Cat(&colored, path, "", ansi.ModeAlways))
	assert.Contains(t, colored.String(), "\x1b[")
	assert.Equal(t, uint64(2), app.Metrics().Snapshot().RenderCount)

	err := app.Cat(&plain, path, "cobol", ansi.ModeNever)
	assert.ErrorIs(t, err, library.ErrUnknownParser)
}

func TestClasses(t *testing.T) {
	app := newTestApp(t, Options{})
	path := writeFile(t, t.TempDir(), "main.c", "return 0; // done\n")

	var out bytes.Buffer
	require.NoError(t, app.Classes(&out, path, ""))
	assert.Equal(t, "# parser c\nkkkkkk.n..ccccccc\n", out.String())

	out.Reset()
	require.NoError(t, app.Classes(&out, path, NoParser))
	assert.Equal(t, "# parser none\n.................\n", out.String())
}

func TestCheck(t *testing.T) {
	app := newTestApp(t, Options{})
	dir := t.TempDir()
	good := writeFile(t, dir, "good.tld", ":keyword\nalpha\n")
	bad := writeFile(t, dir, "bad.tld", ":bogus\n")
	notes := writeFile(t, t.TempDir(), "notes.txt", "")

	var out bytes.Buffer
	require.NoError(t, app.Check(&out, []string{good}))
	assert.Equal(t, "ok   "+good+": good (1 keywords, 0 functions)\n", out.String())

	out.Reset()
	err := app.Check(&out, []string{dir, notes})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCheckFailed))
	assert.Contains(t, err.Error(), "2 of 3 files")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "FAIL "+bad+": "), lines[0])
	assert.Contains(t, lines[0], "unknown section")
	assert.True(t, strings.HasPrefix(lines[1], "ok   "+good), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "FAIL "+notes), lines[2])

	err = app.Check(&out, []string{filepath.Join(dir, "missing.tld")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListParsers(t *testing.T) {
	app := newTestApp(t, Options{})

	var out bytes.Buffer
	require.NoError(t, app.ListParsers(&out))
	text := out.String()
	assert.Regexp(t, `(?m)^c\s+builtin$`, text)
	assert.Regexp(t, `(?m)^\*\.c\s+-> c$`, text)
	assert.Regexp(t, `(?m)^#!rexx\s+-> rexx$`, text)
}
