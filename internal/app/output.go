package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/parsedit/internal/editor"
	"github.com/dshills/parsedit/internal/renderer/ansi"
	"github.com/dshills/parsedit/internal/syntax/highlight"
	"github.com/dshills/parsedit/internal/syntax/library"
	"github.com/dshills/parsedit/internal/syntax/parser"
)

// renderAll highlights every line of the view's document as one window.
func (app *Application) renderAll(view *editor.View) *highlight.Window {
	start := time.Now()
	win := view.Render(0, view.Document().LineCount(), -1)
	app.metrics.RecordRender(time.Since(start), view.Stats())
	return win
}

// Cat writes the highlighted file to w. An empty parserName selects the
// parser from the file name and first line.
func (app *Application) Cat(w io.Writer, path, parserName string, mode ansi.Mode) error {
	view, err := app.OpenView(path, parserName)
	if err != nil {
		return err
	}
	out := ansi.NewWriter(w, mode, app.config.Viewer.TabWidth)
	return out.WriteWindow(app.renderAll(view))
}

// Classes writes one line of class codes per document line, one code per
// byte, for inspecting what each pass claimed.
func (app *Application) Classes(w io.Writer, path, parserName string) error {
	view, err := app.OpenView(path, parserName)
	if err != nil {
		return err
	}
	win := app.renderAll(view)

	name := NoParser
	if def := view.Parser(); def != nil {
		name = def.Name
	}
	if _, err := fmt.Fprintf(w, "# parser %s\n", name); err != nil {
		return err
	}
	for _, line := range win.Lines {
		if _, err := fmt.Fprintln(w, highlight.Codes(line.Classes)); err != nil {
			return err
		}
	}
	return nil
}

// Check compiles each definition file, or every definition file in each
// directory, and writes one result line per file. It returns ErrCheckFailed
// when any file fails.
func (app *Application) Check(w io.Writer, paths []string) error {
	files, err := definitionFiles(paths)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range files {
		def, err := compileFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s: %s (%d keywords, %d functions)\n",
			path, def.Name, len(def.Keywords), len(def.Functions))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrCheckFailed, failed, len(files))
	}
	return nil
}

func definitionFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*"+library.Extension))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

func compileFile(path string) (*parser.Definition, error) {
	if !strings.EqualFold(filepath.Ext(path), library.Extension) {
		return nil, fmt.Errorf("%w: %s", library.ErrNotDefinition, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.Compile(library.NameOf(path), path, f)
}

// ListParsers writes the loaded parsers with their origin, then the
// mappings in the order they are consulted.
func (app *Application) ListParsers(w io.Writer) error {
	lib := app.library
	names := lib.Names()

	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	for _, n := range names {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, n, lib.Origin(n)); err != nil {
			return err
		}
	}

	var errs []error
	if len(names) > 0 {
		_, err := fmt.Fprintln(w)
		errs = append(errs, err)
	}
	for _, m := range lib.Mappings() {
		pattern := m.Glob
		if m.Magic != "" {
			pattern = "#!" + m.Magic
		}
		_, err := fmt.Fprintf(w, "%-16s -> %s\n", pattern, m.Parser.Name)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
