// Package editor holds the document and view state the highlighter works
// against: a line store, the parser bound to it, and the visible window.
package editor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dshills/parsedit/internal/editor/dirlist"
)

// ErrLineRange is returned for a line index outside the document.
var ErrLineRange = errors.New("line out of range")

// Document is a file held as lines without their terminators.
type Document struct {
	// Path is the absolute file path (empty for scratch buffers).
	Path string

	// Name is the display name (filename or "Untitled").
	Name string

	// DirectoryListing marks a synthetic directory listing.
	DirectoryListing bool

	mu    sync.RWMutex
	lines [][]byte

	// version counts edits.
	version atomic.Int64
}

// NewDocument creates a document from file content. Both "\n" and "\r\n"
// end a line; a final terminator does not start an extra line.
func NewDocument(path string, content []byte) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "Untitled"
	}
	return &Document{
		Path:  path,
		Name:  name,
		lines: splitLines(content),
	}
}

func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return [][]byte{{}}
	}
	content = bytes.TrimSuffix(content, []byte("\n"))
	parts := bytes.Split(content, []byte("\n"))
	for i, p := range parts {
		parts[i] = bytes.TrimSuffix(p, []byte("\r"))
	}
	return parts
}

// LoadFile reads a file, or lists a directory.
func LoadFile(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDirectory(abs)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewDocument(abs, content), nil
}

// LoadDirectory builds a listing document for dir.
func LoadDirectory(dir string) (*Document, error) {
	entries, err := dirlist.List(dir)
	if err != nil {
		return nil, err
	}
	rows := dirlist.Rows(entries)
	if len(rows) == 0 {
		rows = [][]byte{{}}
	}
	return &Document{
		Path:             dir,
		Name:             filepath.Base(dir) + string(filepath.Separator),
		DirectoryListing: true,
		lines:            rows,
	}, nil
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// Line returns line i. The result must not be modified.
func (d *Document) Line(i int) []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return nil
	}
	return d.lines[i]
}

// FirstLine returns line 0 as a string.
func (d *Document) FirstLine() string {
	return string(d.Line(0))
}

// SetLine replaces line i.
func (d *Document) SetLine(i int, text []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.lines) {
		return fmt.Errorf("%w: %d", ErrLineRange, i)
	}
	d.lines[i] = append([]byte(nil), text...)
	d.version.Add(1)
	return nil
}

// InsertLine inserts text before line i. i may equal LineCount to append.
func (d *Document) InsertLine(i int, text []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i > len(d.lines) {
		return fmt.Errorf("%w: %d", ErrLineRange, i)
	}
	d.lines = append(d.lines, nil)
	copy(d.lines[i+1:], d.lines[i:])
	d.lines[i] = append([]byte(nil), text...)
	d.version.Add(1)
	return nil
}

// Version returns the number of edits applied.
func (d *Document) Version() int64 {
	return d.version.Load()
}
