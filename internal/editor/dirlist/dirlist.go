// Package dirlist renders directory contents as `ls -l` style rows.
//
// Every row starts with the ten-character mode string at offset 0, so the
// file type sits at offset 0 and the execute bits at offsets 3, 6 and 9.
package dirlist

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// TimeLayout is the modification time format used in rows.
const TimeLayout = "2006-01-02 15:04"

// Entry is one directory member.
type Entry struct {
	Name    string
	Mode    fs.FileMode
	Size    int64
	ModTime time.Time
	// Target is the link destination for symbolic links.
	Target string
}

// List reads dir and returns its entries sorted by name. Symbolic links are
// not followed.
func List(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		e := Entry{
			Name:    de.Name(),
			Mode:    info.Mode(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if e.Mode&fs.ModeSymlink != 0 {
			e.Target, _ = os.Readlink(filepath.Join(dir, de.Name()))
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ModeString returns the ls-style mode: a type character followed by the
// nine permission characters.
func ModeString(m fs.FileMode) string {
	t := byte('-')
	switch {
	case m&fs.ModeDir != 0:
		t = 'd'
	case m&fs.ModeSymlink != 0:
		t = 'l'
	case m&fs.ModeNamedPipe != 0:
		t = 'p'
	case m&fs.ModeSocket != 0:
		t = 's'
	case m&fs.ModeCharDevice != 0:
		t = 'c'
	case m&fs.ModeDevice != 0:
		t = 'b'
	}
	perm := m.Perm().String() // "-rwxr-xr-x"
	return string(t) + perm[1:]
}

// Row formats one entry.
func Row(e Entry) string {
	row := fmt.Sprintf("%s %10d %s %s", ModeString(e.Mode), e.Size, e.ModTime.Format(TimeLayout), e.Name)
	if e.Target != "" {
		row += " -> " + e.Target
	}
	return row
}

// Rows formats entries, one row each.
func Rows(entries []Entry) [][]byte {
	rows := make([][]byte, len(entries))
	for i, e := range entries {
		rows[i] = []byte(Row(e))
	}
	return rows
}
