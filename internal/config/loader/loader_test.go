package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

type sample struct {
	Name  string   `toml:"name" yaml:"name"`
	Dirs  []string `toml:"dirs" yaml:"dirs"`
	Watch bool     `toml:"watch" yaml:"watch"`
	Log   struct {
		Level string `toml:"level" yaml:"level"`
	} `toml:"log" yaml:"log"`
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.toml", FormatTOML},
		{"A.TOML", FormatTOML},
		{"dir/a.yaml", FormatYAML},
		{"a.yml", FormatYAML},
		{"a.json", FormatUnknown},
		{"toml", FormatUnknown},
	}
	for _, tt := range tests {
		if got := FormatOf(tt.path); got != tt.want {
			t.Errorf("FormatOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadFromTOML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/cfg.toml", `
name = "toml"
dirs = ["/a", "/b"]

[log]
level = "debug"
`)
	l := NewWithFS(memfs)

	got := sample{Watch: true}
	found, err := l.LoadFrom("/cfg.toml", &got)
	if err != nil {
		t.Fatalf("LoadFrom error = %v", err)
	}
	if !found {
		t.Fatal("LoadFrom found = false")
	}
	if got.Name != "toml" || len(got.Dirs) != 2 || got.Log.Level != "debug" {
		t.Errorf("decoded = %+v", got)
	}
	if !got.Watch {
		t.Error("absent key should keep its default")
	}
}

func TestLoadFromYAML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/cfg.yaml", `
name: yaml
dirs:
  - /a
log:
  level: warn
`)
	l := NewWithFS(memfs)

	var got sample
	found, err := l.LoadFrom("/cfg.yaml", &got)
	if err != nil || !found {
		t.Fatalf("LoadFrom = %v, %v", found, err)
	}
	if got.Name != "yaml" || len(got.Dirs) != 1 || got.Log.Level != "warn" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestLoadFromEmptyYAML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/empty.yml", "")
	got := sample{Name: "kept"}
	if _, err := NewWithFS(memfs).LoadFrom("/empty.yml", &got); err != nil {
		t.Fatalf("LoadFrom error = %v", err)
	}
	if got.Name != "kept" {
		t.Errorf("Name = %q, want kept", got.Name)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	var got sample
	found, err := NewWithFS(NewMemFS()).LoadFrom("/nope.toml", &got)
	if err != nil {
		t.Errorf("missing file error = %v, want nil", err)
	}
	if found {
		t.Error("missing file reported as found")
	}
}

func TestLoadFromUnsupported(t *testing.T) {
	var got sample
	_, err := NewWithFS(NewMemFS()).LoadFrom("/cfg.ini", &got)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadFromParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		wantLine int
		contains string
	}{
		{"toml syntax", "/bad.toml", "name = = 1\n", 1, ""},
		{"toml unknown key", "/extra.toml", "name = \"x\"\nextra = 1\n", 2, "unknown key extra"},
		{"yaml unknown key", "/extra.yaml", "name: x\nextra: 1\n", 2, "field extra not found"},
		{"yaml wrong type", "/type.yaml", "watch: [1]\n", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memfs := NewMemFS()
			memfs.AddFile(tt.path, tt.content)
			var got sample
			_, err := NewWithFS(memfs).LoadFrom(tt.path, &got)

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if perr.Path != tt.path {
				t.Errorf("Path = %q, want %q", perr.Path, tt.path)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d (%v)", perr.Line, tt.wantLine, perr)
			}
			if tt.contains != "" && !strings.Contains(perr.Message, tt.contains) {
				t.Errorf("Message = %q, want it to contain %q", perr.Message, tt.contains)
			}
			if perr.Unwrap() == nil {
				t.Error("ParseError should wrap the decoder error")
			}
		})
	}
}

func TestLoadFromReader(t *testing.T) {
	var got sample
	err := New().LoadFromReader(strings.NewReader("name = \"r\"\n"), FormatTOML, &got)
	if err != nil || got.Name != "r" {
		t.Errorf("LoadFromReader = %+v, %v", got, err)
	}
	if err := New().LoadFromReader(strings.NewReader(""), FormatUnknown, &got); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestParseErrorFormat(t *testing.T) {
	tests := []struct {
		err  ParseError
		want string
	}{
		{ParseError{Path: "a", Line: 2, Column: 3, Message: "m"}, "parse error in a at line 2, column 3: m"},
		{ParseError{Path: "a", Line: 2, Message: "m"}, "parse error in a at line 2: m"},
		{ParseError{Path: "a", Message: "m"}, "parse error in a: m"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
