// Package loader reads configuration files.
//
// The file format is chosen by extension: TOML (.toml) through go-toml and
// YAML (.yaml, .yml) through yaml.v3. Documents decode into a caller-supplied
// struct that already holds the defaults, so keys absent from the file keep
// their default values.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files whose extension names no known
// format.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format identifies a configuration file syntax.
type Format uint8

const (
	// FormatUnknown is returned for unrecognised extensions.
	FormatUnknown Format = iota
	// FormatTOML is TOML v1.0.
	FormatTOML
	// FormatYAML is YAML 1.2.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// Decoder decodes one document into v.
type Decoder interface {
	Decode(source string, data []byte, v any) error
}

// Loader loads configuration files from a file system.
type Loader struct {
	fs       FileSystem
	decoders map[Format]Decoder
}

// New creates a loader backed by the OS file system.
func New() *Loader {
	return NewWithFS(DefaultFS())
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fsys FileSystem) *Loader {
	return &Loader{
		fs: fsys,
		decoders: map[Format]Decoder{
			FormatTOML: TOMLDecoder{},
			FormatYAML: YAMLDecoder{},
		},
	}
}

// LoadFrom decodes the file at path into v. It reports false, with a nil
// error, when the file does not exist.
func (l *Loader) LoadFrom(path string, v any) (bool, error) {
	dec, ok := l.decoders[FormatOf(path)]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil // File doesn't exist, not an error
		}
		return false, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := dec.Decode(path, data, v); err != nil {
		return false, err
	}
	return true, nil
}

// LoadFromReader decodes a document of the given format from r into v.
func (l *Loader) LoadFromReader(r io.Reader, format Format, v any) error {
	dec, ok := l.decoders[format]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return dec.Decode("<reader>", data, v)
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
