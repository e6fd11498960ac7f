package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/parsedit/internal/config/loader"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel   = "PARSEDIT_LOG_LEVEL"
	EnvParserPath = "PARSEDIT_PARSER_PATH"
	EnvScheme     = "PARSEDIT_SCHEME"
)

// Config is the complete application configuration.
type Config struct {
	Log      LogConfig       `toml:"log" yaml:"log"`
	Parsers  ParsersConfig   `toml:"parsers" yaml:"parsers"`
	Mappings []MappingConfig `toml:"mappings" yaml:"mappings"`
	Colors   ColorsConfig    `toml:"colors" yaml:"colors"`
	Viewer   ViewerConfig    `toml:"viewer" yaml:"viewer"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// File receives log output. Empty means stderr.
	File string `toml:"file" yaml:"file"`
	// JSON selects structured JSON output.
	JSON bool `toml:"json" yaml:"json"`
}

// ParsersConfig configures where parser definitions come from.
type ParsersConfig struct {
	// Builtin loads the embedded definitions before Dirs.
	Builtin bool `toml:"builtin" yaml:"builtin"`
	// Dirs are searched in order for *.tld files. A later file with the
	// same parser name replaces an earlier one.
	Dirs []string `toml:"dirs" yaml:"dirs"`
	// Watch reloads definitions from Dirs when they change on disk.
	Watch bool `toml:"watch" yaml:"watch"`
	// DebounceMillis coalesces bursts of file events.
	DebounceMillis int `toml:"debounce_ms" yaml:"debounce_ms"`
}

// MappingConfig binds a file name glob or an interpreter name to a parser.
// Exactly one of Glob and Magic is set.
type MappingConfig struct {
	Glob   string `toml:"glob" yaml:"glob"`
	Magic  string `toml:"magic" yaml:"magic"`
	Parser string `toml:"parser" yaml:"parser"`
}

// ColorsConfig selects and overrides the color scheme.
type ColorsConfig struct {
	// Scheme names a built-in scheme.
	Scheme string `toml:"scheme" yaml:"scheme"`
	// Roles maps role names to styles, e.g. keyword = "#ff8800 bold".
	Roles map[string]string `toml:"roles" yaml:"roles"`
	// Alternates maps single characters to styles.
	Alternates map[string]string `toml:"alternates" yaml:"alternates"`
}

// ViewerConfig configures the terminal viewer and the cat renderer.
type ViewerConfig struct {
	// TabWidth is the number of cells a tab expands to.
	TabWidth int `toml:"tab_width" yaml:"tab_width"`
	// CurrentLine highlights the cursor line.
	CurrentLine bool `toml:"current_line" yaml:"current_line"`
	// Color is auto, always or never for the cat command.
	Color string `toml:"color" yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Parsers: ParsersConfig{
			Builtin:        true,
			DebounceMillis: 100,
		},
		Colors: ColorsConfig{Scheme: "default"},
		Viewer: ViewerConfig{
			TabWidth:    8,
			CurrentLine: true,
			Color:       "auto",
		},
	}
}

// DefaultPath returns the user settings file, ~/.config/parsedit/config.toml
// on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoConfigDir, err)
	}
	return filepath.Join(dir, "parsedit", "config.toml"), nil
}

// Load builds the configuration from the defaults, the file at path and the
// environment. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	return LoadWithFS(loader.DefaultFS(), path, os.LookupEnv)
}

// LoadWithFS is Load with a custom file system and environment lookup.
func LoadWithFS(fsys loader.FileSystem, path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := loader.NewWithFS(fsys).LoadFrom(path, cfg); err != nil {
			return nil, err
		}
	}
	if lookup != nil {
		cfg.ApplyEnv(lookup)
	}
	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from PARSEDIT_* environment variables.
// PARSEDIT_PARSER_PATH is a list of directories appended to Parsers.Dirs.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvScheme); ok && v != "" {
		c.Colors.Scheme = v
	}
	if v, ok := lookup(EnvParserPath); ok {
		for _, dir := range filepath.SplitList(v) {
			if dir != "" {
				c.Parsers.Dirs = append(c.Parsers.Dirs, dir)
			}
		}
	}
}

// expandPaths replaces a leading ~ with the home directory.
func (c *Config) expandPaths() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	expand := func(p string) string {
		if p == "~" {
			return home
		}
		if rest, ok := strings.CutPrefix(p, "~/"); ok {
			return filepath.Join(home, rest)
		}
		return p
	}
	for i, d := range c.Parsers.Dirs {
		c.Parsers.Dirs[i] = expand(d)
	}
	c.Log.File = expand(c.Log.File)
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", "must be debug, info, warn or error", c.Log.Level)
	}

	if c.Parsers.DebounceMillis < 0 {
		add("parsers.debounce_ms", "must not be negative", c.Parsers.DebounceMillis)
	}

	for i, m := range c.Mappings {
		path := fmt.Sprintf("mappings[%d]", i)
		if m.Parser == "" {
			add(path+".parser", "is required", m.Parser)
		}
		if (m.Glob == "") == (m.Magic == "") {
			add(path, "needs exactly one of glob and magic", m)
		}
	}

	for key := range c.Colors.Alternates {
		if len(key) != 1 {
			add("colors.alternates", "keys must be a single character", key)
		}
	}

	if c.Viewer.TabWidth < 1 || c.Viewer.TabWidth > 16 {
		add("viewer.tab_width", "must be between 1 and 16", c.Viewer.TabWidth)
	}
	switch c.Viewer.Color {
	case "auto", "always", "never":
	default:
		add("viewer.color", "must be auto, always or never", c.Viewer.Color)
	}

	return errors.Join(errs...)
}

// Debounce returns the event coalescing delay.
func (p ParsersConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMillis) * time.Millisecond
}
