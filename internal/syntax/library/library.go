// Package library is the catalogue of compiled parser definitions.
//
// Definitions come from the embedded defaults and from configured
// directories of *.tld files. A file that fails to compile is logged and
// skipped; every other definition stays usable. The library also owns the
// file-to-parser mapping registry and keeps it pointing at the current
// definitions when files are reloaded.
package library

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/parsedit/internal/config/watcher"
	"github.com/dshills/parsedit/internal/log"
	"github.com/dshills/parsedit/internal/syntax/mapping"
	"github.com/dshills/parsedit/internal/syntax/parser"
)

// Extension is the file extension of parser definition sources.
const Extension = ".tld"

// DirectoryParser is the definition used for directory listings.
const DirectoryParser = "dir"

// BuiltinOrigin marks definitions loaded from the embedded defaults.
const BuiltinOrigin = "builtin"

// Errors returned by the library.
var (
	ErrUnknownParser = errors.New("unknown parser")
	ErrNotDefinition = errors.New("not a parser definition file")
)

//go:embed parsers/*.tld
var builtinFS embed.FS

// rule is a mapping that names its parser; it is resolved against the
// loaded definitions whenever the registry is rebuilt.
type rule struct {
	glob, magic, parser string
}

// defaultRules map common file names and interpreters to the embedded
// definitions.
var defaultRules = []rule{
	{glob: "*.c", parser: "c"},
	{glob: "*.h", parser: "c"},
	{glob: "*.cc", parser: "c"},
	{glob: "*.cpp", parser: "c"},
	{glob: "*.hpp", parser: "c"},
	{glob: "*.rexx", parser: "rexx"},
	{glob: "*.rex", parser: "rexx"},
	{glob: "*.the", parser: "rexx"},
	{magic: "rexx", parser: "rexx"},
	{magic: "regina", parser: "rexx"},
	{glob: "*.sh", parser: "sh"},
	{glob: "*.bash", parser: "sh"},
	{glob: ".bashrc", parser: "sh"},
	{glob: ".profile", parser: "sh"},
	{magic: "sh", parser: "sh"},
	{magic: "bash", parser: "sh"},
	{magic: "ksh", parser: "sh"},
	{magic: "dash", parser: "sh"},
	{magic: "zsh", parser: "sh"},
	{glob: "*.py", parser: "python"},
	{magic: "python", parser: "python"},
	{magic: "python3", parser: "python"},
	{glob: "*.go", parser: "go"},
	{glob: "*.html", parser: "html"},
	{glob: "*.htm", parser: "html"},
	{glob: "*.xml", parser: "html"},
	{glob: "Makefile", parser: "make"},
	{glob: "makefile", parser: "make"},
	{glob: "GNUmakefile", parser: "make"},
	{glob: "*.mk", parser: "make"},
	{magic: "make", parser: "make"},
}

// Library holds compiled definitions by name. It is safe for concurrent
// use; definitions themselves are immutable and may be shared freely.
type Library struct {
	mu      sync.RWMutex
	defs    map[string]*parser.Definition
	origins map[string]string
	user    []rule

	registry *mapping.Registry
	logger   *log.Logger
}

// New creates an empty library.
func New(logger *log.Logger) *Library {
	if logger == nil {
		logger = log.Nop()
	}
	return &Library{
		defs:     make(map[string]*parser.Definition),
		origins:  make(map[string]string),
		registry: mapping.NewRegistry(),
		logger:   logger.WithComponent("library"),
	}
}

// NameOf returns the parser name for a definition file: the base name
// without the extension, lowercased.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// LoadBuiltin compiles the embedded definitions and returns how many
// loaded.
func (l *Library) LoadBuiltin() int {
	paths, _ := fs.Glob(builtinFS, "parsers/*"+Extension)
	loaded := 0
	for _, p := range paths {
		f, err := builtinFS.Open(p)
		if err != nil {
			l.logger.Error("open builtin %s: %v", p, err)
			continue
		}
		def, err := parser.Compile(NameOf(p), p, f)
		f.Close()
		if err != nil {
			l.logger.Error("%v", err)
			continue
		}
		l.install(def, BuiltinOrigin)
		loaded++
	}
	l.logger.Debug("loaded %d builtin parsers", loaded)
	return loaded
}

// LoadDir compiles every *.tld file in dir, in name order. Files that fail
// to compile are logged and skipped. A missing directory loads nothing.
func (l *Library) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("parser directory %s does not exist", dir)
			return 0, nil
		}
		return 0, fmt.Errorf("reading parser directory %s: %w", dir, err)
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		if _, err := l.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			l.logger.Error("%v", err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// LoadFile compiles one definition file and installs it under NameOf(path),
// replacing any definition of the same name. On error the library is
// unchanged.
func (l *Library) LoadFile(path string) (*parser.Definition, error) {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return nil, fmt.Errorf("%w: %s", ErrNotDefinition, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parser %s: %w", path, err)
	}
	defer f.Close()

	def, err := parser.Compile(NameOf(path), path, f)
	if err != nil {
		return nil, err
	}
	l.install(def, path)
	return def, nil
}

// Reload recompiles the file at path. When the file is gone, the definition
// it provided is unloaded. When it fails to compile, the previous
// definition stays in place and the error is returned.
func (l *Library) Reload(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		name := NameOf(path)
		l.mu.RLock()
		origin := l.origins[name]
		l.mu.RUnlock()
		if origin == path {
			l.Unload(name)
		}
		return nil
	}

	def, err := l.LoadFile(path)
	if err != nil {
		l.logger.Error("reload kept previous definition: %v", err)
		return err
	}
	l.logger.Info("reloaded parser %s from %s", def.Name, path)
	return nil
}

// Unload removes a definition and every mapping that selects it.
func (l *Library) Unload(name string) bool {
	l.mu.Lock()
	_, ok := l.defs[name]
	delete(l.defs, name)
	delete(l.origins, name)
	l.mu.Unlock()

	if !ok {
		return false
	}
	n := l.reg().Remove(name)
	l.logger.Info("unloaded parser %s (%d mappings)", name, n)
	return true
}

func (l *Library) install(def *parser.Definition, origin string) {
	l.mu.Lock()
	_, replaced := l.defs[def.Name]
	l.defs[def.Name] = def
	l.origins[def.Name] = origin
	l.mu.Unlock()

	if replaced {
		l.reg().Replace(def)
	} else {
		l.rebuild()
	}
	l.logger.Debug("installed parser %s from %s", def.Name, origin)
}

// AddMapping registers a glob or interpreter mapping ahead of the built-in
// ones. Configured mappings are consulted in the order they were added.
func (l *Library) AddMapping(glob, magic, parserName string) error {
	l.mu.Lock()
	_, ok := l.defs[parserName]
	if ok {
		l.user = append(l.user, rule{glob: glob, magic: magic, parser: parserName})
	}
	l.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParser, parserName)
	}
	l.rebuild()
	return nil
}

// rebuild recreates the registry from the configured then the default
// rules, skipping rules whose parser is not loaded.
func (l *Library) rebuild() {
	l.mu.RLock()
	var ms []mapping.Mapping
	for _, set := range [][]rule{l.user, defaultRules} {
		for _, r := range set {
			if def, ok := l.defs[r.parser]; ok {
				ms = append(ms, mapping.Mapping{Glob: r.glob, Magic: r.magic, Parser: def})
			}
		}
	}
	l.mu.RUnlock()

	reg := mapping.NewRegistry()
	for _, m := range ms {
		reg.Add(m)
	}

	l.mu.Lock()
	l.registry = reg
	l.mu.Unlock()
}

// Definition returns the named definition, or nil.
func (l *Library) Definition(name string) *parser.Definition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defs[name]
}

// Origin returns the file a definition was loaded from, or "builtin".
func (l *Library) Origin(name string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.origins[name]
}

// Names returns the loaded definition names, sorted.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.defs))
	for n := range l.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Mappings returns the active mappings in priority order.
func (l *Library) Mappings() []mapping.Mapping {
	return l.reg().Mappings()
}

// Select returns the definition for a file, by its name and first line, or
// nil when no mapping matches.
func (l *Library) Select(name, firstLine string) *parser.Definition {
	def := l.reg().Select(name, firstLine)
	if def != nil {
		l.logger.Debug("selected parser %s for %s", def.Name, name)
	}
	return def
}

func (l *Library) reg() *mapping.Registry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.registry
}

// Follow reloads definitions as file events arrive until ctx is done or
// events is closed. notify, when not nil, is called after each reload with
// its result.
func (l *Library) Follow(ctx context.Context, events <-chan watcher.Event, errs <-chan error, notify func(path string, err error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			l.logger.Debug("parser file %s: %v", ev.Path, ev.Op)
			err := l.Reload(ev.Path)
			if notify != nil {
				notify(ev.Path, err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.logger.Warn("watching parsers: %v", err)
		}
	}
}
