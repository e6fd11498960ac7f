// Package mapping associates parser definitions with files, either by a
// shell-style glob on the file's base name or by the interpreter named on a
// `#!` first line.
package mapping

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/match"

	"github.com/dshills/parsedit/internal/syntax/parser"
)

// Mapping binds a glob or an interpreter name to a definition. Exactly one of
// Glob and Magic is normally set; a mapping with neither never matches.
type Mapping struct {
	Glob   string
	Magic  string
	Parser *parser.Definition
}

// Matches reports whether m selects the file.
func (m Mapping) Matches(base, interp string) bool {
	if m.Parser == nil {
		return false
	}
	if m.Glob != "" {
		return match.Match(base, m.Glob)
	}
	return m.Magic != "" && interp != "" && m.Magic == interp
}

// Registry is an ordered list of mappings. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	mappings []Mapping
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends m. Earlier mappings take precedence.
func (r *Registry) Add(m Mapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings = append(r.mappings, m)
}

// Remove drops every mapping that references the named definition and
// returns how many were removed.
func (r *Registry) Remove(parserName string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.mappings[:0]
	removed := 0
	for _, m := range r.mappings {
		if m.Parser != nil && m.Parser.Name == parserName {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(r.mappings); i++ {
		r.mappings[i] = Mapping{}
	}
	r.mappings = kept
	return removed
}

// Replace points every mapping for def.Name at def.
func (r *Registry) Replace(def *parser.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.mappings {
		if p := r.mappings[i].Parser; p != nil && p.Name == def.Name {
			r.mappings[i].Parser = def
		}
	}
}

// Mappings returns a copy of the registered mappings in order.
func (r *Registry) Mappings() []Mapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Mapping, len(r.mappings))
	copy(out, r.mappings)
	return out
}

// Len returns the number of mappings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mappings)
}

// Select returns the definition of the first mapping that matches the file
// name or its first line, or nil when none does.
func (r *Registry) Select(name, firstLine string) *parser.Definition {
	base := filepath.Base(name)
	interp := Interpreter(firstLine)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.mappings {
		if m.Matches(base, interp) {
			return m.Parser
		}
	}
	return nil
}

// Interpreter extracts the interpreter name from a `#!` line. The name is the
// path component after the last slash. When it is `env`, the next token that
// is not an option or an environment assignment is used instead.
func Interpreter(firstLine string) string {
	if !strings.HasPrefix(firstLine, "#!") {
		return ""
	}
	fields := strings.Fields(firstLine[2:])
	if len(fields) == 0 {
		return ""
	}
	name := baseName(fields[0])
	if name != "env" {
		return name
	}
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "-") || strings.Contains(f, "=") {
			continue
		}
		return baseName(f)
	}
	return ""
}

func baseName(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
