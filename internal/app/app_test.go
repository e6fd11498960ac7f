package app

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/parsedit/internal/config"
	"github.com/dshills/parsedit/internal/syntax/colors"
	"github.com/dshills/parsedit/internal/syntax/library"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvParserPath, "")
	t.Setenv(config.EnvScheme, "")
}

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	clearEnv(t)
	if opts.ConfigPath == "" {
		opts.NoConfig = true
	}
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}
	app, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefaults(t *testing.T) {
	app := newTestApp(t, Options{})

	assert.Equal(t, "default", app.Scheme().Name)
	assert.NotNil(t, app.Highlighter())
	assert.NotNil(t, app.Logger())
	assert.Contains(t, app.Library().Names(), "c")
	assert.Equal(t, 8, app.Config().Viewer.TabWidth)
	assert.False(t, app.Watching())
	assert.False(t, app.IsRunning())

	require.NoError(t, app.Close())
	require.NoError(t, app.Close(), "Close is idempotent")
}

func TestNewInitErrors(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		component string
		target    error
	}{
		{"unknown scheme", Options{Scheme: "neon"}, "colors", colors.ErrUnknownScheme},
		{"bad log level", Options{LogLevel: "loud"}, "config", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			tt.opts.NoConfig = true
			tt.opts.LogOutput = io.Discard
			_, err := New(tt.opts)
			require.Error(t, err)

			var initErr *InitError
			require.True(t, errors.As(err, &initErr))
			assert.Equal(t, tt.component, initErr.Component)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestNewFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	parsers := filepath.Join(dir, "parsers")
	require.NoError(t, os.Mkdir(parsers, 0o755))
	writeFile(t, parsers, "tiny.tld", ":keyword\nalpha\n")

	cfgPath := writeFile(t, dir, "config.toml", `
[parsers]
builtin = true
dirs = ["`+filepath.ToSlash(parsers)+`"]

[[mappings]]
glob = "*.foo"
parser = "tiny"

[[mappings]]
glob = "*.cob"
parser = "cobol"

[colors]
scheme = "monokai"

[viewer]
tab_width = 4
`)

	app := newTestApp(t, Options{ConfigPath: cfgPath})
	assert.Equal(t, "monokai", app.Scheme().Name)
	assert.Equal(t, 4, app.Config().Viewer.TabWidth)
	require.NotNil(t, app.Library().Definition("tiny"))
	assert.Equal(t, "tiny", app.Library().Select("x.foo", "").Name)
	assert.Nil(t, app.Library().Select("x.cob", ""), "a mapping to a missing parser is skipped")
}

func TestOptionsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "colors:\n  scheme: monokai\nlog:\n  level: error\n")

	app := newTestApp(t, Options{ConfigPath: cfgPath, Scheme: "mono", LogLevel: "debug"})
	assert.Equal(t, "mono", app.Scheme().Name)
	assert.Equal(t, "debug", app.Config().Log.Level)
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "parsedit.log")
	app := newTestApp(t, Options{LogFile: logPath, LogLevel: "debug"})
	app.Logger().Info("hello %s", "file")
	require.NoError(t, app.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, string(data), "shutdown")
}

func TestOpenView(t *testing.T) {
	app := newTestApp(t, Options{})
	path := writeFile(t, t.TempDir(), "main.c", "int x;\n")

	view, err := app.OpenView(path, "")
	require.NoError(t, err)
	require.NotNil(t, view.Parser())
	assert.Equal(t, "c", view.Parser().Name)

	view, err = app.OpenView(path, "sh")
	require.NoError(t, err)
	assert.Equal(t, "sh", view.Parser().Name)

	view, err = app.OpenView(path, NoParser)
	require.NoError(t, err)
	assert.Nil(t, view.Parser())

	_, err = app.OpenView(path, "cobol")
	assert.ErrorIs(t, err, library.ErrUnknownParser)

	_, err = app.OpenView(filepath.Join(t.TempDir(), "missing.c"), "")
	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "open", opErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenViewDirectory(t *testing.T) {
	app := newTestApp(t, Options{})
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")

	view, err := app.OpenView(dir, "")
	require.NoError(t, err)
	assert.True(t, view.Document().DirectoryListing)
	require.NotNil(t, view.Parser())
	assert.Equal(t, library.DirectoryParser, view.Parser().Name)
}

func TestReloadParser(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.tld", ":keyword\nalpha\n")
	app := newTestApp(t, Options{ParserDirs: []string{dir}})

	ok, err := app.ReloadParser("c")
	require.NoError(t, err)
	assert.False(t, ok, "builtin parsers have no file")

	_, err = app.ReloadParser("cobol")
	assert.ErrorIs(t, err, library.ErrUnknownParser)

	writeFile(t, dir, "tiny.tld", ":keyword\ngamma\n")
	ok, err = app.ReloadParser("tiny")
	require.NoError(t, err)
	assert.True(t, ok)
	_, found := app.Library().Definition("tiny").LookupKeyword([]byte("gamma"))
	assert.True(t, found)

	writeFile(t, dir, "tiny.tld", ":nonsense\n")
	_, err = app.ReloadParser("tiny")
	assert.Error(t, err)
	assert.NotNil(t, app.Library().Definition("tiny"), "a failed reload keeps the previous definition")

	snap := app.Metrics().Snapshot()
	assert.Equal(t, uint64(2), snap.Reloads)
	assert.Equal(t, uint64(1), snap.ReloadFailures)
}

func TestWatcherReloadsDefinitions(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, t.TempDir(), "config.toml", `
[parsers]
builtin = true
watch = true
debounce_ms = 10
dirs = ["`+filepath.ToSlash(dir)+`"]
`)
	app := newTestApp(t, Options{ConfigPath: cfgPath})
	require.True(t, app.Watching())

	reloaded := make(chan string, 4)
	app.SetReloadHook(func(path string, err error) {
		if err != nil {
			return
		}
		select {
		case reloaded <- path:
		default:
		}
	})

	path := writeFile(t, dir, "gamma.tld", ":keyword\ngamma\n")
	select {
	case got := <-reloaded:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing a definition")
	}
	assert.NotNil(t, app.Library().Definition("gamma"))

	require.NoError(t, app.Close())
	assert.False(t, app.Watching())
}

func TestNoWatchOption(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, t.TempDir(), "config.toml", `
[parsers]
watch = true
dirs = ["`+filepath.ToSlash(dir)+`"]
`)
	app := newTestApp(t, Options{ConfigPath: cfgPath, NoWatch: true})
	assert.False(t, app.Watching())
}
