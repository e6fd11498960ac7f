// Package app wires configuration, logging, the parser library, the live
// reload watcher and the viewer together.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/parsedit/internal/config"
	"github.com/dshills/parsedit/internal/config/watcher"
	"github.com/dshills/parsedit/internal/editor"
	"github.com/dshills/parsedit/internal/log"
	"github.com/dshills/parsedit/internal/syntax/colors"
	"github.com/dshills/parsedit/internal/syntax/highlight"
	"github.com/dshills/parsedit/internal/syntax/library"
)

// NoParser is the parser name that turns highlighting off.
const NoParser = "none"

// Application owns the long-lived components shared by every command.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	config  *config.Config
	logger  *log.Logger
	logFile *os.File
	metrics *Metrics

	// Highlighting
	scheme      *colors.Scheme
	highlighter *highlight.Highlighter
	library     *library.Library

	// Live reload
	watcher    *watcher.Watcher
	cancel     context.CancelFunc
	followDone chan struct{}
	onReload   func(path string, err error)

	// State
	running   atomic.Bool
	closeOnce sync.Once

	// Options
	opts Options
}

// Options configures the application. Non-empty fields override the
// configuration file and the environment.
type Options struct {
	// ConfigPath is the settings file. Empty means config.DefaultPath.
	ConfigPath string

	// NoConfig skips the settings file.
	NoConfig bool

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogFile receives log output.
	LogFile string

	// LogOutput receives log output when no log file is configured.
	// Defaults to os.Stderr.
	LogOutput io.Writer

	// Scheme names the color scheme.
	Scheme string

	// ParserDirs are searched after the configured directories.
	ParserDirs []string

	// NoWatch disables live reload of parser directories.
	NoWatch bool
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
	}

	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *log.Logger {
	return app.logger
}

// Library returns the parser library.
func (app *Application) Library() *library.Library {
	return app.library
}

// Scheme returns the color scheme.
func (app *Application) Scheme() *colors.Scheme {
	return app.scheme
}

// Highlighter returns the shared highlighter.
func (app *Application) Highlighter() *highlight.Highlighter {
	return app.highlighter
}

// Metrics returns the render and reload counters.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Watching reports whether parser directories are being watched.
func (app *Application) Watching() bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.watcher != nil
}

// IsRunning returns true while the viewer is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// OpenView loads a file or directory and binds it to a view. A non-empty
// parserName pins that parser instead of selecting one from the file name
// and first line; NoParser turns highlighting off.
func (app *Application) OpenView(path, parserName string) (*editor.View, error) {
	doc, err := editor.LoadFile(path)
	if err != nil {
		return nil, &OperationError{Op: "open", Target: path, Err: err}
	}

	view := editor.NewView(doc, app.library, app.highlighter,
		editor.WithCurrentLine(app.config.Viewer.CurrentLine),
		editor.WithLogger(app.logger),
	)

	switch parserName {
	case "":
	case NoParser:
		view.SetParser(nil)
	default:
		def := app.library.Definition(parserName)
		if def == nil {
			return nil, &OperationError{
				Op:     "open",
				Target: path,
				Err:    fmt.Errorf("%w: %s", library.ErrUnknownParser, parserName),
			}
		}
		view.SetParser(def)
	}

	app.logger.Debug("opened %s (%d lines)", doc.Name, doc.LineCount())
	return view, nil
}

// ReloadParser recompiles the file a parser was loaded from. Built-in
// parsers have no file and report false.
func (app *Application) ReloadParser(name string) (bool, error) {
	origin := app.library.Origin(name)
	switch origin {
	case "":
		return false, &OperationError{Op: "reload", Target: name, Err: library.ErrUnknownParser}
	case library.BuiltinOrigin:
		return false, nil
	}
	err := app.library.Reload(origin)
	app.metrics.RecordReload(err)
	if err != nil {
		return false, &OperationError{Op: "reload", Target: name, Err: err}
	}
	return true, nil
}

// SetReloadHook registers fn to be called after every definition reload.
// A nil fn removes the hook.
func (app *Application) SetReloadHook(fn func(path string, err error)) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.onReload = fn
}

// handleReload runs on the watcher goroutine after each reload.
func (app *Application) handleReload(path string, err error) {
	app.metrics.RecordReload(err)

	app.mu.RLock()
	fn := app.onReload
	app.mu.RUnlock()
	if fn != nil {
		fn(path, err)
	}
}

// Close stops the watcher, logs the metrics and closes the log file.
// It is safe to call more than once.
func (app *Application) Close() error {
	var err error
	app.closeOnce.Do(func() {
		app.stopWatcher()
		if app.logger != nil {
			app.logger.WithFields(app.metrics.Snapshot().Fields()).Debug("shutdown")
			_ = app.logger.Sync()
		}
		if app.logFile != nil {
			err = app.logFile.Close()
			app.logFile = nil
		}
	})
	return err
}

func (app *Application) stopWatcher() {
	app.mu.Lock()
	w, cancel, done := app.watcher, app.cancel, app.followDone
	app.watcher, app.cancel, app.followDone = nil, nil, nil
	app.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if w != nil {
		if err := w.Close(); err != nil && app.logger != nil {
			app.logger.Warn("closing watcher: %v", err)
		}
	}
}
