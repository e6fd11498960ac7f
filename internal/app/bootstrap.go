package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/dshills/parsedit/internal/config"
	"github.com/dshills/parsedit/internal/config/watcher"
	"github.com/dshills/parsedit/internal/log"
	"github.com/dshills/parsedit/internal/syntax/colors"
	"github.com/dshills/parsedit/internal/syntax/highlight"
	"github.com/dshills/parsedit/internal/syntax/library"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 5),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logging", b.initLogging},
		{"colors", b.initColors},
		{"library", b.initLibrary},
		{"watcher", b.initWatcher},
	}

	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			return err
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

// initConfig loads the settings file and applies the option overrides.
func (b *bootstrapper) initConfig() error {
	path := b.opts.ConfigPath
	if path == "" && !b.opts.NoConfig {
		// Without a config directory the defaults apply.
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	if b.opts.NoConfig {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}

	if b.opts.LogLevel != "" {
		cfg.Log.Level = b.opts.LogLevel
	}
	if b.opts.LogFile != "" {
		cfg.Log.File = b.opts.LogFile
	}
	if b.opts.Scheme != "" {
		cfg.Colors.Scheme = b.opts.Scheme
	}
	cfg.Parsers.Dirs = append(cfg.Parsers.Dirs, b.opts.ParserDirs...)
	if b.opts.NoWatch {
		cfg.Parsers.Watch = false
	}
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}

	b.app.config = cfg
	return nil
}

// initLogging creates the logger, writing to the log file when one is set.
func (b *bootstrapper) initLogging() error {
	cfg := b.app.config.Log

	out := b.opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return &InitError{Component: "logging", Err: err}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return &InitError{Component: "logging", Err: err}
		}
		b.app.logFile = f
		out = f
	}

	b.app.logger = log.New(log.Config{
		Level:  log.ParseLevel(cfg.Level),
		Output: out,
		Prefix: "parsedit",
		JSON:   cfg.JSON,
	})
	log.Set(b.app.logger)
	return nil
}

// initColors resolves the color scheme and applies configured overrides.
func (b *bootstrapper) initColors() error {
	cfg := b.app.config.Colors

	scheme, err := colors.Lookup(cfg.Scheme)
	if err != nil {
		return &InitError{Component: "colors", Err: err}
	}
	if err := scheme.Apply(cfg.Roles, cfg.Alternates); err != nil {
		return &InitError{Component: "colors", Err: err}
	}

	b.app.scheme = scheme
	b.app.highlighter = highlight.New(scheme)
	return nil
}

// initLibrary loads the built-in and configured parser definitions and
// registers the configured mappings. A mapping naming a parser that did not
// load is logged and skipped.
func (b *bootstrapper) initLibrary() error {
	cfg := b.app.config
	logger := b.app.logger.WithComponent("bootstrap")
	lib := library.New(b.app.logger)

	if cfg.Parsers.Builtin {
		logger.Debug("loaded %d builtin parsers", lib.LoadBuiltin())
	}
	for _, dir := range cfg.Parsers.Dirs {
		n, err := lib.LoadDir(dir)
		if err != nil {
			logger.Warn("%v", err)
			continue
		}
		logger.Debug("loaded %d parsers from %s", n, dir)
	}
	for _, m := range cfg.Mappings {
		if err := lib.AddMapping(m.Glob, m.Magic, m.Parser); err != nil {
			if errors.Is(err, library.ErrUnknownParser) {
				logger.Warn("mapping %s%s skipped: %v", m.Glob, m.Magic, err)
				continue
			}
			return &InitError{Component: "library", Err: err}
		}
	}

	b.app.library = lib
	return nil
}

// initWatcher starts live reload of the parser directories when enabled.
func (b *bootstrapper) initWatcher() error {
	cfg := b.app.config.Parsers
	if !cfg.Watch || len(cfg.Dirs) == 0 {
		return nil
	}
	logger := b.app.logger.WithComponent("bootstrap")

	w, err := watcher.New(watcher.Config{
		Extensions: []string{library.Extension},
		Delay:      cfg.Debounce(),
	})
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}

	watched := 0
	for _, dir := range cfg.Dirs {
		if err := w.Watch(dir); err != nil {
			logger.Warn("not watching %s: %v", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = w.Close()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.app.library.Follow(ctx, w.Events(), w.Errors(), b.app.handleReload)
	}()

	b.app.mu.Lock()
	b.app.watcher = w
	b.app.cancel = cancel
	b.app.followDone = done
	b.app.mu.Unlock()

	logger.Info("watching %d parser directories", watched)
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "watcher":
			b.app.stopWatcher()
		case "logging":
			if b.app.logFile != nil {
				_ = b.app.logFile.Close()
				b.app.logFile = nil
			}
		}
	}
}
