package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/parsedit/internal/editor"
	"github.com/dshills/parsedit/internal/log"
	"github.com/dshills/parsedit/internal/renderer"
	"github.com/dshills/parsedit/internal/renderer/backend"
	"github.com/dshills/parsedit/internal/renderer/statusline"
	"github.com/dshills/parsedit/internal/renderer/viewport"
)

const (
	// wheelLines is how far one mouse wheel step scrolls.
	wheelLines = 3
	// panColumns is how far one horizontal scroll step moves.
	panColumns = 8
)

// Run shows view on b until the user quits. It blocks; definition reloads
// from the watcher redraw the screen while it runs.
func (app *Application) Run(view *editor.View, b backend.Backend) error {
	if b == nil {
		return ErrNoBackend
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	v := newViewer(app, view, b)
	app.SetReloadHook(v.reloaded)
	defer app.SetReloadHook(nil)

	return v.loop()
}

// viewer is the state of one Run.
type viewer struct {
	app      *Application
	view     *editor.View
	backend  backend.Backend
	renderer *renderer.Renderer
	viewport *viewport.Viewport
	logger   *log.Logger

	mu      sync.Mutex
	pending string
	failed  bool
}

func newViewer(app *Application, view *editor.View, b backend.Backend) *viewer {
	r := renderer.New(b, app.scheme, renderer.Options{
		TabWidth:        app.config.Viewer.TabWidth,
		ShowLineNumbers: true,
		ShowStatusLine:  true,
	})
	width, _ := b.Size()
	vp := viewport.NewViewport(width, r.TextHeight())
	vp.SetLineCount(view.Document().LineCount())
	r.StatusLine().SetFilename(view.Document().Name)

	return &viewer{
		app:      app,
		view:     view,
		backend:  b,
		renderer: r,
		viewport: vp,
		logger:   app.logger.WithComponent("viewer"),
	}
}

// loop draws and handles events until quit.
func (v *viewer) loop() error {
	for {
		v.draw()
		err := v.handleEvent(v.backend.PollEvent())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// draw highlights the visible window and paints it.
func (v *viewer) draw() {
	start := time.Now()

	count := v.view.Document().LineCount()
	v.viewport.SetLineCount(count)

	win := v.view.Render(v.viewport.TopLine(), v.renderer.TextHeight(), v.viewport.Cursor())

	status := v.renderer.StatusLine()
	if def := v.view.Parser(); def != nil {
		status.SetParser(def.Name)
	} else {
		status.SetParser(statusline.NoParser)
	}
	status.SetPosition(v.viewport.Cursor()+1, count)

	v.renderer.SetLeftColumn(v.viewport.LeftColumn())
	v.renderer.Render(win, count)

	v.app.metrics.RecordRender(time.Since(start), v.view.Stats())
}

// handleEvent processes a backend event. Returns ErrQuit if the viewer
// should exit.
func (v *viewer) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventNone:
		// The backend has shut down.
		return ErrQuit
	case backend.EventKey:
		return v.handleKey(ev)
	case backend.EventMouse:
		v.handleMouse(ev)
	case backend.EventResize:
		v.renderer.Resize(ev.Width, ev.Height)
		v.viewport.Resize(ev.Width, v.renderer.TextHeight())
	case backend.EventInterrupt:
		v.showPending()
	}
	return nil
}

func (v *viewer) handleKey(ev backend.Event) error {
	v.renderer.StatusLine().ClearMessage()
	vp := v.viewport

	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyUp:
		vp.MoveCursor(-1)
	case backend.KeyDown, backend.KeyEnter:
		vp.MoveCursor(1)
	case backend.KeyPageUp:
		vp.PageUp()
	case backend.KeyPageDown:
		vp.PageDown()
	case backend.KeyHome:
		vp.SetCursor(0)
	case backend.KeyEnd:
		vp.SetCursor(v.view.Document().LineCount() - 1)
	case backend.KeyLeft:
		vp.ScrollHorizontalBy(-panColumns)
	case backend.KeyRight:
		vp.ScrollHorizontalBy(panColumns)
	case backend.KeyCtrlL:
		v.backend.Clear()
	case backend.KeyCtrlR:
		v.reloadParser()
	case backend.KeyRune:
		return v.handleRune(ev.Rune)
	}
	return nil
}

func (v *viewer) handleRune(r rune) error {
	vp := v.viewport
	switch r {
	case 'q':
		return ErrQuit
	case 'j':
		vp.MoveCursor(1)
	case 'k':
		vp.MoveCursor(-1)
	case ' ', 'f':
		vp.PageDown()
	case 'b':
		vp.PageUp()
	case 'g':
		vp.SetCursor(0)
	case 'G':
		vp.SetCursor(v.view.Document().LineCount() - 1)
	case 'h':
		vp.ScrollHorizontalBy(-panColumns)
	case 'l':
		vp.ScrollHorizontalBy(panColumns)
	}
	return nil
}

func (v *viewer) handleMouse(ev backend.Event) {
	switch ev.MouseButton {
	case backend.MouseWheelUp:
		v.viewport.ScrollBy(-wheelLines)
	case backend.MouseWheelDown:
		v.viewport.ScrollBy(wheelLines)
	case backend.MouseLeft:
		if ev.MouseY < v.renderer.TextHeight() {
			v.viewport.SetCursor(v.viewport.TopLine() + ev.MouseY)
		}
	}
}

// reloadParser recompiles the current parser from its file.
func (v *viewer) reloadParser() {
	status := v.renderer.StatusLine()
	def := v.view.Parser()
	if def == nil {
		status.SetMessage("no parser to reload", statusline.MessageWarning)
		return
	}
	ok, err := v.app.ReloadParser(def.Name)
	switch {
	case err != nil:
		v.logger.Warn("%v", err)
		status.SetMessage(err.Error(), statusline.MessageError)
	case !ok:
		status.SetMessage(fmt.Sprintf("%s is built in", def.Name), statusline.MessageInfo)
	default:
		status.SetMessage(fmt.Sprintf("reloaded %s", def.Name), statusline.MessageInfo)
	}
}

// reloaded is the application's reload hook. It runs on the watcher
// goroutine, so it only queues the message and wakes the loop.
func (v *viewer) reloaded(path string, err error) {
	msg := "reloaded " + path
	if err != nil {
		msg = err.Error()
	}
	v.mu.Lock()
	v.pending = msg
	v.failed = err != nil
	v.mu.Unlock()
	v.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
}

func (v *viewer) showPending() {
	v.mu.Lock()
	msg, failed := v.pending, v.failed
	v.pending = ""
	v.mu.Unlock()
	if msg == "" {
		return
	}
	typ := statusline.MessageInfo
	if failed {
		typ = statusline.MessageError
	}
	v.renderer.StatusLine().SetMessage(msg, typ)
}
