package kilo

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// Version is shown in the welcome banner.
const Version = "0.0.1"

// DefaultQuitKey is Ctrl-Q.
var DefaultQuitKey = Ctrl('q')

// DefaultBanner returns the welcome banner shown on an empty screen.
func DefaultBanner() string {
	return "Kilo editor -- version " + Version
}

type editorState uint8

const (
	stateRunning editorState = iota
	stateTerminating
)

// Editor owns the screen state and drives the refresh/input loop.
type Editor struct {
	dev  Device
	keys *KeyReader
	log  *log.Logger

	geo    Geometry
	cursor Cursor
	row    *Row

	banner  string
	quitKey byte
	state   editorState
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithBanner replaces the welcome banner. An empty banner hides it.
func WithBanner(banner string) Option {
	return func(e *Editor) { e.banner = banner }
}

// WithQuitKey sets the byte that ends the session.
func WithQuitKey(b byte) Option {
	return func(e *Editor) { e.quitKey = b }
}

// WithRow sets the document row.
func WithRow(r *Row) Option {
	return func(e *Editor) { e.row = r }
}

// NewEditor creates an editor drawing on dev with the given geometry.
func NewEditor(dev Device, geo Geometry, opts ...Option) *Editor {
	e := &Editor{
		dev:     dev,
		keys:    NewKeyReader(dev),
		log:     log.New(io.Discard),
		geo:     geo,
		banner:  DefaultBanner(),
		quitKey: DefaultQuitKey,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open loads the first line of path as the document row.
func (e *Editor) Open(path string) error {
	row, err := OpenFile(path)
	if err != nil {
		return err
	}
	e.row = row
	e.log.Debug("opened file", "path", path, "size", row.Size())
	return nil
}

// Cursor returns the current cursor cell.
func (e *Editor) Cursor() Cursor { return e.cursor }

// Geometry returns the screen size the editor draws into.
func (e *Editor) Geometry() Geometry { return e.geo }

// Running reports whether the editor has not been asked to quit.
func (e *Editor) Running() bool { return e.state == stateRunning }

// Refresh redraws the whole screen with a single write.
func (e *Editor) Refresh() error {
	frame := BuildFrame(e.geo, e.cursor, e.row, e.banner)
	if _, err := e.dev.Write(frame); err != nil {
		return fatal("write", err)
	}
	return nil
}

// Run refreshes and handles keys until the quit key is pressed. On a fatal
// error the screen is cleared before the error is returned.
func (e *Editor) Run(ctx context.Context) error {
	for e.state == stateRunning {
		if err := e.step(ctx); err != nil {
			e.clearScreen()
			return err
		}
	}
	return nil
}

func (e *Editor) step(ctx context.Context) error {
	if err := e.Refresh(); err != nil {
		return err
	}
	k, err := e.keys.ReadKey(ctx)
	if err != nil {
		return err
	}
	e.log.Debug("key", "key", k)
	return e.ProcessKey(k)
}

// ProcessKey applies one key to the editor state.
func (e *Editor) ProcessKey(k Key) error {
	switch k.Kind {
	case KeyByte:
		if k.Byte == e.quitKey {
			e.state = stateTerminating
			return e.clearScreen()
		}

	case KeyHome:
		e.cursor.X = 0

	case KeyEnd:
		e.cursor.X = e.geo.Cols - 1

	case KeyPageUp, KeyPageDown:
		dir := KeyArrowUp
		if k.Kind == KeyPageDown {
			dir = KeyArrowDown
		}
		for times := e.geo.Rows; times > 0; times-- {
			e.moveCursor(dir)
		}

	case KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight:
		e.moveCursor(k.Kind)
	}
	return nil
}

// moveCursor moves one cell, stopping at the screen edges.
func (e *Editor) moveCursor(kind KeyKind) {
	switch kind {
	case KeyArrowLeft:
		if e.cursor.X != 0 {
			e.cursor.X--
		}
	case KeyArrowRight:
		if e.cursor.X < e.geo.Cols-1 {
			e.cursor.X++
		}
	case KeyArrowUp:
		if e.cursor.Y != 0 {
			e.cursor.Y--
		}
	case KeyArrowDown:
		if e.cursor.Y < e.geo.Rows-1 {
			e.cursor.Y++
		}
	}
}

// clearScreen clears the screen and homes the cursor in one write.
func (e *Editor) clearScreen() error {
	if _, err := e.dev.Write(clearSequence()); err != nil {
		return fatal("write", err)
	}
	return nil
}
