package vt

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrNoWindowSize is returned by WindowSize when size reporting is off.
var ErrNoWindowSize = errors.New("vt: window size not available")

// Terminal is an in-memory terminal device. Writes are interpreted by a
// NativeScreen; reads return queued input followed by any device replies,
// one call at a time, and (0, nil) once both are drained.
type Terminal struct {
	mu sync.Mutex

	screen *NativeScreen
	stream *Stream

	input        []byte
	writes       int
	reportSize   bool
	readErr      error
	writeErr     error
	bytesWritten int
}

// NewTerminal creates a terminal with the given size that reports it
// through WindowSize.
func NewTerminal(columns, lines int) *Terminal {
	screen := NewNativeScreen(columns, lines)
	return &Terminal{
		screen:     screen,
		stream:     NewStream(screen),
		reportSize: true,
	}
}

// SetReportSize controls whether WindowSize answers; when off, callers
// have to probe the size with escape sequences.
func (t *Terminal) SetReportSize(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reportSize = on
}

// Type queues input as if typed on the keyboard.
func (t *Terminal) Type(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input = append(t.input, data...)
}

// FailReads makes every following Read return err.
func (t *Terminal) FailReads(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readErr = err
}

// FailWrites makes every following Write return err.
func (t *Terminal) FailWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

func (t *Terminal) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.readErr != nil {
		return 0, t.readErr
	}
	t.input = append(t.input, t.screen.TakeReplies()...)
	n := copy(p, t.input)
	t.input = t.input[n:]
	return n, nil
}

func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.writeErr != nil {
		return 0, t.writeErr
	}
	t.writes++
	t.bytesWritten += len(p)
	t.stream.Feed(p)
	return len(p), nil
}

func (t *Terminal) WindowSize() (rows, cols int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.reportSize {
		return 0, 0, ErrNoWindowSize
	}
	cols, rows = t.screen.Size()
	return rows, cols, nil
}

// Pending returns the number of input bytes not yet read.
func (t *Terminal) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.input)
}

// Screen returns the screen the terminal draws on.
func (t *Terminal) Screen() *NativeScreen {
	return t.screen
}

// Writes returns the number of Write calls so far.
func (t *Terminal) Writes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writes
}

// BytesWritten returns the total number of bytes written.
func (t *Terminal) BytesWritten() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bytesWritten
}
