package kilo

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/scottpeterman/gokilo/vt"
)

// fakeTerminal is a virtual screen with a recorded line discipline.
type fakeTerminal struct {
	*vt.Terminal
	*fakeAttrs
}

func newFakeTerminal(cols, rows int) *fakeTerminal {
	return &fakeTerminal{Terminal: vt.NewTerminal(cols, rows), fakeAttrs: newFakeAttrs()}
}

func sessionContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRunSessionQuit(t *testing.T) {
	term := newFakeTerminal(40, 10)
	orig := term.current
	term.Type("\x1b[B\x1b[C\x11")

	err := RunSession(sessionContext(t), term, Config{})
	require.NoError(t, err)

	require.Len(t, term.sets, 2)
	assert.Zero(t, term.sets[0].Lflag&unix.ECHO, "ran in raw mode")
	assert.Equal(t, orig, term.current)
	assert.Equal(t, make([]string, 10), term.Screen().GetDisplay())
}

func TestRunSessionShowsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))

	term := newFakeTerminal(40, 4)
	// The read error ends the session right after the first frame
	term.FailReads(errors.New("EIO"))

	var snapshot []string
	err := RunSession(sessionContext(t), &snapshotTerminal{fakeTerminal: term, first: &snapshot}, Config{File: path})
	require.Error(t, err)
	assert.Equal(t, []string{"package main", "~", "~", "~"}, snapshot)
}

func TestRunSessionReadFailureRestores(t *testing.T) {
	term := newFakeTerminal(40, 10)
	orig := term.current
	term.FailReads(unix.EIO)

	err := RunSession(sessionContext(t), term, Config{})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)
	assert.Equal(t, orig, term.current)
	assert.Equal(t, make([]string, 10), term.Screen().GetDisplay())
}

func TestRunSessionMissingFile(t *testing.T) {
	term := newFakeTerminal(40, 10)
	orig := term.current

	err := RunSession(sessionContext(t), term, Config{File: filepath.Join(t.TempDir(), "nope")})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "fopen", fe.Op)
	assert.Equal(t, orig, term.current)
	assert.Equal(t, 1, term.Writes(), "only the clear was written")
}

func TestRunSessionGeometryFailure(t *testing.T) {
	term := newFakeTerminal(40, 10)
	term.SetReportSize(false)
	// The probe is written but the reply can never be read
	term.FailReads(unix.EIO)
	orig := term.current

	err := RunSession(sessionContext(t), term, Config{})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "getWindowSize", fe.Op)
	assert.Equal(t, orig, term.current)
}

// assertCleared checks that the screen is blank with the cursor at home.
func assertCleared(t *testing.T, term *fakeTerminal, rows int) {
	t.Helper()
	assert.Equal(t, make([]string, rows), term.Screen().GetDisplay())
	x, y := term.Screen().GetCursor()
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestRunSessionRawModeFailure(t *testing.T) {
	term := newFakeTerminal(40, 10)
	term.Write([]byte("\x1b[5;5Hleftover"))
	term.getErr = unix.ENOTTY

	err := RunSession(sessionContext(t), term, Config{})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tcgetattr", fe.Op)
	assert.Equal(t, 2, term.Writes(), "one clear after the setup write")
	assertCleared(t, term, 10)
}

func TestRunSessionRawApplyFailure(t *testing.T) {
	term := newFakeTerminal(40, 10)
	orig := term.current
	term.setErr = unix.EIO

	err := RunSession(sessionContext(t), term, Config{})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tcsetattr", fe.Op)
	assert.Equal(t, 1, term.Writes())
	assertCleared(t, term, 10)
	require.Len(t, term.attempts, 2)
	assert.Equal(t, orig, term.attempts[1])
}

func TestRunSessionRestoreFailure(t *testing.T) {
	term := newFakeTerminal(40, 10)
	term.Type("\x11")

	// Break the line discipline once the editor has quit
	hooked := &hookTerminal{fakeTerminal: term, onWrite: func(p []byte) {
		if bytes.Equal(p, clearSequence()) {
			term.setErr = unix.EIO
		}
	}}

	err := RunSession(sessionContext(t), hooked, Config{})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tcsetattr", fe.Op)
	// Frame, clear on quit, clear after the failed restore
	assert.Equal(t, 3, term.Writes())
	assertCleared(t, term, 10)
}

func TestRunSessionHiddenBanner(t *testing.T) {
	term := newFakeTerminal(40, 6)
	term.FailReads(unix.EIO)

	var snapshot []string
	err := RunSession(sessionContext(t), &snapshotTerminal{fakeTerminal: term, first: &snapshot}, Config{
		Banner:     "ignored",
		HideBanner: true,
	})
	require.Error(t, err)
	assert.Equal(t, []string{"~", "~", "~", "~", "~", "~"}, snapshot)
}

func TestRunSessionConfig(t *testing.T) {
	term := newFakeTerminal(40, 6)
	term.Type("\x18") // Ctrl-X

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})

	var snapshot []string
	err := RunSession(sessionContext(t), &snapshotTerminal{fakeTerminal: term, first: &snapshot}, Config{
		Banner:  "hi",
		QuitKey: Ctrl('x'),
		Logger:  logger,
	})
	require.NoError(t, err)

	assert.Equal(t, "~"+strings.Repeat(" ", 18)+"hi", snapshot[2])
	assert.Contains(t, logs.String(), "screen geometry")
	assert.Contains(t, logs.String(), "terminal restored")
}

// snapshotTerminal records the screen after the first frame is drawn.
type snapshotTerminal struct {
	*fakeTerminal
	first *[]string
}

func (s *snapshotTerminal) Write(p []byte) (int, error) {
	n, err := s.fakeTerminal.Write(p)
	if *s.first == nil && bytes.HasPrefix(p, escCursorHide) {
		*s.first = s.Screen().GetDisplay()
	}
	return n, err
}

// hookTerminal calls onWrite after every successful write.
type hookTerminal struct {
	*fakeTerminal
	onWrite func(p []byte)
}

func (h *hookTerminal) Write(p []byte) (int, error) {
	n, err := h.fakeTerminal.Write(p)
	if err == nil {
		h.onWrite(p)
	}
	return n, err
}
