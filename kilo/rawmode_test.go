package kilo

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// fakeAttrs records every attribute set applied to it, and in attempts
// every set tried, failed or not.
type fakeAttrs struct {
	current  unix.Termios
	getErr   error
	setErr   error
	sets     []unix.Termios
	attempts []unix.Termios
}

func newFakeAttrs() *fakeAttrs {
	var t unix.Termios
	t.Iflag = unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON | unix.IUTF8
	t.Oflag = unix.OPOST | unix.ONLCR
	t.Cflag = unix.CS7 | unix.CREAD
	t.Lflag = unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG | unix.ECHOE
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	return &fakeAttrs{current: t}
}

func (f *fakeAttrs) GetAttr() (*unix.Termios, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	t := f.current
	return &t, nil
}

func (f *fakeAttrs) SetAttr(t *unix.Termios) error {
	f.attempts = append(f.attempts, *t)
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, *t)
	f.current = *t
	return nil
}

func TestMakeRaw(t *testing.T) {
	orig := newFakeAttrs().current
	before := orig

	raw := MakeRaw(&orig)

	assert.Equal(t, before, orig, "original must not be modified")

	assert.Zero(t, raw.Iflag&(unix.BRKINT|unix.ICRNL|unix.INPCK|unix.ISTRIP|unix.IXON))
	assert.NotZero(t, raw.Iflag&unix.IUTF8, "unrelated input flags are kept")
	assert.Zero(t, raw.Oflag&unix.OPOST)
	assert.Equal(t, raw.Cflag&unix.CSIZE, raw.Cflag&unix.CS8)
	assert.NotZero(t, raw.Cflag&unix.CREAD)
	assert.Zero(t, raw.Lflag&(unix.ECHO|unix.ICANON|unix.IEXTEN|unix.ISIG))
	assert.NotZero(t, raw.Lflag&unix.ECHOE)
	assert.Equal(t, uint8(0), raw.Cc[unix.VMIN])
	assert.Equal(t, uint8(1), raw.Cc[unix.VTIME])
}

func TestEnterRawModeAndRestore(t *testing.T) {
	dev := newFakeAttrs()
	orig := dev.current

	m, err := EnterRawMode(dev)
	require.NoError(t, err)
	require.Len(t, dev.sets, 1)
	assert.Equal(t, *MakeRaw(&orig), dev.sets[0])

	require.NoError(t, m.Restore())
	require.Len(t, dev.sets, 2)
	assert.Equal(t, orig, dev.current)

	// Idempotent
	require.NoError(t, m.Restore())
	assert.Len(t, dev.sets, 2)
}

func TestEnterRawModeCaptureFailure(t *testing.T) {
	dev := newFakeAttrs()
	dev.getErr = unix.ENOTTY

	m, err := EnterRawMode(dev)
	assert.Nil(t, m)

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tcgetattr", fe.Op)
	assert.ErrorIs(t, err, unix.ENOTTY)
	assert.Empty(t, dev.sets)
}

func TestEnterRawModeApplyFailure(t *testing.T) {
	dev := newFakeAttrs()
	orig := dev.current
	dev.setErr = unix.EIO

	_, err := EnterRawMode(dev)

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tcsetattr", fe.Op)

	// The raw set, then the captured one put back
	require.Len(t, dev.attempts, 2)
	assert.Equal(t, *MakeRaw(&orig), dev.attempts[0])
	assert.Equal(t, orig, dev.attempts[1])
}

func TestRestoreFailureIsReported(t *testing.T) {
	dev := newFakeAttrs()
	m, err := EnterRawMode(dev)
	require.NoError(t, err)

	dev.setErr = unix.EIO
	err = m.Restore()

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tcsetattr", fe.Op)

	// Only tried once
	dev.setErr = nil
	assert.Equal(t, err, m.Restore())
	assert.Len(t, dev.sets, 1)
}

func TestWithRawModeRestoresOnSuccess(t *testing.T) {
	dev := newFakeAttrs()
	orig := dev.current

	var inRaw bool
	err := WithRawMode(dev, func() error {
		inRaw = dev.current.Lflag&unix.ECHO == 0
		return nil
	})

	require.NoError(t, err)
	assert.True(t, inRaw)
	assert.Equal(t, orig, dev.current)
}

func TestWithRawModeRestoresOnFatalError(t *testing.T) {
	dev := newFakeAttrs()
	orig := dev.current

	err := WithRawMode(dev, func() error {
		return fatal("read", unix.EIO)
	})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)
	require.Len(t, dev.sets, 2)
	assert.Equal(t, orig, dev.current)
}

func TestWithRawModeRestoresOnPanic(t *testing.T) {
	dev := newFakeAttrs()
	orig := dev.current

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithRawMode(dev, func() error {
			panic("boom")
		})
	})
	assert.Equal(t, orig, dev.current)
}

func TestWithRawModePanicKeepsRestoreError(t *testing.T) {
	dev := newFakeAttrs()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		_ = WithRawMode(dev, func() error {
			dev.setErr = unix.EIO
			panic("boom")
		})
	}()

	rp, ok := recovered.(*RestorePanic)
	require.True(t, ok, "panic value %#v", recovered)
	assert.Equal(t, "boom", rp.Value)

	var fe *FatalError
	require.True(t, errors.As(rp, &fe))
	assert.Equal(t, "tcsetattr", fe.Op)
	assert.Contains(t, rp.Error(), "boom")
	assert.Contains(t, rp.Error(), "restore failed")
}

func TestWithRawModeRestoreErrorSurfaces(t *testing.T) {
	dev := newFakeAttrs()

	err := WithRawMode(dev, func() error {
		dev.setErr = unix.EIO
		return nil
	})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tcsetattr", fe.Op)
}

func TestWithRawModeKeepsCallerError(t *testing.T) {
	dev := newFakeAttrs()

	err := WithRawMode(dev, func() error {
		dev.setErr = unix.EIO
		return fatal("read", unix.EBADF)
	})

	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)
	assert.Contains(t, err.Error(), "restore failed")
}

func TestWithRawModeSkipsFnWhenCaptureFails(t *testing.T) {
	dev := newFakeAttrs()
	dev.getErr = unix.ENOTTY

	called := false
	err := WithRawMode(dev, func() error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}
