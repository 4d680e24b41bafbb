package kilo

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// AttrDevice reads and writes terminal line-discipline attributes.
// SetAttr applies after draining output and discards unread input
// (TCSAFLUSH semantics).
type AttrDevice interface {
	GetAttr() (*unix.Termios, error)
	SetAttr(t *unix.Termios) error
}

// RawMode holds the attributes captured before entering raw mode.
type RawMode struct {
	dev  AttrDevice
	orig unix.Termios

	once sync.Once
	err  error
}

// MakeRaw returns a raw copy of orig. Reads return as soon as any input is
// available, or after 100ms with nothing.
func MakeRaw(orig *unix.Termios) *unix.Termios {
	raw := *orig

	// Input modes
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	// Output modes
	raw.Oflag &^= unix.OPOST
	// Control modes
	raw.Cflag |= unix.CS8
	// Local modes
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	// Control chars, VTIME is in tenths of a second
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 1

	return &raw
}

// EnterRawMode captures the current attributes of dev and switches it to
// raw mode. The returned RawMode must be restored on every exit path.
func EnterRawMode(dev AttrDevice) (*RawMode, error) {
	orig, err := dev.GetAttr()
	if err != nil {
		return nil, fatal("tcgetattr", err)
	}

	m := &RawMode{dev: dev, orig: *orig}
	if err := dev.SetAttr(MakeRaw(orig)); err != nil {
		// A partial apply may have changed some flags; put back what we can.
		saved := m.orig
		dev.SetAttr(&saved)
		return nil, fatal("tcsetattr", err)
	}
	return m, nil
}

// Restore re-applies the captured attributes. Safe to call multiple times;
// only the first call touches the device.
func (m *RawMode) Restore() error {
	m.once.Do(func() {
		orig := m.orig
		if err := m.dev.SetAttr(&orig); err != nil {
			m.err = fatal("tcsetattr", err)
		}
	})
	return m.err
}

// WithRawMode runs fn with dev in raw mode and restores the captured
// attributes afterwards, whether fn returns normally, returns an error or
// panics. A panic is re-raised once the terminal is restored; if the
// restore fails too, the panic value becomes a *RestorePanic carrying both.
func WithRawMode(dev AttrDevice, fn func() error) (err error) {
	m, err := EnterRawMode(dev)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if rerr := m.Restore(); rerr != nil {
				panic(&RestorePanic{Value: r, Err: rerr})
			}
			panic(r)
		}
		if rerr := m.Restore(); rerr != nil {
			if err == nil {
				err = rerr
			} else {
				err = errors.Wrap(err, fmt.Sprintf("restore failed (%v)", rerr))
			}
		}
	}()

	return fn()
}

// RestorePanic is raised by WithRawMode when fn panicked and the terminal
// could not be restored afterwards.
type RestorePanic struct {
	Value any
	Err   error
}

func (p *RestorePanic) Error() string {
	return fmt.Sprintf("%v (restore failed: %v)", p.Value, p.Err)
}

func (p *RestorePanic) Unwrap() error { return p.Err }
