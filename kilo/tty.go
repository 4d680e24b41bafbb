//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package kilo

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// TTY is the controlling terminal: attributes and input on in, output and
// window size on out.
type TTY struct {
	in    *os.File
	out   *os.File
	inFd  int
	outFd int
}

// NewTTY wraps an input/output file pair, usually os.Stdin and os.Stdout.
func NewTTY(in, out *os.File) *TTY {
	return &TTY{
		in:    in,
		out:   out,
		inFd:  int(in.Fd()),
		outFd: int(out.Fd()),
	}
}

// IsTerminal reports whether the input side is a terminal.
func (t *TTY) IsTerminal() bool {
	return term.IsTerminal(t.inFd)
}

func (t *TTY) GetAttr() (*unix.Termios, error) {
	return unix.IoctlGetTermios(t.inFd, ioctlReadTermios)
}

func (t *TTY) SetAttr(termios *unix.Termios) error {
	return unix.IoctlSetTermios(t.inFd, ioctlWriteTermiosFlush, termios)
}

// Read reads straight from the descriptor. In raw mode a read with no
// input returns after VTIME with n == 0; that and EAGAIN/EINTR are all
// reported as (0, nil).
func (t *TTY) Read(p []byte) (int, error) {
	n, err := unix.Read(t.inFd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (t *TTY) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// WindowSize queries the output side for its size.
func (t *TTY) WindowSize() (rows, cols int, err error) {
	cols, rows, err = term.GetSize(t.outFd)
	return rows, cols, err
}
