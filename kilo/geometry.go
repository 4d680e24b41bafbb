package kilo

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Device is the terminal the editor talks to. Read must return (0, nil)
// when no input arrives within the device's short read timeout.
type Device interface {
	io.Reader
	io.Writer
	WindowSize() (rows, cols int, err error)
}

// Geometry is the usable screen size in cells.
type Geometry struct {
	Rows int
	Cols int
}

// ResolveGeometry asks the device for its size and falls back to moving
// the cursor to the far corner and reading back its position.
func ResolveGeometry(dev Device) (Geometry, error) {
	rows, cols, err := dev.WindowSize()
	if err == nil && rows > 0 && cols > 0 {
		return Geometry{Rows: rows, Cols: cols}, nil
	}

	if _, err := dev.Write(escFarCorner); err != nil {
		return Geometry{}, fatal("getWindowSize", errors.Wrap(err, "move cursor"))
	}
	geo, err := cursorPosition(dev)
	if err != nil {
		return Geometry{}, fatal("getWindowSize", err)
	}
	return geo, nil
}

// cursorPosition issues a DSR and parses the reply as a geometry.
func cursorPosition(dev Device) (Geometry, error) {
	if _, err := dev.Write(escCursorQuery); err != nil {
		return Geometry{}, errors.Wrap(err, "getCursorPosition")
	}
	reply := readCursorReport(dev)
	rows, cols, err := parseCursorReport(reply)
	if err != nil {
		return Geometry{}, errors.Wrap(err, "getCursorPosition")
	}
	return Geometry{Rows: rows, Cols: cols}, nil
}

// readCursorReport reads a reply one byte at a time until the final R,
// a read that yields nothing, or 31 bytes. The R is not included.
func readCursorReport(r io.Reader) []byte {
	buf := make([]byte, 0, reportBufLen)
	var b [1]byte
	for len(buf) < reportBufLen-1 {
		n, err := r.Read(b[:])
		if n != 1 || err != nil {
			break
		}
		if b[0] == reportFinal {
			break
		}
		buf = append(buf, b[0])
	}
	return buf
}

// parseCursorReport parses "ESC [ rows ; cols". Each number may be
// preceded by blanks and a sign, and anything after cols is ignored.
func parseCursorReport(reply []byte) (rows, cols int, err error) {
	if len(reply) < 2 || reply[0] != keyEsc || reply[1] != '[' {
		return 0, 0, errors.Errorf("unexpected cursor report %q", reply)
	}

	rows, rest, err := scanInt(reply[2:])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "cursor report rows %q", reply)
	}
	if len(rest) == 0 || rest[0] != ';' {
		return 0, 0, errors.Errorf("malformed cursor report %q", reply)
	}
	cols, _, err = scanInt(rest[1:])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "cursor report cols %q", reply)
	}
	if rows <= 0 || cols <= 0 {
		return 0, 0, errors.Errorf("cursor report out of range %dx%d", rows, cols)
	}
	return rows, cols, nil
}

// scanInt reads a decimal integer from the front of b after skipping
// blanks, and returns the bytes that follow it.
func scanInt(b []byte) (int, []byte, error) {
	i := 0
	for i < len(b) && isBlank(b[i]) {
		i++
	}
	start := i
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	digits := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, b, errors.New("no digits")
	}
	n, err := strconv.Atoi(string(b[start:i]))
	if err != nil {
		return 0, b, err
	}
	return n, b[i:], nil
}

func isBlank(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
