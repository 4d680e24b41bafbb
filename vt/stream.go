package vt

import (
	"unicode/utf8"
)

type streamState uint8

const (
	stateGround streamState = iota
	stateEscape
	stateCSI
)

// Stream decodes a byte stream written to a terminal and dispatches the
// resulting operations to a Screen.
type Stream struct {
	screen Screen
	state  streamState

	// CSI accumulation
	params  []int
	param   int
	hasNum  bool
	private bool

	// Incomplete UTF-8 sequence carried over between Feed calls
	pending []byte
}

// NewStream creates a Stream dispatching to screen
func NewStream(screen Screen) *Stream {
	return &Stream{screen: screen}
}

// Feed processes data as if written to the terminal
func (st *Stream) Feed(data []byte) {
	if len(st.pending) > 0 {
		data = append(st.pending, data...)
		st.pending = nil
	}

	for i := 0; i < len(data); {
		b := data[i]

		switch st.state {
		case stateEscape:
			st.escape(b)
			i++
			continue
		case stateCSI:
			st.csi(b)
			i++
			continue
		}

		if b < 0x20 || b == 0x7f {
			st.control(b)
			i++
			continue
		}

		if b < utf8.RuneSelf {
			st.screen.Draw(string(rune(b)))
			i++
			continue
		}

		if !utf8.FullRune(data[i:]) {
			st.pending = append(st.pending[:0], data[i:]...)
			return
		}
		r, size := utf8.DecodeRune(data[i:])
		st.screen.Draw(string(r))
		i += size
	}
}

func (st *Stream) control(b byte) {
	switch b {
	case 0x07:
		st.screen.Bell()
	case 0x08:
		st.screen.Backspace()
	case 0x09:
		st.screen.Tab()
	case 0x0a, 0x0b, 0x0c:
		st.screen.Linefeed()
	case 0x0d:
		st.screen.CarriageReturn()
	case 0x1b:
		st.state = stateEscape
	}
}

func (st *Stream) escape(b byte) {
	st.state = stateGround
	switch b {
	case '[':
		st.params = st.params[:0]
		st.param = 0
		st.hasNum = false
		st.private = false
		st.state = stateCSI
	case '7':
		st.screen.SaveCursor()
	case '8':
		st.screen.RestoreCursor()
	case 'c':
		st.screen.Reset()
	}
}

func (st *Stream) csi(b byte) {
	switch {
	case b >= '0' && b <= '9':
		st.param = st.param*10 + int(b-'0')
		st.hasNum = true
		return
	case b == ';':
		st.params = append(st.params, st.paramOr(0))
		st.param = 0
		st.hasNum = false
		return
	case b == '?':
		st.private = true
		return
	case b < 0x40 || b > 0x7e:
		// Intermediate bytes are not interpreted
		return
	}

	if st.hasNum || len(st.params) > 0 {
		st.params = append(st.params, st.paramOr(0))
	}
	st.state = stateGround
	st.dispatch(b)
}

func (st *Stream) paramOr(def int) int {
	if !st.hasNum {
		return def
	}
	return st.param
}

// arg returns parameter i, or def when it is missing or zero
func (st *Stream) arg(i, def int) int {
	if i < len(st.params) && st.params[i] != 0 {
		return st.params[i]
	}
	return def
}

func (st *Stream) dispatch(final byte) {
	s := st.screen
	switch final {
	case 'A':
		s.CursorUp(st.arg(0, 1))
	case 'B':
		s.CursorDown(st.arg(0, 1))
	case 'C':
		s.CursorForward(st.arg(0, 1))
	case 'D':
		s.CursorBack(st.arg(0, 1))
	case 'G':
		s.CursorToColumn(st.arg(0, 1))
	case 'H', 'f':
		s.CursorPosition(st.arg(0, 1), st.arg(1, 1))
	case 'J':
		s.EraseInDisplay(st.argZero(0))
	case 'K':
		s.EraseInLine(st.argZero(0), st.private)
	case 'h':
		s.SetMode(st.params, st.private)
	case 'l':
		s.ResetMode(st.params, st.private)
	case 'n':
		if !st.private {
			s.ReportDeviceStatus(st.argZero(0))
		}
	case 's':
		s.SaveCursor()
	case 'u':
		s.RestoreCursor()
	}
}

func (st *Stream) argZero(i int) int {
	if i < len(st.params) {
		return st.params[i]
	}
	return 0
}
