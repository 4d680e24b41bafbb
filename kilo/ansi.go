package kilo

import "strconv"

// Escape commands written to the terminal. These are the only sequences the
// editor emits and must stay byte-exact.
var (
	escClearScreen = []byte("\x1b[2J")
	escCursorHome  = []byte("\x1b[H")
	escCursorHide  = []byte("\x1b[?25l")
	escCursorShow  = []byte("\x1b[?25h")
	escEraseLine   = []byte("\x1b[K")
	escFarCorner   = []byte("\x1b[999C\x1b[999B") // forward and down, clamped by the terminal
	escCursorQuery = []byte("\x1b[6n")            // DSR: reply is ESC [ row ; col R
	crlf           = []byte("\r\n")
)

const (
	keyEsc       = 0x1b
	rowMarker    = '~'
	reportFinal  = 'R'
	reportBufLen = 32 // 31 usable bytes
)

// clearSequence clears the screen and homes the cursor.
func clearSequence() []byte {
	seq := make([]byte, 0, len(escClearScreen)+len(escCursorHome))
	seq = append(seq, escClearScreen...)
	return append(seq, escCursorHome...)
}

// appendCursorPos appends a CUP command for the 0-indexed cell (x, y).
func appendCursorPos(b []byte, x, y int) []byte {
	b = append(b, "\x1b["...)
	b = strconv.AppendInt(b, int64(y+1), 10)
	b = append(b, ';')
	b = strconv.AppendInt(b, int64(x+1), 10)
	return append(b, 'H')
}
