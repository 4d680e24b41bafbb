package vt

import (
	"strconv"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
)

// NativeScreen is an in-memory VT100 screen

type NativeScreen struct {
	columns int
	lines   int

	// Core data
	buffer     [][]rune // The actual character data
	cellWidths [][]int  // 0 for continuation, 1 for normal, 2 for wide
	cursor     Cursor
	saved      *Cursor // For save/restore cursor

	// Modes
	autoWrap    bool
	newlineMode bool // LNM - if true, LF also does CR

	// Replies to the host (device status reports)
	replies []byte

	// Number of times the screen scrolled up
	scrolled int
}

type Cursor struct {
	X      int
	Y      int
	Hidden bool // For DECTCEM mode
}

// NewNativeScreen creates a blank screen. LF does not imply CR, as on a
// terminal with output post-processing disabled.
func NewNativeScreen(columns, lines int) *NativeScreen {
	s := &NativeScreen{
		columns:  columns,
		lines:    lines,
		autoWrap: true,
	}
	s.buffer = make([][]rune, lines)
	s.cellWidths = make([][]int, lines)
	for i := 0; i < lines; i++ {
		s.buffer[i], s.cellWidths[i] = s.blankLine()
	}
	return s
}

func (s *NativeScreen) blankLine() ([]rune, []int) {
	line := make([]rune, s.columns)
	widths := make([]int, s.columns)
	for j := 0; j < s.columns; j++ {
		line[j] = ' '
		widths[j] = 1
	}
	return line, widths
}

// Draw places text at the cursor, wrapping or sticking at the right edge
// depending on DECAWM.
func (s *NativeScreen) Draw(text string) {
	for _, ch := range text {
		s.drawChar(ch)
	}
}

func (s *NativeScreen) drawChar(ch rune) {
	// Get the display width of the character
	charWidth := runewidth.RuneWidth(ch)
	if charWidth == 0 {
		return
	}

	// Check if the character fits at current position
	if s.cursor.X+charWidth > s.columns {
		if !s.autoWrap {
			s.cursor.X = s.columns - charWidth
		} else {
			s.cursor.X = 0
			s.Index()
		}
	}
	if s.cursor.X < 0 {
		return
	}

	s.clearCellAt(s.cursor.Y, s.cursor.X)
	s.buffer[s.cursor.Y][s.cursor.X] = ch
	s.cellWidths[s.cursor.Y][s.cursor.X] = charWidth

	if charWidth == 2 && s.cursor.X+1 < s.columns {
		// Mark the next cell as continuation
		s.clearCellAt(s.cursor.Y, s.cursor.X+1)
		s.buffer[s.cursor.Y][s.cursor.X+1] = 0
		s.cellWidths[s.cursor.Y][s.cursor.X+1] = 0
	}

	s.cursor.X += charWidth
}

// clearCellAt clears a cell, handling wide characters properly
func (s *NativeScreen) clearCellAt(y, x int) {
	if y >= s.lines || x >= s.columns {
		return
	}

	width := s.cellWidths[y][x]

	// If this is a continuation cell, clear the start cell too
	if width == 0 && x > 0 {
		s.clearCellAt(y, x-1)
		return
	}

	s.buffer[y][x] = ' '
	s.cellWidths[y][x] = 1

	// If this was a wide character, clear its continuation
	if width == 2 && x+1 < s.columns {
		s.buffer[y][x+1] = ' '
		s.cellWidths[y][x+1] = 1
	}
}

func (s *NativeScreen) Bell() {
	// No-op for screen emulation
}

func (s *NativeScreen) Backspace() {
	if s.cursor.X > 0 {
		s.cursor.X--
	}
}

func (s *NativeScreen) Tab() {
	next := (s.cursor.X/8 + 1) * 8
	if next >= s.columns {
		next = s.columns - 1
	}
	s.cursor.X = next
}

func (s *NativeScreen) Linefeed() {
	s.Index()
	// In newline mode LF also does CR
	if s.newlineMode {
		s.cursor.X = 0
	}
}

func (s *NativeScreen) CarriageReturn() {
	s.cursor.X = 0
}

// Index moves the cursor down, scrolling at the bottom line
func (s *NativeScreen) Index() {
	s.cursor.Y++
	if s.cursor.Y >= s.lines {
		s.scrollUp()
		s.cursor.Y = s.lines - 1
	}
}

// === Cursor Movement ===

func (s *NativeScreen) CursorUp(count int) {
	s.cursor.Y -= count
	if s.cursor.Y < 0 {
		s.cursor.Y = 0
	}
}

func (s *NativeScreen) CursorDown(count int) {
	s.cursor.Y += count
	if s.cursor.Y >= s.lines {
		s.cursor.Y = s.lines - 1
	}
}

func (s *NativeScreen) CursorForward(count int) {
	s.cursor.X += count
	if s.cursor.X >= s.columns {
		s.cursor.X = s.columns - 1
	}
}

func (s *NativeScreen) CursorBack(count int) {
	s.cursor.X -= count
	if s.cursor.X < 0 {
		s.cursor.X = 0
	}
}

func (s *NativeScreen) CursorPosition(line, column int) {
	// Convert from 1-based to 0-based
	s.cursor.Y = clamp(line-1, 0, s.lines-1)
	s.cursor.X = clamp(column-1, 0, s.columns-1)
}

func (s *NativeScreen) CursorToColumn(column int) {
	s.cursor.X = clamp(column-1, 0, s.columns-1)
}

// === Screen Manipulation ===

func (s *NativeScreen) Reset() {
	for i := 0; i < s.lines; i++ {
		s.buffer[i], s.cellWidths[i] = s.blankLine()
	}
	s.cursor = Cursor{}
	s.saved = nil
	s.autoWrap = true
	s.newlineMode = false
}

func (s *NativeScreen) SaveCursor() {
	saved := s.cursor // Copy
	s.saved = &saved
}

func (s *NativeScreen) RestoreCursor() {
	if s.saved != nil {
		s.cursor = *s.saved
	}
}

// === Line Operations ===

func (s *NativeScreen) EraseInLine(how int, private bool) {
	from, to := 0, s.columns
	switch how {
	case 0: // From cursor to end of line
		from = s.cursor.X
	case 1: // From beginning to cursor
		to = s.cursor.X + 1
	case 2: // Entire line
	default:
		return
	}
	for x := from; x < to && x < s.columns; x++ {
		s.buffer[s.cursor.Y][x] = ' '
		s.cellWidths[s.cursor.Y][x] = 1
	}
}

func (s *NativeScreen) EraseInDisplay(how int) {
	switch how {
	case 0: // From cursor to end
		s.EraseInLine(0, false)
		for y := s.cursor.Y + 1; y < s.lines; y++ {
			s.buffer[y], s.cellWidths[y] = s.blankLine()
		}
	case 1: // From beginning to cursor
		s.EraseInLine(1, false)
		for y := 0; y < s.cursor.Y; y++ {
			s.buffer[y], s.cellWidths[y] = s.blankLine()
		}
	case 2, 3: // Entire screen
		for y := 0; y < s.lines; y++ {
			s.buffer[y], s.cellWidths[y] = s.blankLine()
		}
	}
}

// === Modes ===

func (s *NativeScreen) SetMode(modes []int, private bool) {
	for _, mode := range modes {
		if private {
			switch mode {
			case 7: // DECAWM - Auto wrap mode
				s.autoWrap = true
			case 25: // DECTCEM - Show cursor
				s.cursor.Hidden = false
			}
		} else if mode == 20 { // LNM - Newline mode
			s.newlineMode = true
		}
	}
}

func (s *NativeScreen) ResetMode(modes []int, private bool) {
	for _, mode := range modes {
		if private {
			switch mode {
			case 7:
				s.autoWrap = false
			case 25:
				s.cursor.Hidden = true
			}
		} else if mode == 20 {
			s.newlineMode = false
		}
	}
}

// ReportDeviceStatus answers DSR 5 (status) and DSR 6 (cursor position).
func (s *NativeScreen) ReportDeviceStatus(mode int) {
	switch mode {
	case 5:
		s.WriteProcessInput("\x1b[0n")
	case 6:
		s.WriteProcessInput("\x1b[" + strconv.Itoa(s.cursor.Y+1) + ";" + strconv.Itoa(s.cursor.X+1) + "R")
	}
}

// WriteProcessInput queues bytes the terminal sends back to the host
func (s *NativeScreen) WriteProcessInput(data string) {
	s.replies = append(s.replies, data...)
}

// TakeReplies returns and clears the queued replies
func (s *NativeScreen) TakeReplies() []byte {
	r := s.replies
	s.replies = nil
	return r
}

// === Helper methods ===

func (s *NativeScreen) scrollUp() {
	copy(s.buffer[0:], s.buffer[1:])
	copy(s.cellWidths[0:], s.cellWidths[1:])
	s.buffer[s.lines-1], s.cellWidths[s.lines-1] = s.blankLine()
	s.scrolled++
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// === Utility methods for testing ===

// GetDisplay returns each line with trailing spaces trimmed
func (s *NativeScreen) GetDisplay() []string {
	lines := make([]string, s.lines)
	for y := 0; y < s.lines; y++ {
		runes := make([]rune, 0, s.columns)
		for x := 0; x < s.columns; x++ {
			if s.cellWidths[y][x] == 0 {
				// Skip continuation cells
				continue
			}
			runes = append(runes, s.buffer[y][x])
		}
		lines[y] = strings.TrimRight(string(runes), " ")
	}
	return lines
}

func (s *NativeScreen) GetCursor() (int, int) {
	return s.cursor.X, s.cursor.Y
}

func (s *NativeScreen) CursorHidden() bool {
	return s.cursor.Hidden
}

// Scrolled reports how many times the screen scrolled up
func (s *NativeScreen) Scrolled() int {
	return s.scrolled
}

func (s *NativeScreen) Size() (columns, lines int) {
	return s.columns, s.lines
}
