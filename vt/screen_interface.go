package vt

// Screen receives the operations decoded by a Stream
type Screen interface {
	// Basic operations
	Draw(text string)
	Bell()
	Backspace()
	Tab()
	Linefeed()
	CarriageReturn()

	// Cursor movement
	CursorUp(count int)
	CursorDown(count int)
	CursorForward(count int)
	CursorBack(count int)
	CursorPosition(line, column int)
	CursorToColumn(column int)

	// Screen manipulation
	Reset()
	SaveCursor()
	RestoreCursor()

	// Line operations
	EraseInLine(how int, private bool)
	EraseInDisplay(how int)

	// Modes
	SetMode(modes []int, private bool)
	ResetMode(modes []int, private bool)

	// Reports
	ReportDeviceStatus(mode int)

	// Process communication
	WriteProcessInput(data string)
}
