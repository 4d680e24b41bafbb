package kilo

import (
	"bytes"

	runewidth "github.com/mattn/go-runewidth"
)

// Cursor is the 0-indexed cursor cell.
type Cursor struct {
	X int
	Y int
}

// BuildFrame renders one full screen: every row is redrawn and the cursor
// is hidden while drawing. The result is meant for a single write.
func BuildFrame(geo Geometry, cur Cursor, doc *Row, banner string) []byte {
	var b bytes.Buffer
	b.Grow(len(escCursorHide) + len(escCursorHome) + geo.Rows*(geo.Cols+len(escEraseLine)+len(crlf)) + 32)

	b.Write(escCursorHide)
	b.Write(escCursorHome)

	drawRows(&b, geo, doc, banner)

	b.Write(appendCursorPos(nil, cur.X, cur.Y))
	b.Write(escCursorShow)
	return b.Bytes()
}

// drawRows writes every screen row followed by an erase-to-end-of-line.
// Rows are separated by CRLF with nothing after the last one, so the
// terminal never scrolls.
func drawRows(b *bytes.Buffer, geo Geometry, doc *Row, banner string) {
	numRows := 0
	if doc != nil {
		numRows = 1
	}

	for y := 0; y < geo.Rows; y++ {
		if y >= numRows {
			if numRows == 0 && y == geo.Rows/3 && banner != "" {
				drawBanner(b, geo.Cols, banner)
			} else {
				b.WriteByte(rowMarker)
			}
		} else {
			chars := doc.Chars
			if len(chars) > geo.Cols {
				chars = chars[:geo.Cols]
			}
			b.Write(chars)
		}

		b.Write(escEraseLine)
		if y < geo.Rows-1 {
			b.Write(crlf)
		}
	}
}

// drawBanner centres banner in cols cells, truncating it when too wide.
func drawBanner(b *bytes.Buffer, cols int, banner string) {
	banner = runewidth.Truncate(banner, cols, "")
	padding := (cols - runewidth.StringWidth(banner)) / 2
	if padding > 0 {
		b.WriteByte(rowMarker)
		padding--
	}
	for ; padding > 0; padding-- {
		b.WriteByte(' ')
	}
	b.WriteString(banner)
}
