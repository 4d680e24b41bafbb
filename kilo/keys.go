package kilo

import (
	"context"
	"io"
)

// KeyKind identifies a decoded key
type KeyKind uint8

const (
	KeyByte   KeyKind = iota // Printable or control byte (check Key.Byte)
	KeyEscape                // ESC alone, or a sequence we don't know

	// Navigation
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyDelete
)

// Key is one logical keypress
type Key struct {
	Kind KeyKind
	Byte byte
}

// Ctrl returns the byte sent for Ctrl+c
func Ctrl(c byte) byte { return c & 0x1f }

// ByteKey wraps a raw input byte
func ByteKey(b byte) Key { return Key{Kind: KeyByte, Byte: b} }

// IsControl reports whether k is a C0 control byte or DEL.
func (k Key) IsControl() bool {
	return k.Kind == KeyByte && (k.Byte < 0x20 || k.Byte == 0x7f)
}

// ESC [ <digit> ~
var tildeKeys = map[byte]KeyKind{
	'1': KeyHome,
	'3': KeyDelete,
	'4': KeyEnd,
	'5': KeyPageUp,
	'6': KeyPageDown,
	'7': KeyHome, // rxvt
	'8': KeyEnd,  // rxvt
}

// ESC [ <letter>
var csiKeys = map[byte]KeyKind{
	'A': KeyArrowUp,
	'B': KeyArrowDown,
	'C': KeyArrowRight,
	'D': KeyArrowLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

// ESC O <letter>
var ss3Keys = map[byte]KeyKind{
	'H': KeyHome,
	'F': KeyEnd,
}

// decodeState is the position inside an escape sequence
type decodeState uint8

const (
	stateStart  decodeState = iota
	stateEscape             // saw ESC
	stateIntro              // saw ESC and one byte ('[', 'O' or other)
	stateDigit              // saw ESC [ digit
)

// KeyReader decodes logical keys from raw terminal input.
type KeyReader struct {
	r   io.Reader
	buf [1]byte
}

// NewKeyReader reads keys from r, which must follow the Device read
// contract: (0, nil) means the short timeout elapsed.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{r: r}
}

// ReadKey blocks until a key arrives. Zero-byte reads are retried; ctx is
// checked between attempts. Any read error is fatal.
func (k *KeyReader) ReadKey(ctx context.Context) (Key, error) {
	var c byte
	for {
		n, err := k.r.Read(k.buf[:])
		if err != nil {
			return Key{}, fatal("read", err)
		}
		if n == 1 {
			c = k.buf[0]
			break
		}
		if err := ctx.Err(); err != nil {
			return Key{}, err
		}
	}

	return k.decode(c), nil
}

// next makes a single bounded read for a follow byte.
func (k *KeyReader) next() (byte, bool) {
	n, err := k.r.Read(k.buf[:])
	if n != 1 || err != nil {
		return 0, false
	}
	return k.buf[0], true
}

// decode runs the escape state machine starting from the first byte.
// Anything incomplete or unknown ends as KeyEscape.
func (k *KeyReader) decode(first byte) Key {
	var intro, param byte
	state := stateStart

	for {
		switch state {
		case stateStart:
			if first != keyEsc {
				return ByteKey(first)
			}
			state = stateEscape

		case stateEscape:
			b, ok := k.next()
			if !ok {
				return Key{Kind: KeyEscape}
			}
			intro = b
			state = stateIntro

		case stateIntro:
			b, ok := k.next()
			if !ok {
				return Key{Kind: KeyEscape}
			}
			switch intro {
			case '[':
				if b >= '0' && b <= '9' {
					param = b
					state = stateDigit
					continue
				}
				if kind, ok := csiKeys[b]; ok {
					return Key{Kind: kind}
				}
			case 'O':
				if kind, ok := ss3Keys[b]; ok {
					return Key{Kind: kind}
				}
			}
			return Key{Kind: KeyEscape}

		case stateDigit:
			b, ok := k.next()
			if !ok || b != '~' {
				return Key{Kind: KeyEscape}
			}
			if kind, ok := tildeKeys[param]; ok {
				return Key{Kind: kind}
			}
			return Key{Kind: KeyEscape}
		}
	}
}
