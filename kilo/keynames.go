package kilo

import "strconv"

// kindToName maps key kinds to the names used in logs
var kindToName = map[KeyKind]string{
	KeyEscape:     "escape",
	KeyArrowUp:    "up",
	KeyArrowDown:  "down",
	KeyArrowLeft:  "left",
	KeyArrowRight: "right",
	KeyHome:       "home",
	KeyEnd:        "end",
	KeyDelete:     "delete",
	KeyPageUp:     "page_up",
	KeyPageDown:   "page_down",
}

// String returns "ctrl_x" for control bytes, the quoted byte for printable
// ones and the kind name otherwise.
func (k Key) String() string {
	if k.Kind != KeyByte {
		if name, ok := kindToName[k.Kind]; ok {
			return name
		}
		return "unknown"
	}
	switch {
	case k.Byte == 0x7f:
		return "backspace"
	case k.Byte < 0x20:
		return "ctrl_" + string(rune(k.Byte|0x60))
	case k.Byte < 0x7f:
		return strconv.QuoteRune(rune(k.Byte))
	}
	return "0x" + strconv.FormatUint(uint64(k.Byte), 16)
}
