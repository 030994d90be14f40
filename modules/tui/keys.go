// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"bufio"
	"io"
)

// KeyReader decodes a raw input stream (already in terminal raw mode)
// into Key events, recognizing a handful of ANSI escape sequences and
// accumulating numeric prefixes through a Manager.
type KeyReader struct {
	r *bufio.Reader
	m *Manager
}

// NewKeyReader wraps r, which must already be delivering unbuffered
// terminal bytes (raw mode, one byte per keystroke).
func NewKeyReader(r io.Reader, m *Manager) *KeyReader {
	return &KeyReader{r: bufio.NewReader(r), m: m}
}

// escSequences maps the bytes following ESC '[' to a named key.
var escSequences = map[byte]string{
	'A': "Up",
	'B': "Down",
	'C': "Right",
	'D': "Left",
	'5': "PageUp",
	'6': "PageDown",
	'H': "Home",
	'F': "End",
}

// ReadKey blocks for the next key event. This is the suspension point
// §5 names as "blocking input read": the Manager's mutex must not be
// held across this call.
func (kr *KeyReader) ReadKey() (Key, error) {
	for {
		b, err := kr.r.ReadByte()
		if err != nil {
			return Key{}, err
		}

		switch {
		case b == 0x1b:
			return kr.readEscape()
		case b == '\t':
			return Key{Name: "Tab"}, nil
		case b == '\r' || b == '\n':
			return Key{Name: "Enter"}, nil
		case b == 0x7f || b == 0x08:
			return Key{Name: "Backspace"}, nil
		case b >= '1' && b <= '9':
			count := kr.m.ApplyDigit(int(b - '0'))
			return Key{Rune: rune(b), Name: "Digit", Count: count}, nil
		case b == '0' && kr.m.prefixDigits > 0:
			count := kr.m.ApplyDigit(0)
			return Key{Rune: rune(b), Name: "Digit", Count: count}, nil
		default:
			return Key{Rune: rune(b)}, nil
		}
	}
}

// readEscape consumes a CSI sequence (ESC '[' ... final-byte). It waits
// for the byte after ESC and reports a bare Escape key when that byte is
// not '[' (the byte is pushed back), when the input ends right after
// ESC, or when the CSI final byte is not one it recognizes.
func (kr *KeyReader) readEscape() (Key, error) {
	b1, err := kr.r.ReadByte()
	if err != nil {
		// A lone ESC with nothing following is reported as Escape.
		return Key{Name: "Escape"}, nil
	}
	if b1 != '[' {
		return Key{Name: "Escape"}, kr.r.UnreadByte()
	}
	b2, err := kr.r.ReadByte()
	if err != nil {
		return Key{}, err
	}
	if name, ok := escSequences[b2]; ok {
		if b2 == '5' || b2 == '6' {
			// PageUp/PageDown sequences end in a trailing '~'.
			if _, err := kr.r.ReadByte(); err != nil {
				return Key{}, err
			}
		}
		return Key{Name: name}, nil
	}
	return Key{Name: "Escape"}, nil
}
