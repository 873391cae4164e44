package vip

import "unicode"

// keyRunes maps the left-hand block of a QWERTY keyboard onto the keypad,
// preserving its layout.
var keyRunes = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyForRune returns the keypad key bound to the host key r.
func KeyForRune(r rune) (key byte, ok bool) {
	key, ok = keyRunes[unicode.ToLower(r)]
	return
}
