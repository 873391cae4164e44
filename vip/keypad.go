package vip

import (
	"fmt"

	"github.com/nf/c8/chip8"
)

// Keypad holds the state of the 16-key hexadecimal keypad:
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
type Keypad struct {
	keys [chip8.NumKeys]bool
}

// Reset releases every key.
func (k *Keypad) Reset() { k.keys = [chip8.NumKeys]bool{} }

// Set presses or releases key.
func (k *Keypad) Set(key byte, pressed bool) error {
	if int(key) >= len(k.keys) {
		return fmt.Errorf("no key %#x", key)
	}
	k.keys[key] = pressed
	return nil
}

// Pressed reports whether key is held down.
func (k *Keypad) Pressed(key byte) bool {
	return int(key) < len(k.keys) && k.keys[key]
}

// Any returns the lowest pressed key, and whether there is one.
func (k *Keypad) Any() (byte, bool) {
	for i, p := range k.keys {
		if p {
			return byte(i), true
		}
	}
	return 0, false
}

// String lists the pressed keys, for example "[5 a]".
func (k *Keypad) String() string {
	s := "["
	for i, p := range k.keys {
		if !p {
			continue
		}
		if len(s) > 1 {
			s += " "
		}
		s += fmt.Sprintf("%x", i)
	}
	return s + "]"
}
