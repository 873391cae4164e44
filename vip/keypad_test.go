package vip

import "testing"

func TestKeypad(t *testing.T) {
	var k Keypad
	if _, ok := k.Any(); ok {
		t.Errorf("Any reports a key on a fresh keypad")
	}
	for _, key := range []byte{0xa, 0x5} {
		if err := k.Set(key, true); err != nil {
			t.Fatal(err)
		}
	}
	for i := byte(0); i < 0x20; i++ {
		if g, w := k.Pressed(i), i == 0x5 || i == 0xa; g != w {
			t.Errorf("Pressed(%#x) = %v, want %v", i, g, w)
		}
	}
	if key, ok := k.Any(); !ok || key != 0x5 {
		t.Errorf("Any() = %#x, %v, want 0x5, true", key, ok)
	}
	if g, w := k.String(), "[5 a]"; g != w {
		t.Errorf("String() = %q, want %q", g, w)
	}
	if err := k.Set(0x10, true); err == nil {
		t.Errorf("Set(0x10) succeeded, want error")
	}
	k.Set(0x5, false)
	if key, ok := k.Any(); !ok || key != 0xa {
		t.Errorf("Any() = %#x, %v after release, want 0xa, true", key, ok)
	}
	k.Reset()
	if _, ok := k.Any(); ok {
		t.Errorf("Any reports a key after Reset")
	}
}

func TestKeyForRune(t *testing.T) {
	seen := map[byte]rune{}
	for _, r := range "1234qwerasdfzxcv" {
		k, ok := KeyForRune(r)
		if !ok {
			t.Errorf("%q is not mapped", r)
			continue
		}
		if prev, dup := seen[k]; dup {
			t.Errorf("%q and %q both map to %#x", prev, r, k)
		}
		seen[k] = r
	}
	if len(seen) != 16 {
		t.Errorf("%d keys mapped, want 16", len(seen))
	}
	if k, ok := KeyForRune('V'); !ok || k != 0xf {
		t.Errorf("KeyForRune('V') = %#x, %v, want 0xf, true", k, ok)
	}
	for _, r := range "5typ -" {
		if _, ok := KeyForRune(r); ok {
			t.Errorf("%q is mapped", r)
		}
	}
}
