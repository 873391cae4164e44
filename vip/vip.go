// Package vip implements the machine around a CHIP-8 CPU: its display,
// its keypad, and a loop that drives all three in real time.
package vip

import (
	"github.com/nf/c8/chip8"
)

// Config holds the settings for a VIP and the Runner that drives it.
type Config struct {
	Speed  int  // instructions per frame
	Clip   bool // clip sprites at the screen edges
	Quirks chip8.Quirks
	Dev    bool // keep running after a halt
}

// DefaultSpeed is the number of instructions executed per frame if
// Config.Speed is zero.
const DefaultSpeed = 10

func (c Config) speed() int {
	if c.Speed <= 0 {
		return DefaultSpeed
	}
	return c.Speed
}

// VIP is a CHIP-8 machine: a CPU with its display and keypad attached.
type VIP struct {
	m    *chip8.Machine
	scr  Screen
	keys Keypad
	rom  []byte
}

// New returns a VIP with rom loaded and ready to run.
func New(rom []byte, c Config) (*VIP, error) {
	v := &VIP{rom: rom}
	v.scr.Clip = c.Clip
	v.m = chip8.NewMachine(v)
	v.m.Quirks = c.Quirks
	if err := v.m.Load(rom); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *VIP) Machine() *chip8.Machine { return v.m }
func (v *VIP) Screen() *Screen         { return &v.scr }
func (v *VIP) Keypad() *Keypad         { return &v.keys }

// Reset reloads the program and returns the machine, display and keypad
// to their initial state.
func (v *VIP) Reset() {
	v.m.Load(v.rom) // fits; it was loaded by New
	v.m.Reset()
	v.scr.Clear()
	v.keys.Reset()
}

// Step executes one instruction.
func (v *VIP) Step() error { return v.m.Step() }

// Frame executes up to steps instructions, stopping at the first error,
// and then ticks the delay timer once.
func (v *VIP) Frame(steps int) error {
	for i := 0; i < steps; i++ {
		if err := v.m.Step(); err != nil {
			return err
		}
	}
	v.m.TickTimer()
	return nil
}

func (v *VIP) Clear() { v.scr.Clear() }

func (v *VIP) DrawSprite(x, y int, row byte) bool { return v.scr.DrawSprite(x, y, row) }

func (v *VIP) Pressed(key byte) bool { return v.keys.Pressed(key) }
