package chip8

import (
	"fmt"
	"strings"
)

// Read returns the byte at addr.
func (m *Machine) Read(addr uint16) (byte, error) {
	if int(addr) >= MemSize {
		return 0, fmt.Errorf("read %.4x: %w", addr, ErrBounds)
	}
	return m.Mem[addr], nil
}

// Write sets the byte at addr.
func (m *Machine) Write(addr uint16, b byte) error {
	if int(addr) >= MemSize {
		return fmt.Errorf("write %.4x: %w", addr, ErrBounds)
	}
	m.Mem[addr] = b
	return nil
}

// Reg returns the value of register Vx.
func (m *Machine) Reg(x int) (byte, error) {
	if x < 0 || x >= len(m.V) {
		return 0, fmt.Errorf("register %d: %w", x, ErrBounds)
	}
	return m.V[x], nil
}

// SetReg sets register Vx to b.
func (m *Machine) SetReg(x int, b byte) error {
	if x < 0 || x >= len(m.V) {
		return fmt.Errorf("register %d: %w", x, ErrBounds)
	}
	m.V[x] = b
	return nil
}

// String returns a dump of the program counter, index, delay timer,
// registers and stack.
func (m *Machine) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PC %.4x  I %.4x  DT %.2x  SP %x\n", m.PC, m.I, m.DT, m.SP)
	for i := 0; i < 4; i++ {
		for j := i; j < 16; j += 4 {
			if j != i {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "V%X %.2x", j, m.V[j])
		}
		b.WriteByte('\n')
	}
	for i := 0; i < 4; i++ {
		for j := i; j < StackSize; j += 4 {
			if j != i {
				b.WriteString("  ")
			}
			mark := ' '
			if j == int(m.SP)-1 {
				mark = '*'
			}
			fmt.Fprintf(&b, "S%X%c%.4x", j, mark, m.Stack[j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// StackString returns the occupied part of the stack, oldest first.
func (m *Machine) StackString() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range m.Stack[:m.SP] {
		fmt.Fprintf(&b, " %.4x", v)
	}
	b.WriteString(" )")
	return b.String()
}
