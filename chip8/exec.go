// Package chip8 provides an implementation of a CHIP-8 CPU, called Machine,
// that can be used to execute CHIP-8 programs.
package chip8

import (
	"errors"
	"fmt"
)

const (
	MemSize        = 0x1000 // bytes of addressable memory
	ProgramStart   = 0x200  // address at which programs are loaded
	MaxProgramSize = MemSize - ProgramStart
	StackSize      = 16 // nested calls

	DisplayWidth  = 64
	DisplayHeight = 32
	NumKeys       = 16
)

// Machine is an implementation of a CHIP-8 CPU.
type Machine struct {
	Mem   [MemSize]byte
	V     [16]byte // V0-VF; VF doubles as the collision flag
	I     uint16
	PC    uint16
	Stack [StackSize]uint16
	SP    byte // next free Stack slot
	DT    byte // delay timer

	Dev    Device
	Quirks Quirks
}

// Device provides access to the display and keypad attached to the CPU.
type Device interface {
	// Clear turns off every pixel.
	Clear()
	// DrawSprite XORs the 8 bits of row into the display starting at
	// (x, y), most significant bit leftmost, and reports whether any
	// pixel was turned off.
	DrawSprite(x, y int, row byte) (collision bool)
	// Pressed reports whether the key (0x0-0xF) is held down.
	Pressed(key byte) bool
}

// Quirks selects between behaviours on which CHIP-8 interpreters disagree.
type Quirks struct {
	// PushReturn makes CALL push the address of the following
	// instruction and RET jump to the popped address unchanged.
	// By default CALL pushes its own address and RET resumes two bytes
	// past it. Programs observe the same PC either way; only the
	// stack contents differ.
	PushReturn bool
}

var (
	// ErrProgramTooLarge is returned by Load if the program does not
	// fit between ProgramStart and the end of memory.
	ErrProgramTooLarge = errors.New("program too large")

	// ErrBounds is returned by the Machine's accessors for addresses or
	// indices outside their range.
	ErrBounds = errors.New("out of bounds")
)

// NewMachine returns a reset Machine attached to dev.
func NewMachine(dev Device) *Machine {
	m := &Machine{Dev: dev}
	m.Reset()
	return m
}

// Reset zeroes the registers, index, stack and delay timer, and sets the
// program counter to ProgramStart. Memory is left as it is.
func (m *Machine) Reset() {
	m.V = [16]byte{}
	m.I = 0
	m.Stack = [StackSize]uint16{}
	m.SP = 0
	m.DT = 0
	m.PC = ProgramStart
}

// Load copies rom into memory at ProgramStart, zeroing the rest of the
// program area. If rom is larger than MaxProgramSize memory is unchanged
// and an error wrapping ErrProgramTooLarge is returned.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrProgramTooLarge, len(rom), MaxProgramSize)
	}
	n := copy(m.Mem[ProgramStart:], rom)
	for i := ProgramStart + n; i < MemSize; i++ {
		m.Mem[i] = 0
	}
	return nil
}

// TickTimer decrements the delay timer if it is non-zero.
// The caller is expected to call it at 60Hz.
func (m *Machine) TickTimer() {
	if m.DT > 0 {
		m.DT--
	}
}

// Step executes the instruction at m.PC. It returns a HaltError if the
// instruction cannot be executed, in which case the Machine is left exactly
// as it was before the call.
func (m *Machine) Step() (err error) {
	var (
		op   Op
		opPC = m.PC
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(HaltCode); ok {
				err = HaltError{
					Addr:     opPC,
					Op:       op,
					HaltCode: code,
				}
			} else {
				panic(e)
			}
		}
	}()

	op = m.fetch()
	in := lookup(op)
	if in == nil {
		panic(UnknownOp)
	}
	in.exec(m, op)
	return nil
}

// Fetch returns the instruction word at m.PC without executing it.
func (m *Machine) Fetch() (Op, error) {
	if int(m.PC)+1 >= MemSize {
		return 0, fmt.Errorf("fetch at %.4x: %w", m.PC, ErrBounds)
	}
	return short(m.Mem[m.PC], m.Mem[m.PC+1]), nil
}

func (m *Machine) fetch() Op {
	op, err := m.Fetch()
	if err != nil {
		panic(Bounds)
	}
	return op
}

// next advances past the current instruction.
func (m *Machine) next() { m.PC += 2 }

// skipIf advances past the current instruction, and past the following
// one too if cond holds.
func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
	m.PC += 2
}

func (m *Machine) cls(Op) {
	m.Dev.Clear()
	m.next()
}

func (m *Machine) ret(Op) {
	if m.SP == 0 {
		panic(Underflow)
	}
	m.SP--
	m.PC = m.Stack[m.SP]
	if !m.Quirks.PushReturn {
		m.next()
	}
}

func (m *Machine) jp(op Op) { m.PC = op.NNN() }

func (m *Machine) call(op Op) {
	if m.SP >= StackSize {
		panic(Overflow)
	}
	addr := m.PC
	if m.Quirks.PushReturn {
		addr += 2
	}
	m.Stack[m.SP] = addr
	m.SP++
	m.PC = op.NNN()
}

func (m *Machine) seByte(op Op)  { m.skipIf(m.V[op.X()] == op.KK()) }
func (m *Machine) sneByte(op Op) { m.skipIf(m.V[op.X()] != op.KK()) }

func (m *Machine) ldByte(op Op) {
	m.V[op.X()] = op.KK()
	m.next()
}

func (m *Machine) addByte(op Op) {
	m.V[op.X()] += op.KK() // wraps; VF untouched
	m.next()
}

func (m *Machine) ldReg(op Op) {
	m.V[op.X()] = m.V[op.Y()]
	m.next()
}

func (m *Machine) ldI(op Op) {
	m.I = op.NNN()
	m.next()
}

func (m *Machine) drw(op Op) {
	n := int(op.N())
	if int(m.I)+n > MemSize {
		panic(Bounds)
	}
	var (
		x         = int(m.V[op.X()]) % DisplayWidth
		y         = int(m.V[op.Y()]) % DisplayHeight
		sprite    = m.Mem[m.I : int(m.I)+n]
		collision = false
	)
	for i, row := range sprite {
		if m.Dev.DrawSprite(x, y+i, row) {
			collision = true
		}
	}
	if collision {
		m.V[0xf] = 1
	} else {
		m.V[0xf] = 0
	}
	m.next()
}

func (m *Machine) sknp(op Op) {
	key := m.V[op.X()]
	if key >= NumKeys {
		panic(Bounds)
	}
	m.skipIf(!m.Dev.Pressed(key))
}

// ldKey stores the lowest pressed key in Vx. If no key is pressed the PC
// is left alone so that the instruction is executed again by the next Step.
func (m *Machine) ldKey(op Op) {
	for k := byte(0); k < NumKeys; k++ {
		if m.Dev.Pressed(k) {
			m.V[op.X()] = k
			m.next()
			return
		}
	}
}

func (m *Machine) ldDT(op Op) {
	m.DT = m.V[op.X()]
	m.next()
}

func (m *Machine) addI(op Op) {
	m.I += uint16(m.V[op.X()]) // checked by the next instruction that uses it
	m.next()
}

// HaltError is returned by Step if the instruction at Addr could not be
// executed.
type HaltError struct {
	HaltCode
	Op   Op
	Addr uint16
}

func (e HaltError) Error() string {
	if e.HaltCode == UnknownOp {
		return fmt.Sprintf("%s %.4x at %.4x", e.HaltCode, uint16(e.Op), e.Addr)
	}
	return fmt.Sprintf("%s executing %s at %.4x", e.HaltCode, e.Op, e.Addr)
}

// HaltCode signifies the type of condition that halted execution.
type HaltCode byte

const (
	Bounds    HaltCode = 0x01 // memory or key index out of range
	Overflow  HaltCode = 0x02 // CALL with a full stack
	Underflow HaltCode = 0x03 // RET with an empty stack
	UnknownOp HaltCode = 0x04
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		Bounds:    "out of bounds",
		Overflow:  "stack overflow",
		Underflow: "stack underflow",
		UnknownOp: "unknown instruction",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func short(hi, lo byte) Op {
	return Op(hi)<<8 | Op(lo)
}
