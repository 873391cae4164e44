package chip8

import "fmt"

// Op represents a CHIP-8 instruction word.
type Op uint16

// Nibbles returns the four nibbles of the word, most significant first.
func (o Op) Nibbles() [4]byte {
	return [4]byte{byte(o >> 12), byte(o>>8) & 0xf, byte(o>>4) & 0xf, byte(o) & 0xf}
}

// X returns the register index held in bits 11-8.
func (o Op) X() byte { return byte(o>>8) & 0xf }

// Y returns the register index held in bits 7-4.
func (o Op) Y() byte { return byte(o>>4) & 0xf }

// N returns the low nibble.
func (o Op) N() byte { return byte(o) & 0xf }

// KK returns the low byte.
func (o Op) KK() byte { return byte(o) }

// NNN returns the low 12 bits.
func (o Op) NNN() uint16 { return uint16(o) & 0xfff }

// Name returns the mnemonic of the instruction, or "DW" if the word is not
// an implemented instruction.
func (o Op) Name() string {
	if in := lookup(o); in != nil {
		return in.name
	}
	return "DW"
}

// String returns the word in assembler form, for example "LD V3, 0x2a".
func (o Op) String() string {
	in := lookup(o)
	if in == nil {
		return fmt.Sprintf("DW %#.4x", uint16(o))
	}
	switch in.args {
	case argAddr:
		return fmt.Sprintf("%s %#.3x", in.name, o.NNN())
	case argVxByte:
		return fmt.Sprintf("%s V%X, %#.2x", in.name, o.X(), o.KK())
	case argVxVy:
		return fmt.Sprintf("%s V%X, V%X", in.name, o.X(), o.Y())
	case argVx:
		return fmt.Sprintf("%s V%X", in.name, o.X())
	case argIAddr:
		return fmt.Sprintf("%s I, %#.3x", in.name, o.NNN())
	case argVxVyN:
		return fmt.Sprintf("%s V%X, V%X, %d", in.name, o.X(), o.Y(), o.N())
	case argDTVx:
		return fmt.Sprintf("%s DT, V%X", in.name, o.X())
	case argIVx:
		return fmt.Sprintf("%s I, V%X", in.name, o.X())
	case argVxK:
		return fmt.Sprintf("%s V%X, K", in.name, o.X())
	}
	return in.name
}

// operands describes how an instruction's operands are written.
type operands byte

const (
	argNone operands = iota
	argAddr
	argVxByte
	argVxVy
	argVx
	argIAddr
	argVxVyN
	argDTVx
	argIVx
	argVxK
)

// instruction is an entry in the dispatch table. A word matches the entry
// when word&mask == match.
type instruction struct {
	mask, match Op
	name        string
	args        operands
	exec        func(m *Machine, op Op)
}

// table holds the implemented instructions keyed by the word's first
// nibble. New instructions are added by appending an entry to the
// appropriate group; fetch and decode are unaffected.
var table = [16][]instruction{
	0x0: {
		{0xffff, 0x00e0, "CLS", argNone, (*Machine).cls},
		{0xffff, 0x00ee, "RET", argNone, (*Machine).ret},
	},
	0x1: {{0xf000, 0x1000, "JP", argAddr, (*Machine).jp}},
	0x2: {{0xf000, 0x2000, "CALL", argAddr, (*Machine).call}},
	0x3: {{0xf000, 0x3000, "SE", argVxByte, (*Machine).seByte}},
	0x4: {{0xf000, 0x4000, "SNE", argVxByte, (*Machine).sneByte}},
	0x6: {{0xf000, 0x6000, "LD", argVxByte, (*Machine).ldByte}},
	0x7: {{0xf000, 0x7000, "ADD", argVxByte, (*Machine).addByte}},
	0x8: {
		{0xf00f, 0x8000, "LD", argVxVy, (*Machine).ldReg},
	},
	0xa: {{0xf000, 0xa000, "LD", argIAddr, (*Machine).ldI}},
	0xd: {{0xf000, 0xd000, "DRW", argVxVyN, (*Machine).drw}},
	0xe: {
		{0xf0ff, 0xe0a1, "SKNP", argVx, (*Machine).sknp},
	},
	0xf: {
		{0xf0ff, 0xf00a, "LD", argVxK, (*Machine).ldKey},
		{0xf0ff, 0xf015, "LD", argDTVx, (*Machine).ldDT},
		{0xf0ff, 0xf01e, "ADD", argIVx, (*Machine).addI},
	},
}

// lookup returns the table entry matching op, or nil if there is none.
func lookup(op Op) *instruction {
	group := table[op>>12]
	for i := range group {
		if op&group[i].mask == group[i].match {
			return &group[i]
		}
	}
	return nil
}
