package chip8

import (
	"fmt"
)

// Opcode is the 16-bit instruction word, decoded as four nibbles.
type Opcode uint16

// operands holds the sub-values derived once from an opcode's nibbles.
// Each handler receives the full set and consumes only the fields its
// instruction family defines.
type operands struct {
	addr  uint16 // NNN, low 12 bits
	value byte   // NN, low 8 bits
	x     int    // second nibble, register index
	y     int    // third nibble, register index
	n     byte   // fourth nibble, height/count
}

// nibbles splits the instruction word into its four 4-bit fields.
func (op Opcode) nibbles() [4]byte {
	hi := byte(op >> 8)
	lo := byte(op)
	return [4]byte{hiNibble(hi), loNibble(hi), hiNibble(lo), loNibble(lo)}
}

// operands derives the reusable sub-values from the nibble fields.
func (op Opcode) operands() operands {
	n := op.nibbles()
	return operands{
		addr:  joinAddr(n[1], n[2], n[3]),
		value: joinByte(n[2], n[3]),
		x:     int(n[1]),
		y:     int(n[2]),
		n:     n[3],
	}
}

type handler func(vm *Chip8, arg operands) error

// pattern matches an instruction family: the opcode word is masked and
// compared, wildcarding the register-index fields as needed.
type pattern struct {
	mask uint16
	bits uint16
	fn   handler
	text func(arg operands) string
}

// instructions is the dispatch table, most specific patterns first.
// Exact matches precede register-wildcard patterns, which precede the
// family-only patterns. Words matching no entry are holes in the
// instruction space and execute as no-ops.
var instructions = []pattern{
	{0xffff, 0x00e0, (*Chip8).opClearScreen,
		func(arg operands) string { return "cls" }},
	{0xffff, 0x00ee, (*Chip8).opReturn,
		func(arg operands) string { return "ret" }},

	{0xf0ff, 0xe09e, (*Chip8).opSkipKeyPressed,
		func(arg operands) string { return fmt.Sprintf("skp v%x", arg.x) }},
	{0xf0ff, 0xe0a1, (*Chip8).opSkipKeyNotPressed,
		func(arg operands) string { return fmt.Sprintf("sknp v%x", arg.x) }},
	{0xf0ff, 0xf007, (*Chip8).opGetDelay,
		func(arg operands) string { return fmt.Sprintf("getdelay v%x", arg.x) }},
	{0xf0ff, 0xf00a, (*Chip8).opWaitKey,
		func(arg operands) string { return fmt.Sprintf("waitkey v%x", arg.x) }},
	{0xf0ff, 0xf015, (*Chip8).opSetDelay,
		func(arg operands) string { return fmt.Sprintf("delay v%x", arg.x) }},
	{0xf0ff, 0xf018, (*Chip8).opSetSound,
		func(arg operands) string { return fmt.Sprintf("sound v%x", arg.x) }},
	{0xf0ff, 0xf01e, (*Chip8).opAddIndex,
		func(arg operands) string { return fmt.Sprintf("addi v%x", arg.x) }},
	{0xf0ff, 0xf029, (*Chip8).opFontIndex,
		func(arg operands) string { return fmt.Sprintf("font v%x", arg.x) }},
	{0xf0ff, 0xf033, (*Chip8).opStoreBCD,
		func(arg operands) string { return fmt.Sprintf("bcd v%x", arg.x) }},
	{0xf0ff, 0xf055, (*Chip8).opSaveRegisters,
		func(arg operands) string { return fmt.Sprintf("save v%x", arg.x) }},
	{0xf0ff, 0xf065, (*Chip8).opLoadRegisters,
		func(arg operands) string { return fmt.Sprintf("restore v%x", arg.x) }},

	{0xf00f, 0x5000, (*Chip8).opSkipEqualRegister,
		func(arg operands) string { return fmt.Sprintf("seq v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x9000, (*Chip8).opSkipNotEqualRegister,
		func(arg operands) string { return fmt.Sprintf("sne v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x8000, (*Chip8).opSetRegister,
		func(arg operands) string { return fmt.Sprintf("set v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x8001, (*Chip8).opOrRegister,
		func(arg operands) string { return fmt.Sprintf("or v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x8002, (*Chip8).opAndRegister,
		func(arg operands) string { return fmt.Sprintf("and v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x8003, (*Chip8).opXorRegister,
		func(arg operands) string { return fmt.Sprintf("xor v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x8004, (*Chip8).opAddRegister,
		func(arg operands) string { return fmt.Sprintf("add v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x8005, (*Chip8).opSubRegister,
		func(arg operands) string { return fmt.Sprintf("sub v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x8006, (*Chip8).opShiftRight,
		func(arg operands) string { return fmt.Sprintf("shr v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x8007, (*Chip8).opSubRegisterSwapped,
		func(arg operands) string { return fmt.Sprintf("subr v%x v%x", arg.x, arg.y) }},
	{0xf00f, 0x800e, (*Chip8).opShiftLeft,
		func(arg operands) string { return fmt.Sprintf("shl v%x v%x", arg.x, arg.y) }},

	{0xf000, 0x1000, (*Chip8).opJump,
		func(arg operands) string { return fmt.Sprintf("jump 0x%03x", arg.addr) }},
	{0xf000, 0x2000, (*Chip8).opCall,
		func(arg operands) string { return fmt.Sprintf("call 0x%03x", arg.addr) }},
	{0xf000, 0x3000, (*Chip8).opSkipEqualValue,
		func(arg operands) string { return fmt.Sprintf("seq v%x 0x%02x", arg.x, arg.value) }},
	{0xf000, 0x4000, (*Chip8).opSkipNotEqualValue,
		func(arg operands) string { return fmt.Sprintf("sne v%x 0x%02x", arg.x, arg.value) }},
	{0xf000, 0x6000, (*Chip8).opSetValue,
		func(arg operands) string { return fmt.Sprintf("set v%x 0x%02x", arg.x, arg.value) }},
	{0xf000, 0x7000, (*Chip8).opAddValue,
		func(arg operands) string { return fmt.Sprintf("add v%x 0x%02x", arg.x, arg.value) }},
	{0xf000, 0xa000, (*Chip8).opSetIndex,
		func(arg operands) string { return fmt.Sprintf("index 0x%03x", arg.addr) }},
	{0xf000, 0xb000, (*Chip8).opJumpOffset,
		func(arg operands) string { return fmt.Sprintf("jumpv0 0x%03x", arg.addr) }},
	{0xf000, 0xc000, (*Chip8).opRandom,
		func(arg operands) string { return fmt.Sprintf("rand v%x 0x%02x", arg.x, arg.value) }},
	{0xf000, 0xd000, (*Chip8).opDraw,
		func(arg operands) string { return fmt.Sprintf("draw v%x v%x %d", arg.x, arg.y, arg.n) }},

	// Legacy 0NNN machine-code family. Not supported, executes as a no-op.
	{0xf000, 0x0000, nil, nil},
}

// lookup selects the handler for an instruction word. A nil handler (or
// no match at all) means the word is a defined no-op.
func lookup(op Opcode) handler {
	word := uint16(op)
	for _, entry := range instructions {
		if word&entry.mask == entry.bits {
			return entry.fn
		}
	}

	return nil
}

// String returns the assembly language representation of this instruction.
func (op Opcode) String() string {
	word := uint16(op)
	for _, entry := range instructions {
		if word&entry.mask == entry.bits {
			if entry.text == nil {
				break
			}
			return entry.text(op.operands())
		}
	}

	return fmt.Sprintf("word 0x%04x", word)
}
