package chip8

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand"
)

const (
	MEMORY_SIZE    = 4096  // Byte-addressable memory
	PROGRAM_OFFSET = 0x200 // Program images load and boot here
	FONT_OFFSET    = 0x050 // Built-in hexadecimal digit sprites load here
	GLYPH_HEIGHT   = 5     // Rows per built-in digit sprite
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
	KEY_COUNT      = 16
	FLAG_REGISTER  = 0xF // VF doubles as the carry/borrow/collision flag
)

var _chip8_defines = map[string]string{
	"PROGRAM_OFFSET": fmt.Sprintf("%#x", PROGRAM_OFFSET),
	"FONT_OFFSET":    fmt.Sprintf("%#x", FONT_OFFSET),
	"GLYPH_HEIGHT":   fmt.Sprintf("%v", GLYPH_HEIGHT),
	"DISPLAY_WIDTH":  fmt.Sprintf("%v", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%v", DISPLAY_HEIGHT),
}

// Chip8 is the simulation context for the whole machine. All state is
// owned by the single stepping caller; Step() and TickTimers() are driven
// by two logically independent external clocks.
type Chip8 struct {
	Verbose bool // Set to enable verbose logging.

	Memory [MEMORY_SIZE]byte
	PC     uint16 // Program counter, offset of the next instruction.
	Index  uint16 // Address register, often called I.
	V      [16]byte
	Stack  Stack
	Delay  byte
	Sound  byte

	// Display is the visible frame buffer; it persists between steps.
	// false is an unlit pixel. Mutated only by draw and cls.
	Display [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool

	// Keys are the 16 logical pad states, indexed by key value.
	// Mutated only by the external input driver via SetKey.
	Keys [KEY_COUNT]bool

	// waitReg is the register awaiting a key press, or -1. While set,
	// Step() polls the pad instead of fetching.
	waitReg int
}

// NewChip8 creates a machine with the font table loaded and the program
// counter at the program boot offset.
func NewChip8() (vm *Chip8) {
	vm = &Chip8{}
	vm.Reset()

	return
}

// Defines for the machine geometry, fed to the assembler as equates.
func (vm *Chip8) Defines() iter.Seq2[string, string] {
	return maps.All(_chip8_defines)
}

// Reset clears all machine state and reloads the font table. Program
// memory is cleared too; callers reload via Load.
func (vm *Chip8) Reset() {
	if vm.Verbose {
		log.Printf("chip8: reset")
	}

	clear(vm.Memory[:])
	clear(vm.V[:])
	vm.Stack.Reset()
	vm.PC = PROGRAM_OFFSET
	vm.Index = 0
	vm.Delay = 0
	vm.Sound = 0
	vm.Display = [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool{}
	clear(vm.Keys[:])
	vm.waitReg = -1

	copy(vm.Memory[FONT_OFFSET:], fontSprites[:])
}

// Load copies a raw program image to the boot offset. The image content
// is not validated.
func (vm *Chip8) Load(program []byte) (err error) {
	if PROGRAM_OFFSET+len(program) > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	copy(vm.Memory[PROGRAM_OFFSET:], program)

	return
}

// fetch reads the two instruction bytes at the program counter.
func (vm *Chip8) fetch() (op Opcode, err error) {
	pc := int(vm.PC)
	if pc+1 >= MEMORY_SIZE {
		err = ErrAccess(vm.PC)
		return
	}

	op = Opcode(uint16(vm.Memory[pc])<<8 | uint16(vm.Memory[pc+1]))

	return
}

// Step executes a single fetch-decode-execute cycle and never blocks.
// While a waitkey instruction is pending, each call re-polls the pad and
// performs no other state change until a key is down.
func (vm *Chip8) Step() (err error) {
	if vm.waitReg >= 0 {
		if key, ok := vm.firstKey(); ok {
			vm.V[vm.waitReg] = byte(key)
			vm.waitReg = -1
			vm.PC += 2
		}
		return
	}

	pc := vm.PC

	op, err := vm.fetch()
	if err != nil {
		err = &ErrStep{PC: pc, Op: op, Err: err}
		return
	}

	if vm.Verbose {
		log.Printf("%03x: %v", pc, op)
	}

	// Default post-increment; control-flow handlers overwrite PC.
	vm.PC += 2

	fn := lookup(op)
	if fn == nil {
		// Hole in the instruction space, or the legacy 0NNN family.
		return
	}

	err = fn(vm, op.operands())
	if err != nil {
		err = &ErrStep{PC: pc, Op: op, Err: err}
	}

	return
}

// TickTimers is driven by the external 60Hz clock. Each timer decrements
// when nonzero and holds at zero.
func (vm *Chip8) TickTimers() {
	if vm.Delay > 0 {
		vm.Delay--
	}
	if vm.Sound > 0 {
		vm.Sound--
	}
}

// Beeping reports whether the host should be emitting a tone.
func (vm *Chip8) Beeping() bool {
	return vm.Sound > 0
}

// SetKey sets or clears one of the 16 logical pad states.
func (vm *Chip8) SetKey(key int, down bool) (err error) {
	if key < 0 || key >= KEY_COUNT {
		err = ErrKeyInvalid
		return
	}

	vm.Keys[key] = down

	return
}

// Pressed reports the state of a single pad key. Out of range indexes
// read as unpressed.
func (vm *Chip8) Pressed(key int) bool {
	return key >= 0 && key < KEY_COUNT && vm.Keys[key]
}

// Pixel reports the display state at (x, y); out of range reads as unlit.
func (vm *Chip8) Pixel(x, y int) bool {
	return x >= 0 && x < DISPLAY_WIDTH && y >= 0 && y < DISPLAY_HEIGHT && vm.Display[y][x]
}

// firstKey returns the lowest pressed key value.
func (vm *Chip8) firstKey() (key int, ok bool) {
	for k, down := range vm.Keys {
		if down {
			return k, true
		}
	}

	return 0, false
}

// randomByte is replaced in tests for deterministic draws.
var randomByte = func() byte {
	return byte(rand.Uint32())
}

// String returns the current machine state as a string.
func (vm *Chip8) String() (text string) {
	text = fmt.Sprintf("   pc: %03X\n    i: %03X\n", vm.PC, vm.Index)
	for n, val := range vm.V {
		text += fmt.Sprintf("  v%-2x: %02X\n", n, val)
	}

	var strval string
	val, ok := vm.Stack.Peek()
	if ok {
		strval = fmt.Sprintf("%03X (depth %v)", val, len(vm.Stack.Data))
	} else {
		strval = "---"
	}
	text += fmt.Sprintf("stack: %v\n", strval)
	text += fmt.Sprintf("delay: %02X\nsound: %02X\n", vm.Delay, vm.Sound)

	return
}
