package chip8

// Instruction handlers. Each executes synchronously within one Step();
// the default two-byte program counter advance has already happened by
// the time a handler runs, so control-flow handlers overwrite PC and
// skip handlers add a further two bytes.

func (vm *Chip8) opClearScreen(arg operands) error {
	vm.Display = [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool{}

	return nil
}

func (vm *Chip8) opReturn(arg operands) error {
	addr, ok := vm.Stack.Pop()
	if !ok {
		return ErrStackEmpty
	}
	vm.PC = addr

	return nil
}

func (vm *Chip8) opJump(arg operands) error {
	vm.PC = arg.addr

	return nil
}

func (vm *Chip8) opCall(arg operands) error {
	if vm.Stack.Full() {
		return ErrStackFull
	}
	vm.Stack.Push(vm.PC)
	vm.PC = arg.addr

	return nil
}

// skip advances the program counter over the next instruction.
func (vm *Chip8) skip(when bool) {
	if when {
		vm.PC += 2
	}
}

func (vm *Chip8) opSkipEqualValue(arg operands) error {
	vm.skip(vm.V[arg.x] == arg.value)

	return nil
}

func (vm *Chip8) opSkipNotEqualValue(arg operands) error {
	vm.skip(vm.V[arg.x] != arg.value)

	return nil
}

func (vm *Chip8) opSkipEqualRegister(arg operands) error {
	vm.skip(vm.V[arg.x] == vm.V[arg.y])

	return nil
}

func (vm *Chip8) opSkipNotEqualRegister(arg operands) error {
	vm.skip(vm.V[arg.x] != vm.V[arg.y])

	return nil
}

func (vm *Chip8) opSetValue(arg operands) error {
	vm.V[arg.x] = arg.value

	return nil
}

// opAddValue wraps modulo 256 and does not touch the flag.
func (vm *Chip8) opAddValue(arg operands) error {
	vm.V[arg.x] += arg.value

	return nil
}

func (vm *Chip8) opSetRegister(arg operands) error {
	vm.V[arg.x] = vm.V[arg.y]

	return nil
}

func (vm *Chip8) opOrRegister(arg operands) error {
	vm.V[arg.x] |= vm.V[arg.y]

	return nil
}

func (vm *Chip8) opAndRegister(arg operands) error {
	vm.V[arg.x] &= vm.V[arg.y]

	return nil
}

func (vm *Chip8) opXorRegister(arg operands) error {
	vm.V[arg.x] ^= vm.V[arg.y]

	return nil
}

// opAddRegister sets the flag to 1 when the 8-bit sum overflows.
func (vm *Chip8) opAddRegister(arg operands) error {
	sum := uint16(vm.V[arg.x]) + uint16(vm.V[arg.y])
	vm.V[arg.x] = byte(sum)
	vm.setFlag(sum > 0xff)

	return nil
}

// opSubRegister sets the flag to 1 when no borrow occurred (Vx >= Vy).
func (vm *Chip8) opSubRegister(arg operands) error {
	borrowed := vm.V[arg.x] < vm.V[arg.y]
	vm.V[arg.x] -= vm.V[arg.y]
	vm.setFlag(!borrowed)

	return nil
}

// opSubRegisterSwapped computes Vy - Vx; flag is 1 when Vy >= Vx.
func (vm *Chip8) opSubRegisterSwapped(arg operands) error {
	borrowed := vm.V[arg.y] < vm.V[arg.x]
	vm.V[arg.x] = vm.V[arg.y] - vm.V[arg.x]
	vm.setFlag(!borrowed)

	return nil
}

// opShiftRight stores Vy >> 1 into Vx; flag is the bit shifted out.
func (vm *Chip8) opShiftRight(arg operands) error {
	src := vm.V[arg.y]
	vm.V[arg.x] = src >> 1
	vm.setFlag(src&0x01 != 0)

	return nil
}

// opShiftLeft stores Vy << 1 into Vx; flag is the bit shifted out.
func (vm *Chip8) opShiftLeft(arg operands) error {
	src := vm.V[arg.y]
	vm.V[arg.x] = src << 1
	vm.setFlag(src&0x80 != 0)

	return nil
}

func (vm *Chip8) opSetIndex(arg operands) error {
	vm.Index = arg.addr

	return nil
}

func (vm *Chip8) opJumpOffset(arg operands) error {
	vm.PC = arg.addr + uint16(vm.V[0])

	return nil
}

func (vm *Chip8) opRandom(arg operands) error {
	vm.V[arg.x] = randomByte() & arg.value

	return nil
}

// opDraw XORs an 8-bit-wide, N-row sprite read from memory at the address
// register onto the display. The start position wraps modulo the display
// size, as do sprite pixels crossing either edge. The flag is set to 1
// when any lit pixel is unlit by the XOR.
func (vm *Chip8) opDraw(arg operands) error {
	at := int(vm.Index)
	if at+int(arg.n) > MEMORY_SIZE {
		return ErrAccess(vm.Index)
	}

	x0 := int(vm.V[arg.x]) % DISPLAY_WIDTH
	y0 := int(vm.V[arg.y]) % DISPLAY_HEIGHT

	collision := false
	for row := range int(arg.n) {
		bits := vm.Memory[at+row]
		y := (y0 + row) % DISPLAY_HEIGHT
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			x := (x0 + col) % DISPLAY_WIDTH
			if vm.Display[y][x] {
				collision = true
			}
			vm.Display[y][x] = !vm.Display[y][x]
		}
	}
	vm.setFlag(collision)

	return nil
}

func (vm *Chip8) opSkipKeyPressed(arg operands) error {
	vm.skip(vm.Pressed(int(vm.V[arg.x] & 0xf)))

	return nil
}

func (vm *Chip8) opSkipKeyNotPressed(arg operands) error {
	vm.skip(!vm.Pressed(int(vm.V[arg.x] & 0xf)))

	return nil
}

func (vm *Chip8) opGetDelay(arg operands) error {
	vm.V[arg.x] = vm.Delay

	return nil
}

// opWaitKey parks the program counter on this instruction and flags the
// machine as awaiting a key; Step() resolves the wait by polling.
func (vm *Chip8) opWaitKey(arg operands) error {
	vm.waitReg = arg.x
	vm.PC -= 2

	return nil
}

func (vm *Chip8) opSetDelay(arg operands) error {
	vm.Delay = vm.V[arg.x]

	return nil
}

func (vm *Chip8) opSetSound(arg operands) error {
	vm.Sound = vm.V[arg.x]

	return nil
}

// opAddIndex adds Vx into the 16-bit address register with plain
// wraparound; no flag is set. Out-of-range results surface as
// ErrOutOfBounds at the next dereference.
func (vm *Chip8) opAddIndex(arg operands) error {
	vm.Index += uint16(vm.V[arg.x])

	return nil
}

// opFontIndex points the address register at the built-in glyph for the
// low nibble of Vx.
func (vm *Chip8) opFontIndex(arg operands) error {
	vm.Index = FONT_OFFSET + uint16(vm.V[arg.x]&0xf)*GLYPH_HEIGHT

	return nil
}

// opStoreBCD writes the hundreds, tens, and units digits of Vx to
// memory at the address register.
func (vm *Chip8) opStoreBCD(arg operands) error {
	at := int(vm.Index)
	if at+3 > MEMORY_SIZE {
		return ErrAccess(vm.Index)
	}

	val := vm.V[arg.x]
	vm.Memory[at+0] = val / 100
	vm.Memory[at+1] = (val / 10) % 10
	vm.Memory[at+2] = val % 10

	return nil
}

// opSaveRegisters spills V0..Vx inclusive to memory at the address register.
func (vm *Chip8) opSaveRegisters(arg operands) error {
	at := int(vm.Index)
	if at+arg.x+1 > MEMORY_SIZE {
		return ErrAccess(vm.Index)
	}

	copy(vm.Memory[at:], vm.V[:arg.x+1])

	return nil
}

// opLoadRegisters reloads V0..Vx inclusive from memory at the address register.
func (vm *Chip8) opLoadRegisters(arg operands) error {
	at := int(vm.Index)
	if at+arg.x+1 > MEMORY_SIZE {
		return ErrAccess(vm.Index)
	}

	copy(vm.V[:arg.x+1], vm.Memory[at:])

	return nil
}

// setFlag stores a carry/borrow/collision result in VF.
func (vm *Chip8) setFlag(on bool) {
	if on {
		vm.V[FLAG_REGISTER] = 1
	} else {
		vm.V[FLAG_REGISTER] = 0
	}
}
