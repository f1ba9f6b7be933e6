package chip8

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChip8(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()

	assert.Equal(uint16(PROGRAM_OFFSET), vm.PC)
	assert.Equal(uint16(0), vm.Index)
	assert.True(vm.Stack.Empty())
	assert.Equal(fontSprites[:], vm.Memory[FONT_OFFSET:FONT_OFFSET+len(fontSprites)])
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	assert.NoError(vm.Load([]byte{0x12, 0x34}))
	assert.Equal(byte(0x12), vm.Memory[PROGRAM_OFFSET])
	assert.Equal(byte(0x34), vm.Memory[PROGRAM_OFFSET+1])

	huge := make([]byte, MEMORY_SIZE-PROGRAM_OFFSET+1)
	assert.ErrorIs(vm.Load(huge), ErrProgramSize)

	exact := make([]byte, MEMORY_SIZE-PROGRAM_OFFSET)
	assert.NoError(vm.Load(exact))
}

func TestCallReturn(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	loadWords(vm, 0x2400) // call 0x400
	vm.Memory[0x400] = 0x00
	vm.Memory[0x401] = 0xee // ret

	stepOk(t, vm)
	assert.Equal(uint16(0x400), vm.PC)
	assert.Equal(1, len(vm.Stack.Data))

	stepOk(t, vm)
	// back at the instruction immediately after the call
	assert.Equal(uint16(PROGRAM_OFFSET+2), vm.PC)
	assert.True(vm.Stack.Empty())
}

func TestCallOverflow(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	loadWords(vm, 0x2200) // call 0x200: calls itself forever

	for n := 0; n < STACK_LIMIT; n++ {
		stepOk(t, vm)
	}

	// the 17th nested call overflows
	err := vm.Step()
	assert.ErrorIs(err, ErrStackFull)

	var es *ErrStep
	assert.True(errors.As(err, &es))
	assert.Equal(uint16(0x200), es.PC)
}

func TestReturnUnderflow(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	loadWords(vm, 0x00ee) // ret on an empty stack

	err := vm.Step()
	assert.ErrorIs(err, ErrStackEmpty)
}

func TestFetchOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.PC = MEMORY_SIZE - 1

	err := vm.Step()
	assert.ErrorIs(err, ErrOutOfBounds)
}

func TestClearScreen(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.Display[5][10] = true
	vm.Display[31][63] = true
	loadWords(vm, 0x00e0)
	stepOk(t, vm)

	for y := range DISPLAY_HEIGHT {
		for x := range DISPLAY_WIDTH {
			assert.False(vm.Display[y][x])
		}
	}
}

func TestDrawSprite(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.Index = 0x300
	vm.Memory[0x300] = 0xf0 // one glyph-style row
	vm.Memory[0x301] = 0x90
	vm.V[1] = 4
	vm.V[2] = 6
	loadWords(vm, 0xd122) // draw v1 v2 2
	stepOk(t, vm)

	assert.Equal(byte(0), vm.V[FLAG_REGISTER])
	assert.True(vm.Pixel(4, 6))
	assert.True(vm.Pixel(7, 6))
	assert.False(vm.Pixel(8, 6))
	assert.True(vm.Pixel(4, 7))
	assert.False(vm.Pixel(5, 7))
	assert.True(vm.Pixel(7, 7))
}

func TestDrawCollisionRestoresScreen(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.Index = 0x300
	vm.Memory[0x300] = 0xa5
	vm.V[0] = 12
	vm.V[1] = 20
	loadWords(vm, 0xd011, 0xd011) // draw twice at the same spot

	stepOk(t, vm)
	assert.Equal(byte(0), vm.V[FLAG_REGISTER])

	stepOk(t, vm)
	// XOR of an identical sprite unlights everything and flags collision
	assert.Equal(byte(1), vm.V[FLAG_REGISTER])
	for y := range DISPLAY_HEIGHT {
		for x := range DISPLAY_WIDTH {
			assert.False(vm.Display[y][x])
		}
	}
}

func TestDrawWrapsEdges(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.Index = 0x300
	vm.Memory[0x300] = 0xff
	vm.Memory[0x301] = 0xff
	vm.V[0] = 62 // two columns from the right edge
	vm.V[1] = 31 // last row
	loadWords(vm, 0xd012) // draw v0 v1 2
	stepOk(t, vm)

	// columns wrap
	assert.True(vm.Pixel(62, 31))
	assert.True(vm.Pixel(63, 31))
	assert.True(vm.Pixel(0, 31))
	assert.True(vm.Pixel(5, 31))
	// rows wrap
	assert.True(vm.Pixel(62, 0))
	assert.True(vm.Pixel(1, 0))
}

func TestDrawCoordinatesModulo(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.Index = 0x300
	vm.Memory[0x300] = 0x80
	vm.V[0] = 64 + 3 // wraps to column 3
	vm.V[1] = 32 + 2 // wraps to row 2
	loadWords(vm, 0xd011)
	stepOk(t, vm)

	assert.True(vm.Pixel(3, 2))
}

func TestDrawOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.Index = MEMORY_SIZE - 1
	loadWords(vm, 0xd012) // two rows, one byte past the end

	err := vm.Step()
	assert.ErrorIs(err, ErrOutOfBounds)
}

func TestWaitKey(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	loadWords(vm, 0xf30a, 0x6155) // waitkey v3; set v1 0x55

	// first step parks on the waitkey instruction
	stepOk(t, vm)
	assert.Equal(uint16(PROGRAM_OFFSET), vm.PC)

	// repeated steps with no key pressed change nothing
	for range 5 {
		stepOk(t, vm)
		assert.Equal(uint16(PROGRAM_OFFSET), vm.PC)
		assert.Equal(byte(0), vm.V[3])
		assert.Equal(byte(0), vm.V[1])
	}

	// a key press resolves the wait...
	assert.NoError(vm.SetKey(0xc, true))
	stepOk(t, vm)
	assert.Equal(byte(0xc), vm.V[3])
	assert.Equal(uint16(PROGRAM_OFFSET+2), vm.PC)

	// ...and normal execution resumes
	stepOk(t, vm)
	assert.Equal(byte(0x55), vm.V[1])
	assert.Equal(uint16(PROGRAM_OFFSET+4), vm.PC)
}

func TestTickTimers(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.Delay = 1
	vm.Sound = 2

	vm.TickTimers()
	assert.Equal(byte(0), vm.Delay)
	assert.Equal(byte(1), vm.Sound)
	assert.True(vm.Beeping())

	vm.TickTimers()
	assert.Equal(byte(0), vm.Delay)
	assert.Equal(byte(0), vm.Sound)
	assert.False(vm.Beeping())

	// never decrements below zero
	vm.TickTimers()
	assert.Equal(byte(0), vm.Delay)
	assert.Equal(byte(0), vm.Sound)
}

func TestSetKey(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	assert.NoError(vm.SetKey(0, true))
	assert.NoError(vm.SetKey(15, true))
	assert.True(vm.Pressed(0))
	assert.True(vm.Pressed(15))

	assert.NoError(vm.SetKey(15, false))
	assert.False(vm.Pressed(15))

	assert.ErrorIs(vm.SetKey(16, true), ErrKeyInvalid)
	assert.ErrorIs(vm.SetKey(-1, true), ErrKeyInvalid)
	assert.False(vm.Pressed(16))
	assert.False(vm.Pressed(-1))
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	assert.NoError(vm.Load([]byte{0x63, 0x44}))
	stepOk(t, vm)
	vm.Display[1][1] = true
	vm.Delay = 9
	vm.Stack.Push(0x300)

	vm.Reset()

	assert.Equal(uint16(PROGRAM_OFFSET), vm.PC)
	assert.Equal(byte(0), vm.V[3])
	assert.Equal(byte(0), vm.Delay)
	assert.True(vm.Stack.Empty())
	assert.False(vm.Display[1][1])
	assert.Equal(byte(0), vm.Memory[PROGRAM_OFFSET])
	assert.Equal(fontSprites[:], vm.Memory[FONT_OFFSET:FONT_OFFSET+len(fontSprites)])
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	vm.V[0xa] = 0x42
	text := vm.String()

	assert.True(strings.Contains(text, "pc: 200"))
	assert.True(strings.Contains(text, "va : 42"))
	assert.True(strings.Contains(text, "stack: ---"))
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	vm := NewChip8()
	defines := map[string]string{}
	for key, value := range vm.Defines() {
		defines[key] = value
	}

	assert.Equal("0x200", defines["PROGRAM_OFFSET"])
	assert.Equal("0x50", defines["FONT_OFFSET"])
	assert.Equal("64", defines["DISPLAY_WIDTH"])
	assert.Equal("32", defines["DISPLAY_HEIGHT"])
}
