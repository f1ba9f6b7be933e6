package emulator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/chip8"
	"github.com/ezrec/chip8/io"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Chip8)
	assert.Equal(STEPS_PER_FRAME, emu.StepsPerFrame)
}

// doLoad assembles a program into a freshly reset emulator.
func doLoad(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	asm := &chip8.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}
	emu.Program = prog

	assert.NoError(emu.Reset())
}

func TestEmulatorFrame(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(emu, []string{
		"set v0 5",
		"add v0 3",
		"loop: jump loop",
	}, t)

	assert.NoError(emu.Frame())

	assert.Equal(byte(8), emu.Chip8.V[0])
	renderer := emu.Renderer.(*io.NullRenderer)
	assert.Equal(1, renderer.Frames)
}

func TestEmulatorTimers(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(emu, []string{
		"set v0 3",
		"delay v0",
		"sound v0",
		"loop: jump loop",
	}, t)

	// one tick per frame
	assert.NoError(emu.Frame())
	assert.Equal(byte(2), emu.Chip8.Delay)
	assert.Equal(byte(2), emu.Chip8.Sound)

	beeper := emu.Beeper.(*io.NullBeeper)
	assert.True(beeper.On)

	assert.NoError(emu.Frame())
	assert.NoError(emu.Frame())
	assert.False(beeper.On)
	assert.Equal(byte(0), emu.Chip8.Delay)
	assert.Equal(1, beeper.Edges)
}

func TestEmulatorWaitKey(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(emu, []string{
		"waitkey v1",
		"loop: jump loop",
	}, t)

	// no input: the machine stays parked on the first instruction
	assert.NoError(emu.Frame())
	assert.Equal(uint16(chip8.PROGRAM_OFFSET), emu.Chip8.PC)

	input := emu.Input.(*io.NullInput)
	input.Queue = append(input.Queue, io.KeyEvent{Key: 0x5, Down: true})

	assert.NoError(emu.Frame())
	assert.Equal(byte(0x5), emu.Chip8.V[1])
	assert.Equal(uint16(chip8.PROGRAM_OFFSET+2), emu.Chip8.PC)
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(emu, []string{
		"set v0 1",
		"ret",
	}, t)

	err := emu.Frame()
	assert.ErrorIs(err, chip8.ErrStackEmpty)

	var re *ErrRuntime
	if assert.True(errors.As(err, &re)) {
		assert.Equal(2, re.LineNo)
	}
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(emu, []string{
		"loop: jump loop",
	}, t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(emu.Run(ctx))

	renderer := emu.Renderer.(*io.NullRenderer)
	assert.Greater(renderer.Frames, 0)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("60", defines["FRAME_HZ"])
	assert.Equal("10", defines["STEPS_PER_FRAME"])
	assert.Equal("0x200", defines["PROGRAM_OFFSET"])
}
