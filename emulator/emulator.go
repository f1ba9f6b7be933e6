package emulator

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"time"

	"github.com/ezrec/chip8/chip8"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	FRAME_HZ        = 60 // Timer and video cadence.
	STEPS_PER_FRAME = 10 // Instructions per frame at the default speed.
)

var _emulator_defines = map[string]string{
	"FRAME_HZ":        fmt.Sprintf("%v", FRAME_HZ),
	"STEPS_PER_FRAME": fmt.Sprintf("%v", STEPS_PER_FRAME),
}

// Emulator state. Machine + program listing + host frontends.
type Emulator struct {
	Verbose      bool           // If set, enables verbose logging.
	*chip8.Chip8                // Reference to the machine simulation.
	Program      *chip8.Program // Currently loaded program listing.

	StepsPerFrame int // Instructions executed per frame.

	Renderer io.Renderer
	Input    io.Input
	Beeper   io.Beeper
}

// NewEmulator creates an emulator with null frontends attached.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Chip8:         chip8.NewChip8(),
		Program:       &chip8.Program{},
		StepsPerFrame: STEPS_PER_FRAME,
		Renderer:      &io.NullRenderer{},
		Input:         &io.NullInput{},
		Beeper:        &io.NullBeeper{},
	}

	return
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Chip8.Defines(),
	)
}

// Reset reboots the machine and reloads the current program image.
func (emu *Emulator) Reset() (err error) {
	emu.Chip8.Verbose = emu.Verbose
	emu.Chip8.Reset()

	return emu.Chip8.Load(emu.Program.Binary())
}

// LineNo returns the source line of the executing instruction.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Chip8.PC)
}

// Frame advances the machine by one video frame: poll input, execute a
// frame's worth of instructions, tick the timers, then present.
func (emu *Emulator) Frame() (err error) {
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Input.Poll(emu.Chip8.SetKey)
	if err != nil {
		return
	}

	for range emu.StepsPerFrame {
		lineno = emu.LineNo()
		err = emu.Chip8.Step()
		if err != nil {
			return
		}
	}

	emu.Chip8.TickTimers()

	err = emu.Renderer.Render(&emu.Chip8.Display)
	if err != nil {
		return
	}

	return emu.Beeper.Beep(emu.Chip8.Beeping())
}

// Run drives frames at the video rate until the context ends.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	ticker := time.NewTicker(time.Second / FRAME_HZ)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err = emu.Frame()
			if err != nil {
				return
			}
		}
	}
}
