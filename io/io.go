// Package io provides the host-facing frontends for the CHIP-8 machine:
// display renderers, pad input drivers, and beepers. The emulator drives
// one of each once per video frame.
package io

import (
	"github.com/ezrec/chip8/chip8"
)

// Display is the frame buffer type presented to renderers.
type Display = [chip8.DISPLAY_HEIGHT][chip8.DISPLAY_WIDTH]bool

// Renderer presents one complete frame to the host.
type Renderer interface {
	// Render draws the frame buffer. Called once per frame.
	Render(display *Display) error
}

// Input drains pending host key events into the pad.
type Input interface {
	// Poll forwards any pending key transitions. press reports a single
	// logical pad key (0x0..0xf) going down or up.
	Poll(press func(key int, down bool) error) error
}

// Beeper reflects the sound timer state on the host.
type Beeper interface {
	// Beep turns the tone on or off. Called once per frame.
	Beep(on bool) error
}
