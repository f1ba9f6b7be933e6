package io

import (
	"fmt"
	stdio "io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/ezrec/chip8/chip8"
)

// How long a terminal keystroke stays latched on the pad. Terminals
// report no key-up events, so presses decay on a timer instead.
const KEY_LATCH = 150 * time.Millisecond

// Term renders frames to an ANSI terminal and reads the keyboard in
// cbreak mode via HostKeys.
type Term struct {
	In     *os.File
	Out    stdio.Writer
	KeyTTL time.Duration

	canAttr    unix.Termios
	cbreakAttr unix.Termios
	deadline   [chip8.KEY_COUNT]time.Time
	beeping    bool
}

// NewTerm attaches to the process's standard input and output.
func NewTerm() *Term {
	return &Term{
		In:     os.Stdin,
		Out:    os.Stdout,
		KeyTTL: KEY_LATCH,
	}
}

// Open switches the input to nonblocking cbreak mode and prepares the
// screen. Callers must pair it with Close to restore the terminal.
func (tm *Term) Open() (err error) {
	err = termios.Tcgetattr(tm.In.Fd(), &tm.canAttr)
	if err != nil {
		return
	}

	tm.cbreakAttr = tm.canAttr
	termios.Cfmakecbreak(&tm.cbreakAttr)
	err = termios.Tcsetattr(tm.In.Fd(), termios.TCIFLUSH, &tm.cbreakAttr)
	if err != nil {
		return
	}

	err = syscall.SetNonblock(int(tm.In.Fd()), true)
	if err != nil {
		return
	}

	// Clear the screen and hide the cursor.
	fmt.Fprint(tm.Out, "\033[2J\033[?25l")

	return
}

// Close restores the terminal attributes and cursor.
func (tm *Term) Close() (err error) {
	fmt.Fprint(tm.Out, "\033[?25h\033[0m\n")
	syscall.SetNonblock(int(tm.In.Fd()), false)

	return termios.Tcsetattr(tm.In.Fd(), termios.TCIFLUSH, &tm.canAttr)
}

// Render repaints the whole frame from the home position. Each pixel is
// two columns wide to approximate a square on common terminal fonts.
func (tm *Term) Render(display *Display) (err error) {
	var sb strings.Builder
	sb.WriteString("\033[H")
	for y := range chip8.DISPLAY_HEIGHT {
		for x := range chip8.DISPLAY_WIDTH {
			if display[y][x] {
				sb.WriteString("██")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\r\n")
	}
	_, err = stdio.WriteString(tm.Out, sb.String())

	return
}

// Poll drains buffered keystrokes and releases stale presses.
func (tm *Term) Poll(press func(key int, down bool) error) (err error) {
	now := time.Now()

	var buf [64]byte
	n, _ := tm.In.Read(buf[:])
	for _, ch := range buf[:n] {
		key, ok := HostKeys[lowerKey(ch)]
		if !ok {
			continue
		}
		tm.deadline[key] = now.Add(tm.KeyTTL)
		err = press(key, true)
		if err != nil {
			return
		}
	}

	for key := range tm.deadline {
		if !tm.deadline[key].IsZero() && now.After(tm.deadline[key]) {
			tm.deadline[key] = time.Time{}
			err = press(key, false)
			if err != nil {
				return
			}
		}
	}

	return
}

// Beep rings the terminal bell on the rising edge of the tone.
func (tm *Term) Beep(on bool) (err error) {
	if on && !tm.beeping {
		_, err = stdio.WriteString(tm.Out, "\a")
	}
	tm.beeping = on

	return
}

func lowerKey(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 'a' - 'A'
	}

	return ch
}
