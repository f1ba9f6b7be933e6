// Package gui provides an SDL window frontend: the frame buffer scaled
// up to a host window, pad input from the keyboard, and a square-wave
// beeper.
package gui

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/ezrec/chip8/chip8"
	"github.com/ezrec/chip8/io"
)

const (
	WINDOW_TITLE = "chip8"
	PIXEL_SCALE  = 10 // host pixels per machine pixel

	SAMPLE_HZ = 48000 // beeper sample rate
	BEEP_HZ   = 440   // beeper tone
)

// Window is an SDL frontend implementing the renderer, input and beeper
// interfaces. All methods must be called from the main thread.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer

	audio   sdl.AudioDeviceID
	silence uint8
}

// NewWindow opens the host window and audio device.
func NewWindow() (win *Window, err error) {
	win = &Window{}

	err = sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO)
	if err != nil {
		return
	}

	win.window, err = sdl.CreateWindow(WINDOW_TITLE,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		chip8.DISPLAY_WIDTH*PIXEL_SCALE, chip8.DISPLAY_HEIGHT*PIXEL_SCALE,
		sdl.WINDOW_SHOWN)
	if err != nil {
		return
	}

	win.renderer, err = sdl.CreateRenderer(win.window, -1,
		sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return
	}

	spec := &sdl.AudioSpec{
		Freq:     SAMPLE_HZ,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}
	var actual sdl.AudioSpec
	win.audio, err = sdl.OpenAudioDevice("", false, spec, &actual, 0)
	if err != nil {
		return
	}
	win.silence = actual.Silence
	sdl.PauseAudioDevice(win.audio, false)

	return
}

// Close releases the window and audio device.
func (win *Window) Close() (err error) {
	sdl.CloseAudioDevice(win.audio)
	if win.renderer != nil {
		win.renderer.Destroy()
	}
	if win.window != nil {
		err = win.window.Destroy()
	}
	sdl.Quit()

	return
}

// Render scales the frame buffer up to the window.
func (win *Window) Render(display *io.Display) (err error) {
	err = win.renderer.SetDrawColor(0, 0, 0, 255)
	if err != nil {
		return
	}
	err = win.renderer.Clear()
	if err != nil {
		return
	}

	err = win.renderer.SetDrawColor(0xe0, 0xe0, 0xe0, 255)
	if err != nil {
		return
	}
	for y := range chip8.DISPLAY_HEIGHT {
		for x := range chip8.DISPLAY_WIDTH {
			if !display[y][x] {
				continue
			}
			err = win.renderer.FillRect(&sdl.Rect{
				X: int32(x * PIXEL_SCALE),
				Y: int32(y * PIXEL_SCALE),
				W: PIXEL_SCALE,
				H: PIXEL_SCALE,
			})
			if err != nil {
				return
			}
		}
	}
	win.renderer.Present()

	return
}

// Poll forwards keyboard transitions and window close requests.
func (win *Window) Poll(press func(key int, down bool) error) (err error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			return ErrQuit
		case *sdl.KeyboardEvent:
			if ev.Repeat != 0 {
				continue
			}
			sym := ev.Keysym.Sym
			if sym < 0 || sym > 0x7f {
				continue
			}
			key, ok := io.HostKeys[byte(sym)]
			if !ok {
				continue
			}
			err = press(key, ev.Type == sdl.KEYDOWN)
			if err != nil {
				return
			}
		}
	}

	return
}

// Beep keeps roughly one frame of square wave queued while the tone is
// on. The queue drains at the same rate frames arrive, so no explicit
// flush is needed on the falling edge.
func (win *Window) Beep(on bool) (err error) {
	if !on {
		return
	}

	const samples = SAMPLE_HZ / 60
	const period = SAMPLE_HZ / BEEP_HZ

	if sdl.GetQueuedAudioSize(win.audio) > samples*2 {
		return
	}

	buf := make([]uint8, samples)
	for n := range buf {
		if (n/(period/2))%2 == 0 {
			buf[n] = win.silence + 0x20
		} else {
			buf[n] = win.silence
		}
	}

	return sdl.QueueAudio(win.audio, buf)
}
