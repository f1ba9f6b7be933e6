package gui

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// ErrQuit reports the user closing the window.
	ErrQuit = errors.New(f("window closed"))
)
