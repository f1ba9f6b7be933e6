// Package main implements the chip8 command: a CHIP-8 assembler and
// emulator with terminal and SDL frontends.
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"

	"github.com/ezrec/chip8/chip8"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/gui"
	"github.com/ezrec/chip8/io"
)

func main() {
	ctx := app.Context()

	var verbose, quiet bool

	rootCmd := &cobra.Command{
		Use:           "chip8",
		Short:         "CHIP-8 assembler and emulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Errors only")

	var useSDL bool
	var cycles int

	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run an assembly source or raw .ch8 image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := createLogger(verbose, quiet)
			return doRun(ctx, logger, args[0], useSDL, cycles, verbose)
		},
	}
	runCmd.Flags().BoolVar(&useSDL, "sdl", false, "Render to an SDL window instead of the terminal")
	runCmd.Flags().IntVar(&cycles, "cycles", emulator.STEPS_PER_FRAME, "Instructions per 60Hz frame")

	var output string

	asmCmd := &cobra.Command{
		Use:   "asm [file]",
		Short: "Assemble a source file to a raw image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := createLogger(verbose, quiet)
			return doAsm(logger, args[0], output)
		},
	}
	asmCmd.Flags().StringVarP(&output, "output", "o", "", "Output image path (default: source with .ch8)")

	rootCmd.AddCommand(runCmd, asmCmd)

	if err := rootCmd.Execute(); err != nil {
		logger := createLogger(verbose, quiet)
		logger.Fatal(err.Error())
	}
}

// createLogger creates a logger with appropriate settings.
func createLogger(verbose, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if verbose {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}

	return log.NewWithConfig(cfg)
}

// assemble parses a source file, with the emulator geometry predefined
// as equates.
func assemble(emu *emulator.Emulator, path string) (prog *chip8.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &chip8.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	return asm.Parse(inf)
}

func doRun(ctx context.Context, logger *log.Logger, path string, useSDL bool, cycles int, verbose bool) (err error) {
	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.StepsPerFrame = cycles

	if filepath.Ext(path) == ".ch8" {
		// A raw image carries no listing; runtime errors report line 0.
		var image []byte
		image, err = os.ReadFile(path)
		if err != nil {
			return
		}
		err = emu.Chip8.Load(image)
	} else {
		emu.Program, err = assemble(emu, path)
		if err != nil {
			return
		}
		err = emu.Reset()
	}
	if err != nil {
		return
	}

	if useSDL {
		var win *gui.Window
		win, err = gui.NewWindow()
		if err != nil {
			return
		}
		defer win.Close()
		emu.Renderer = win
		emu.Input = win
		emu.Beeper = win
	} else {
		term := io.NewTerm()
		err = term.Open()
		if err != nil {
			return
		}
		defer term.Close()
		emu.Renderer = term
		emu.Input = term
		emu.Beeper = term
	}

	logger.Debug("running",
		log.String("file", path),
		log.Hex("boot", uint16(chip8.PROGRAM_OFFSET)))

	err = emu.Run(ctx)
	if errors.Is(err, gui.ErrQuit) {
		err = nil
	}

	return
}

func doAsm(logger *log.Logger, path string, output string) (err error) {
	emu := emulator.NewEmulator()

	prog, err := assemble(emu, path)
	if err != nil {
		return
	}

	if len(output) == 0 {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + ".ch8"
	}

	image := prog.Binary()
	err = os.WriteFile(output, image, 0o644)
	if err != nil {
		return
	}

	logger.Info("assembled",
		log.String("file", path),
		log.String("output", output),
		log.Int("bytes", len(image)))

	return
}
