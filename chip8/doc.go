// Package chip8 implements the CHIP-8 virtual machine and its assembler.
//
// The machine consists of 4096 bytes of memory, a 16-bit program counter,
// a 16-bit address register (I), sixteen 8-bit variable registers (V0-VF,
// where VF doubles as the carry/borrow/collision flag), a 16-deep call
// stack, two 8-bit countdown timers, a 64x32 monochrome display, and a
// 16-key pad. Step() performs exactly one fetch-decode-execute cycle and
// never blocks; TickTimers() is driven by an external 60Hz clock.
//
// The assembler provides a line-oriented assembly language for the CHIP-8
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation.
package chip8
