package chip8

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"PROGRAM_OFFSET": fmt.Sprintf("%#x", PROGRAM_OFFSET),
	"FONT_OFFSET":    fmt.Sprintf("%#x", FONT_OFFSET),
	"GLYPH_HEIGHT":   fmt.Sprintf("%v", GLYPH_HEIGHT),
	"DISPLAY_WIDTH":  fmt.Sprintf("%v", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%v", DISPLAY_HEIGHT),
}

// Assembler is a single pass macro assembler for the CHIP-8 instruction set.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to memory addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// registerOf parses a v0..vf register name.
func registerOf(word string) (reg int, ok bool) {
	if len(word) != 2 || word[0] != 'v' {
		return
	}
	v64, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	return int(v64), true
}

// valueOf returns the numeric value of a simple word. A '~' prefix
// inverts the low 8 bits, for byte masks.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	value, err = strconv.ParseInt(word, 0, 17)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = int64(^byte(value))
	}

	return
}

// byteValue parses an 8-bit immediate, accepting negatives in two's
// complement form.
func (asm *Assembler) byteValue(word string) (value byte, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v64 < -0x80 || v64 > 0xff {
		err = ErrValueRange
		return
	}

	return byte(v64), nil
}

// nibbleValue parses a 4-bit count.
func (asm *Assembler) nibbleValue(word string) (value byte, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v64 < 0 || v64 > 0xf {
		err = ErrValueRange
		return
	}

	return byte(v64), nil
}

// addrValue parses a 12-bit address.
func (asm *Assembler) addrValue(word string) (value uint16, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v64 < 0 || v64 > 0xfff {
		err = ErrValueRange
		return
	}

	return uint16(v64), nil
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = st_int64
	return
}

// parseLine parses a single line as a statement.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		if len(word) == 0 {
			continue
		}

		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the memory address of the next emitted byte.
func (asm *Assembler) currentAddr() int {
	if len(asm.Statement) == 0 {
		return PROGRAM_OFFSET
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Addr + len(last.Bytes)
}

// Parse parses an input stream into a Program containing statements.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		all_words := strings.Split(line, " ")

		var words []string
		for _, single := range all_words {
			if len(single) > 0 {
				words = append(words, single)
			}
		}

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		label := st.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if len(st.Bytes) != 2 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, st.LineNo, st.Words)
		}
		st.Bytes[0] |= byte(addr>>8) & 0xf
		st.Bytes[1] = byte(addr)
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// registerArg parses words[at] as a register index.
func (asm *Assembler) registerArg(words []string, at int) (reg int, err error) {
	if len(words) <= at {
		err = ErrOpcodeValueMissing
		return
	}
	reg, ok := registerOf(words[at])
	if !ok {
		err = ErrRegisterInvalid
		return
	}

	return
}

// emitWord packs an instruction word into two big-endian bytes.
func emitWord(word uint16) []byte {
	return []byte{byte(word >> 8), byte(word)}
}

// target12 resolves an address argument: a literal resolves now, anything
// else is deferred to the label linking pass.
func (asm *Assembler) target12(word string) (addr uint16, label string, err error) {
	addr, err = asm.addrValue(word)
	if err == nil {
		return
	}
	if _, isNum := err.(ErrParseNumber); !isNum {
		// A number, but not a valid address.
		return
	}

	return 0, word, nil
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(bytes) == 0 {
			return
		}
		statement := Statement{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Bytes: bytes, LinkLabel: label}
		asm.Statement = append(asm.Statement, statement)
	}()

	// family is the instruction base word for a linkable 12-bit target.
	emitTarget := func(family uint16) {
		if len(words) != 2 {
			if len(words) < 2 {
				err = ErrTargetMissing
			} else {
				err = ErrOpcodeExtraArgs
			}
			return
		}
		var addr uint16
		addr, label, err = asm.target12(words[1])
		if err != nil {
			return
		}
		bytes = emitWord(family | (addr & 0xfff))
	}

	// xy emits a two-register instruction from the family base word.
	xy := func(family uint16) {
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var x, y int
		x, err = asm.registerArg(words, 1)
		if err != nil {
			return
		}
		y, err = asm.registerArg(words, 2)
		if err != nil {
			return
		}
		bytes = emitWord(family | uint16(x)<<8 | uint16(y)<<4)
	}

	// xv emits a register instruction from the F/E family base word.
	xv := func(family uint16) {
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var x int
		x, err = asm.registerArg(words, 1)
		if err != nil {
			return
		}
		bytes = emitWord(family | uint16(x)<<8)
	}

	// dual emits the register form when the second argument names a
	// register, else the immediate-value form.
	dual := func(valueFamily, registerFamily uint16) {
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var x int
		x, err = asm.registerArg(words, 1)
		if err != nil {
			return
		}
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if y, ok := registerOf(words[2]); ok {
			bytes = emitWord(registerFamily | uint16(x)<<8 | uint16(y)<<4)
			return
		}
		var value byte
		value, err = asm.byteValue(words[2])
		if err != nil {
			return
		}
		bytes = emitWord(valueFamily | uint16(x)<<8 | uint16(value))
	}

	switch words[0] {
	case "cls":
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		bytes = emitWord(0x00e0)
	case "ret":
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		bytes = emitWord(0x00ee)
	case "jump":
		emitTarget(0x1000)
	case "call":
		emitTarget(0x2000)
	case "index":
		emitTarget(0xa000)
	case "jumpv0":
		emitTarget(0xb000)
	case "seq":
		dual(0x3000, 0x5000)
	case "sne":
		dual(0x4000, 0x9000)
	case "set":
		dual(0x6000, 0x8000)
	case "add":
		dual(0x7000, 0x8004)
	case "or":
		xy(0x8001)
	case "and":
		xy(0x8002)
	case "xor":
		xy(0x8003)
	case "sub":
		xy(0x8005)
	case "subr":
		xy(0x8007)
	case "shr", "shl":
		family := uint16(0x8006)
		if words[0] == "shl" {
			family = 0x800e
		}
		if len(words) == 2 {
			// single-register form shifts in place
			words = append(words, words[1])
		}
		xy(family)
	case "rand":
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var x int
		x, err = asm.registerArg(words, 1)
		if err != nil {
			return
		}
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		var value byte
		value, err = asm.byteValue(words[2])
		if err != nil {
			return
		}
		bytes = emitWord(0xc000 | uint16(x)<<8 | uint16(value))
	case "draw":
		if len(words) > 4 {
			err = ErrOpcodeExtraArgs
			return
		}
		var x, y int
		x, err = asm.registerArg(words, 1)
		if err != nil {
			return
		}
		y, err = asm.registerArg(words, 2)
		if err != nil {
			return
		}
		if len(words) < 4 {
			err = ErrOpcodeValueMissing
			return
		}
		var height byte
		height, err = asm.nibbleValue(words[3])
		if err != nil {
			return
		}
		bytes = emitWord(0xd000 | uint16(x)<<8 | uint16(y)<<4 | uint16(height))
	case "skp":
		xv(0xe09e)
	case "sknp":
		xv(0xe0a1)
	case "getdelay":
		xv(0xf007)
	case "waitkey":
		xv(0xf00a)
	case "delay":
		xv(0xf015)
	case "sound":
		xv(0xf018)
	case "addi":
		xv(0xf01e)
	case "font":
		xv(0xf029)
	case "bcd":
		xv(0xf033)
	case "save":
		xv(0xf055)
	case "restore":
		xv(0xf065)
	case ".db":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value byte
			value, err = asm.byteValue(word)
			if err != nil {
				return
			}
			bytes = append(bytes, value)
		}
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
