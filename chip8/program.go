package chip8

// Statement represents a line of assembled code with its source location
// and generated bytes.
type Statement struct {
	LineNo    int
	Addr      int
	Words     []string
	Bytes     []byte
	LinkLabel string
}

// Program is an assembled listing, addressed from PROGRAM_OFFSET.
type Program struct {
	Statements []Statement
}

// Debug locates the statement covering a memory address.
type Debug struct {
	*Statement
	Index int
}

func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, st := range prog.Statements {
		if addr >= uint16(st.Addr) && addr < uint16(st.Addr)+uint16(len(st.Bytes)) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(addr - uint16(st.Addr)),
			}
			break
		}
	}

	return
}

// LineNo returns the source line for a memory address, or 0.
func (prog *Program) LineNo(addr uint16) int {
	dbg := prog.Debug(addr)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.Statement.LineNo
}

// Binary returns the program image, suitable for Chip8.Load.
func (prog *Program) Binary() (image []byte) {
	for _, st := range prog.Statements {
		offset := st.Addr - PROGRAM_OFFSET
		for len(image) < offset {
			image = append(image, 0)
		}
		image = append(image, st.Bytes...)
	}

	return
}
