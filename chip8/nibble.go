package chip8

// Pure helpers for splitting opcode bytes into 4-bit fields and
// recombining fields into the wider values instructions consume.

// hiNibble returns the upper 4 bits of a byte.
func hiNibble(b byte) byte {
	return b >> 4
}

// loNibble returns the lower 4 bits of a byte.
func loNibble(b byte) byte {
	return b & 0xf
}

// joinByte combines two nibbles into an 8-bit immediate.
func joinByte(hi, lo byte) byte {
	return hi<<4 | lo
}

// joinAddr combines three nibbles into a 12-bit address.
func joinAddr(hi, mid, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(mid)<<4 | uint16(lo)
}
