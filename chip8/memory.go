package chip8

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter and font data (512 bytes)
//	0x200-0xFFF: User program space (3584 bytes)
const (
	// MemorySize is the total addressable memory in bytes.
	MemorySize = 4096

	// ProgramStart is the memory address where CHIP-8 programs begin
	// execution.
	ProgramStart = 0x200

	// MaxAddress is the highest valid address in CHIP-8 memory space.
	MaxAddress = 0xFFF

	// MaxProgramSize is the largest program that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart
)

// Memory is the flat 4KB byte store of a machine. The region below
// ProgramStart holds the font and is read-only to running programs; writes
// into it through the program-visible path fault instead of silently
// corrupting interpreter data.
type Memory struct {
	bytes [MemorySize]byte
}

// ReadByte returns the byte at the given address. Addresses outside the
// 0x000-0xFFF range fault; they are never wrapped.
func (m *Memory) ReadByte(addr uint16) (byte, *Fault) {
	if addr > MaxAddress {
		return 0, &Fault{Kind: FaultMemory, Address: addr}
	}
	return m.bytes[addr], nil
}

// ReadWord returns the 16-bit big-endian word at the given address, most
// significant byte first.
func (m *Memory) ReadWord(addr uint16) (uint16, *Fault) {
	if addr >= MaxAddress {
		return 0, &Fault{Kind: FaultMemory, Address: addr}
	}
	return uint16(m.bytes[addr])<<8 | uint16(m.bytes[addr+1]), nil
}

// WriteByte stores a byte through the program-visible path. Writes below
// ProgramStart or above MaxAddress fault.
func (m *Memory) WriteByte(addr uint16, value byte) *Fault {
	if addr < ProgramStart || addr > MaxAddress {
		return &Fault{Kind: FaultMemory, Address: addr}
	}
	m.bytes[addr] = value
	return nil
}

// checkWriteRange validates that count consecutive bytes starting at addr
// are writable. Block transfers call this before mutating anything so a
// faulting instruction leaves memory untouched.
func (m *Memory) checkWriteRange(addr uint16, count uint16) *Fault {
	if count == 0 {
		return nil
	}
	last := uint32(addr) + uint32(count) - 1
	if addr < ProgramStart || last > MaxAddress {
		return &Fault{Kind: FaultMemory, Address: uint16(last & 0xFFFF)}
	}
	return nil
}

// load copies raw bytes at the given origin, bypassing the write protection
// of the interpreter region. Used for font seeding and program loading.
func (m *Memory) load(data []byte, origin uint16) {
	copy(m.bytes[origin:], data)
}

// reset zeroes all memory and seeds the font glyphs.
func (m *Memory) reset() {
	m.bytes = [MemorySize]byte{}
	m.load(fontset[:], FontStart)
}
