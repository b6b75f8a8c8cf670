package chip8

import (
	refchip8 "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Decode maps a 16-bit opcode word to a structured instruction. It never
// panics; a word that matches no known pattern decodes to an Unknown
// instruction carrying the raw opcode, leaving fault policy to the
// execution engine.
//
// Every word is first resolved against the retrogolib reference opcode
// table, which matches the most specific mask/value pattern per first
// nibble. The bit-field extraction below is then only applied to words the
// historical instruction set actually defines, rather than being re-derived
// from memory.
func Decode(opcode uint16) Instruction {
	if lookupReference(opcode) == nil {
		return Instruction{Kind: Unknown, Opcode: opcode}
	}

	x := uint8(opcode >> 8 & 0xF)
	y := uint8(opcode >> 4 & 0xF)
	n := uint8(opcode & 0xF)
	nn := uint8(opcode)
	nnn := opcode & 0x0FFF

	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			return Instruction{Kind: ClearScreen}
		case 0x00EE:
			return Instruction{Kind: Return}
		}

	case 0x1000:
		return Instruction{Kind: Jump, NNN: nnn}

	case 0x2000:
		return Instruction{Kind: Call, NNN: nnn}

	case 0x3000:
		return Instruction{Kind: SkipEqByte, X: x, NN: nn}

	case 0x4000:
		return Instruction{Kind: SkipNeByte, X: x, NN: nn}

	case 0x5000:
		if n == 0 {
			return Instruction{Kind: SkipEqReg, X: x, Y: y}
		}

	case 0x6000:
		return Instruction{Kind: LoadByte, X: x, NN: nn}

	case 0x7000:
		return Instruction{Kind: AddByte, X: x, NN: nn}

	case 0x8000:
		switch n {
		case 0x0:
			return Instruction{Kind: LoadReg, X: x, Y: y}
		case 0x1:
			return Instruction{Kind: Or, X: x, Y: y}
		case 0x2:
			return Instruction{Kind: And, X: x, Y: y}
		case 0x3:
			return Instruction{Kind: Xor, X: x, Y: y}
		case 0x4:
			return Instruction{Kind: AddReg, X: x, Y: y}
		case 0x5:
			return Instruction{Kind: SubReg, X: x, Y: y}
		case 0x6:
			return Instruction{Kind: ShiftRight, X: x, Y: y}
		case 0x7:
			return Instruction{Kind: SubNeg, X: x, Y: y}
		case 0xE:
			return Instruction{Kind: ShiftLeft, X: x, Y: y}
		}

	case 0x9000:
		if n == 0 {
			return Instruction{Kind: SkipNeReg, X: x, Y: y}
		}

	case 0xA000:
		return Instruction{Kind: LoadIndex, NNN: nnn}

	case 0xB000:
		return Instruction{Kind: JumpV0, NNN: nnn}

	case 0xC000:
		return Instruction{Kind: Random, X: x, NN: nn}

	case 0xD000:
		return Instruction{Kind: Draw, X: x, Y: y, N: n}

	case 0xE000:
		switch nn {
		case 0x9E:
			return Instruction{Kind: SkipKey, X: x}
		case 0xA1:
			return Instruction{Kind: SkipNoKey, X: x}
		}

	case 0xF000:
		switch nn {
		case 0x07:
			return Instruction{Kind: LoadDelay, X: x}
		case 0x0A:
			return Instruction{Kind: WaitKey, X: x}
		case 0x15:
			return Instruction{Kind: SetDelay, X: x}
		case 0x18:
			return Instruction{Kind: SetSound, X: x}
		case 0x1E:
			return Instruction{Kind: AddIndex, X: x}
		case 0x29:
			return Instruction{Kind: LoadFont, X: x}
		case 0x33:
			return Instruction{Kind: StoreBCD, X: x}
		case 0x55:
			return Instruction{Kind: StoreRegs, X: x}
		case 0x65:
			return Instruction{Kind: LoadRegs, X: x}
		}
	}

	// Table entries outside the base interpreter set are not executable
	// here; treating them as unknown keeps fault behavior identical on
	// every node.
	return Instruction{Kind: Unknown, Opcode: opcode}
}

// lookupReference resolves an opcode against the reference table and
// returns the matched instruction metadata, or nil for unassigned words.
// Table entries are ordered most-specific-first within each nibble group.
func lookupReference(opcode uint16) *refchip8.Instruction {
	firstNibble := int(opcode >> 12)
	for _, op := range refchip8.Opcodes[firstNibble] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}
