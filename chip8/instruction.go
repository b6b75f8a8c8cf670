package chip8

import "fmt"

// Kind identifies one variant of the closed CHIP-8 instruction set. The
// execution engine switches exhaustively over all kinds, so every variant
// including Unknown has defined behavior.
type Kind uint8

// Instruction kinds, one per opcode pattern of the base instruction set.
const (
	// Unknown marks a word that matches no known opcode pattern. Decoding
	// never fails; the engine decides fault policy.
	Unknown Kind = iota

	ClearScreen // 00E0: clear the display
	Return      // 00EE: return from subroutine
	Jump        // 1nnn: jump to address
	Call        // 2nnn: call subroutine
	SkipEqByte  // 3xnn: skip next instruction if Vx == nn
	SkipNeByte  // 4xnn: skip next instruction if Vx != nn
	SkipEqReg   // 5xy0: skip next instruction if Vx == Vy
	LoadByte    // 6xnn: Vx = nn
	AddByte     // 7xnn: Vx += nn, no flag
	LoadReg     // 8xy0: Vx = Vy
	Or          // 8xy1: Vx |= Vy
	And         // 8xy2: Vx &= Vy
	Xor         // 8xy3: Vx ^= Vy
	AddReg      // 8xy4: Vx += Vy, VF = carry
	SubReg      // 8xy5: Vx -= Vy, VF = 1 on no borrow
	ShiftRight  // 8xy6: Vx >>= 1, VF = shifted-out bit
	SubNeg      // 8xy7: Vx = Vy - Vx, VF = 1 on no borrow
	ShiftLeft   // 8xyE: Vx <<= 1, VF = shifted-out bit
	SkipNeReg   // 9xy0: skip next instruction if Vx != Vy
	LoadIndex   // Annn: I = nnn
	JumpV0      // Bnnn: jump to nnn + V0
	Random      // Cxnn: Vx = random byte AND nn
	Draw        // Dxyn: draw n-byte sprite at (Vx, Vy), VF = collision
	SkipKey     // Ex9E: skip next instruction if key Vx pressed
	SkipNoKey   // ExA1: skip next instruction if key Vx not pressed
	LoadDelay   // Fx07: Vx = delay timer
	WaitKey     // Fx0A: block until a key press, Vx = key
	SetDelay    // Fx15: delay timer = Vx
	SetSound    // Fx18: sound timer = Vx
	AddIndex    // Fx1E: I += Vx
	LoadFont    // Fx29: I = font glyph address of digit Vx
	StoreBCD    // Fx33: memory[I..I+2] = BCD of Vx
	StoreRegs   // Fx55: memory[I..I+x] = V0..Vx, I unchanged
	LoadRegs    // Fx65: V0..Vx = memory[I..I+x], I unchanged
)

// Instruction is the decoded, structured representation of an opcode. Only
// the fields the kind uses are populated; the raw opcode is retained for
// Unknown words only, so equality of two Instruction values is plain ==.
type Instruction struct {
	Kind Kind

	X   uint8  // first register selector
	Y   uint8  // second register selector
	N   uint8  // 4-bit immediate
	NN  uint8  // 8-bit immediate
	NNN uint16 // 12-bit address

	// Opcode is the raw word for Unknown instructions.
	Opcode uint16
}

// Encode returns the 16-bit opcode word for the instruction. It is the
// inverse of Decode for every known kind; Unknown encodes its raw word.
func (in Instruction) Encode() uint16 {
	x := uint16(in.X&0xF) << 8
	y := uint16(in.Y&0xF) << 4
	n := uint16(in.N & 0xF)
	nn := uint16(in.NN)
	nnn := in.NNN & 0x0FFF

	switch in.Kind {
	case ClearScreen:
		return 0x00E0
	case Return:
		return 0x00EE
	case Jump:
		return 0x1000 | nnn
	case Call:
		return 0x2000 | nnn
	case SkipEqByte:
		return 0x3000 | x | nn
	case SkipNeByte:
		return 0x4000 | x | nn
	case SkipEqReg:
		return 0x5000 | x | y
	case LoadByte:
		return 0x6000 | x | nn
	case AddByte:
		return 0x7000 | x | nn
	case LoadReg:
		return 0x8000 | x | y
	case Or:
		return 0x8001 | x | y
	case And:
		return 0x8002 | x | y
	case Xor:
		return 0x8003 | x | y
	case AddReg:
		return 0x8004 | x | y
	case SubReg:
		return 0x8005 | x | y
	case ShiftRight:
		return 0x8006 | x | y
	case SubNeg:
		return 0x8007 | x | y
	case ShiftLeft:
		return 0x800E | x | y
	case SkipNeReg:
		return 0x9000 | x | y
	case LoadIndex:
		return 0xA000 | nnn
	case JumpV0:
		return 0xB000 | nnn
	case Random:
		return 0xC000 | x | nn
	case Draw:
		return 0xD000 | x | y | n
	case SkipKey:
		return 0xE09E | x
	case SkipNoKey:
		return 0xE0A1 | x
	case LoadDelay:
		return 0xF007 | x
	case WaitKey:
		return 0xF00A | x
	case SetDelay:
		return 0xF015 | x
	case SetSound:
		return 0xF018 | x
	case AddIndex:
		return 0xF01E | x
	case LoadFont:
		return 0xF029 | x
	case StoreBCD:
		return 0xF033 | x
	case StoreRegs:
		return 0xF055 | x
	case LoadRegs:
		return 0xF065 | x
	default:
		return in.Opcode
	}
}

// String returns a short mnemonic form for logging and debugging.
func (in Instruction) String() string {
	if in.Kind == Unknown {
		return fmt.Sprintf("unknown %04X", in.Opcode)
	}
	return fmt.Sprintf("%04X", in.Encode())
}
