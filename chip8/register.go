package chip8

// Register file constants.
const (
	// RegisterCount is the number of general-purpose V registers.
	RegisterCount = 16

	// FlagRegister is the index of VF, which doubles as the
	// carry/borrow/collision flag.
	FlagRegister = 0xF

	// StackDepth is the maximum number of return addresses. Exceeding it is
	// a fault, never a silent wraparound.
	StackDepth = 16
)

// Registers holds the general-purpose registers, the index register, the
// program counter, the return stack and both timers of a machine.
type Registers struct {
	V     [RegisterCount]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack [StackDepth]uint16

	Delay uint8
	Sound uint8
}

// Push stores a return address on the stack. A push at full depth faults.
func (r *Registers) Push(addr uint16) *Fault {
	if r.SP >= StackDepth {
		return &Fault{Kind: FaultStackOverflow}
	}
	r.Stack[r.SP] = addr
	r.SP++
	return nil
}

// Pop removes and returns the most recent return address. A pop on an empty
// stack faults.
func (r *Registers) Pop() (uint16, *Fault) {
	if r.SP == 0 {
		return 0, &Fault{Kind: FaultStackUnderflow}
	}
	r.SP--
	return r.Stack[r.SP], nil
}

// TickTimers decrements the delay and sound timers by one, floored at zero.
// Called once per logical tick of the externally supplied clock, not once
// per instruction.
func (r *Registers) TickTimers() {
	if r.Delay > 0 {
		r.Delay--
	}
	if r.Sound > 0 {
		r.Sound--
	}
}

// reset zeroes all registers and points the program counter at the
// canonical program load address.
func (r *Registers) reset() {
	*r = Registers{PC: ProgramStart}
}
