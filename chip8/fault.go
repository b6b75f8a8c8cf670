package chip8

import (
	"errors"
	"fmt"
)

// Program load errors. Loading never mutates the machine when it fails.
var (
	// ErrProgramEmpty is returned when an empty program is loaded.
	ErrProgramEmpty = errors.New("program is empty")

	// ErrProgramTooLarge is returned when a program does not fit into the
	// memory region starting at ProgramStart.
	ErrProgramTooLarge = errors.New("program exceeds available memory")
)

// FaultKind classifies the condition that halted a machine.
type FaultKind uint8

// Fault kinds. Values are part of the snapshot encoding and must not be
// reordered.
const (
	// FaultUnknownOpcode indicates a fetched word that matches no known
	// instruction pattern. Treated as a fault rather than a no-op so that
	// every node handles unrecognized opcodes identically.
	FaultUnknownOpcode FaultKind = iota + 1

	// FaultMemory indicates an out-of-range address or a program write into
	// the protected interpreter region below ProgramStart.
	FaultMemory

	// FaultStackOverflow indicates a call at full stack depth.
	FaultStackOverflow

	// FaultStackUnderflow indicates a return with an empty stack.
	FaultStackUnderflow

	// FaultStopped indicates an explicit external stop.
	FaultStopped
)

// String returns a human-readable name of the fault kind.
func (k FaultKind) String() string {
	switch k {
	case FaultUnknownOpcode:
		return "unknown opcode"
	case FaultMemory:
		return "memory access out of range"
	case FaultStackOverflow:
		return "stack overflow"
	case FaultStackUnderflow:
		return "stack underflow"
	case FaultStopped:
		return "stopped"
	default:
		return fmt.Sprintf("invalid fault kind %d", uint8(k))
	}
}

// Fault describes the condition that transitioned a machine to StateHalted.
// A fault is terminal for the machine; only a reload or restore produces
// forward progress. It is reported to the caller as a value, never as a
// panic.
type Fault struct {
	Kind FaultKind

	// Opcode is the raw instruction word, set for unknown opcode faults.
	Opcode uint16

	// Address is the offending memory address for memory faults.
	Address uint16

	// PC is the program counter at the start of the faulting step.
	PC uint16
}

// Error implements the error interface.
func (f *Fault) Error() string {
	switch f.Kind {
	case FaultUnknownOpcode:
		return fmt.Sprintf("%s %04X at PC %04X", f.Kind, f.Opcode, f.PC)
	case FaultMemory:
		return fmt.Sprintf("%s: address %04X at PC %04X", f.Kind, f.Address, f.PC)
	default:
		return fmt.Sprintf("%s at PC %04X", f.Kind, f.PC)
	}
}
