package chip8

import (
	"github.com/retroenv/retrogolib/log"
)

// StepResult is the outcome of one logical step.
type StepResult struct {
	// State is the machine state after the step.
	State State

	// Fault is set when the step halted the machine.
	Fault *Fault

	// DisplayUpdated reports whether the step mutated the display.
	DisplayUpdated bool
}

// RunResult is the outcome of a caller-bounded batch of steps.
type RunResult struct {
	// Steps is the number of logical steps consumed. The caller bounds
	// total work through the requested cycle count; there is no timeout.
	Steps int

	// State is the machine state after the batch.
	State State

	// Fault is set when the machine is halted.
	Fault *Fault

	// DisplayUpdated reports whether any step of the batch mutated the
	// display.
	DisplayUpdated bool
}

// Step executes one logical step: fetch the word at PC, decode it, apply it
// to the machine state and advance PC by 2 unless the instruction set it.
// A step on a halted machine performs no work and reports the recorded
// fault. A step in the key-wait state checks the keypad and either resumes
// or stays suspended; the engine never busy-spins internally.
func (m *Machine) Step() StepResult {
	switch m.state {
	case StateHalted:
		return StepResult{State: StateHalted, Fault: m.fault}

	case StateReady:
		m.state = StateRunning

	case StateWaitingForKey:
		m.cycles++
		if key, ok := m.keypad.firstPressed(); ok {
			m.reg.V[m.waitReg&0xF] = key
			m.waitReg = noWaitRegister
			m.state = StateRunning
			return StepResult{State: StateRunning}
		}
		return StepResult{State: StateWaitingForKey}
	}

	m.cycles++
	pc := m.reg.PC

	opcode, fault := m.mem.ReadWord(pc)
	if fault != nil {
		return m.halt(fault, pc)
	}

	in := Decode(opcode)
	if in.Kind == Unknown {
		// Fault before any state mutation so the halted snapshot differs
		// from the previous step only in state and fault.
		return m.halt(&Fault{Kind: FaultUnknownOpcode, Opcode: opcode}, pc)
	}

	m.reg.PC += 2

	updated, fault := m.execute(in)
	if fault != nil {
		return m.halt(fault, pc)
	}
	return StepResult{State: m.state, DisplayUpdated: updated}
}

// RunCycles executes up to n logical steps, ticking the timers once per
// CyclesPerTick steps. It stops early when the machine halts; key-wait
// steps count against the bound, so a caller never spins unbounded.
func (m *Machine) RunCycles(n int) RunResult {
	var res RunResult
	for range n {
		if m.state == StateHalted {
			break
		}
		step := m.Step()
		res.Steps++
		res.DisplayUpdated = res.DisplayUpdated || step.DisplayUpdated

		if m.cycles%uint64(m.cyclesPerTick) == 0 {
			m.reg.TickTimers()
		}
		if step.State == StateHalted {
			break
		}
	}
	res.State = m.state
	res.Fault = m.fault
	return res
}

// halt transitions the machine to the terminal halted state, recording the
// program counter at the start of the faulting step.
func (m *Machine) halt(f *Fault, pc uint16) StepResult {
	f.PC = pc
	m.fault = f
	m.state = StateHalted

	if m.logger != nil {
		m.logger.Debug("Machine halted",
			log.String("fault", f.Kind.String()),
			log.Uint16("pc", pc),
		)
	}
	return StepResult{State: StateHalted, Fault: f}
}

// execute applies one decoded instruction. It reports whether the display
// changed and returns a fault for memory or stack violations. The switch is
// exhaustive over the closed instruction set; Unknown is handled by the
// caller before PC advances.
func (m *Machine) execute(in Instruction) (bool, *Fault) {
	reg := &m.reg

	switch in.Kind {
	case ClearScreen:
		m.display.clear()
		return true, nil

	case Return:
		addr, fault := reg.Pop()
		if fault != nil {
			return false, fault
		}
		reg.PC = addr

	case Jump:
		reg.PC = in.NNN

	case Call:
		if fault := reg.Push(reg.PC); fault != nil {
			return false, fault
		}
		reg.PC = in.NNN

	case SkipEqByte:
		if reg.V[in.X] == in.NN {
			reg.PC += 2
		}

	case SkipNeByte:
		if reg.V[in.X] != in.NN {
			reg.PC += 2
		}

	case SkipEqReg:
		if reg.V[in.X] == reg.V[in.Y] {
			reg.PC += 2
		}

	case LoadByte:
		reg.V[in.X] = in.NN

	case AddByte:
		// No carry flag, by the original instruction set.
		reg.V[in.X] += in.NN

	case LoadReg:
		reg.V[in.X] = reg.V[in.Y]

	case Or:
		reg.V[in.X] |= reg.V[in.Y]

	case And:
		reg.V[in.X] &= reg.V[in.Y]

	case Xor:
		reg.V[in.X] ^= reg.V[in.Y]

	case AddReg:
		sum := uint16(reg.V[in.X]) + uint16(reg.V[in.Y])
		reg.V[in.X] = uint8(sum)
		reg.V[FlagRegister] = uint8(sum >> 8)

	case SubReg:
		// VF = 1 iff Vx >= Vy (no borrow). Flag written after the result
		// so VF as operand behaves deterministically.
		x, y := reg.V[in.X], reg.V[in.Y]
		reg.V[in.X] = x - y
		if x >= y {
			reg.V[FlagRegister] = 1
		} else {
			reg.V[FlagRegister] = 0
		}

	case ShiftRight:
		// Shifts Vx in place (CHIP-48 convention); VF = shifted-out bit.
		x := reg.V[in.X]
		reg.V[in.X] = x >> 1
		reg.V[FlagRegister] = x & 0x1

	case SubNeg:
		x, y := reg.V[in.X], reg.V[in.Y]
		reg.V[in.X] = y - x
		if y >= x {
			reg.V[FlagRegister] = 1
		} else {
			reg.V[FlagRegister] = 0
		}

	case ShiftLeft:
		x := reg.V[in.X]
		reg.V[in.X] = x << 1
		reg.V[FlagRegister] = x >> 7

	case SkipNeReg:
		if reg.V[in.X] != reg.V[in.Y] {
			reg.PC += 2
		}

	case LoadIndex:
		reg.I = in.NNN

	case JumpV0:
		reg.PC = in.NNN + uint16(reg.V[0])

	case Random:
		reg.V[in.X] = m.rng.nextByte() & in.NN

	case Draw:
		return m.draw(in.X, in.Y, in.N)

	case SkipKey:
		if m.keypad.Pressed(reg.V[in.X] & 0xF) {
			reg.PC += 2
		}

	case SkipNoKey:
		if !m.keypad.Pressed(reg.V[in.X] & 0xF) {
			reg.PC += 2
		}

	case LoadDelay:
		reg.V[in.X] = reg.Delay

	case WaitKey:
		if key, ok := m.keypad.firstPressed(); ok {
			reg.V[in.X] = key
			break
		}
		// Suspend; PC already points past this instruction. The external
		// collaborator resumes execution by reporting a key press.
		m.waitReg = in.X
		m.state = StateWaitingForKey

	case SetDelay:
		reg.Delay = reg.V[in.X]

	case SetSound:
		reg.Sound = reg.V[in.X]

	case AddIndex:
		reg.I += uint16(reg.V[in.X])

	case LoadFont:
		reg.I = FontStart + uint16(reg.V[in.X]&0xF)*FontGlyphSize

	case StoreBCD:
		if fault := m.mem.checkWriteRange(reg.I, 3); fault != nil {
			return false, fault
		}
		v := reg.V[in.X]
		m.mem.bytes[reg.I] = v / 100
		m.mem.bytes[reg.I+1] = v / 10 % 10
		m.mem.bytes[reg.I+2] = v % 10

	case StoreRegs:
		count := uint16(in.X) + 1
		if fault := m.mem.checkWriteRange(reg.I, count); fault != nil {
			return false, fault
		}
		for i := uint16(0); i < count; i++ {
			m.mem.bytes[reg.I+i] = reg.V[i]
		}
		// I is left unchanged, part of the documented flag conventions.

	case LoadRegs:
		count := uint16(in.X) + 1
		if uint32(reg.I)+uint32(count)-1 > MaxAddress {
			return false, &Fault{Kind: FaultMemory, Address: reg.I + count - 1}
		}
		for i := uint16(0); i < count; i++ {
			reg.V[i] = m.mem.bytes[reg.I+i]
		}
	}

	return false, nil
}

// draw XORs an n-byte sprite addressed by I onto the display at (Vx, Vy),
// wrapping on both axes. VF is set to 1 when any lit pixel was erased.
// n = 0 draws nothing but still clears VF.
func (m *Machine) draw(x, y, n uint8) (bool, *Fault) {
	if n > 0 {
		last := uint32(m.reg.I) + uint32(n) - 1
		if last > MaxAddress {
			return false, &Fault{Kind: FaultMemory, Address: uint16(last & 0xFFFF)}
		}
	}

	originX := int(m.reg.V[x])
	originY := int(m.reg.V[y])
	collision := false

	for row := range int(n) {
		sprite := m.mem.bytes[int(m.reg.I)+row]
		for bit := range 8 {
			if sprite&(0x80>>bit) == 0 {
				continue
			}
			if m.display.flip(originX+bit, originY+row) {
				collision = true
			}
		}
	}

	if collision {
		m.reg.V[FlagRegister] = 1
	} else {
		m.reg.V[FlagRegister] = 0
	}
	return n > 0, nil
}
