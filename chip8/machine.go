package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// State describes the execution state of a machine.
type State uint8

// Machine states. Halted is terminal; only a reload or restore produces
// forward progress.
const (
	StateReady State = iota
	StateRunning
	StateWaitingForKey
	StateHalted
)

// String returns a human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateWaitingForKey:
		return "waiting for key"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("invalid state %d", uint8(s))
	}
}

// DefaultCyclesPerTick is the default ratio of executed instructions per
// timer tick used by RunCycles. The ratio is a protocol constant of the
// hosting chain: timers advance on this logical schedule only, never on
// real elapsed time.
const DefaultCyclesPerTick = 8

// noWaitRegister marks that no key-wait is pending.
const noWaitRegister = 0xFF

// Options configures a new machine.
type Options struct {
	// Seed initializes the deterministic random generator. The host derives
	// it from block data; two machines with equal seeds produce equal
	// random sequences.
	Seed uint64

	// CyclesPerTick is the number of executed instructions per timer tick
	// applied by RunCycles. Zero selects DefaultCyclesPerTick.
	CyclesPerTick uint32

	// Logger receives debug output. Nil disables logging; the consensus
	// path never requires it.
	Logger *log.Logger
}

// Machine is one complete CHIP-8 interpreter instance: memory, registers,
// display, keypad, timers and random state. It is an explicit, ownable
// value with no global state, so independent chains can run independent
// machines. A machine is not safe for concurrent use; the caller serializes
// access, matching the per-block single-writer discipline of the host.
type Machine struct {
	mem     Memory
	reg     Registers
	display Display
	keypad  Keypad
	rng     randomSource

	state   State
	waitReg uint8
	fault   *Fault
	cycles  uint64

	seed          uint64
	cyclesPerTick uint32
	logger        *log.Logger
}

// New allocates a machine with zeroed registers, cleared display and the
// font seeded into low memory.
func New(opts Options) *Machine {
	cyclesPerTick := opts.CyclesPerTick
	if cyclesPerTick == 0 {
		cyclesPerTick = DefaultCyclesPerTick
	}

	m := &Machine{
		seed:          opts.Seed,
		cyclesPerTick: cyclesPerTick,
		logger:        opts.Logger,
	}
	m.Reset()
	return m
}

// LoadProgram resets the machine and copies the program verbatim into
// memory at ProgramStart. On failure the machine is left unchanged.
func (m *Machine) LoadProgram(program []byte) error {
	if len(program) == 0 {
		return ErrProgramEmpty
	}
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d",
			ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	m.Reset()
	m.mem.load(program, ProgramStart)

	if m.logger != nil {
		m.logger.Debug("Program loaded",
			log.Int("bytes", len(program)),
			log.Uint64("seed", m.seed),
		)
	}
	return nil
}

// Reset returns the machine to its initial state: registers zeroed,
// PC at ProgramStart, display cleared, keypad released, memory zeroed with
// the font reseeded, and the random generator back at its seed.
func (m *Machine) Reset() {
	m.mem.reset()
	m.reg.reset()
	m.display.clear()
	m.keypad = Keypad{}
	m.rng = randomSource{state: m.seed}
	m.state = StateReady
	m.waitReg = noWaitRegister
	m.fault = nil
	m.cycles = 0
}

// Stop halts the machine with a Stopped fault. Stopping an already halted
// machine keeps the original fault.
func (m *Machine) Stop() {
	if m.state == StateHalted {
		return
	}
	m.fault = &Fault{Kind: FaultStopped, PC: m.reg.PC}
	m.state = StateHalted
}

// SetKey records the pressed state of a keypad key. Invoked by the external
// input collaborator on its own schedule; a pending key-wait resumes on the
// next step.
func (m *Machine) SetKey(index uint8, pressed bool) {
	m.keypad.Set(index, pressed)
}

// TickTimers advances the delay and sound timers by one logical tick.
// Invoked by the external collaborator; RunCycles calls it through the
// CyclesPerTick ratio.
func (m *Machine) TickTimers() {
	m.reg.TickTimers()
}

// State returns the current execution state.
func (m *Machine) State() State {
	return m.state
}

// Fault returns the fault that halted the machine, or nil.
func (m *Machine) Fault() *Fault {
	return m.fault
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.reg.PC
}

// V returns the value of general-purpose register index&0xF.
func (m *Machine) V(index uint8) uint8 {
	return m.reg.V[index&0xF]
}

// Index returns the index register I.
func (m *Machine) Index() uint16 {
	return m.reg.I
}

// DelayTimer returns the delay timer value.
func (m *Machine) DelayTimer() uint8 {
	return m.reg.Delay
}

// SoundTimer returns the sound timer value. A non-zero value means the
// external audio collaborator should emit sound; no audio is produced here.
func (m *Machine) SoundTimer() uint8 {
	return m.reg.Sound
}

// SetDelayTimer sets the delay timer. Host-side introspection hook.
func (m *Machine) SetDelayTimer(value uint8) {
	m.reg.Delay = value
}

// SetSoundTimer sets the sound timer. Host-side introspection hook.
func (m *Machine) SetSoundTimer(value uint8) {
	m.reg.Sound = value
}

// Cycles returns the number of logical steps consumed since the last reset.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// CyclesPerTick returns the configured instructions-per-timer-tick ratio.
func (m *Machine) CyclesPerTick() uint32 {
	return m.cyclesPerTick
}

// Keys returns the raw keypad bitfield, bit n for key n.
func (m *Machine) Keys() uint16 {
	return m.keypad.Bits()
}

// Pixel reports whether the display pixel at (x, y) is lit.
func (m *Machine) Pixel(x, y int) bool {
	return m.display.Pixel(x, y)
}

// Display returns a read-only snapshot of the pixel buffer, indexed [y][x].
func (m *Machine) Display() [DisplayHeight][DisplayWidth]bool {
	return m.display.Grid()
}

// DisplayCleared reports whether no display pixel is lit.
func (m *Machine) DisplayCleared() bool {
	return m.display.Cleared()
}

// ReadMemory returns the memory byte at the given address. Host-side
// introspection hook; out-of-range addresses fault.
func (m *Machine) ReadMemory(addr uint16) (byte, error) {
	b, fault := m.mem.ReadByte(addr)
	if fault != nil {
		return 0, fault
	}
	return b, nil
}
