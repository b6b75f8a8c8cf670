package chip8

import (
	"encoding/binary"
	"fmt"
)

// Snapshot binary layout constants. The layout is versioned and fixed:
// hosts persist the encoded form between blocks, so any change is a
// protocol upgrade.
const (
	snapshotMagic   = "SC8S"
	snapshotVersion = 1

	// SnapshotSize is the exact encoded size of a snapshot in bytes.
	SnapshotSize = 4 + 1 + // magic, version
		2 + 2 + // PC, I
		RegisterCount + // V
		1 + 2*StackDepth + // SP, stack
		1 + 1 + // delay, sound
		2 + // keys
		1 + 1 + // state, wait register
		1 + 2 + 2 + 2 + // fault kind, opcode, address, PC
		8 + 8 + // cycles, random state
		MemorySize + DisplayBytes
)

// Snapshot is the complete, losslessly reconstructible state of a machine.
// Encoding a snapshot, restoring it and encoding again yields byte-identical
// output. All multi-byte fields encode big-endian.
type Snapshot struct {
	PC    uint16
	I     uint16
	V     [RegisterCount]uint8
	SP    uint8
	Stack [StackDepth]uint16
	Delay uint8
	Sound uint8
	Keys  uint16

	State        State
	WaitRegister uint8

	FaultKind    FaultKind
	FaultOpcode  uint16
	FaultAddress uint16
	FaultPC      uint16

	Cycles      uint64
	RandomState uint64

	Memory  [MemorySize]byte
	Display [DisplayBytes]byte
}

// Snapshot extracts the full machine state for persistence between blocks.
func (m *Machine) Snapshot() *Snapshot {
	s := &Snapshot{
		PC:           m.reg.PC,
		I:            m.reg.I,
		V:            m.reg.V,
		SP:           m.reg.SP,
		Stack:        m.reg.Stack,
		Delay:        m.reg.Delay,
		Sound:        m.reg.Sound,
		Keys:         m.keypad.Bits(),
		State:        m.state,
		WaitRegister: m.waitReg,
		Cycles:       m.cycles,
		RandomState:  m.rng.state,
		Memory:       m.mem.bytes,
		Display:      m.display.bits,
	}
	if m.fault != nil {
		s.FaultKind = m.fault.Kind
		s.FaultOpcode = m.fault.Opcode
		s.FaultAddress = m.fault.Address
		s.FaultPC = m.fault.PC
	}
	return s
}

// Restore reconstructs a machine from a snapshot. Seed and logger come from
// the options; the random generator continues from the snapshot state. The
// snapshot is validated so a corrupted store cannot produce a machine that
// violates the component invariants.
func Restore(s *Snapshot, opts Options) (*Machine, error) {
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("validating snapshot: %w", err)
	}

	m := New(opts)
	m.reg.PC = s.PC
	m.reg.I = s.I
	m.reg.V = s.V
	m.reg.SP = s.SP
	m.reg.Stack = s.Stack
	m.reg.Delay = s.Delay
	m.reg.Sound = s.Sound
	m.keypad = Keypad{bits: s.Keys}
	m.state = s.State
	m.waitReg = s.WaitRegister
	m.cycles = s.Cycles
	m.rng = randomSource{state: s.RandomState}
	m.mem.bytes = s.Memory
	m.display.bits = s.Display

	if s.State == StateHalted {
		m.fault = &Fault{
			Kind:    s.FaultKind,
			Opcode:  s.FaultOpcode,
			Address: s.FaultAddress,
			PC:      s.FaultPC,
		}
	}
	return m, nil
}

func (s *Snapshot) validate() error {
	if s.SP > StackDepth {
		return fmt.Errorf("stack pointer %d exceeds depth %d", s.SP, StackDepth)
	}
	if s.State > StateHalted {
		return fmt.Errorf("invalid state %d", uint8(s.State))
	}
	if s.WaitRegister != noWaitRegister && s.WaitRegister >= RegisterCount {
		return fmt.Errorf("invalid wait register %d", s.WaitRegister)
	}
	if s.State == StateWaitingForKey && s.WaitRegister == noWaitRegister {
		return fmt.Errorf("waiting state without wait register")
	}
	if s.State == StateHalted {
		if s.FaultKind < FaultUnknownOpcode || s.FaultKind > FaultStopped {
			return fmt.Errorf("halted state with invalid fault kind %d", uint8(s.FaultKind))
		}
	} else if s.FaultKind != 0 {
		return fmt.Errorf("fault kind %d without halted state", uint8(s.FaultKind))
	}
	return nil
}

// MarshalBinary encodes the snapshot into its fixed big-endian layout.
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SnapshotSize)
	off := 0

	off += copy(buf, snapshotMagic)
	buf[off] = snapshotVersion
	off++

	putUint16 := func(v uint16) {
		binary.BigEndian.PutUint16(buf[off:], v)
		off += 2
	}
	putByte := func(v byte) {
		buf[off] = v
		off++
	}

	putUint16(s.PC)
	putUint16(s.I)
	off += copy(buf[off:], s.V[:])
	putByte(s.SP)
	for _, addr := range s.Stack {
		putUint16(addr)
	}
	putByte(s.Delay)
	putByte(s.Sound)
	putUint16(s.Keys)
	putByte(byte(s.State))
	putByte(s.WaitRegister)
	putByte(byte(s.FaultKind))
	putUint16(s.FaultOpcode)
	putUint16(s.FaultAddress)
	putUint16(s.FaultPC)
	binary.BigEndian.PutUint64(buf[off:], s.Cycles)
	off += 8
	binary.BigEndian.PutUint64(buf[off:], s.RandomState)
	off += 8
	off += copy(buf[off:], s.Memory[:])
	copy(buf[off:], s.Display[:])

	return buf, nil
}

// UnmarshalBinary decodes a snapshot from its fixed layout, rejecting
// truncated buffers, bad magic and unsupported versions.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	if len(data) != SnapshotSize {
		return fmt.Errorf("snapshot size %d, expected %d", len(data), SnapshotSize)
	}
	if string(data[:4]) != snapshotMagic {
		return fmt.Errorf("invalid snapshot magic %q", data[:4])
	}
	if data[4] != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", data[4])
	}
	off := 5

	getUint16 := func() uint16 {
		v := binary.BigEndian.Uint16(data[off:])
		off += 2
		return v
	}
	getByte := func() byte {
		v := data[off]
		off++
		return v
	}

	s.PC = getUint16()
	s.I = getUint16()
	off += copy(s.V[:], data[off:])
	s.SP = getByte()
	for i := range s.Stack {
		s.Stack[i] = getUint16()
	}
	s.Delay = getByte()
	s.Sound = getByte()
	s.Keys = getUint16()
	s.State = State(getByte())
	s.WaitRegister = getByte()
	s.FaultKind = FaultKind(getByte())
	s.FaultOpcode = getUint16()
	s.FaultAddress = getUint16()
	s.FaultPC = getUint16()
	s.Cycles = binary.BigEndian.Uint64(data[off:])
	off += 8
	s.RandomState = binary.BigEndian.Uint64(data[off:])
	off += 8
	off += copy(s.Memory[:], data[off:off+MemorySize])
	copy(s.Display[:], data[off:])

	return s.validate()
}
