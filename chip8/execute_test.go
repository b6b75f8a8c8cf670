package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// loadTestProgram returns a machine with the given instruction words loaded
// and ready to run.
func loadTestProgram(t *testing.T, words ...uint16) *Machine {
	t.Helper()

	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}

	m := New(Options{Seed: 1})
	assert.NoError(t, m.LoadProgram(program))
	return m
}

// stepContinue executes one step and expects the machine to keep running.
func stepContinue(t *testing.T, m *Machine) StepResult {
	t.Helper()

	result := m.Step()
	assert.Equal(t, StateRunning, result.State)
	assert.Nil(t, result.Fault)
	return result
}

func TestStepAddOverflow(t *testing.T) {
	m := loadTestProgram(t, 0x8014) // add V0, V1
	m.reg.V[0] = 0xFF
	m.reg.V[1] = 0x01

	stepContinue(t, m)

	assert.Equal(t, uint8(0x00), m.V(0))
	assert.Equal(t, uint8(1), m.V(0xF))
	assert.Equal(t, uint16(ProgramStart+2), m.PC())
}

func TestStepAddNoOverflow(t *testing.T) {
	m := loadTestProgram(t, 0x8014)
	m.reg.V[0] = 0x10
	m.reg.V[1] = 0x01
	m.reg.V[0xF] = 1 // must be cleared

	stepContinue(t, m)

	assert.Equal(t, uint8(0x11), m.V(0))
	assert.Equal(t, uint8(0), m.V(0xF))
}

func TestStepSubBorrow(t *testing.T) {
	m := loadTestProgram(t, 0x8015) // sub V0, V1
	m.reg.V[0] = 0x01
	m.reg.V[1] = 0x02

	stepContinue(t, m)

	// 8-bit wraparound with VF = 0 signalling a borrow.
	assert.Equal(t, uint8(0xFF), m.V(0))
	assert.Equal(t, uint8(0), m.V(0xF))
}

func TestStepSubNoBorrow(t *testing.T) {
	m := loadTestProgram(t, 0x8015)
	m.reg.V[0] = 0x05
	m.reg.V[1] = 0x05

	stepContinue(t, m)

	// Vx >= Vy sets VF to 1.
	assert.Equal(t, uint8(0x00), m.V(0))
	assert.Equal(t, uint8(1), m.V(0xF))
}

func TestStepSubNeg(t *testing.T) {
	m := loadTestProgram(t, 0x8017) // subn V0, V1
	m.reg.V[0] = 0x02
	m.reg.V[1] = 0x0A

	stepContinue(t, m)

	assert.Equal(t, uint8(0x08), m.V(0))
	assert.Equal(t, uint8(1), m.V(0xF))
}

func TestStepShifts(t *testing.T) {
	m := loadTestProgram(t, 0x8006, 0x800E) // shr V0, shl V0
	m.reg.V[0] = 0x03

	stepContinue(t, m)
	assert.Equal(t, uint8(0x01), m.V(0))
	assert.Equal(t, uint8(1), m.V(0xF)) // shifted-out low bit

	m.reg.V[0] = 0x81
	stepContinue(t, m)
	assert.Equal(t, uint8(0x02), m.V(0))
	assert.Equal(t, uint8(1), m.V(0xF)) // shifted-out high bit
}

func TestStepLogicOps(t *testing.T) {
	m := loadTestProgram(t, 0x8011, 0x8012, 0x8013) // or, and, xor
	m.reg.V[0] = 0b1010
	m.reg.V[1] = 0b0110

	stepContinue(t, m)
	assert.Equal(t, uint8(0b1110), m.V(0))

	stepContinue(t, m)
	assert.Equal(t, uint8(0b0110), m.V(0))

	stepContinue(t, m)
	assert.Equal(t, uint8(0b0000), m.V(0))
}

func TestStepSkips(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		v0, v1   uint8
		wantSkip bool
	}{
		{"se byte taken", 0x3042, 0x42, 0, true},
		{"se byte not taken", 0x3042, 0x41, 0, false},
		{"sne byte taken", 0x4042, 0x41, 0, true},
		{"sne byte not taken", 0x4042, 0x42, 0, false},
		{"se reg taken", 0x5010, 0x07, 0x07, true},
		{"se reg not taken", 0x5010, 0x07, 0x08, false},
		{"sne reg taken", 0x9010, 0x07, 0x08, true},
		{"sne reg not taken", 0x9010, 0x07, 0x07, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadTestProgram(t, tt.opcode)
			m.reg.V[0] = tt.v0
			m.reg.V[1] = tt.v1

			stepContinue(t, m)

			want := uint16(ProgramStart + 2)
			if tt.wantSkip {
				want += 2
			}
			assert.Equal(t, want, m.PC())
		})
	}
}

func TestStepJumpAndCall(t *testing.T) {
	m := loadTestProgram(t, 0x2206, 0x0000, 0x0000, 0x00EE) // call 0x206 ... ret

	stepContinue(t, m)
	assert.Equal(t, uint16(0x206), m.PC())
	assert.Equal(t, uint8(1), m.reg.SP)

	stepContinue(t, m)
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0), m.reg.SP)
}

func TestStepJumpV0(t *testing.T) {
	m := loadTestProgram(t, 0xB204) // jp V0, 0x204
	m.reg.V[0] = 0x02

	stepContinue(t, m)
	assert.Equal(t, uint16(0x206), m.PC())
}

func TestStepStackOverflow(t *testing.T) {
	// A subroutine that calls itself pushes one return address per step.
	m := loadTestProgram(t, 0x2200) // call 0x200

	for i := range StackDepth {
		result := m.Step()
		assert.Equal(t, StateRunning, result.State, "call %d", i+1)
	}

	result := m.Step()
	assert.Equal(t, StateHalted, result.State)
	assert.NotNil(t, result.Fault)
	assert.Equal(t, FaultStackOverflow, result.Fault.Kind)
	assert.Equal(t, StateHalted, m.State())
}

func TestStepStackUnderflow(t *testing.T) {
	m := loadTestProgram(t, 0x00EE) // ret on empty stack

	result := m.Step()
	assert.Equal(t, StateHalted, result.State)
	assert.NotNil(t, result.Fault)
	assert.Equal(t, FaultStackUnderflow, result.Fault.Kind)
}

func TestStepUnknownOpcodeHaltsUnchanged(t *testing.T) {
	m := loadTestProgram(t, 0x6042, 0xFFFF) // ld V0, 0x42 then unassigned
	stepContinue(t, m)
	before := m.Snapshot()

	result := m.Step()
	assert.Equal(t, StateHalted, result.State)
	assert.NotNil(t, result.Fault)
	assert.Equal(t, FaultUnknownOpcode, result.Fault.Kind)
	assert.Equal(t, uint16(0xFFFF), result.Fault.Opcode)

	// Beyond the halt itself only the step counter moved; PC, registers,
	// memory and display stay at the previous step's values.
	want := *before
	want.Cycles++
	want.State = StateHalted
	want.FaultKind = FaultUnknownOpcode
	want.FaultOpcode = 0xFFFF
	want.FaultPC = before.PC
	assert.Equal(t, want, *m.Snapshot())
}

func TestStepFetchOutOfRange(t *testing.T) {
	m := loadTestProgram(t, 0x1FFF) // jp 0xFFF, fetch needs two bytes

	stepContinue(t, m)
	result := m.Step()

	assert.Equal(t, StateHalted, result.State)
	assert.NotNil(t, result.Fault)
	assert.Equal(t, FaultMemory, result.Fault.Kind)
	assert.Equal(t, uint16(0xFFF), result.Fault.PC)
}

func TestStepHaltedMachineRefusesWork(t *testing.T) {
	m := loadTestProgram(t, 0xFFFF)

	first := m.Step()
	assert.Equal(t, StateHalted, first.State)
	cycles := m.Cycles()

	second := m.Step()
	assert.Equal(t, StateHalted, second.State)
	assert.Equal(t, first.Fault, second.Fault)
	assert.Equal(t, cycles, m.Cycles())
}

func TestStepDrawCollision(t *testing.T) {
	// Draw glyph 0 twice at the origin: the second draw erases every pixel
	// the first one set and reports the collision.
	m := loadTestProgram(t, 0xA000, 0xD015, 0xD015) // ld I, 0x000; drw x2

	stepContinue(t, m)

	first := stepContinue(t, m)
	assert.True(t, first.DisplayUpdated)
	assert.Equal(t, uint8(0), m.V(0xF))
	assert.False(t, m.DisplayCleared())
	assert.True(t, m.Pixel(0, 0)) // glyph 0 starts with 0xF0

	second := stepContinue(t, m)
	assert.True(t, second.DisplayUpdated)
	assert.Equal(t, uint8(1), m.V(0xF))
	assert.True(t, m.DisplayCleared())
}

func TestStepDrawWrapsAroundEdges(t *testing.T) {
	m := loadTestProgram(t, 0xA000, 0xD011) // one row of glyph 0 (0xF0)
	m.reg.V[0] = 62 // two pixels on screen, two wrapped
	m.reg.V[1] = 31

	stepContinue(t, m)
	stepContinue(t, m)

	assert.True(t, m.Pixel(62, 31))
	assert.True(t, m.Pixel(63, 31))
	assert.True(t, m.Pixel(0, 31))
	assert.True(t, m.Pixel(1, 31))
	assert.Equal(t, uint8(0), m.V(0xF))
}

func TestStepDrawSpriteOutOfMemory(t *testing.T) {
	m := loadTestProgram(t, 0xAFFE, 0xD015) // ld I, 0xFFE; drw 5 rows

	stepContinue(t, m)
	result := m.Step()

	assert.Equal(t, StateHalted, result.State)
	assert.NotNil(t, result.Fault)
	assert.Equal(t, FaultMemory, result.Fault.Kind)
}

func TestStepClearScreen(t *testing.T) {
	m := loadTestProgram(t, 0xA000, 0xD015, 0x00E0)

	stepContinue(t, m)
	stepContinue(t, m)
	assert.False(t, m.DisplayCleared())

	result := stepContinue(t, m)
	assert.True(t, result.DisplayUpdated)
	assert.True(t, m.DisplayCleared())
}

func TestStepWaitKey(t *testing.T) {
	m := loadTestProgram(t, 0xF30A, 0x6401) // ld V3, K; ld V4, 1

	// No key pressed: the machine suspends.
	result := m.Step()
	assert.Equal(t, StateWaitingForKey, result.State)
	assert.Nil(t, result.Fault)

	// Suspension is externally resumable; each check costs one step.
	result = m.Step()
	assert.Equal(t, StateWaitingForKey, result.State)

	m.SetKey(0xB, true)
	result = m.Step()
	assert.Equal(t, StateRunning, result.State)
	assert.Equal(t, uint8(0xB), m.V(3))

	// Execution continues past the wait instruction.
	stepContinue(t, m)
	assert.Equal(t, uint8(1), m.V(4))
}

func TestStepWaitKeyImmediate(t *testing.T) {
	m := loadTestProgram(t, 0xF30A)
	m.SetKey(0x2, true)

	result := stepContinue(t, m)
	assert.Equal(t, StateRunning, result.State)
	assert.Equal(t, uint8(0x2), m.V(3))
}

func TestStepSkipKey(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		pressed  bool
		wantSkip bool
	}{
		{"skp pressed", 0xE09E, true, true},
		{"skp released", 0xE09E, false, false},
		{"sknp pressed", 0xE0A1, true, false},
		{"sknp released", 0xE0A1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadTestProgram(t, tt.opcode)
			m.reg.V[0] = 0x5
			m.SetKey(0x5, tt.pressed)

			stepContinue(t, m)

			want := uint16(ProgramStart + 2)
			if tt.wantSkip {
				want += 2
			}
			assert.Equal(t, want, m.PC())
		})
	}
}

func TestStepTimerInstructions(t *testing.T) {
	m := loadTestProgram(t, 0x6030, 0xF015, 0xF018, 0xF107) // ld, ld DT, ld ST, ld V1 from DT

	stepContinue(t, m)
	stepContinue(t, m)
	assert.Equal(t, uint8(0x30), m.DelayTimer())

	stepContinue(t, m)
	assert.Equal(t, uint8(0x30), m.SoundTimer())

	stepContinue(t, m)
	assert.Equal(t, uint8(0x30), m.V(1))
}

func TestStepIndexInstructions(t *testing.T) {
	m := loadTestProgram(t, 0xA123, 0xF01E, 0xF229) // ld I; add I, V0; ld F, V2
	m.reg.V[0] = 0x10
	m.reg.V[2] = 0xA

	stepContinue(t, m)
	assert.Equal(t, uint16(0x123), m.Index())

	stepContinue(t, m)
	assert.Equal(t, uint16(0x133), m.Index())

	stepContinue(t, m)
	assert.Equal(t, uint16(FontStart+0xA*FontGlyphSize), m.Index())
}

func TestStepBCD(t *testing.T) {
	m := loadTestProgram(t, 0xA300, 0xF233) // ld I, 0x300; ld B, V2
	m.reg.V[2] = 254

	stepContinue(t, m)
	stepContinue(t, m)

	for i, want := range []uint8{2, 5, 4} {
		b, err := m.ReadMemory(0x300 + uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, want, b, "digit %d", i)
	}
}

func TestStepBCDProtectedRegion(t *testing.T) {
	m := loadTestProgram(t, 0xA100, 0xF233) // BCD target inside the font region

	stepContinue(t, m)
	result := m.Step()

	assert.Equal(t, StateHalted, result.State)
	assert.NotNil(t, result.Fault)
	assert.Equal(t, FaultMemory, result.Fault.Kind)
}

func TestStepStoreLoadRegisters(t *testing.T) {
	m := loadTestProgram(t, 0xA300, 0xF355, 0x6000, 0x6100, 0xF365)
	m.reg.V[0] = 0xDE
	m.reg.V[1] = 0xAD
	m.reg.V[2] = 0xBE
	m.reg.V[3] = 0xEF

	stepContinue(t, m) // ld I, 0x300
	stepContinue(t, m) // ld [I], V3

	// I stays unchanged, per the documented convention.
	assert.Equal(t, uint16(0x300), m.Index())
	for i, want := range []uint8{0xDE, 0xAD, 0xBE, 0xEF} {
		b, err := m.ReadMemory(0x300 + uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, want, b, "register %d", i)
	}

	stepContinue(t, m) // clobber V0
	stepContinue(t, m) // clobber V1
	stepContinue(t, m) // ld V3, [I]

	assert.Equal(t, uint8(0xDE), m.V(0))
	assert.Equal(t, uint8(0xAD), m.V(1))
	assert.Equal(t, uint16(0x300), m.Index())
}

func TestStepStoreRegistersProtectedRegion(t *testing.T) {
	m := loadTestProgram(t, 0xA000, 0xF055) // store into the font region

	stepContinue(t, m)
	result := m.Step()

	assert.Equal(t, StateHalted, result.State)
	assert.NotNil(t, result.Fault)
	assert.Equal(t, FaultMemory, result.Fault.Kind)

	// The font survives untouched.
	b, err := m.ReadMemory(FontStart)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0xF0), b)
}

func TestStepRandomMasksImmediate(t *testing.T) {
	m := loadTestProgram(t, 0xC00F, 0xC100) // rnd V0, 0x0F; rnd V1, 0x00

	stepContinue(t, m)
	assert.Equal(t, uint8(0), m.V(0)&0xF0)

	stepContinue(t, m)
	assert.Equal(t, uint8(0), m.V(1))
}

func TestStepRandomDeterminism(t *testing.T) {
	run := func(seed uint64) [3]uint8 {
		m := New(Options{Seed: seed})
		assert.NoError(t, m.LoadProgram([]byte{0xC0, 0xFF, 0xC1, 0xFF, 0xC2, 0xFF}))
		for range 3 {
			m.Step()
		}
		return [3]uint8{m.V(0), m.V(1), m.V(2)}
	}

	assert.Equal(t, run(42), run(42))
	assert.True(t, run(42) != run(43))
}

func TestRunCyclesTicksTimers(t *testing.T) {
	m := New(Options{Seed: 1, CyclesPerTick: 2})
	// Four no-effect register loads.
	assert.NoError(t, m.LoadProgram([]byte{0x60, 0x01, 0x60, 0x01, 0x60, 0x01, 0x60, 0x01}))
	m.SetDelayTimer(10)

	result := m.RunCycles(4)

	assert.Equal(t, 4, result.Steps)
	assert.Equal(t, StateRunning, result.State)
	assert.Equal(t, uint8(8), m.DelayTimer())
}

func TestRunCyclesStopsOnHalt(t *testing.T) {
	m := loadTestProgram(t, 0x6001, 0xFFFF)

	result := m.RunCycles(100)

	assert.Equal(t, 2, result.Steps)
	assert.Equal(t, StateHalted, result.State)
	assert.NotNil(t, result.Fault)
	assert.Equal(t, FaultUnknownOpcode, result.Fault.Kind)

	// A halted machine consumes no further cycles.
	result = m.RunCycles(10)
	assert.Equal(t, 0, result.Steps)
	assert.Equal(t, StateHalted, result.State)
}

func TestRunCyclesReportsDisplayUpdates(t *testing.T) {
	m := loadTestProgram(t, 0xA000, 0xD015, 0x6001)

	result := m.RunCycles(3)
	assert.True(t, result.DisplayUpdated)

	m2 := loadTestProgram(t, 0x6001, 0x6102)
	result = m2.RunCycles(2)
	assert.False(t, result.DisplayUpdated)
}

func TestRunCyclesTicksWhileWaiting(t *testing.T) {
	m := New(Options{Seed: 1, CyclesPerTick: 1})
	assert.NoError(t, m.LoadProgram([]byte{0xF0, 0x0A}))
	m.SetDelayTimer(5)

	result := m.RunCycles(3)

	assert.Equal(t, 3, result.Steps)
	assert.Equal(t, StateWaitingForKey, result.State)
	assert.Equal(t, uint8(2), m.DelayTimer())
}
