// Package chip8 implements a deterministic CHIP-8 interpreter core for use
// inside a blockchain runtime.
//
// Every node validating a chain must reproduce execution bit for bit, so the
// interpreter differs from a desktop emulator in three ways:
//
//   - Time is purely logical. Delay and sound timers tick only when the host
//     calls TickTimers or through the documented CyclesPerTick ratio of
//     RunCycles; no wall clock is ever consulted.
//   - Randomness comes from a fully specified SplitMix64 generator seeded by
//     the host (typically from block data). The generator state is part of
//     the machine snapshot.
//   - Every fault is a structured value that halts the machine. Unknown
//     opcodes, out-of-range memory accesses and stack misuse never panic and
//     are never silently ignored, since divergent fault handling between
//     nodes is a protocol break.
//
// # Machine model
//
// A Machine owns 4KB of memory (programs load at 0x200, the font occupies
// the low interpreter region), sixteen 8-bit V registers, the 16-bit index
// register I, a 16-deep return stack, two 8-bit timers, a 64x32 monochrome
// display buffer and a 16-key keypad. The host drives it through LoadProgram,
// Step or RunCycles, SetKey and TickTimers, and persists it between blocks
// with Snapshot and Restore.
//
// # Flag conventions
//
// Historical CHIP-8 interpreters disagree on several behaviors. The choices
// below are part of the interoperability contract of this package and must
// not change without a protocol upgrade:
//
//   - SUB sets VF to 1 when Vx >= Vy (no borrow), SUBN when Vy >= Vx.
//   - SHR and SHL shift Vx in place; VF receives the shifted-out bit.
//   - Fx55 and Fx65 leave the index register unchanged.
//   - Bnnn jumps to nnn plus V0.
//   - DRW wraps sprite pixels on both axes.
package chip8
