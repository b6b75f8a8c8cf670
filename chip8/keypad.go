package chip8

// KeyCount is the number of keypad keys (0x0-0xF).
const KeyCount = 16

// Keypad tracks the 16 key states as a bitfield, bit n for key n. It is
// written by the external input collaborator and read only by the key
// instructions of the execution engine.
type Keypad struct {
	bits uint16
}

// Set records the pressed state of a key. Indexes above 0xF are ignored.
func (k *Keypad) Set(index uint8, pressed bool) {
	if index >= KeyCount {
		return
	}
	if pressed {
		k.bits |= 1 << index
	} else {
		k.bits &^= 1 << index
	}
}

// Pressed reports whether the given key is currently pressed.
func (k *Keypad) Pressed(index uint8) bool {
	return index < KeyCount && k.bits&(1<<index) != 0
}

// firstPressed returns the lowest-index pressed key. The fixed scan order
// keeps key-wait resolution deterministic across nodes when multiple keys
// are down.
func (k *Keypad) firstPressed() (uint8, bool) {
	for i := uint8(0); i < KeyCount; i++ {
		if k.bits&(1<<i) != 0 {
			return i, true
		}
	}
	return 0, false
}

// Bits returns the raw key bitfield.
func (k *Keypad) Bits() uint16 {
	return k.bits
}
