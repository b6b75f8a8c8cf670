package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDisplayFlip(t *testing.T) {
	var d Display
	assert.True(t, d.Cleared())

	erased := d.flip(3, 7)
	assert.False(t, erased)
	assert.True(t, d.Pixel(3, 7))
	assert.False(t, d.Cleared())

	erased = d.flip(3, 7)
	assert.True(t, erased)
	assert.False(t, d.Pixel(3, 7))
	assert.True(t, d.Cleared())
}

func TestDisplayWrapAround(t *testing.T) {
	var d Display

	d.flip(DisplayWidth, 0)
	assert.True(t, d.Pixel(0, 0))

	d.flip(0, DisplayHeight+2)
	assert.True(t, d.Pixel(0, 2))

	d.flip(DisplayWidth+63, DisplayHeight+31)
	assert.True(t, d.Pixel(63, 31))
}

func TestDisplayGrid(t *testing.T) {
	var d Display
	d.flip(0, 0)
	d.flip(63, 31)

	grid := d.Grid()
	assert.True(t, grid[0][0])
	assert.True(t, grid[31][63])
	assert.False(t, grid[0][1])

	// The grid is a copy, not a view.
	grid[0][1] = true
	assert.False(t, d.Pixel(1, 0))
}

func TestKeypad(t *testing.T) {
	var k Keypad

	_, any := k.firstPressed()
	assert.False(t, any)

	k.Set(0xA, true)
	k.Set(0x3, true)
	assert.True(t, k.Pressed(0xA))
	assert.True(t, k.Pressed(0x3))
	assert.False(t, k.Pressed(0x0))

	// The lowest pressed index wins, keeping key-wait deterministic.
	key, any := k.firstPressed()
	assert.True(t, any)
	assert.Equal(t, uint8(0x3), key)

	k.Set(0x3, false)
	key, any = k.firstPressed()
	assert.True(t, any)
	assert.Equal(t, uint8(0xA), key)

	// Out-of-range indexes are ignored.
	k.Set(16, true)
	assert.Equal(t, uint16(1<<0xA), k.Bits())
	assert.False(t, k.Pressed(16))
}
