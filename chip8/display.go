package chip8

// Display dimensions.
const (
	// DisplayWidth is the horizontal pixel count.
	DisplayWidth = 64

	// DisplayHeight is the vertical pixel count.
	DisplayHeight = 32

	// DisplayBytes is the size of the packed pixel buffer.
	DisplayBytes = DisplayWidth * DisplayHeight / 8
)

// Display is the 64x32 monochrome pixel buffer, packed as one bit per pixel,
// row by row, most significant bit first. The packed form is also the
// snapshot encoding of the buffer. Only the draw instruction mutates it;
// external callers get read-only views.
type Display struct {
	bits [DisplayBytes]byte
}

// Pixel reports whether the pixel at the given coordinates is lit.
// Coordinates wrap around the screen edges.
func (d *Display) Pixel(x, y int) bool {
	idx := bitIndex(x, y)
	return d.bits[idx/8]&(0x80>>(idx%8)) != 0
}

// flip XORs the pixel at the given coordinates and reports whether a lit
// pixel was erased (collision).
func (d *Display) flip(x, y int) bool {
	idx := bitIndex(x, y)
	mask := byte(0x80 >> (idx % 8))
	erased := d.bits[idx/8]&mask != 0
	d.bits[idx/8] ^= mask
	return erased
}

// Grid returns a read-only snapshot of the pixel buffer as a boolean grid,
// indexed [y][x].
func (d *Display) Grid() [DisplayHeight][DisplayWidth]bool {
	var grid [DisplayHeight][DisplayWidth]bool
	for y := range DisplayHeight {
		for x := range DisplayWidth {
			grid[y][x] = d.Pixel(x, y)
		}
	}
	return grid
}

// Cleared reports whether no pixel is lit.
func (d *Display) Cleared() bool {
	for _, b := range d.bits {
		if b != 0 {
			return false
		}
	}
	return true
}

// clear switches every pixel off.
func (d *Display) clear() {
	d.bits = [DisplayBytes]byte{}
}

func bitIndex(x, y int) int {
	x = ((x % DisplayWidth) + DisplayWidth) % DisplayWidth
	y = ((y % DisplayHeight) + DisplayHeight) % DisplayHeight
	return y*DisplayWidth + x
}
