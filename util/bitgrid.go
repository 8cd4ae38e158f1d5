package util

// PackedGrid is a world compressed to one bit per cell for the wire.
// Each row is packed MSB-first into uint16 words; the final word of a row is
// zero-padded when Width is not a multiple of 16.
type PackedGrid struct {
	Rows  [][]uint16
	Width int
}

// Pack compresses a 0/255 world into a PackedGrid.
func Pack(world [][]uint8) PackedGrid {
	if len(world) == 0 {
		return PackedGrid{}
	}
	width := len(world[0])
	rows := make([][]uint16, len(world))
	for y, line := range world {
		words := make([]uint16, (width+15)/16)
		for x, cell := range line {
			if cell == 255 {
				words[x/16] |= 1 << uint(15-x%16)
			}
		}
		rows[y] = words
	}
	return PackedGrid{Rows: rows, Width: width}
}

// Unpack expands a PackedGrid back into a 0/255 world.
func (g PackedGrid) Unpack() [][]uint8 {
	world := make([][]uint8, len(g.Rows))
	for y, words := range g.Rows {
		line := make([]uint8, g.Width)
		for x := 0; x < g.Width; x++ {
			if (words[x/16]>>uint(15-x%16))&1 == 1 {
				line[x] = 255
			}
		}
		world[y] = line
	}
	return world
}
