package util

import "fmt"

// Cell is a single grid coordinate.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// AliveCells collects the coordinates of every live cell in the world.
func AliveCells(world [][]uint8) []Cell {
	var cells []Cell
	for y := range world {
		for x := range world[y] {
			if world[y][x] == 255 {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

// CountAlive counts the live cells in the world.
func CountAlive(world [][]uint8) int {
	count := 0
	for y := range world {
		for x := range world[y] {
			if world[y][x] == 255 {
				count++
			}
		}
	}
	return count
}

// FormatWorld renders the world as lines of 0s and 1s, for test failure output.
func FormatWorld(world [][]uint8) string {
	var s string
	for _, line := range world {
		for _, cell := range line {
			if cell == 255 {
				s += "1"
			} else {
				s += "0"
			}
		}
		s += "\n"
	}
	return s
}
