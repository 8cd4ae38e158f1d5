// Package patterns holds the built-in seed patterns and the random fill.
package patterns

import (
	"hash/fnv"
	"strings"

	"github.com/asynclife/conway/util"
)

type Pattern struct {
	Name  string
	Cells []util.Cell
}

// Patterns lists the built-in seeds. Coordinates assume at least a 50x50 grid;
// Apply clips anything that falls outside.
var Patterns = []Pattern{
	{
		Name:  "glider",
		Cells: []util.Cell{{X: 7, Y: 6}, {X: 8, Y: 7}, {X: 6, Y: 8}, {X: 7, Y: 8}, {X: 8, Y: 8}},
	},
	{
		Name:  "blinker",
		Cells: []util.Cell{{X: 24, Y: 25}, {X: 25, Y: 25}, {X: 26, Y: 25}},
	},
	{
		Name: "toad",
		Cells: []util.Cell{
			{X: 25, Y: 24}, {X: 26, Y: 24}, {X: 27, Y: 24},
			{X: 24, Y: 25}, {X: 25, Y: 25}, {X: 26, Y: 25},
		},
	},
	{
		Name: "beacon",
		Cells: []util.Cell{
			{X: 10, Y: 10}, {X: 11, Y: 10}, {X: 10, Y: 11}, {X: 11, Y: 11},
			{X: 12, Y: 12}, {X: 13, Y: 12}, {X: 12, Y: 13}, {X: 13, Y: 13},
		},
	},
	{
		Name: "pulsar",
		Cells: []util.Cell{
			{X: 24, Y: 20}, {X: 25, Y: 20}, {X: 26, Y: 20}, {X: 30, Y: 20}, {X: 31, Y: 20}, {X: 32, Y: 20},
			{X: 22, Y: 22}, {X: 27, Y: 22}, {X: 29, Y: 22}, {X: 34, Y: 22},
			{X: 22, Y: 23}, {X: 27, Y: 23}, {X: 29, Y: 23}, {X: 34, Y: 23},
			{X: 22, Y: 24}, {X: 27, Y: 24}, {X: 29, Y: 24}, {X: 34, Y: 24},
			{X: 24, Y: 25}, {X: 25, Y: 25}, {X: 26, Y: 25}, {X: 30, Y: 25}, {X: 31, Y: 25}, {X: 32, Y: 25},
			{X: 24, Y: 27}, {X: 25, Y: 27}, {X: 26, Y: 27}, {X: 30, Y: 27}, {X: 31, Y: 27}, {X: 32, Y: 27},
			{X: 22, Y: 28}, {X: 27, Y: 28}, {X: 29, Y: 28}, {X: 34, Y: 28},
			{X: 22, Y: 29}, {X: 27, Y: 29}, {X: 29, Y: 29}, {X: 34, Y: 29},
			{X: 22, Y: 30}, {X: 27, Y: 30}, {X: 29, Y: 30}, {X: 34, Y: 30},
			{X: 24, Y: 32}, {X: 25, Y: 32}, {X: 26, Y: 32}, {X: 30, Y: 32}, {X: 31, Y: 32}, {X: 32, Y: 32},
		},
	},
	{
		Name: "r-pentomino",
		Cells: []util.Cell{
			{X: 25, Y: 25}, {X: 26, Y: 25}, {X: 26, Y: 24}, {X: 25, Y: 26}, {X: 24, Y: 26},
		},
	},
	{
		Name: "gosper-gun",
		Cells: []util.Cell{
			{X: 1, Y: 5}, {X: 2, Y: 5}, {X: 1, Y: 6}, {X: 2, Y: 6},
			{X: 11, Y: 5}, {X: 11, Y: 6}, {X: 11, Y: 7}, {X: 12, Y: 4}, {X: 12, Y: 8},
			{X: 13, Y: 3}, {X: 13, Y: 9}, {X: 14, Y: 3}, {X: 14, Y: 9}, {X: 15, Y: 6},
			{X: 16, Y: 4}, {X: 16, Y: 8}, {X: 17, Y: 5}, {X: 17, Y: 6}, {X: 17, Y: 7},
			{X: 18, Y: 6}, {X: 21, Y: 3}, {X: 21, Y: 4}, {X: 21, Y: 5}, {X: 22, Y: 3},
			{X: 22, Y: 4}, {X: 22, Y: 5}, {X: 23, Y: 2}, {X: 23, Y: 6}, {X: 25, Y: 1},
			{X: 25, Y: 2}, {X: 25, Y: 6}, {X: 25, Y: 7},
			{X: 35, Y: 3}, {X: 35, Y: 4}, {X: 36, Y: 3}, {X: 36, Y: 4},
		},
	},
}

// Lookup finds a built-in pattern by name, case-insensitively.
func Lookup(name string) (Pattern, bool) {
	for _, p := range Patterns {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Apply clears the world and sets the pattern's cells, clipping any that fall
// outside the grid.
func Apply(world [][]uint8, p Pattern) {
	Clear(world)
	height := len(world)
	if height == 0 {
		return
	}
	width := len(world[0])
	for _, c := range p.Cells {
		if c.Y >= 0 && c.Y < height && c.X >= 0 && c.X < width {
			world[c.Y][c.X] = 255
		}
	}
}

// Clear kills every cell.
func Clear(world [][]uint8) {
	for y := range world {
		for x := range world[y] {
			world[y][x] = 0
		}
	}
}

// Random clears the world and fills roughly a third of it with live cells,
// deterministically for a given seed value.
func Random(world [][]uint8, seedValue uint32) {
	Clear(world)
	h := fnv.New64a()
	h.Write([]byte{byte(seedValue), byte(seedValue >> 8), byte(seedValue >> 16), byte(seedValue >> 24)})
	seed := h.Sum64()
	for y := range world {
		for x := range world[y] {
			seed = seed*1103515245 + 12345
			if seed%3 == 0 {
				world[y][x] = 255
			}
		}
	}
}
