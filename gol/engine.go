package gol

import "hash/fnv"

const alive = 255
const dead = 0

// readCell is an immutable view onto a world snapshot. Handing row coroutines
// a closure instead of the slice keeps them from writing the current
// generation while others still read it.
type readCell func(y, x int) uint8

func makeImmutableWorld(world [][]uint8) readCell {
	return func(y, x int) uint8 {
		return world[y][x]
	}
}

type rowJob struct {
	world readCell
}

type rowResult struct {
	y    int
	line []uint8
}

// engine runs the local simulation with one persistent coroutine per row.
// Each generation every row coroutine is resumed with a snapshot of the
// current world, computes its row of the next generation, and parks again.
// The collector in step acts as the generation barrier: no swap happens until
// every row has reported.
type engine struct {
	width  int
	height int
	wrap   bool

	jobs    []chan rowJob
	results chan rowResult

	// ring of recent grid hashes, for cycle detection
	history      [10]uint64
	historyCount int
}

func newEngine(p Params) *engine {
	e := &engine{
		width:   p.ImageWidth,
		height:  p.ImageHeight,
		wrap:    p.Wrap,
		jobs:    make([]chan rowJob, p.ImageHeight),
		results: make(chan rowResult, p.ImageHeight),
	}
	for y := range e.jobs {
		e.jobs[y] = make(chan rowJob)
		go e.rowCoroutine(y)
	}
	return e
}

// rowCoroutine computes row y of the next generation each time it is resumed.
func (e *engine) rowCoroutine(y int) {
	for job := range e.jobs[y] {
		line := make([]uint8, e.width)
		for x := 0; x < e.width; x++ {
			line[x] = golLogic(job.world(y, x), e.neighbours(job.world, y, x))
		}
		e.results <- rowResult{y: y, line: line}
	}
}

// step resumes every row coroutine against a snapshot of world and collects
// the complete next generation before returning it.
func (e *engine) step(world [][]uint8) [][]uint8 {
	snapshot := makeImmutableWorld(world)
	for y := range e.jobs {
		e.jobs[y] <- rowJob{world: snapshot}
	}
	newWorld := make([][]uint8, e.height)
	for i := 0; i < e.height; i++ {
		r := <-e.results
		newWorld[r.y] = r.line
	}
	return newWorld
}

// stop parks all row coroutines permanently.
func (e *engine) stop() {
	for _, jobs := range e.jobs {
		close(jobs)
	}
}

func (e *engine) neighbours(world readCell, y, x int) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			ny, nx := y+dy, x+dx
			if e.wrap {
				ny = (ny + e.height) % e.height
				nx = (nx + e.width) % e.width
			} else if ny < 0 || ny >= e.height || nx < 0 || nx >= e.width {
				// bounded mode: everything outside the grid is dead
				continue
			}
			if world(ny, nx) == alive {
				count++
			}
		}
	}
	return count
}

func golLogic(current uint8, nCount int) uint8 {
	if current == alive {
		if nCount < 2 || nCount > 3 {
			return dead
		}
		return alive
	}
	if nCount == 3 {
		return alive
	}
	return dead
}

// seenBefore records the world's hash and reports whether the same grid
// appeared within the last ten generations.
func (e *engine) seenBefore(world [][]uint8) bool {
	h := fnv.New64a()
	for _, line := range world {
		h.Write(line)
	}
	hash := h.Sum64()
	for i := 0; i < e.historyCount && i < len(e.history); i++ {
		if e.history[i] == hash {
			return true
		}
	}
	e.history[e.historyCount%len(e.history)] = hash
	e.historyCount++
	return false
}

// resetHistory forgets past grids, after the world is edited by hand.
func (e *engine) resetHistory() {
	e.historyCount = 0
}
