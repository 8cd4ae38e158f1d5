package gol

import (
	"fmt"
	"net/rpc"
	"sync"
	"time"

	"github.com/asynclife/conway/patterns"
	"github.com/asynclife/conway/stubs"
	"github.com/asynclife/conway/util"
)

type distributorChannels struct {
	events     chan<- Event
	ioCommand  chan<- ioCommand
	ioIdle     <-chan bool
	ioFilename chan<- string
	ioOutput   chan<- uint8
	ioInput    <-chan uint8
	keyPresses <-chan rune
}

func createWorld(imageHeight, imageWidth int) [][]uint8 {
	world := make([][]uint8, imageHeight)
	for i := range world {
		world[i] = make([]uint8, imageWidth)
	}
	return world
}

func copyWorld(world [][]uint8) [][]uint8 {
	cp := make([][]uint8, len(world))
	for y := range world {
		cp[y] = make([]uint8, len(world[y]))
		copy(cp[y], world[y])
	}
	return cp
}

// loadWorld seeds the starting world, either from a named built-in pattern or
// from images/<W>x<H>.pgm via the io goroutine.
func loadWorld(p Params, c distributorChannels) [][]uint8 {
	world := createWorld(p.ImageHeight, p.ImageWidth)
	if p.Pattern != "" {
		if p.Pattern == "random" {
			patterns.Random(world, 0)
			return world
		}
		pattern, ok := patterns.Lookup(p.Pattern)
		if !ok {
			panic(fmt.Sprintf("unknown pattern %q", p.Pattern))
		}
		patterns.Apply(world, pattern)
		return world
	}
	c.ioFilename <- fmt.Sprintf("%vx%v", p.ImageWidth, p.ImageHeight)
	c.ioCommand <- ioInput
	for y := 0; y < p.ImageHeight; y++ {
		for x := 0; x < p.ImageWidth; x++ {
			world[y][x] = <-c.ioInput
		}
	}
	return world
}

func outputImage(p Params, world [][]uint8, filename string, c distributorChannels) {
	c.ioCommand <- ioOutput
	c.ioFilename <- filename
	for y := 0; y < p.ImageHeight; y++ {
		for x := 0; x < p.ImageWidth; x++ {
			c.ioOutput <- world[y][x]
		}
	}
}

// flippedCells diffs two generations for the live view.
func flippedCells(world, newWorld [][]uint8) []util.Cell {
	var flipped []util.Cell
	for y := range world {
		for x := range world[y] {
			if world[y][x] != newWorld[y][x] {
				flipped = append(flipped, util.Cell{X: x, Y: y})
			}
		}
	}
	return flipped
}

// distributor runs the simulation and interacts with the other goroutines.
func distributor(p Params, c distributorChannels) {
	world := loadWorld(p, c)

	for _, cell := range util.AliveCells(world) {
		c.events <- CellFlipped{CompletedTurns: 0, Cell: cell}
	}
	c.events <- StateChange{CompletedTurns: 0, NewState: Executing}

	if p.BrokerAddr != "" {
		remoteDistributor(p, c, world)
		return
	}
	localDistributor(p, c, world)
}

// localDistributor drives the row-coroutine engine in-process.
func localDistributor(p Params, c distributorChannels, world [][]uint8) {
	e := newEngine(p)
	defer e.stop()

	turn := 0
	aliveNum := util.CountAlive(world)
	quitting := false
	e.seenBefore(world)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for turn < p.Turns && !quitting {
		select {
		case key := <-c.keyPresses:
			switch key {
			case 's':
				snapshot(p, c, world, turn)
			case 'q', 'k':
				quitting = true
			case 'p':
				turn, quitting = pauseLoop(p, c, e, world, turn)
			}
		case <-ticker.C:
			c.events <- AliveCellsCount{CompletedTurns: turn, CellsCount: aliveNum}
		default:
			newWorld := e.step(world)
			for _, cell := range flippedCells(world, newWorld) {
				c.events <- CellFlipped{CompletedTurns: turn, Cell: cell}
			}
			world = newWorld
			turn++
			aliveNum = util.CountAlive(world)
			c.events <- TurnComplete{CompletedTurns: turn}
			if e.seenBefore(world) && p.HaltOnCycle {
				c.events <- CycleDetected{CompletedTurns: turn}
				quitting = true
			}
		}
	}

	finish(p, c, world, turn)
}

// pauseLoop handles the keys that are only legal while paused: r reseeds the
// grid at random, c clears it, s snapshots, q quits, p resumes.
func pauseLoop(p Params, c distributorChannels, e *engine, world [][]uint8, turn int) (int, bool) {
	c.events <- StateChange{CompletedTurns: turn, NewState: Paused}
	fmt.Println("Current turn:", turn)
	for {
		switch key := <-c.keyPresses; key {
		case 'p':
			fmt.Println("Continuing")
			c.events <- StateChange{CompletedTurns: turn, NewState: Executing}
			return turn, false
		case 's':
			snapshot(p, c, world, turn)
		case 'q', 'k':
			return turn, true
		case 'r':
			editWorld(c, world, turn, func() { patterns.Random(world, uint32(turn)) })
			e.resetHistory()
		case 'c':
			editWorld(c, world, turn, func() { patterns.Clear(world) })
			e.resetHistory()
		}
	}
}

// editWorld applies an in-place edit and reports the flipped cells so the live
// view stays in sync.
func editWorld(c distributorChannels, world [][]uint8, turn int, edit func()) {
	before := copyWorld(world)
	edit()
	for _, cell := range flippedCells(before, world) {
		c.events <- CellFlipped{CompletedTurns: turn, Cell: cell}
	}
}

func snapshot(p Params, c distributorChannels, world [][]uint8, turn int) {
	filename := fmt.Sprintf("%vx%vx%v", p.ImageWidth, p.ImageHeight, turn)
	outputImage(p, world, filename, c)
	c.events <- ImageOutputComplete{CompletedTurns: turn, Filename: filename}
}

// finish reports the final state, writes the image and shuts the events
// channel so the SDL goroutine exits cleanly.
func finish(p Params, c distributorChannels, world [][]uint8, turn int) {
	c.events <- FinalTurnComplete{
		CompletedTurns: turn,
		Alive:          util.AliveCells(world),
	}

	snapshot(p, c, world, turn)

	// Make sure that the io has finished any output before exiting.
	c.ioCommand <- ioCheckIdle
	<-c.ioIdle
	c.events <- StateChange{CompletedTurns: turn, NewState: Quitting}

	// Close the channel to stop the SDL goroutine gracefully. Removing may cause deadlock.
	close(c.events)
}

// remoteDistributor offloads all turns to the broker and mirrors its progress
// into events, one GetNewData call per completed turn.
func remoteDistributor(p Params, c distributorChannels, world [][]uint8) {
	client, err := rpc.Dial("tcp", p.BrokerAddr)
	check(err)
	defer client.Close()

	tickerFinished := make(chan bool)
	mutex := &sync.Mutex{}
	resumed := sync.NewCond(mutex)
	pause := false
	shutdown := false
	aliveNum := util.CountAlive(world)
	turn := 0

	// Ticker and keyboard control
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case key := <-c.keyPresses:
				switch key {
				case 's':
					mutex.Lock()
					snapshot(p, c, world, turn)
					mutex.Unlock()
				case 'q':
					mutex.Lock()
					pause = true
					shutdown = true
					resumed.Broadcast()
					request := stubs.RequestQuit{Quit: true}
					response := new(stubs.ResponseFromBroker)
					client.Call(stubs.Quit, request, response)
					c.events <- StateChange{CompletedTurns: turn, NewState: Quitting}
					snapshot(p, c, world, turn)
					c.ioCommand <- ioCheckIdle
					<-c.ioIdle
					close(c.events)
					mutex.Unlock()
					return
				case 'p':
					mutex.Lock()
					if pause {
						pause = false
						resumed.Broadcast()
						fmt.Println("Continuing")
						c.events <- StateChange{CompletedTurns: turn, NewState: Executing}
					} else {
						pause = true
						c.events <- StateChange{CompletedTurns: turn, NewState: Paused}
					}
					mutex.Unlock()
				case 'k':
					mutex.Lock()
					pause = true
					shutdown = true
					resumed.Broadcast()
					request := stubs.RequestToBroker{Stop: true}
					response := new(stubs.ResponseFromBroker)
					client.Call(stubs.RunAllTurns, request, response)
					fmt.Println("Broker and workers stopped")
					c.events <- StateChange{CompletedTurns: turn, NewState: Quitting}
					snapshot(p, c, world, turn)
					c.ioCommand <- ioCheckIdle
					<-c.ioIdle
					close(c.events)
					mutex.Unlock()
					return
				}
			case <-ticker.C:
				mutex.Lock()
				if !pause {
					c.events <- AliveCellsCount{CompletedTurns: turn, CellsCount: aliveNum}
				}
				mutex.Unlock()
			case <-tickerFinished:
				return
			}
		}
	}()

	// Send the starting world to the broker.
	request := stubs.RequestToBroker{
		World: util.Pack(world),
		Params: stubs.Params{
			Turns:       p.Turns,
			Threads:     p.Threads,
			ImageWidth:  p.ImageWidth,
			ImageHeight: p.ImageHeight,
			Wrap:        p.Wrap,
		},
	}
	response := new(stubs.ResponseFromBroker)
	go client.Call(stubs.RunAllTurns, request, response)

	// Pull each completed turn back from the broker.
	for turn < p.Turns {
		req := stubs.RequestNewData{}
		res := new(stubs.ResponseFromBroker)
		err := client.Call(stubs.GetNewData, req, res)
		if err != nil {
			mutex.Lock()
			stopping := shutdown
			mutex.Unlock()
			if stopping {
				// broker gone after q/k, the keys goroutine owns shutdown
				return
			}
			fmt.Println("Broker reported failure:", err)
			tickerFinished <- true
			finish(p, c, world, turn)
			return
		}
		newWorld := res.NewWorld.Unpack()

		mutex.Lock()
		for pause && !shutdown {
			resumed.Wait()
		}
		if shutdown {
			mutex.Unlock()
			return
		}
		for _, cell := range flippedCells(world, newWorld) {
			c.events <- CellFlipped{CompletedTurns: turn, Cell: cell}
		}
		world = newWorld
		c.events <- TurnComplete{CompletedTurns: turn}
		turn = res.Turn
		aliveNum = res.AliveNumber
		mutex.Unlock()
	}

	tickerFinished <- true
	finish(p, c, world, turn)
}
