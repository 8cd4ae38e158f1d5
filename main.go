package main

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/asynclife/conway/gol"
	"github.com/asynclife/conway/sdl"
)

// main parses the flags, starts the simulation and hands the main OS thread to
// SDL. -headless drains events without a window, for benchmarks and servers.
func main() {
	runtime.LockOSThread()
	var params gol.Params

	flag.IntVar(&params.Threads, "t", 8, "Specify the number of strips the broker splits the world into.")
	flag.IntVar(&params.ImageWidth, "w", 50, "Specify the width of the world.")
	flag.IntVar(&params.ImageHeight, "h", 50, "Specify the height of the world.")
	flag.IntVar(&params.Turns, "turns", 10000000, "Specify the number of turns to process.")
	flag.StringVar(&params.Pattern, "pattern", "random", "Seed the world with a built-in pattern (glider, blinker, toad, beacon, pulsar, r-pentomino, gosper-gun, random). Empty loads images/<w>x<h>.pgm.")
	flag.BoolVar(&params.Wrap, "wrap", false, "Treat the world as a torus instead of a bounded grid.")
	flag.BoolVar(&params.HaltOnCycle, "haltOnCycle", false, "Stop once the grid repeats a recent state.")
	flag.StringVar(&params.BrokerAddr, "broker", "", "Address of a broker to offload the simulation to. Empty runs locally.")
	headless := flag.Bool("headless", false, "Disable the SDL window and print events instead.")
	flag.Parse()

	fmt.Println("Threads:", params.Threads)
	fmt.Println("Width:", params.ImageWidth)
	fmt.Println("Height:", params.ImageHeight)

	keyPresses := make(chan rune, 10)
	events := make(chan gol.Event, 1000)

	go gol.Run(params, events, keyPresses)
	if *headless {
		for event := range events {
			switch e := event.(type) {
			case gol.AliveCellsCount, gol.ImageOutputComplete, gol.StateChange, gol.CycleDetected:
				fmt.Println(e)
			case gol.FinalTurnComplete:
				fmt.Println(e)
			}
		}
		return
	}
	sdl.Run(params, events, keyPresses)
}
