package gol

// Params provides the details of how to run the Game of Life.
// An empty Pattern means the world is loaded from images/<W>x<H>.pgm; a
// non-empty BrokerAddr offloads the simulation to a broker over RPC.
type Params struct {
	Turns       int
	Threads     int
	ImageWidth  int
	ImageHeight int
	Wrap        bool
	Pattern     string
	HaltOnCycle bool
	BrokerAddr  string
}

// Run starts the processing of Game of Life. It initialises the io goroutine
// and hands control to the distributor.
func Run(p Params, events chan<- Event, keyPresses <-chan rune) {
	ioCommand := make(chan ioCommand)
	ioIdle := make(chan bool)
	ioFilename := make(chan string)
	ioOutput := make(chan uint8)
	ioInput := make(chan uint8)

	io := ioChannels{
		command:  ioCommand,
		idle:     ioIdle,
		filename: ioFilename,
		output:   ioOutput,
		input:    ioInput,
	}
	go startIo(p, io)

	c := distributorChannels{
		events:     events,
		ioCommand:  ioCommand,
		ioIdle:     ioIdle,
		ioFilename: ioFilename,
		ioOutput:   ioOutput,
		ioInput:    ioInput,
		keyPresses: keyPresses,
	}
	distributor(p, c)
}
