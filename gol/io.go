package gol

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type ioCommand uint8

// ioCommand values select what the io goroutine does next.
const (
	ioOutput ioCommand = iota
	ioInput
	ioCheckIdle
)

type ioChannels struct {
	command  <-chan ioCommand
	idle     chan<- bool
	filename <-chan string
	output   <-chan uint8
	input    chan<- uint8
}

type ioState struct {
	params   Params
	channels ioChannels
}

// writePgmImage receives ImageWidth*ImageHeight bytes on the output channel
// and writes them as a binary PGM under out/.
func (io *ioState) writePgmImage() {
	_ = os.Mkdir("out", os.ModePerm)

	filename := <-io.channels.filename

	file, ioError := os.Create("out/" + filename + ".pgm")
	check(ioError)
	defer file.Close()

	_, _ = file.WriteString("P5\n")
	_, _ = file.WriteString(strconv.Itoa(io.params.ImageWidth) + " " + strconv.Itoa(io.params.ImageHeight) + "\n")
	_, _ = file.WriteString("255\n")

	world := make([][]byte, io.params.ImageHeight)
	for i := range world {
		world[i] = make([]byte, io.params.ImageWidth)
	}

	for y := 0; y < io.params.ImageHeight; y++ {
		for x := 0; x < io.params.ImageWidth; x++ {
			val := <-io.channels.output
			world[y][x] = val
		}
	}

	for y := 0; y < io.params.ImageHeight; y++ {
		_, ioError = file.Write(world[y])
		check(ioError)
	}

	ioError = file.Sync()
	check(ioError)

	fmt.Println("File", filename, "output done!")
}

// readPgmImage sends the named image cell by cell down the input channel.
func (io *ioState) readPgmImage() {
	filename := <-io.channels.filename

	data, ioError := os.ReadFile("images/" + filename + ".pgm")
	check(ioError)

	fields := strings.Fields(string(data))

	if fields[0] != "P5" {
		panic("Not a pgm file")
	}

	width, _ := strconv.Atoi(fields[1])
	if width != io.params.ImageWidth {
		panic("Incorrect width")
	}

	height, _ := strconv.Atoi(fields[2])
	if height != io.params.ImageHeight {
		panic("Incorrect height")
	}

	maxval, _ := strconv.Atoi(fields[3])
	if maxval != 255 {
		panic("Incorrect maxval/bit depth")
	}

	image := []byte(fields[4])

	for _, b := range image {
		io.channels.input <- b
	}

	fmt.Println("File", filename, "input done!")
}

// startIo runs the io goroutine's command loop.
func startIo(p Params, c ioChannels) {
	io := ioState{
		params:   p,
		channels: c,
	}

	for {
		select {
		case command := <-io.channels.command:
			switch command {
			case ioInput:
				io.readPgmImage()
			case ioOutput:
				io.writePgmImage()
			case ioCheckIdle:
				io.channels.idle <- true
			}
		}
	}
}

func check(e error) {
	if e != nil {
		panic(e)
	}
}
