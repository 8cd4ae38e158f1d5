package sdl

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/asynclife/conway/gol"
)

// Run owns the SDL window for the lifetime of the simulation: it flips pixels
// for CellFlipped events, renders on TurnComplete and forwards keyboard input
// to the distributor. It returns once the events channel is closed.
func Run(p gol.Params, events <-chan gol.Event, keyPresses chan<- rune) {
	w := NewWindow(int32(p.ImageWidth), int32(p.ImageHeight))
	defer w.Destroy()

	frameTicker := time.NewTicker(time.Second / 60)
	defer frameTicker.Stop()
	dirty := false

	for {
		select {
		case <-frameTicker.C:
			pollKeyboard(w, keyPresses)
			if dirty {
				w.RenderFrame()
				dirty = false
			}
		case event, ok := <-events:
			if !ok {
				w.RenderFrame()
				return
			}
			switch e := event.(type) {
			case gol.CellFlipped:
				w.FlipPixel(e.Cell.X, e.Cell.Y)
			case gol.TurnComplete:
				dirty = true
			case gol.FinalTurnComplete:
				w.RenderFrame()
				fmt.Println(e)
			case gol.StateChange:
				fmt.Println(e)
			case gol.AliveCellsCount:
				fmt.Println(e)
			case gol.ImageOutputComplete:
				fmt.Println(e)
			case gol.CycleDetected:
				fmt.Println(e)
			}
		}
	}
}

func pollKeyboard(w *Window, keyPresses chan<- rune) {
	for e := w.PollEvent(); e != nil; e = w.PollEvent() {
		switch event := e.(type) {
		case *sdl.QuitEvent:
			keyPresses <- 'q'
		case *sdl.KeyboardEvent:
			if event.Type != sdl.KEYDOWN {
				continue
			}
			switch event.Keysym.Sym {
			case sdl.K_p:
				keyPresses <- 'p'
			case sdl.K_s:
				keyPresses <- 's'
			case sdl.K_q, sdl.K_ESCAPE:
				keyPresses <- 'q'
			case sdl.K_k:
				keyPresses <- 'k'
			case sdl.K_r:
				keyPresses <- 'r'
			case sdl.K_c:
				keyPresses <- 'c'
			}
		}
	}
}
