package gol

import (
	"fmt"

	"github.com/asynclife/conway/util"
)

// Event is anything the simulation reports to the outside world. The SDL loop
// and the tests both consume events from the same channel.
type Event interface {
	String() string
}

type State int

const (
	Paused State = iota
	Executing
	Quitting
)

func (state State) String() string {
	switch state {
	case Paused:
		return "Paused"
	case Executing:
		return "Executing"
	case Quitting:
		return "Quitting"
	default:
		return "Incorrect State"
	}
}

// CellFlipped is sent for every cell that changes state, so the live view only
// redraws what moved.
type CellFlipped struct {
	CompletedTurns int
	Cell           util.Cell
}

func (event CellFlipped) String() string {
	return fmt.Sprintf("Cell %v flipped on turn %d", event.Cell, event.CompletedTurns)
}

type TurnComplete struct {
	CompletedTurns int
}

func (event TurnComplete) String() string {
	return fmt.Sprintf("Turn %d complete", event.CompletedTurns)
}

// AliveCellsCount is reported by the ticker every two seconds.
type AliveCellsCount struct {
	CompletedTurns int
	CellsCount     int
}

func (event AliveCellsCount) String() string {
	return fmt.Sprintf("%d cells alive after turn %d", event.CellsCount, event.CompletedTurns)
}

type ImageOutputComplete struct {
	CompletedTurns int
	Filename       string
}

func (event ImageOutputComplete) String() string {
	return fmt.Sprintf("Image %v output on turn %d", event.Filename, event.CompletedTurns)
}

type StateChange struct {
	CompletedTurns int
	NewState       State
}

func (event StateChange) String() string {
	return fmt.Sprintf("State changing to %v on turn %d", event.NewState, event.CompletedTurns)
}

// CycleDetected is sent when the grid repeats a state seen within the last ten
// generations, meaning the simulation has settled into an oscillation.
type CycleDetected struct {
	CompletedTurns int
}

func (event CycleDetected) String() string {
	return fmt.Sprintf("Cycle detected on turn %d", event.CompletedTurns)
}

type FinalTurnComplete struct {
	CompletedTurns int
	Alive          []util.Cell
}

func (event FinalTurnComplete) String() string {
	return fmt.Sprintf("Final turn complete: %d cells alive after turn %d", len(event.Alive), event.CompletedTurns)
}
